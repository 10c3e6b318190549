package ticketRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"concierge/models"
	"concierge/services/ticket"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const TicketCollection = "tickets"

// MongoTicketRepo implements ticket.Repository using MongoDB.
type MongoTicketRepo struct {
	coll *mongo.Collection
}

func NewMongoTicketRepo(db *mongo.Database) *MongoTicketRepo {
	repo := &MongoTicketRepo{coll: db.Collection(TicketCollection)}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create ticket indexes: %v\n", err)
	}
	return repo
}

func (r *MongoTicketRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoTicketRepo) Create(ctx context.Context, t *models.Ticket) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}
	return nil
}

func (r *MongoTicketRepo) Get(ctx context.Context, id string) (*models.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var t models.Ticket
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ticket.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch ticket %s: %w", id, err)
	}
	return &t, nil
}

func (r *MongoTicketRepo) MarkNotified(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"notified_at": at}})
	if err != nil {
		return fmt.Errorf("failed to update ticket %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ticket.ErrNotFound
	}
	return nil
}
