package knowledgeRepo

import (
	"context"
	"fmt"
	"time"

	"concierge/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	IntentCollection = "user_intents"
	FactCollection   = "hotel_facts"
)

// KnowledgeRepository stores embedded intent examples and hotel facts.
type KnowledgeRepository interface {
	// IntentExamples returns every stored intent example with its vector.
	IntentExamples(ctx context.Context) ([]models.IntentExample, error)
	// HotelFacts returns every stored fact chunk with its vector.
	HotelFacts(ctx context.Context) ([]models.HotelFact, error)
	// ReplaceIntentExamples drops the collection and inserts examples.
	ReplaceIntentExamples(ctx context.Context, examples []models.IntentExample) error
	// ReplaceHotelFacts drops the collection and inserts facts.
	ReplaceHotelFacts(ctx context.Context, facts []models.HotelFact) error
}

// MongoKnowledgeRepo implements KnowledgeRepository using MongoDB.
type MongoKnowledgeRepo struct {
	intents *mongo.Collection
	facts   *mongo.Collection
}

func NewMongoKnowledgeRepo(db *mongo.Database) *MongoKnowledgeRepo {
	return &MongoKnowledgeRepo{
		intents: db.Collection(IntentCollection),
		facts:   db.Collection(FactCollection),
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d)
}

func (r *MongoKnowledgeRepo) IntentExamples(ctx context.Context) ([]models.IntentExample, error) {
	ctx, cancel := withTimeout(ctx, 30*time.Second)
	defer cancel()

	cursor, err := r.intents.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "chunk_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve intent examples: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.IntentExample
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode intent examples: %w", err)
	}
	return out, nil
}

func (r *MongoKnowledgeRepo) HotelFacts(ctx context.Context) ([]models.HotelFact, error) {
	ctx, cancel := withTimeout(ctx, 30*time.Second)
	defer cancel()

	cursor, err := r.facts.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "chunk_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve hotel facts: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.HotelFact
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode hotel facts: %w", err)
	}
	return out, nil
}

func (r *MongoKnowledgeRepo) ReplaceIntentExamples(ctx context.Context, examples []models.IntentExample) error {
	docs := make([]interface{}, len(examples))
	for i := range examples {
		docs[i] = examples[i]
	}
	return replaceAll(ctx, r.intents, docs)
}

func (r *MongoKnowledgeRepo) ReplaceHotelFacts(ctx context.Context, facts []models.HotelFact) error {
	docs := make([]interface{}, len(facts))
	for i := range facts {
		docs[i] = facts[i]
	}
	return replaceAll(ctx, r.facts, docs)
}

func replaceAll(ctx context.Context, coll *mongo.Collection, docs []interface{}) error {
	ctx, cancel := withTimeout(ctx, 2*time.Minute)
	defer cancel()

	if err := coll.Drop(ctx); err != nil {
		return fmt.Errorf("failed to drop %s: %w", coll.Name(), err)
	}
	if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "chunk_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("failed to create index on %s: %w", coll.Name(), err)
	}
	if len(docs) == 0 {
		return nil
	}
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", coll.Name(), err)
	}
	return nil
}
