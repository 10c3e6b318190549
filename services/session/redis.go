package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"concierge/models"

	"github.com/go-redis/redis/v8"
)

const bookingStatePrefix = "booking:state:"

// RedisStore persists records as JSON with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func key(userID string) string {
	return bookingStatePrefix + userID
}

func (s *RedisStore) Load(ctx context.Context, userID string) (*models.BookingState, error) {
	data, err := s.client.Get(ctx, key(userID)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load booking state: %w", err)
	}
	var st models.BookingState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode booking state: %w", err)
	}
	if st.ChildAges == nil {
		st.ChildAges = []int{}
	}
	return &st, nil
}

func (s *RedisStore) GetOrCreate(ctx context.Context, userID string) (*models.BookingState, bool, error) {
	st, err := s.Load(ctx, userID)
	if err == nil {
		return st, false, nil
	}
	if err != ErrNotFound {
		return nil, false, err
	}

	st = models.NewBookingState()
	b, err := json.Marshal(st)
	if err != nil {
		return nil, false, fmt.Errorf("encode booking state: %w", err)
	}
	// SetNX keeps a record written concurrently by another instance.
	ok, err := s.client.SetNX(ctx, key(userID), b, s.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("create booking state: %w", err)
	}
	if !ok {
		st, err = s.Load(ctx, userID)
		return st, false, err
	}
	return st, true, nil
}

func (s *RedisStore) Save(ctx context.Context, userID string, state *models.BookingState) error {
	st := state.Clone()
	st.UpdatedAt = time.Now()
	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode booking state: %w", err)
	}
	if err := s.client.Set(ctx, key(userID), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("save booking state: %w", err)
	}
	return nil
}

func (s *RedisStore) Exists(ctx context.Context, userID string) (bool, error) {
	n, err := s.client.Exists(ctx, key(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("check booking state: %w", err)
	}
	return n > 0, nil
}

func (s *RedisStore) Clear(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("clear booking state: %w", err)
	}
	return nil
}
