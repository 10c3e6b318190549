// Package session keeps one booking dialog record per user between turns.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"concierge/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ErrNotFound is returned by Load when the user has no dialog in progress.
var ErrNotFound = errors.New("session: no booking state for user")

// Store is the persistence contract for booking dialog records.
// Implementations hand out copies; mutating a returned record never
// changes stored state until Save is called.
type Store interface {
	// GetOrCreate returns the user's record, creating and storing a default
	// one when none exists. created reports whether this call created it.
	GetOrCreate(ctx context.Context, userID string) (state *models.BookingState, created bool, err error)
	Load(ctx context.Context, userID string) (*models.BookingState, error)
	Save(ctx context.Context, userID string, state *models.BookingState) error
	Exists(ctx context.Context, userID string) (bool, error)
	// Clear removes the record. Clearing a missing record is not an error.
	Clear(ctx context.Context, userID string) error
}

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Options selects and tunes a Store implementation.
type Options struct {
	Backend string
	TTL     time.Duration
	Redis   *redis.Client
	Logger  *zap.Logger
}

// NewStore builds the configured backend.
func NewStore(opts Options) (Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	switch opts.Backend {
	case "", BackendMemory:
		logger.Info("Using in-memory session store", zap.Duration("ttl", opts.TTL))
		return NewMemoryStore(opts.TTL), nil
	case BackendRedis:
		if opts.Redis == nil {
			return nil, fmt.Errorf("session: redis backend requires a client")
		}
		logger.Info("Using redis session store", zap.Duration("ttl", opts.TTL))
		return NewRedisStore(opts.Redis, opts.TTL), nil
	default:
		return nil, fmt.Errorf("session: unsupported backend %q", opts.Backend)
	}
}
