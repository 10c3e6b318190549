package session

import (
	"context"
	"sync"
	"time"

	"concierge/models"

	"go.uber.org/zap"
)

// MemoryStore keeps records in process memory. Records idle for longer
// than ttl are treated as absent and removed by the cleanup routine.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*models.BookingState
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*models.BookingState),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemoryStore) expired(st *models.BookingState) bool {
	return m.ttl > 0 && m.now().Sub(st.UpdatedAt) > m.ttl
}

func (m *MemoryStore) GetOrCreate(ctx context.Context, userID string) (*models.BookingState, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if st, ok := m.records[userID]; ok && !m.expired(st) {
		return st.Clone(), false, nil
	}
	st := models.NewBookingState()
	st.CreatedAt = m.now()
	st.UpdatedAt = st.CreatedAt
	m.records[userID] = st
	return st.Clone(), true, nil
}

func (m *MemoryStore) Load(ctx context.Context, userID string) (*models.BookingState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.records[userID]
	if !ok || m.expired(st) {
		return nil, ErrNotFound
	}
	return st.Clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, userID string, state *models.BookingState) error {
	st := state.Clone()
	st.UpdatedAt = m.now()

	m.mu.Lock()
	m.records[userID] = st
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Exists(ctx context.Context, userID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.records[userID]
	return ok && !m.expired(st), nil
}

func (m *MemoryStore) Clear(ctx context.Context, userID string) error {
	m.mu.Lock()
	delete(m.records, userID)
	m.mu.Unlock()
	return nil
}

// Count returns the number of live records.
func (m *MemoryStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, st := range m.records {
		if !m.expired(st) {
			n++
		}
	}
	return n
}

// CleanupExpired drops idle records and returns how many were removed.
func (m *MemoryStore) CleanupExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, st := range m.records {
		if m.expired(st) {
			delete(m.records, id)
			removed++
		}
	}
	return removed
}

// StartCleanupRoutine sweeps expired records every interval until ctx is done.
func (m *MemoryStore) StartCleanupRoutine(ctx context.Context, interval time.Duration, logger *zap.Logger) {
	if m.ttl <= 0 || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := m.CleanupExpired(); n > 0 && logger != nil {
					logger.Debug("Expired booking sessions removed", zap.Int("count", n))
				}
			}
		}
	}()
}
