package knowledge

import (
	"context"
	"sync"

	"concierge/models"
)

// MemoryRepo holds knowledge in process, for development without MongoDB.
type MemoryRepo struct {
	mu       sync.RWMutex
	examples []models.IntentExample
	facts    []models.HotelFact
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (m *MemoryRepo) IntentExamples(ctx context.Context) ([]models.IntentExample, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.IntentExample(nil), m.examples...), nil
}

func (m *MemoryRepo) HotelFacts(ctx context.Context) ([]models.HotelFact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.HotelFact(nil), m.facts...), nil
}

func (m *MemoryRepo) ReplaceIntentExamples(ctx context.Context, examples []models.IntentExample) error {
	m.mu.Lock()
	m.examples = append([]models.IntentExample(nil), examples...)
	m.mu.Unlock()
	return nil
}

func (m *MemoryRepo) ReplaceHotelFacts(ctx context.Context, facts []models.HotelFact) error {
	m.mu.Lock()
	m.facts = append([]models.HotelFact(nil), facts...)
	m.mu.Unlock()
	return nil
}
