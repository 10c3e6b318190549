package ai

import (
	"context"
	"fmt"

	"concierge/models"
)

// KnowledgeSource supplies embedded records to build the indexes from.
type KnowledgeSource interface {
	IntentExamples(ctx context.Context) ([]models.IntentExample, error)
	HotelFacts(ctx context.Context) ([]models.HotelFact, error)
}

// LoadIndexes reads every intent example and hotel fact into memory indexes.
func LoadIndexes(ctx context.Context, src KnowledgeSource) (intents *MemoryIndex, facts *MemoryIndex, err error) {
	examples, err := src.IntentExamples(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load intent examples: %w", err)
	}
	intents = NewMemoryIndex()
	if err := intents.AddIntentExamples(examples); err != nil {
		return nil, nil, err
	}

	hotelFacts, err := src.HotelFacts(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load hotel facts: %w", err)
	}
	facts = NewMemoryIndex()
	if err := facts.AddHotelFacts(hotelFacts); err != nil {
		return nil, nil, err
	}
	return intents, facts, nil
}
