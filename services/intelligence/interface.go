// Package ai holds the retrieval side of the concierge: embeddings,
// nearest-neighbour lookup, intent prediction and FAQ answering.
package ai

import (
	"context"

	"concierge/models"
)

// Embedder turns text into vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces a completion from a system instruction and a prompt.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Match is one search hit. Score is cosine similarity, higher is closer.
type Match struct {
	ID       string
	Text     string
	Label    string
	Metadata map[string]interface{}
	Score    float64
}

// VectorIndex answers k-nearest-neighbour queries.
type VectorIndex interface {
	Search(ctx context.Context, vec []float32, k int, filter *FactFilter) ([]Match, error)
	Len() int
}

// IntentPredictor is what the router needs from classification.
type IntentPredictor interface {
	Predict(ctx context.Context, query string) (models.Intent, error)
}

// Answerer replies to hotel questions.
type Answerer interface {
	Answer(ctx context.Context, intent models.Intent, question string) (string, error)
}
