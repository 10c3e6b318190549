package ai

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"concierge/models"
)

type document struct {
	Match
	vec  []float32
	norm float64
}

// MemoryIndex is a brute-force cosine index. Collections here are small
// (a few thousand intent examples, a few hundred hotel facts).
type MemoryIndex struct {
	mu   sync.RWMutex
	docs []document
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

func norm(v []float32) float64 {
	var s float64
	for _, x := range v {
		s += float64(x) * float64(x)
	}
	return math.Sqrt(s)
}

// Add stores one entry. Vectors with zero length or zero norm are rejected.
func (m *MemoryIndex) Add(id, text, label string, metadata map[string]interface{}, vec []float32) error {
	n := norm(vec)
	if len(vec) == 0 || n == 0 {
		return fmt.Errorf("index: empty vector for %q", id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.docs) > 0 && len(m.docs[0].vec) != len(vec) {
		return fmt.Errorf("index: dimension %d does not match %d", len(vec), len(m.docs[0].vec))
	}
	m.docs = append(m.docs, document{
		Match: Match{ID: id, Text: text, Label: label, Metadata: metadata},
		vec:   vec,
		norm:  n,
	})
	return nil
}

// AddIntentExamples loads labelled utterances.
func (m *MemoryIndex) AddIntentExamples(examples []models.IntentExample) error {
	for _, ex := range examples {
		if err := m.Add(ex.ChunkID, ex.Text, ex.Intent, nil, ex.Embedding); err != nil {
			return err
		}
	}
	return nil
}

// AddHotelFacts loads knowledge chunks.
func (m *MemoryIndex) AddHotelFacts(facts []models.HotelFact) error {
	for _, f := range facts {
		if err := m.Add(f.ChunkID, f.Text, "", f.Metadata, f.Embedding); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

// Search returns up to k entries ordered by descending similarity.
// Equal scores keep insertion order.
func (m *MemoryIndex) Search(ctx context.Context, vec []float32, k int, filter *FactFilter) ([]Match, error) {
	if k <= 0 {
		return nil, nil
	}
	qn := norm(vec)
	if qn == 0 {
		return nil, fmt.Errorf("index: query vector is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.docs) > 0 && len(m.docs[0].vec) != len(vec) {
		return nil, fmt.Errorf("index: query dimension %d does not match %d", len(vec), len(m.docs[0].vec))
	}

	hits := make([]Match, 0, len(m.docs))
	for _, d := range m.docs {
		if !filter.Matches(d.Metadata) {
			continue
		}
		var dot float64
		for i, x := range d.vec {
			dot += float64(x) * float64(vec[i])
		}
		h := d.Match
		h.Score = dot / (d.norm * qn)
		hits = append(hits, h)
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}
