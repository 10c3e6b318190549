package ai

import (
	"context"
	"fmt"
	"strings"

	"concierge/models"

	"go.uber.org/zap"
)

const DefaultIntentTopK = 5

// Classifier predicts an intent by majority vote over the k nearest
// labelled examples.
type Classifier struct {
	embedder Embedder
	index    VectorIndex
	k        int
	logger   *zap.Logger
}

func NewClassifier(embedder Embedder, index VectorIndex, k int, logger *zap.Logger) *Classifier {
	if k <= 0 {
		k = DefaultIntentTopK
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{embedder: embedder, index: index, k: k, logger: logger}
}

// Predict never returns a label outside the closed intent set; anything the
// index holds that is not recognised becomes IntentUnknown.
func (c *Classifier) Predict(ctx context.Context, query string) (models.Intent, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return models.IntentUnknown, nil
	}
	vec, err := c.embedder.Embed(ctx, q)
	if err != nil {
		return models.IntentUnknown, fmt.Errorf("embed query: %w", err)
	}
	hits, err := c.index.Search(ctx, vec, c.k, nil)
	if err != nil {
		return models.IntentUnknown, fmt.Errorf("search intents: %w", err)
	}
	label := Vote(hits)
	intent := models.ParseIntent(label)
	c.logger.Debug("Intent predicted",
		zap.String("label", label), zap.Stringer("intent", intent), zap.Int("neighbours", len(hits)))
	return intent, nil
}

// Vote returns the most frequent label. A tie goes to the label whose
// closest neighbour scored highest. hits must be sorted by descending score.
func Vote(hits []Match) string {
	counts := make(map[string]int, len(hits))
	best := make(map[string]float64, len(hits))
	order := make([]string, 0, len(hits))
	for _, h := range hits {
		if _, seen := counts[h.Label]; !seen {
			best[h.Label] = h.Score
			order = append(order, h.Label)
		}
		counts[h.Label]++
		if h.Score > best[h.Label] {
			best[h.Label] = h.Score
		}
	}

	winner := ""
	for _, label := range order {
		if winner == "" {
			winner = label
			continue
		}
		switch {
		case counts[label] > counts[winner]:
			winner = label
		case counts[label] == counts[winner] && best[label] > best[winner]:
			winner = label
		}
	}
	return winner
}
