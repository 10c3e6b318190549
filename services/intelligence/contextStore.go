// File: services/intelligence/contextStore.go
package ai

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"time"

	"concierge/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CachedEmbedder keeps query vectors in Redis so repeated guest phrases
// ("merhaba", "teşekkürler") skip the embedding call.
type CachedEmbedder struct {
	next   Embedder
	client *redis.Client
	ttl    time.Duration
	ns     string
	logger *zap.Logger
}

func NewCachedEmbedder(next Embedder, client *redis.Client, namespace string, ttl time.Duration, logger *zap.Logger) *CachedEmbedder {
	return &CachedEmbedder{next: next, client: client, ttl: ttl, ns: namespace, logger: logger}
}

// key covers the exact text sent to the embedder.
func (s *CachedEmbedder) key(text string) string {
	sum := sha1.Sum([]byte(text))
	return utils.EmbeddingCachePrefix + s.ns + ":" + hex.EncodeToString(sum[:])
}

func (s *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := s.key(text)
	data, err := s.client.Get(ctx, key).Bytes()
	if err == nil {
		var vec []float32
		if jerr := json.Unmarshal(data, &vec); jerr == nil {
			return vec, nil
		}
	} else if err != redis.Nil {
		// A cache outage must not block classification.
		s.logger.Warn("Embedding cache read failed", zap.Error(err))
	}

	vec, err := s.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if b, jerr := json.Marshal(vec); jerr == nil {
		if serr := s.client.Set(ctx, key, b, s.ttl).Err(); serr != nil {
			s.logger.Warn("Embedding cache write failed", zap.Error(serr))
		}
	}
	return vec, nil
}

// EmbedBatch is used for ingestion only and is not cached.
func (s *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return s.next.EmbedBatch(ctx, texts)
}
