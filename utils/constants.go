// File: utils/constants.go
package utils

import "time"

// EmbeddingCachePrefix is the prefix used for Redis query-embedding cache keys.
const EmbeddingCachePrefix = "emb:"

// EmbeddingCacheTTL is the time-to-live for cached query embeddings.
const EmbeddingCacheTTL = 24 * time.Hour

// HealthCheckInterval is how often the health monitor pings its dependencies.
const HealthCheckInterval = 60 * time.Second
