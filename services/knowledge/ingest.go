// Package knowledge turns JSONL datasets into embedded intent examples and hotel facts.
package knowledge

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"concierge/models"

	"go.uber.org/zap"
)

const DefaultBatchSize = 100

// Embedder is the subset of the embedding client ingestion needs.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Repository is where embedded records end up.
type Repository interface {
	ReplaceIntentExamples(ctx context.Context, examples []models.IntentExample) error
	ReplaceHotelFacts(ctx context.Context, facts []models.HotelFact) error
}

// ReadJSONL parses one record per line. Blank lines are skipped.
func ReadJSONL(r io.Reader) ([]models.IngestRecord, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var out []models.IngestRecord
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		var rec models.IngestRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if rec.ChunkID == "" || rec.TextForEmbedding == "" {
			return nil, fmt.Errorf("line %d: chunk_id and text_for_embedding are required", line)
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return out, nil
}

// Ingester embeds records in batches and replaces the target collection.
type Ingester struct {
	Embedder  Embedder
	Repo      Repository
	BatchSize int
	Logger    *zap.Logger
}

func (in *Ingester) batchSize() int {
	if in.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return in.BatchSize
}

func (in *Ingester) logger() *zap.Logger {
	if in.Logger == nil {
		return zap.NewNop()
	}
	return in.Logger
}

func (in *Ingester) embedAll(ctx context.Context, recs []models.IngestRecord) ([][]float32, error) {
	vecs := make([][]float32, 0, len(recs))
	size := in.batchSize()
	for start := 0; start < len(recs); start += size {
		end := start + size
		if end > len(recs) {
			end = len(recs)
		}
		texts := make([]string, 0, end-start)
		for _, r := range recs[start:end] {
			texts = append(texts, r.TextForEmbedding)
		}
		batch, err := in.Embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed batch %d-%d: %w", start, end, err)
		}
		vecs = append(vecs, batch...)
		in.logger().Info("Embedded batch", zap.Int("from", start), zap.Int("to", end), zap.Int("total", len(recs)))
	}
	return vecs, nil
}

// IntentExamples embeds intent records. Each must carry metadata.intent.
func (in *Ingester) IntentExamples(ctx context.Context, recs []models.IngestRecord) ([]models.IntentExample, error) {
	for _, r := range recs {
		if label, _ := r.Metadata["intent"].(string); label == "" {
			return nil, fmt.Errorf("record %s has no metadata.intent", r.ChunkID)
		}
	}
	vecs, err := in.embedAll(ctx, recs)
	if err != nil {
		return nil, err
	}
	out := make([]models.IntentExample, len(recs))
	for i, r := range recs {
		out[i] = models.IntentExample{
			ChunkID:   r.ChunkID,
			Text:      r.TextForEmbedding,
			Intent:    r.Metadata["intent"].(string),
			Embedding: vecs[i],
		}
	}
	return out, nil
}

// HotelFacts embeds fact records.
func (in *Ingester) HotelFacts(ctx context.Context, recs []models.IngestRecord) ([]models.HotelFact, error) {
	vecs, err := in.embedAll(ctx, recs)
	if err != nil {
		return nil, err
	}
	out := make([]models.HotelFact, len(recs))
	for i, r := range recs {
		out[i] = models.HotelFact{
			ChunkID:   r.ChunkID,
			Text:      r.TextForEmbedding,
			Metadata:  r.Metadata,
			Embedding: vecs[i],
		}
	}
	return out, nil
}

// IngestIntents embeds recs and replaces the stored intent examples.
func (in *Ingester) IngestIntents(ctx context.Context, recs []models.IngestRecord) (int, error) {
	examples, err := in.IntentExamples(ctx, recs)
	if err != nil {
		return 0, err
	}
	if err := in.Repo.ReplaceIntentExamples(ctx, examples); err != nil {
		return 0, err
	}
	return len(examples), nil
}

// IngestFacts embeds recs and replaces the stored hotel facts.
func (in *Ingester) IngestFacts(ctx context.Context, recs []models.IngestRecord) (int, error) {
	facts, err := in.HotelFacts(ctx, recs)
	if err != nil {
		return 0, err
	}
	if err := in.Repo.ReplaceHotelFacts(ctx, facts); err != nil {
		return 0, err
	}
	return len(facts), nil
}
