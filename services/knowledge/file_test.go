package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const factsJSONL = `{"chunk_id":"f1","text_for_embedding":"Havuz 08:00-20:00 arası açıktır.","metadata":{"source_document":"genel"}}
`

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	in := &Ingester{Embedder: &countingEmbedder{}, Repo: repo}

	require.NoError(t, in.Seed(ctx, writeTemp(t, "intents.jsonl", intentsJSONL), writeTemp(t, "facts.jsonl", factsJSONL)))

	examples, err := repo.IntentExamples(ctx)
	require.NoError(t, err)
	assert.Len(t, examples, 3)
	facts, err := repo.HotelFacts(ctx)
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, "genel", facts[0].Metadata["source_document"])
}

func TestSeedSkipsEmptyPaths(t *testing.T) {
	emb := &countingEmbedder{}
	in := &Ingester{Embedder: emb, Repo: NewMemoryRepo()}
	require.NoError(t, in.Seed(context.Background(), "", ""))
	assert.Empty(t, emb.batches)
}

func TestIngestFileErrors(t *testing.T) {
	ctx := context.Background()
	in := &Ingester{Embedder: &countingEmbedder{}, Repo: NewMemoryRepo()}

	_, err := in.IngestFile(ctx, Kind("users"), "x.jsonl")
	assert.ErrorContains(t, err, "unknown kind")

	_, err = in.IngestFile(ctx, KindFacts, filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.Error(t, err)

	// Fact records are not valid intent records.
	_, err = in.IngestFile(ctx, KindIntents, writeTemp(t, "facts.jsonl", factsJSONL))
	assert.ErrorContains(t, err, "metadata.intent")
}
