package knowledge

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Kind names a knowledge collection that can be ingested from a file.
type Kind string

const (
	KindIntents Kind = "intents"
	KindFacts   Kind = "facts"
)

// IngestFile reads a JSONL file and replaces the collection named by kind.
func (in *Ingester) IngestFile(ctx context.Context, kind Kind, path string) (int, error) {
	if kind != KindIntents && kind != KindFacts {
		return 0, fmt.Errorf("unknown kind %q, want %q or %q", kind, KindIntents, KindFacts)
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	recs, err := ReadJSONL(f)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	in.logger().Info("Ingesting file", zap.String("kind", string(kind)), zap.String("path", path), zap.Int("records", len(recs)))

	if kind == KindIntents {
		return in.IngestIntents(ctx, recs)
	}
	return in.IngestFacts(ctx, recs)
}

// Seed ingests whichever of the two files is set.
func (in *Ingester) Seed(ctx context.Context, intentsPath, factsPath string) error {
	if intentsPath != "" {
		if _, err := in.IngestFile(ctx, KindIntents, intentsPath); err != nil {
			return err
		}
	}
	if factsPath != "" {
		if _, err := in.IngestFile(ctx, KindFacts, factsPath); err != nil {
			return err
		}
	}
	return nil
}
