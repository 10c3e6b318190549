// Command ingest embeds a JSONL knowledge file and replaces the matching
// MongoDB collection.
//
//	go run ./cmd/ingest -kind intents -file data/intents.jsonl
//	go run ./cmd/ingest -kind facts -file data/hotel_facts.jsonl
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"concierge/config"
	"concierge/database"
	knowledgeRepo "concierge/database/repository/knowledge"
	ai "concierge/services/intelligence"
	"concierge/services/knowledge"
	"concierge/utils"

	"go.uber.org/zap"
)

func main() {
	kind := flag.String("kind", "", "collection to replace: intents or facts")
	file := flag.String("file", "", "path to the JSONL file")
	batch := flag.Int("batch", knowledge.DefaultBatchSize, "texts per embedding request")
	flag.Parse()

	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	if *kind == "" || *file == "" {
		flag.Usage()
		logger.Fatal("ingest: -kind and -file are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gemini, err := ai.NewGeminiClient(ctx, config.AppConfig.GeminiAPIKey, logger)
	if err != nil {
		logger.Fatal("ingest: failed to create gemini client", zap.Error(err))
	}
	defer gemini.Close()

	defer database.Disconnect(context.Background())
	in := &knowledge.Ingester{
		Embedder:  gemini.Embedder(config.AppConfig.EmbeddingModel, ai.DefaultRetry),
		Repo:      knowledgeRepo.NewMongoKnowledgeRepo(database.Database()),
		BatchSize: *batch,
		Logger:    logger,
	}

	n, err := in.IngestFile(ctx, knowledge.Kind(*kind), *file)
	if err != nil {
		logger.Fatal("ingest: failed", zap.Error(err))
	}
	logger.Info("ingest: done", zap.String("kind", *kind), zap.Int("records", n))
}
