// File: services/intelligence/geminiClient.go
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiClient wraps one genai client shared by the embedder and generator.
type GeminiClient struct {
	client *genai.Client
	logger *zap.Logger
}

func NewGeminiClient(ctx context.Context, apiKey string, logger *zap.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, logger: logger}, nil
}

func (g *GeminiClient) Close() error {
	return g.client.Close()
}

// GeminiEmbedder embeds text with a Gemini embedding model, retrying transient failures.
type GeminiEmbedder struct {
	model  *genai.EmbeddingModel
	name   string
	retry  RetryPolicy
	logger *zap.Logger
}

func (g *GeminiClient) Embedder(model string, retry RetryPolicy) *GeminiEmbedder {
	return &GeminiEmbedder{
		model:  g.client.EmbeddingModel(model),
		name:   model,
		retry:  retry,
		logger: g.logger,
	}
}

// Malformed responses are not retried.
var (
	errEmptyEmbedding = errors.New("gemini returned an empty embedding")
	errEmbeddingCount = errors.New("gemini returned a wrong number of embeddings")
)

// Name identifies the model, used to namespace cached vectors.
func (e *GeminiEmbedder) Name() string { return e.name }

func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var vec []float32
	err := withRetry(ctx, e.retry, e.logger, "embed", func() error {
		res, err := e.model.EmbedContent(ctx, genai.Text(text))
		if err != nil {
			return err
		}
		if res.Embedding == nil || len(res.Embedding.Values) == 0 {
			return errEmptyEmbedding
		}
		vec = res.Embedding.Values
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("gemini embed error: %w", err)
	}
	return vec, nil
}

func (e *GeminiEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := withRetry(ctx, e.retry, e.logger, "embed_batch", func() error {
		batch := e.model.NewBatch()
		for _, t := range texts {
			batch.AddContent(genai.Text(t))
		}
		res, err := e.model.BatchEmbedContents(ctx, batch)
		if err != nil {
			return err
		}
		if len(res.Embeddings) != len(texts) {
			return fmt.Errorf("%w: got %d for %d texts", errEmbeddingCount, len(res.Embeddings), len(texts))
		}
		out = make([][]float32, len(texts))
		for i, emb := range res.Embeddings {
			out[i] = emb.Values
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("gemini batch embed error: %w", err)
	}
	return out, nil
}

// GeminiGenerator answers with a Gemini text model.
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
	retry       RetryPolicy
	logger      *zap.Logger
}

func (g *GeminiClient) Generator(model string, temperature float32, maxTokens int32) *GeminiGenerator {
	return &GeminiGenerator{
		client:      g.client,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		retry:       RetryPolicy{Attempts: 3, MinWait: DefaultRetry.MinWait, MaxWait: 10 * DefaultRetry.MinWait},
		logger:      g.logger,
	}
}

func (g *GeminiGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	// GenerativeModel carries per-call settings, so build one per request.
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(g.temperature)
	model.SetMaxOutputTokens(g.maxTokens)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	var resp *genai.GenerateContentResponse
	err := withRetry(ctx, g.retry, g.logger, "generate", func() error {
		var err error
		resp, err = model.GenerateContent(ctx, genai.Text(prompt))
		return err
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
