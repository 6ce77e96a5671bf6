package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/generative-ai-go/genai"
)

// EmbeddingProvider generates embedding vectors for free text. Batch
// generation exists to amortize API overhead; implementations may fail
// per-text without failing the whole batch at the caller's level.
type EmbeddingProvider interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float64, error)
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float64, error)
}

const (
	defaultEmbeddingModel = "gemini-embedding-001"
	maxRetries            = 3
	initialBackoff        = time.Second
)

var ErrEmbeddingFailed = errors.New("failed to generate embedding")

// GeminiEmbedder implements EmbeddingProvider on top of the Gemini
// embedding API. Transient failures are retried with exponential backoff;
// anything still failing after maxRetries surfaces as an error.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

// NewGeminiEmbedder creates an embedder using the given Gemini client.
// An empty model name selects the default embedding model.
func NewGeminiEmbedder(client *genai.Client, model string) *GeminiEmbedder {
	if model == "" {
		model = defaultEmbeddingModel
	}
	return &GeminiEmbedder{client: client, model: model}
}

// GenerateEmbedding returns the embedding vector for a single text.
func (e *GeminiEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float64, error) {
	em := e.client.EmbeddingModel(e.model)

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * initialBackoff
			log.Printf("Embedding attempt %d failed, retrying in %v: %v", attempt, backoff, lastErr)
			time.Sleep(backoff)
		}

		res, err := em.EmbedContent(ctx, genai.Text(text))
		if err != nil {
			lastErr = err
			continue
		}
		if res.Embedding == nil || len(res.Embedding.Values) == 0 {
			lastErr = errors.New("empty embedding in response")
			continue
		}
		return toFloat64(res.Embedding.Values), nil
	}

	return nil, fmt.Errorf("%w after %d attempts: %v", ErrEmbeddingFailed, maxRetries, lastErr)
}

// GenerateEmbeddings returns embedding vectors for a batch of texts using
// the batch endpoint. The result preserves input order.
func (e *GeminiEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	em := e.client.EmbeddingModel(e.model)
	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * initialBackoff
			log.Printf("Batch embedding attempt %d failed, retrying in %v: %v", attempt, backoff, lastErr)
			time.Sleep(backoff)
		}

		res, err := em.BatchEmbedContents(ctx, batch)
		if err != nil {
			lastErr = err
			continue
		}
		if len(res.Embeddings) != len(texts) {
			lastErr = fmt.Errorf("expected %d embeddings, got %d", len(texts), len(res.Embeddings))
			continue
		}

		vectors := make([][]float64, len(res.Embeddings))
		for i, emb := range res.Embeddings {
			if emb == nil || len(emb.Values) == 0 {
				lastErr = fmt.Errorf("empty embedding at index %d", i)
				vectors = nil
				break
			}
			vectors[i] = toFloat64(emb.Values)
		}
		if vectors != nil {
			return vectors, nil
		}
	}

	return nil, fmt.Errorf("%w after %d attempts: %v", ErrEmbeddingFailed, maxRetries, lastErr)
}

func toFloat64(values []float32) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}
