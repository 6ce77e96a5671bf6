package service

import (
	"context"
	"errors"
	"log"
	"sync"

	"clausecheck-backend/models"
)

var ErrNoEmbeddingProvider = errors.New("no embedding provider configured")

// VectorCache owns embedding vectors for requirements and clauses. Vectors
// are generated on demand through the injected provider and cached by the
// entity's stable identifier. Safe for concurrent use; generation is a pure
// function of text, so concurrent first-writes of the same key are
// idempotent and last-write-wins.
type VectorCache struct {
	mu       sync.RWMutex
	provider EmbeddingProvider
	vectors  map[string][]float64
}

// NewVectorCache creates a vector cache backed by the given provider.
// A nil provider is allowed; lookups then only succeed for entities that
// already carry a vector.
func NewVectorCache(provider EmbeddingProvider) *VectorCache {
	return &VectorCache{
		provider: provider,
		vectors:  make(map[string][]float64),
	}
}

// RequirementEmbedding returns the embedding for a requirement, generating
// and caching it on first use. The vector is also attached to the
// requirement object so repeat matches skip the cache lookup.
func (c *VectorCache) RequirementEmbedding(ctx context.Context, req *models.RegulatoryRequirement) ([]float64, error) {
	if len(req.Embedding) > 0 {
		return req.Embedding, nil
	}

	key := "req:" + req.RequirementID
	if vec, ok := c.get(key); ok {
		req.Embedding = vec
		return vec, nil
	}

	vec, err := c.generate(ctx, key, req.EmbeddingText())
	if err != nil {
		return nil, err
	}
	req.Embedding = vec
	return vec, nil
}

// ClauseEmbedding returns the embedding for a clause, generating one from
// the raw clause text when the upstream NLP step did not attach a vector.
func (c *VectorCache) ClauseEmbedding(ctx context.Context, clause *models.ClauseAnalysis) ([]float64, error) {
	if len(clause.Embedding) > 0 {
		return clause.Embedding, nil
	}

	key := "clause:" + clause.ClauseID
	if vec, ok := c.get(key); ok {
		return vec, nil
	}
	return c.generate(ctx, key, clause.ClauseText)
}

// PrecomputeRequirements generates and caches embeddings for a list of
// requirements in one batch call. When the batch call fails, generation
// falls back to per-requirement calls; a requirement that still fails is
// skipped and logged, never fatal to the batch.
func (c *VectorCache) PrecomputeRequirements(ctx context.Context, reqs []*models.RegulatoryRequirement) error {
	if c.provider == nil {
		return ErrNoEmbeddingProvider
	}

	pending := make([]*models.RegulatoryRequirement, 0, len(reqs))
	texts := make([]string, 0, len(reqs))
	for _, req := range reqs {
		if len(req.Embedding) > 0 {
			c.put("req:"+req.RequirementID, req.Embedding)
			continue
		}
		pending = append(pending, req)
		texts = append(texts, req.EmbeddingText())
	}
	if len(pending) == 0 {
		return nil
	}

	vectors, err := c.provider.GenerateEmbeddings(ctx, texts)
	if err == nil {
		for i, req := range pending {
			req.Embedding = vectors[i]
			c.put("req:"+req.RequirementID, vectors[i])
		}
		log.Printf("Precomputed %d requirement embeddings", len(pending))
		return nil
	}

	log.Printf("Batch embedding failed, falling back to individual generation: %v", err)
	for _, req := range pending {
		if _, genErr := c.RequirementEmbedding(ctx, req); genErr != nil {
			log.Printf("Skipping embedding for %s: %v", req.RequirementID, genErr)
		}
	}
	return nil
}

// Clear wipes the cache. Used when the embedding provider or its model
// changes, since cached vectors from different models are not comparable.
func (c *VectorCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vectors = make(map[string][]float64)
	log.Println("Embedding cache cleared")
}

// Len returns the number of cached vectors.
func (c *VectorCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.vectors)
}

func (c *VectorCache) get(key string) ([]float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	vec, ok := c.vectors[key]
	return vec, ok
}

func (c *VectorCache) put(key string, vec []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vectors[key] = vec
}

func (c *VectorCache) generate(ctx context.Context, key, text string) ([]float64, error) {
	if c.provider == nil {
		return nil, ErrNoEmbeddingProvider
	}
	vec, err := c.provider.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}
	c.put(key, vec)
	return vec, nil
}
