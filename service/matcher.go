package service

import (
	"context"
	"errors"
	"log"
	"math"
	"sort"

	"clausecheck-backend/models"
)

// DefaultMatchTopK is the number of candidates returned for single-clause
// status assignment.
const DefaultMatchTopK = 3

var (
	ErrUnknownFramework = errors.New("unknown framework")
	ErrInvalidThreshold = errors.New("similarity threshold must be between 0.0 and 1.0")
)

// RequirementMatcher ranks regulatory requirements against an analyzed
// clause by embedding similarity, with a clause-type prefilter.
type RequirementMatcher struct {
	index *RequirementIndex
	cache *VectorCache
}

// NewRequirementMatcher creates a matcher over the given index and cache.
func NewRequirementMatcher(index *RequirementIndex, cache *VectorCache) *RequirementMatcher {
	return &RequirementMatcher{index: index, cache: cache}
}

// Match returns up to topK requirements whose similarity to the clause is
// at least threshold, sorted by similarity descending. Candidates are first
// narrowed to the clause's type; when the framework has no requirements
// under that type the search widens to the whole framework. A clause
// without an embedding matches nothing. An unknown framework or a threshold
// outside [0,1] is a configuration error.
func (m *RequirementMatcher) Match(
	ctx context.Context,
	clause *models.ClauseAnalysis,
	framework models.Framework,
	topK int,
	threshold float64,
) ([]models.Match, error) {
	if threshold < 0.0 || threshold > 1.0 {
		return nil, ErrInvalidThreshold
	}
	if !m.index.HasFramework(framework) {
		return nil, ErrUnknownFramework
	}
	if topK <= 0 {
		topK = DefaultMatchTopK
	}

	candidates := m.index.RequirementsByClauseType(clause.ClauseType, framework)
	if len(candidates) == 0 {
		// The candidate pool widens from one clause-type bucket to the whole
		// framework, which materially changes what can match.
		log.Printf(
			"No %s requirements for clause type %q, falling back to full framework search (available types: %v)",
			framework, clause.ClauseType, m.index.AvailableClauseTypes(framework),
		)
		candidates = m.index.Requirements(framework)
	}
	if len(candidates) == 0 {
		log.Printf("No requirements found for %s", framework)
		return nil, nil
	}

	if len(clause.Embedding) == 0 {
		log.Printf("Clause %s has no embeddings, skipping match", clause.ClauseID)
		return nil, nil
	}

	var matches []models.Match
	var maxSim, sumSim float64
	scored := 0
	for _, req := range candidates {
		reqEmbedding, err := m.cache.RequirementEmbedding(ctx, req)
		if err != nil {
			log.Printf("Error generating embedding for %s: %v", req.RequirementID, err)
			continue
		}

		similarity := CosineSimilarity(clause.Embedding, reqEmbedding)
		scored++
		sumSim += similarity
		if similarity > maxSim {
			maxSim = similarity
		}
		if similarity >= threshold {
			matches = append(matches, models.Match{Requirement: req, Similarity: similarity})
		}
	}

	if scored > 0 {
		log.Printf(
			"Clause %s vs %s: max similarity %.4f, avg %.4f, %d/%d above threshold %.2f",
			clause.ClauseID, framework, maxSim, sumSim/float64(scored), len(matches), scored, threshold,
		)
		if len(matches) == 0 {
			log.Printf("No matches above threshold for clause %s; best similarity was %.4f", clause.ClauseID, maxSim)
		}
	}

	// Equal similarities order by requirement id so rankings stay stable
	// across catalog reorderings.
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].Requirement.RequirementID < matches[j].Requirement.RequirementID
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// CosineSimilarity computes the cosine similarity of two vectors, clamped
// to [0,1]. Negative cosines floor to zero: unrelated and opposite vectors
// are treated the same. A small epsilon keeps zero vectors from dividing
// by zero.
func CosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for _, v := range a {
		normA += v * v
	}
	for _, v := range b {
		normB += v * v
	}
	normA = math.Sqrt(normA) + 1e-10
	normB = math.Sqrt(normB) + 1e-10

	for i := 0; i < n; i++ {
		dot += (a[i] / normA) * (b[i] / normB)
	}

	return math.Max(0.0, math.Min(1.0, dot))
}
