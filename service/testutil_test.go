package service

import (
	"context"
	"errors"
	"math"

	"clausecheck-backend/models"
)

// stubProvider is a deterministic EmbeddingProvider for tests. Vectors are
// looked up by input text; unknown texts get a fixed unit vector.
type stubProvider struct {
	vectors     map[string][]float64
	failTexts   map[string]bool
	failBatch   bool
	singleCalls int
	batchCalls  int
}

func newStubProvider() *stubProvider {
	return &stubProvider{
		vectors:   make(map[string][]float64),
		failTexts: make(map[string]bool),
	}
}

func (p *stubProvider) GenerateEmbedding(ctx context.Context, text string) ([]float64, error) {
	p.singleCalls++
	if p.failTexts[text] {
		return nil, errors.New("stub embedding failure")
	}
	if vec, ok := p.vectors[text]; ok {
		return vec, nil
	}
	return []float64{1, 0, 0, 0, 0, 0}, nil
}

func (p *stubProvider) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float64, error) {
	p.batchCalls++
	if p.failBatch {
		return nil, errors.New("stub batch failure")
	}
	out := make([][]float64, len(texts))
	for i, text := range texts {
		if vec, ok := p.vectors[text]; ok {
			out[i] = vec
			continue
		}
		out[i] = []float64{1, 0, 0, 0, 0, 0}
	}
	return out, nil
}

// unit returns a six-dimensional vector with the given components,
// normalized to unit length so cosine similarities are predictable.
func unit(components ...float64) []float64 {
	vec := make([]float64, 6)
	copy(vec, components)
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

func testRequirement(id string, framework models.Framework, clauseType string, mandatory bool, risk models.RiskLevel, embedding []float64) *models.RegulatoryRequirement {
	return &models.RegulatoryRequirement{
		RequirementID:    id,
		Framework:        framework,
		ArticleReference: "Article " + id,
		ClauseType:       clauseType,
		Description:      "Requirement " + id,
		Mandatory:        mandatory,
		Keywords:         []string{"keyword-" + id},
		RiskLevel:        risk,
		Embedding:        embedding,
	}
}

// matchingTestIndex builds a GDPR catalog whose embeddings are axis-aligned
// against a clause embedded at unit(1): similarities come out near 1.0, 0.8,
// 0.6, 0.0 and 0.0 for the five requirements in catalog order.
func matchingTestIndex() *RequirementIndex {
	catalog := map[models.Framework][]*models.RegulatoryRequirement{
		models.FrameworkGDPR: {
			testRequirement("GDPR_01", models.FrameworkGDPR, "Data Processing", true, models.RiskHigh, unit(1)),
			testRequirement("GDPR_02", models.FrameworkGDPR, "Data Processing", true, models.RiskHigh, unit(0.8, 0.6)),
			testRequirement("GDPR_03", models.FrameworkGDPR, "Breach Notification", true, models.RiskMedium, unit(0.6, 0.8)),
			testRequirement("GDPR_04", models.FrameworkGDPR, "Breach Notification", true, models.RiskHigh, unit(0, 1)),
			testRequirement("GDPR_05", models.FrameworkGDPR, "Data Transfer", true, models.RiskLow, unit(0, 0, 1)),
		},
	}
	return NewRequirementIndex(catalog)
}

func matchIDs(matches []models.Match) []string {
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.Requirement.RequirementID
	}
	return ids
}
