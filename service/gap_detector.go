package service

import (
	"context"
	"log"

	"clausecheck-backend/models"
)

// DefaultCoverageTopK is how many matches each clause contributes to the
// covered set during gap detection. Wider than the single-best-match used
// for status assignment, to reduce false "missing" findings.
const DefaultCoverageTopK = 5

// GapDetector finds mandatory requirements that no clause in a document
// satisfies.
type GapDetector struct {
	index        *RequirementIndex
	matcher      *RequirementMatcher
	coverageTopK int
}

// NewGapDetector creates a gap detector. coverageTopK <= 0 selects the
// default.
func NewGapDetector(index *RequirementIndex, matcher *RequirementMatcher, coverageTopK int) *GapDetector {
	if coverageTopK <= 0 {
		coverageTopK = DefaultCoverageTopK
	}
	return &GapDetector{index: index, matcher: matcher, coverageTopK: coverageTopK}
}

// FindMissing returns the framework's mandatory requirements not covered by
// any clause, in catalog order. A requirement counts as covered when it
// appears in any clause's top matches above the similarity threshold.
func (d *GapDetector) FindMissing(
	ctx context.Context,
	clauses []*models.ClauseAnalysis,
	framework models.Framework,
	threshold float64,
) ([]*models.RegulatoryRequirement, error) {
	if threshold < 0.0 || threshold > 1.0 {
		return nil, ErrInvalidThreshold
	}
	if !d.index.HasFramework(framework) {
		return nil, ErrUnknownFramework
	}

	covered := make(map[string]struct{})
	for _, clause := range clauses {
		matches, err := d.matcher.Match(ctx, clause, framework, d.coverageTopK, threshold)
		if err != nil {
			return nil, err
		}
		for _, match := range matches {
			covered[match.Requirement.RequirementID] = struct{}{}
		}
	}

	var missing []*models.RegulatoryRequirement
	for _, req := range d.index.Requirements(framework) {
		if !req.Mandatory {
			continue
		}
		if _, ok := covered[req.RequirementID]; !ok {
			missing = append(missing, req)
		}
	}

	log.Printf("Found %d missing mandatory requirements for %s", len(missing), framework)
	return missing, nil
}
