package service

import (
	"context"
	"errors"
	"testing"

	"clausecheck-backend/models"

	"github.com/google/go-cmp/cmp"
)

func missingIDs(missing []*models.RegulatoryRequirement) []string {
	ids := make([]string, len(missing))
	for i, req := range missing {
		ids[i] = req.RequirementID
	}
	return ids
}

func TestFindMissing(t *testing.T) {
	index := matchingTestIndex()
	detector := NewGapDetector(index, NewRequirementMatcher(index, NewVectorCache(nil)), 0)

	// One clause covering GDPR_01..03; GDPR_04 and GDPR_05 are orthogonal
	// and stay below the threshold
	clauses := []*models.ClauseAnalysis{
		{ClauseID: "c1", Embedding: unit(1)},
	}

	missing, err := detector.FindMissing(context.Background(), clauses, models.FrameworkGDPR, 0.5)
	if err != nil {
		t.Fatalf("FindMissing() error = %v", err)
	}

	// Catalog order, not similarity order
	want := []string{"GDPR_04", "GDPR_05"}
	if diff := cmp.Diff(want, missingIDs(missing)); diff != "" {
		t.Errorf("missing requirements mismatch (-want +got):\n%s", diff)
	}
}

func TestFindMissingIgnoresClauseOrder(t *testing.T) {
	index := matchingTestIndex()
	detector := NewGapDetector(index, NewRequirementMatcher(index, NewVectorCache(nil)), 0)

	forward := []*models.ClauseAnalysis{
		{ClauseID: "c1", Embedding: unit(1)},
		{ClauseID: "c2", Embedding: unit(0, 1)},
	}
	reversed := []*models.ClauseAnalysis{
		{ClauseID: "c2", Embedding: unit(0, 1)},
		{ClauseID: "c1", Embedding: unit(1)},
	}

	a, err := detector.FindMissing(context.Background(), forward, models.FrameworkGDPR, 0.5)
	if err != nil {
		t.Fatalf("FindMissing() error = %v", err)
	}
	b, err := detector.FindMissing(context.Background(), reversed, models.FrameworkGDPR, 0.5)
	if err != nil {
		t.Fatalf("FindMissing() error = %v", err)
	}

	if diff := cmp.Diff(missingIDs(a), missingIDs(b)); diff != "" {
		t.Errorf("clause order changed the gap report (-forward +reversed):\n%s", diff)
	}
}

func TestFindMissingSkipsOptionalRequirements(t *testing.T) {
	catalog := map[models.Framework][]*models.RegulatoryRequirement{
		models.FrameworkGDPR: {
			testRequirement("GDPR_M", models.FrameworkGDPR, "General", true, models.RiskHigh, unit(0, 1)),
			testRequirement("GDPR_O", models.FrameworkGDPR, "General", false, models.RiskLow, unit(0, 0, 1)),
		},
	}
	index := NewRequirementIndex(catalog)
	detector := NewGapDetector(index, NewRequirementMatcher(index, NewVectorCache(nil)), 0)

	clauses := []*models.ClauseAnalysis{{ClauseID: "c1", Embedding: unit(1)}}
	missing, err := detector.FindMissing(context.Background(), clauses, models.FrameworkGDPR, 0.5)
	if err != nil {
		t.Fatalf("FindMissing() error = %v", err)
	}

	want := []string{"GDPR_M"}
	if diff := cmp.Diff(want, missingIDs(missing)); diff != "" {
		t.Errorf("only mandatory requirements belong in the gap report (-want +got):\n%s", diff)
	}
}

func TestFindMissingNoClauses(t *testing.T) {
	index := matchingTestIndex()
	detector := NewGapDetector(index, NewRequirementMatcher(index, NewVectorCache(nil)), 0)

	missing, err := detector.FindMissing(context.Background(), nil, models.FrameworkGDPR, 0.5)
	if err != nil {
		t.Fatalf("FindMissing() error = %v", err)
	}

	// Every mandatory requirement is uncovered
	if len(missing) != 5 {
		t.Errorf("missing = %d requirements, want 5", len(missing))
	}
}

func TestFindMissingValidation(t *testing.T) {
	index := matchingTestIndex()
	detector := NewGapDetector(index, NewRequirementMatcher(index, NewVectorCache(nil)), 0)

	if _, err := detector.FindMissing(context.Background(), nil, models.FrameworkGDPR, 1.5); !errors.Is(err, ErrInvalidThreshold) {
		t.Errorf("threshold 1.5: got %v, want ErrInvalidThreshold", err)
	}
	if _, err := detector.FindMissing(context.Background(), nil, models.FrameworkSOX, 0.5); !errors.Is(err, ErrUnknownFramework) {
		t.Errorf("missing framework: got %v, want ErrUnknownFramework", err)
	}
}
