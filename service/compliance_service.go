package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"clausecheck-backend/models"
	"clausecheck-backend/repository"
	"clausecheck-backend/storage"

	"github.com/google/uuid"
)

// Default matching configuration. The similarity threshold is deliberately
// permissive; sentence embeddings of legal prose rarely exceed 0.5 against
// requirement descriptions.
const (
	DefaultSimilarityThreshold = 0.20

	// Verdict bands over the top match's similarity
	compliantSimilarity = 0.75
	partialSimilarity   = 0.50
)

var (
	ErrNoFrameworks = errors.New("no frameworks selected")
	ErrNoIndex      = errors.New("requirement index not set")
)

// ComplianceService orchestrates a full document evaluation: clause
// preparation, requirement matching, verdict assignment, gap detection,
// scoring, and report persistence/export/notification. Evaluation runs
// sequentially within the caller's goroutine; the vector cache is the only
// state shared between concurrent document evaluations.
type ComplianceService struct {
	index      *RequirementIndex
	cache      *VectorCache
	matcher    *RequirementMatcher
	gaps       *GapDetector
	scorer     *ComplianceScorer
	classifier Classifier

	reportRepo    *repository.ReportRepository
	reportStorage storage.Storage
	notifier      *SlackNotifier

	similarityThreshold float64
	matchTopK           int
	coverageTopK        int
}

// ComplianceServiceOption is a functional option for ComplianceService
type ComplianceServiceOption func(*ComplianceService)

// WithRequirementIndex sets the requirement index
func WithRequirementIndex(index *RequirementIndex) ComplianceServiceOption {
	return func(s *ComplianceService) {
		s.index = index
	}
}

// WithVectorCache sets the vector cache
func WithVectorCache(cache *VectorCache) ComplianceServiceOption {
	return func(s *ComplianceService) {
		s.cache = cache
	}
}

// WithClassifier sets the clause-type classifier used to backfill clause
// types the upstream NLP step left empty
func WithClassifier(classifier Classifier) ComplianceServiceOption {
	return func(s *ComplianceService) {
		s.classifier = classifier
	}
}

// WithReportRepository enables report persistence
func WithReportRepository(repo *repository.ReportRepository) ComplianceServiceOption {
	return func(s *ComplianceService) {
		s.reportRepo = repo
	}
}

// WithReportStorage enables report artifact export
func WithReportStorage(store storage.Storage) ComplianceServiceOption {
	return func(s *ComplianceService) {
		s.reportStorage = store
	}
}

// WithNotifier enables Slack notifications for finished reports
func WithNotifier(notifier *SlackNotifier) ComplianceServiceOption {
	return func(s *ComplianceService) {
		s.notifier = notifier
	}
}

// WithSimilarityThreshold overrides the default similarity threshold
func WithSimilarityThreshold(threshold float64) ComplianceServiceOption {
	return func(s *ComplianceService) {
		s.similarityThreshold = threshold
	}
}

// WithMatchTopK overrides how many candidates feed verdict assignment
func WithMatchTopK(topK int) ComplianceServiceOption {
	return func(s *ComplianceService) {
		s.matchTopK = topK
	}
}

// WithCoverageTopK overrides how many matches per clause count toward
// requirement coverage during gap detection
func WithCoverageTopK(topK int) ComplianceServiceOption {
	return func(s *ComplianceService) {
		s.coverageTopK = topK
	}
}

// NewComplianceService creates a compliance service. A requirement index
// and vector cache are required; persistence, export and notification are
// optional collaborators.
func NewComplianceService(opts ...ComplianceServiceOption) (*ComplianceService, error) {
	s := &ComplianceService{
		similarityThreshold: DefaultSimilarityThreshold,
		matchTopK:           DefaultMatchTopK,
		coverageTopK:        DefaultCoverageTopK,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.index == nil {
		return nil, ErrNoIndex
	}
	if s.cache == nil {
		s.cache = NewVectorCache(nil)
	}
	if s.similarityThreshold < 0.0 || s.similarityThreshold > 1.0 {
		return nil, ErrInvalidThreshold
	}

	s.matcher = NewRequirementMatcher(s.index, s.cache)
	s.gaps = NewGapDetector(s.index, s.matcher, s.coverageTopK)
	s.scorer = NewComplianceScorer()
	return s, nil
}

// Matcher exposes the underlying requirement matcher
func (s *ComplianceService) Matcher() *RequirementMatcher {
	return s.matcher
}

// Scorer exposes the underlying compliance scorer
func (s *ComplianceService) Scorer() *ComplianceScorer {
	return s.scorer
}

// Index exposes the underlying requirement index
func (s *ComplianceService) Index() *RequirementIndex {
	return s.index
}

// SimilarityThreshold returns the configured matching threshold
func (s *ComplianceService) SimilarityThreshold() float64 {
	return s.similarityThreshold
}

// EvaluateDocument runs the full evaluation of a document's clauses against
// the selected frameworks and returns the compliance report. Persistence,
// export and notification failures are logged, not fatal: a finished
// evaluation is always returned to the caller.
func (s *ComplianceService) EvaluateDocument(
	ctx context.Context,
	documentID string,
	clauses []*models.ClauseAnalysis,
	frameworks []models.Framework,
) (*models.ComplianceReport, error) {
	if len(frameworks) == 0 {
		return nil, ErrNoFrameworks
	}
	for _, framework := range frameworks {
		if !s.index.HasFramework(framework) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownFramework, framework)
		}
	}

	s.prepareClauses(ctx, clauses)

	var results []models.ClauseComplianceResult
	var missing []*models.RegulatoryRequirement

	for _, framework := range frameworks {
		for _, clause := range clauses {
			matches, err := s.matcher.Match(ctx, clause, framework, s.matchTopK, s.similarityThreshold)
			if err != nil {
				return nil, err
			}
			results = append(results, assignVerdict(clause, framework, matches))
		}

		frameworkMissing, err := s.gaps.FindMissing(ctx, clauses, framework, s.similarityThreshold)
		if err != nil {
			return nil, err
		}
		missing = append(missing, frameworkMissing...)
	}

	report := s.scorer.GenerateReport(documentID, frameworks, results, missing)

	s.persistReport(ctx, report)
	if s.notifier != nil && (len(report.MissingRequirements) > 0 || len(report.HighRiskItems) > 0) {
		if err := s.notifier.NotifyReport(ctx, report); err != nil {
			log.Printf("Warning: failed to send report notification: %v", err)
		}
	}

	return report, nil
}

// prepareClauses backfills missing clause types via the classifier and
// missing embeddings via the vector cache. A clause that still has no
// embedding afterwards simply matches nothing downstream.
func (s *ComplianceService) prepareClauses(ctx context.Context, clauses []*models.ClauseAnalysis) {
	for _, clause := range clauses {
		if clause.ClauseType == "" && s.classifier != nil {
			clauseType, confidence := s.classifier.Classify(clause.ClauseText)
			if clauseType != "" {
				log.Printf("Classified clause %s as %q (confidence %.2f)", clause.ClauseID, clauseType, confidence)
				clause.ClauseType = clauseType
			}
		}

		if len(clause.Embedding) == 0 && clause.ClauseText != "" {
			vec, err := s.cache.ClauseEmbedding(ctx, clause)
			if err != nil {
				log.Printf("Could not generate embedding for clause %s: %v", clause.ClauseID, err)
				continue
			}
			clause.Embedding = vec
		}
	}
}

func (s *ComplianceService) persistReport(ctx context.Context, report *models.ComplianceReport) {
	if s.reportRepo == nil && s.reportStorage == nil {
		return
	}

	if s.reportRepo != nil {
		id, err := s.reportRepo.Create(ctx, report)
		if err != nil {
			log.Printf("Warning: failed to persist report for %s: %v", report.DocumentID, err)
		} else if s.reportStorage != nil {
			s.exportReport(ctx, id.String(), report)
			return
		}
	}

	if s.reportRepo == nil && s.reportStorage != nil {
		// No database id available; export under a fresh one
		s.exportReport(ctx, "", report)
	}
}

func (s *ComplianceService) exportReport(ctx context.Context, id string, report *models.ComplianceReport) {
	payload, err := json.Marshal(report)
	if err != nil {
		log.Printf("Warning: failed to marshal report for export: %v", err)
		return
	}

	reportID := parseOrNewUUID(id)
	path, err := s.reportStorage.Upload(ctx, reportID, report.DocumentID, bytes.NewReader(payload))
	if err != nil {
		log.Printf("Warning: failed to export report for %s: %v", report.DocumentID, err)
		return
	}
	log.Printf("Exported report for %s to %s", report.DocumentID, path)
}

func parseOrNewUUID(s string) uuid.UUID {
	if id, err := uuid.Parse(s); err == nil {
		return id
	}
	return uuid.New()
}

// assignVerdict converts a clause's ranked matches into a compliance
// verdict. No match above threshold means the clause is Not Applicable;
// otherwise the top match's similarity picks the band and doubles as the
// verdict confidence.
func assignVerdict(
	clause *models.ClauseAnalysis,
	framework models.Framework,
	matches []models.Match,
) models.ClauseComplianceResult {
	result := models.ClauseComplianceResult{
		ClauseID:   clause.ClauseID,
		Framework:  framework,
		ClauseType: clause.ClauseType,
	}

	if len(matches) == 0 {
		result.ComplianceStatus = models.StatusNotApplicable
		result.RiskLevel = models.RiskLow
		result.Issues = []string{"No matching requirements found above similarity threshold"}
		return result
	}

	top := matches[0]
	result.Confidence = top.Similarity
	result.RiskLevel = top.Requirement.RiskLevel
	result.MatchedRequirement = top.Requirement.RequirementID

	switch {
	case top.Similarity >= compliantSimilarity:
		result.ComplianceStatus = models.StatusCompliant
	case top.Similarity >= partialSimilarity:
		result.ComplianceStatus = models.StatusPartial
		result.Issues = []string{fmt.Sprintf(
			"Partially addresses %s (%s); review against: %s",
			top.Requirement.RequirementID, top.Requirement.ArticleReference, top.Requirement.Description,
		)}
	default:
		result.ComplianceStatus = models.StatusNonCompliant
		result.Issues = []string{fmt.Sprintf(
			"Weak coverage of %s (%s); clause likely does not satisfy the obligation",
			top.Requirement.RequirementID, top.Requirement.ArticleReference,
		)}
	}
	return result
}
