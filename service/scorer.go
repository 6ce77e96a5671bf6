package service

import (
	"log"
	"math"
	"sort"

	"clausecheck-backend/models"
)

// Scoring weights. Compliant clauses earn full credit, partially compliant
// clauses 70%, non-compliant clauses none. Each missing mandatory
// requirement costs 0.15 points, capped at 10 so gaps alone cannot zero
// the score.
const (
	partialCredit      = 0.70
	missingPenaltyStep = 0.15
	missingPenaltyCap  = 10.0
)

// ComplianceScorer converts clause verdicts and the gap list into an
// overall score, summary statistics, and a priority-ordered issue list.
// It is a pure function family over its inputs; it keeps no state.
type ComplianceScorer struct{}

// NewComplianceScorer creates a scorer.
func NewComplianceScorer() *ComplianceScorer {
	return &ComplianceScorer{}
}

// CalculateOverallScore computes the 0-100 compliance score. Not Applicable
// results are excluded from the denominator; a document where nothing was
// actually checked scores zero, not one hundred.
func (s *ComplianceScorer) CalculateOverallScore(
	results []models.ClauseComplianceResult,
	missing []*models.RegulatoryRequirement,
) float64 {
	if len(results) == 0 && len(missing) == 0 {
		log.Println("No results or missing requirements to score")
		return 0.0
	}

	var compliant, partial, nonCompliant, notApplicable int
	for _, r := range results {
		switch r.ComplianceStatus {
		case models.StatusCompliant:
			compliant++
		case models.StatusPartial:
			partial++
		case models.StatusNonCompliant:
			nonCompliant++
		default:
			notApplicable++
		}
	}

	scorable := compliant + partial + nonCompliant

	var baseScore float64
	if scorable == 0 {
		// All clauses Not Applicable means no requirement matched anything.
		baseScore = 0.0
		log.Printf("No scorable clauses: all %d results are Not Applicable", len(results))
	} else {
		baseScore = (float64(compliant)*1.0 + float64(partial)*partialCredit) / float64(scorable) * 100
	}

	mandatoryMissing := 0
	for _, req := range missing {
		if req.Mandatory {
			mandatoryMissing++
		}
	}

	penalty := math.Min(float64(mandatoryMissing)*missingPenaltyStep, missingPenaltyCap)
	finalScore := math.Max(0.0, baseScore-penalty)

	log.Printf(
		"Compliance score: %d compliant, %d partial, %d non-compliant, %d not applicable, %d missing mandatory -> base %.2f, penalty %.2f, final %.2f",
		compliant, partial, nonCompliant, notApplicable, mandatoryMissing, baseScore, penalty, finalScore,
	)

	return round2(finalScore)
}

// FrameworkScore computes the score restricted to one framework's results
// and missing requirements.
func (s *ComplianceScorer) FrameworkScore(
	results []models.ClauseComplianceResult,
	framework models.Framework,
	missing []*models.RegulatoryRequirement,
) float64 {
	var frameworkResults []models.ClauseComplianceResult
	for _, r := range results {
		if r.Framework == framework {
			frameworkResults = append(frameworkResults, r)
		}
	}

	var frameworkMissing []*models.RegulatoryRequirement
	for _, req := range missing {
		if req.Framework == framework {
			frameworkMissing = append(frameworkMissing, req)
		}
	}

	return s.CalculateOverallScore(frameworkResults, frameworkMissing)
}

// GenerateSummary counts results by status and by risk level.
func (s *ComplianceScorer) GenerateSummary(results []models.ClauseComplianceResult) models.ComplianceSummary {
	summary := models.ComplianceSummary{TotalClauses: len(results)}
	for _, r := range results {
		switch r.ComplianceStatus {
		case models.StatusCompliant:
			summary.CompliantClauses++
		case models.StatusNonCompliant:
			summary.NonCompliantClauses++
		case models.StatusPartial:
			summary.PartialClauses++
		}
		switch r.RiskLevel {
		case models.RiskHigh:
			summary.HighRiskCount++
		case models.RiskMedium:
			summary.MediumRiskCount++
		case models.RiskLow:
			summary.LowRiskCount++
		}
	}
	return summary
}

// IdentifyHighRiskItems returns all high-risk results sorted by ascending
// confidence: the least certain verdicts need attention first.
func (s *ComplianceScorer) IdentifyHighRiskItems(results []models.ClauseComplianceResult) []models.ClauseComplianceResult {
	var highRisk []models.ClauseComplianceResult
	for _, r := range results {
		if r.RiskLevel == models.RiskHigh {
			highRisk = append(highRisk, r)
		}
	}
	sort.SliceStable(highRisk, func(i, j int) bool {
		return highRisk[i].Confidence < highRisk[j].Confidence
	})
	return highRisk
}

// GetPriorityIssues returns the topN results ordered by highest risk, then
// worst status, then lowest confidence.
func (s *ComplianceScorer) GetPriorityIssues(results []models.ClauseComplianceResult, topN int) []models.ClauseComplianceResult {
	sorted := make([]models.ClauseComplianceResult, len(results))
	copy(sorted, results)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].RiskLevel.Rank() != sorted[j].RiskLevel.Rank() {
			return sorted[i].RiskLevel.Rank() > sorted[j].RiskLevel.Rank()
		}
		if sorted[i].ComplianceStatus.Rank() != sorted[j].ComplianceStatus.Rank() {
			return sorted[i].ComplianceStatus.Rank() > sorted[j].ComplianceStatus.Rank()
		}
		return sorted[i].Confidence < sorted[j].Confidence
	})

	if topN > 0 && len(sorted) > topN {
		sorted = sorted[:topN]
	}
	return sorted
}

// CompliancePercentage is the plain fraction of compliant clauses, without
// penalties or partial credit.
func (s *ComplianceScorer) CompliancePercentage(results []models.ClauseComplianceResult) float64 {
	if len(results) == 0 {
		return 0.0
	}
	compliant := 0
	for _, r := range results {
		if r.ComplianceStatus == models.StatusCompliant {
			compliant++
		}
	}
	return round2(float64(compliant) / float64(len(results)) * 100)
}

// FrameworkStats is the per-framework slice of a compliance breakdown.
type FrameworkStats struct {
	Score            float64 `json:"score"`
	Compliant        int     `json:"compliant"`
	Partial          int     `json:"partial"`
	NonCompliant     int     `json:"non_compliant"`
	HighRisk         int     `json:"high_risk"`
	MissingMandatory int     `json:"missing_mandatory"`
}

// FrameworkBreakdown groups results and missing requirements by framework
// and scores each group independently.
func (s *ComplianceScorer) FrameworkBreakdown(
	results []models.ClauseComplianceResult,
	missing []*models.RegulatoryRequirement,
) map[models.Framework]FrameworkStats {
	breakdown := make(map[models.Framework]FrameworkStats)

	for _, r := range results {
		stats := breakdown[r.Framework]
		switch r.ComplianceStatus {
		case models.StatusCompliant:
			stats.Compliant++
		case models.StatusPartial:
			stats.Partial++
		case models.StatusNonCompliant:
			stats.NonCompliant++
		}
		if r.RiskLevel == models.RiskHigh {
			stats.HighRisk++
		}
		breakdown[r.Framework] = stats
	}

	for _, req := range missing {
		if req.Mandatory {
			stats := breakdown[req.Framework]
			stats.MissingMandatory++
			breakdown[req.Framework] = stats
		}
	}

	for framework, stats := range breakdown {
		stats.Score = s.FrameworkScore(results, framework, missing)
		breakdown[framework] = stats
	}
	return breakdown
}

// GenerateReport composes the score, summary and high-risk subset into the
// final report. This is the only place OverallScore is written.
func (s *ComplianceScorer) GenerateReport(
	documentID string,
	frameworksChecked []models.Framework,
	results []models.ClauseComplianceResult,
	missing []*models.RegulatoryRequirement,
) *models.ComplianceReport {
	report := &models.ComplianceReport{
		DocumentID:          documentID,
		FrameworksChecked:   frameworksChecked,
		OverallScore:        s.CalculateOverallScore(results, missing),
		ClauseResults:       results,
		MissingRequirements: missing,
		HighRiskItems:       s.IdentifyHighRiskItems(results),
		Summary:             s.GenerateSummary(results),
	}

	log.Printf(
		"Compliance report generated for %s: score %.2f, %d high-risk items, %d missing requirements",
		documentID, report.OverallScore, len(report.HighRiskItems), len(report.MissingRequirements),
	)
	return report
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
