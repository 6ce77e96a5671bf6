package models

// ClauseAnalysis is an analyzed contract clause produced by the upstream
// NLP step. The embedding vector may be absent; a clause without one cannot
// be matched and ends up Not Applicable.
type ClauseAnalysis struct {
	ClauseID   string    `json:"clause_id"`
	ClauseType string    `json:"clause_type"`
	ClauseText string    `json:"clause_text"`
	Embedding  []float64 `json:"embeddings,omitempty"`
}

// ComplianceStatus represents the compliance verdict for a clause
type ComplianceStatus string

const (
	StatusCompliant     ComplianceStatus = "Compliant"
	StatusPartial       ComplianceStatus = "Partial"
	StatusNonCompliant  ComplianceStatus = "Non-Compliant"
	StatusNotApplicable ComplianceStatus = "Not Applicable"
)

// Rank returns the severity ordering used for prioritization:
// worse statuses rank higher. Not Applicable ranks zero.
func (s ComplianceStatus) Rank() int {
	switch s {
	case StatusNonCompliant:
		return 3
	case StatusPartial:
		return 2
	case StatusCompliant:
		return 1
	default:
		return 0
	}
}

// Scorable reports whether a status participates in the base score.
// Not Applicable clauses are excluded from the denominator.
func (s ComplianceStatus) Scorable() bool {
	switch s {
	case StatusCompliant, StatusPartial, StatusNonCompliant:
		return true
	}
	return false
}

// ClauseComplianceResult is the compliance verdict for one clause against
// one framework, derived from the matcher's top candidate.
type ClauseComplianceResult struct {
	ClauseID           string           `json:"clause_id"`
	Framework          Framework        `json:"framework"`
	ClauseType         string           `json:"clause_type"`
	RiskLevel          RiskLevel        `json:"risk_level"`
	ComplianceStatus   ComplianceStatus `json:"compliance_status"`
	Confidence         float64          `json:"confidence"`
	Issues             []string         `json:"issues,omitempty"`
	MatchedRequirement string           `json:"matched_requirement,omitempty"`
}
