package models

// Match pairs a requirement with the similarity score of a clause against
// it. Matches are ephemeral and never persisted.
type Match struct {
	Requirement *RegulatoryRequirement `json:"requirement"`
	Similarity  float64                `json:"similarity"`
}

// ComplianceSummary aggregates clause results by status and risk level
type ComplianceSummary struct {
	TotalClauses        int `json:"total_clauses"`
	CompliantClauses    int `json:"compliant_clauses"`
	NonCompliantClauses int `json:"non_compliant_clauses"`
	PartialClauses      int `json:"partial_clauses"`
	HighRiskCount       int `json:"high_risk_count"`
	MediumRiskCount     int `json:"medium_risk_count"`
	LowRiskCount        int `json:"low_risk_count"`
}

// ComplianceReport is the full evaluation result for one document.
// OverallScore is derived from ClauseResults and MissingRequirements by the
// scorer and is only ever written by ComplianceScorer.GenerateReport.
type ComplianceReport struct {
	DocumentID          string                   `json:"document_id"`
	FrameworksChecked   []Framework              `json:"frameworks_checked"`
	OverallScore        float64                  `json:"overall_score"`
	ClauseResults       []ClauseComplianceResult `json:"clause_results"`
	MissingRequirements []*RegulatoryRequirement `json:"missing_requirements"`
	HighRiskItems       []ClauseComplianceResult `json:"high_risk_items"`
	Summary             ComplianceSummary        `json:"summary"`
}
