package models

import "strings"

// Framework identifies a regulatory framework supported by the knowledge base
type Framework string

const (
	FrameworkGDPR  Framework = "GDPR"
	FrameworkHIPAA Framework = "HIPAA"
	FrameworkCCPA  Framework = "CCPA"
	FrameworkSOX   Framework = "SOX"
)

// SupportedFrameworks returns all frameworks the engine ships requirements for
func SupportedFrameworks() []Framework {
	return []Framework{FrameworkGDPR, FrameworkHIPAA, FrameworkCCPA, FrameworkSOX}
}

// ParseFramework normalizes a framework name (case-insensitive)
func ParseFramework(s string) (Framework, bool) {
	f := Framework(strings.ToUpper(strings.TrimSpace(s)))
	switch f {
	case FrameworkGDPR, FrameworkHIPAA, FrameworkCCPA, FrameworkSOX:
		return f, true
	}
	return "", false
}

// RiskLevel represents the risk classification of a requirement or clause
type RiskLevel string

const (
	RiskHigh   RiskLevel = "High"
	RiskMedium RiskLevel = "Medium"
	RiskLow    RiskLevel = "Low"
)

// Rank returns the ordinal priority of a risk level (High > Medium > Low).
// Unknown levels rank below Low so malformed data never outranks real risk.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskHigh:
		return 3
	case RiskMedium:
		return 2
	case RiskLow:
		return 1
	default:
		return 0
	}
}

// RegulatoryRequirement represents one discrete, citable obligation within
// a regulatory framework. Requirements are loaded once at startup and are
// immutable afterwards, except for the lazily attached embedding vector.
type RegulatoryRequirement struct {
	RequirementID     string    `json:"requirement_id"`
	Framework         Framework `json:"framework"`
	ArticleReference  string    `json:"article_reference"`
	ClauseType        string    `json:"clause_type"`
	Description       string    `json:"description"`
	Mandatory         bool      `json:"mandatory"`
	Keywords          []string  `json:"keywords"`
	RiskLevel         RiskLevel `json:"risk_level"`
	MandatoryElements []string  `json:"mandatory_elements,omitempty"`

	// Embedding is populated by the vector cache on first use. Generation is
	// deterministic per text, so a concurrent re-write is idempotent.
	Embedding []float64 `json:"-"`
}

// EmbeddingText returns the text a requirement embedding is derived from:
// the description followed by all keywords.
func (r *RegulatoryRequirement) EmbeddingText() string {
	if len(r.Keywords) == 0 {
		return r.Description
	}
	return r.Description + " " + strings.Join(r.Keywords, " ")
}
