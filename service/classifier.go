package service

import "strings"

// Classifier assigns a clause type to raw clause text. Implementations may
// be learned models or heuristics; the matcher does not care which.
type Classifier interface {
	Classify(text string) (clauseType string, confidence float64)
}

// KeywordClassifier is a weighted-keyword heuristic used when no richer
// model is available upstream. Scores are normalized against the maximum
// achievable score per category, with a bonus for exact phrase matches.
type KeywordClassifier struct {
	clauseKeywords map[string][]string
	phraseWeights  map[string]float64
}

// NewKeywordClassifier creates a classifier preloaded with the regulatory
// clause categories the knowledge base groups requirements under.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		clauseKeywords: map[string][]string{
			"Data Processing": {
				"process", "processing", "processor", "controller", "instructions",
				"documented instructions", "personal data processing", "data controller",
				"data processor", "processing activities", "lawful basis",
			},
			"Sub-processor Authorization": {
				"sub-processor", "subprocessor", "sub processor", "authorization", "prior written",
				"notification", "object", "third party processor", "engage third party",
				"downstream processor", "subcontractor",
			},
			"Data Subject Rights": {
				"data subject", "rights", "access", "rectification", "erasure",
				"portability", "restriction", "objection", "right to", "individual rights",
				"access request", "deletion request", "right to be forgotten",
			},
			"Breach Notification": {
				"breach", "notification", "notify", "security breach", "incident",
				"data breach", "unauthorized access", "breach response", "incident response",
				"72 hours", "without undue delay", "security incident",
			},
			"Data Transfer": {
				"transfer", "cross-border", "third country", "international",
				"standard contractual clauses", "adequacy decision", "scc", "sccs",
				"international transfer", "data export", "transfer mechanism",
			},
			"Security Safeguards": {
				"security", "safeguards", "measures", "technical", "organizational",
				"encryption", "pseudonymization", "confidentiality", "integrity",
				"availability", "security measures", "technical and organizational measures",
				"access controls", "authentication", "backup",
			},
			"Permitted Uses and Disclosures": {
				"permitted", "allowed", "disclosure", "use", "purpose",
				"authorized use", "permitted disclosure", "lawful purpose",
				"legitimate interest", "specific purpose", "purpose limitation",
			},
		},
		phraseWeights: map[string]float64{
			"documented instructions":               2.0,
			"personal data processing":              2.0,
			"standard contractual clauses":          2.5,
			"technical and organizational measures": 2.5,
			"right to be forgotten":                 2.0,
			"72 hours":                              2.0,
			"without undue delay":                   2.0,
			"business associate":                    2.0,
			"protected health information":          2.5,
		},
	}
}

// Classify returns the best-scoring clause type and a normalized confidence
// in [0,1]. Text matching no category at all returns an empty type with
// zero confidence.
func (c *KeywordClassifier) Classify(text string) (string, float64) {
	textLower := strings.ToLower(text)
	padded := " " + textLower + " "

	bestType := ""
	bestScore := 0.0

	for clauseType, keywords := range c.clauseKeywords {
		total := 0.0
		maxPossible := 0.0
		for _, keyword := range keywords {
			weight := c.weight(keyword)
			maxPossible += weight
			if !strings.Contains(textLower, keyword) {
				continue
			}
			// Exact phrase occurrences count more than bare substrings
			if strings.Contains(padded, " "+keyword+" ") {
				weight *= 1.5
			}
			total += weight
		}
		if maxPossible == 0 {
			continue
		}
		score := total / maxPossible
		if score > bestScore {
			bestScore = score
			bestType = clauseType
		}
	}

	if bestScore > 1.0 {
		bestScore = 1.0
	}
	return bestType, bestScore
}

func (c *KeywordClassifier) weight(keyword string) float64 {
	if w, ok := c.phraseWeights[keyword]; ok {
		return w
	}
	return 1.0
}
