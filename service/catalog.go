package service

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"clausecheck-backend/models"
)

// Catalog file layout: { "frameworks": { "GDPR": { "requirements": [...] } } }.
// Requirement entries tolerate the field aliases used by older exports of
// the knowledge base (article_number, is_mandatory, tags, title).
type catalogFile struct {
	Frameworks map[string]catalogFramework `json:"frameworks"`
}

type catalogFramework struct {
	Requirements []catalogRequirement `json:"requirements"`
}

type catalogRequirement struct {
	RequirementID     string   `json:"requirement_id"`
	Framework         string   `json:"framework"`
	ArticleReference  string   `json:"article_reference"`
	ArticleNumber     string   `json:"article_number"`
	ClauseType        string   `json:"clause_type"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Mandatory         *bool    `json:"mandatory"`
	IsMandatory       *bool    `json:"is_mandatory"`
	Keywords          []string `json:"keywords"`
	Tags              []string `json:"tags"`
	RiskLevel         string   `json:"risk_level"`
	MandatoryElements []string `json:"mandatory_elements"`
}

// LoadCatalog reads a regulatory requirement catalog from a JSON file and
// returns it grouped by framework. Entries without a requirement id are
// skipped and logged rather than failing the load.
func LoadCatalog(path string) (map[models.Framework][]*models.RegulatoryRequirement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	catalog := make(map[models.Framework][]*models.RegulatoryRequirement, len(file.Frameworks))
	for name, entry := range file.Frameworks {
		framework, ok := models.ParseFramework(name)
		if !ok {
			framework = models.Framework(strings.ToUpper(strings.TrimSpace(name)))
		}

		reqs := make([]*models.RegulatoryRequirement, 0, len(entry.Requirements))
		for _, raw := range entry.Requirements {
			req, err := raw.toRequirement(framework)
			if err != nil {
				log.Printf("Skipping catalog entry in %s: %v", framework, err)
				continue
			}
			reqs = append(reqs, req)
		}
		catalog[framework] = reqs
		log.Printf("Loaded %d %s requirements from catalog", len(reqs), framework)
	}

	return catalog, nil
}

func (raw catalogRequirement) toRequirement(framework models.Framework) (*models.RegulatoryRequirement, error) {
	if raw.RequirementID == "" {
		return nil, fmt.Errorf("missing requirement_id")
	}

	if raw.Framework != "" {
		if f, ok := models.ParseFramework(raw.Framework); ok {
			framework = f
		}
	}

	article := raw.ArticleReference
	if article == "" {
		article = raw.ArticleNumber
	}

	description := raw.Description
	if description == "" {
		description = raw.Title
	}

	clauseType := raw.ClauseType
	if clauseType == "" {
		clauseType = "General"
	}

	mandatory := false
	if raw.Mandatory != nil {
		mandatory = *raw.Mandatory
	} else if raw.IsMandatory != nil {
		mandatory = *raw.IsMandatory
	}

	keywords := raw.Keywords
	if len(keywords) == 0 {
		keywords = raw.Tags
	}

	return &models.RegulatoryRequirement{
		RequirementID:     raw.RequirementID,
		Framework:         framework,
		ArticleReference:  article,
		ClauseType:        clauseType,
		Description:       description,
		Mandatory:         mandatory,
		Keywords:          keywords,
		RiskLevel:         parseRiskLevel(raw.RiskLevel),
		MandatoryElements: raw.MandatoryElements,
	}, nil
}

// parseRiskLevel maps catalog risk strings to the closed enum. Critical
// folds into High; anything unrecognized defaults to Medium.
func parseRiskLevel(s string) models.RiskLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "critical":
		return models.RiskHigh
	case "medium":
		return models.RiskMedium
	case "low":
		return models.RiskLow
	default:
		return models.RiskMedium
	}
}
