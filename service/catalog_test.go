package service

import (
	"os"
	"path/filepath"
	"testing"

	"clausecheck-backend/models"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write catalog fixture: %v", err)
	}
	return path
}

func TestLoadCatalog(t *testing.T) {
	path := writeCatalog(t, `{
		"frameworks": {
			"GDPR": {
				"requirements": [
					{
						"requirement_id": "GDPR_01",
						"article_reference": "Article 28",
						"clause_type": "Data Processing",
						"description": "Processes only on documented instructions",
						"mandatory": true,
						"keywords": ["instructions", "processor"],
						"risk_level": "High"
					},
					{
						"requirement_id": "GDPR_02",
						"description": "Optional record keeping",
						"risk_level": "Low"
					}
				]
			}
		}
	}`)

	catalog, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}

	reqs := catalog[models.FrameworkGDPR]
	if len(reqs) != 2 {
		t.Fatalf("loaded %d GDPR requirements, want 2", len(reqs))
	}

	first := reqs[0]
	if first.RequirementID != "GDPR_01" || !first.Mandatory || first.RiskLevel != models.RiskHigh {
		t.Errorf("first requirement = %+v", first)
	}
	if first.Framework != models.FrameworkGDPR {
		t.Errorf("framework = %s, want GDPR", first.Framework)
	}

	second := reqs[1]
	if second.Mandatory {
		t.Error("mandatory should default to false")
	}
	if second.ClauseType != "General" {
		t.Errorf("clause type = %q, want General default", second.ClauseType)
	}
}

func TestLoadCatalogFieldAliases(t *testing.T) {
	path := writeCatalog(t, `{
		"frameworks": {
			"HIPAA": {
				"requirements": [
					{
						"requirement_id": "HIPAA_01",
						"article_number": "45 CFR 164.410",
						"title": "Breach notification to the covered entity",
						"is_mandatory": true,
						"tags": ["breach", "notification"],
						"risk_level": "Critical"
					}
				]
			}
		}
	}`)

	catalog, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}

	reqs := catalog[models.FrameworkHIPAA]
	if len(reqs) != 1 {
		t.Fatalf("loaded %d HIPAA requirements, want 1", len(reqs))
	}

	req := reqs[0]
	if req.ArticleReference != "45 CFR 164.410" {
		t.Errorf("article_number alias not applied: %q", req.ArticleReference)
	}
	if req.Description != "Breach notification to the covered entity" {
		t.Errorf("title alias not applied: %q", req.Description)
	}
	if !req.Mandatory {
		t.Error("is_mandatory alias not applied")
	}
	if len(req.Keywords) != 2 {
		t.Errorf("tags alias not applied: %v", req.Keywords)
	}
	if req.RiskLevel != models.RiskHigh {
		t.Errorf("Critical risk = %s, want High", req.RiskLevel)
	}
}

func TestLoadCatalogSkipsEntriesWithoutID(t *testing.T) {
	path := writeCatalog(t, `{
		"frameworks": {
			"GDPR": {
				"requirements": [
					{"description": "no id here"},
					{"requirement_id": "GDPR_01", "description": "valid"}
				]
			}
		}
	}`)

	catalog, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if len(catalog[models.FrameworkGDPR]) != 1 {
		t.Errorf("loaded %d requirements, want 1 after skipping", len(catalog[models.FrameworkGDPR]))
	}
}

func TestLoadCatalogUnknownFramework(t *testing.T) {
	path := writeCatalog(t, `{
		"frameworks": {
			"pci-dss": {
				"requirements": [
					{"requirement_id": "PCI_01", "description": "cardholder data"}
				]
			}
		}
	}`)

	catalog, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}

	// Frameworks beyond the built-in set load under their uppercased name
	reqs := catalog[models.Framework("PCI-DSS")]
	if len(reqs) != 1 {
		t.Errorf("loaded %d PCI-DSS requirements, want 1", len(reqs))
	}
}

func TestLoadCatalogErrors(t *testing.T) {
	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	path := writeCatalog(t, `{"frameworks": `)
	if _, err := LoadCatalog(path); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestParseRiskLevel(t *testing.T) {
	tests := []struct {
		in   string
		want models.RiskLevel
	}{
		{"High", models.RiskHigh},
		{"critical", models.RiskHigh},
		{"MEDIUM", models.RiskMedium},
		{" low ", models.RiskLow},
		{"", models.RiskMedium},
		{"unknown", models.RiskMedium},
	}
	for _, tt := range tests {
		if got := parseRiskLevel(tt.in); got != tt.want {
			t.Errorf("parseRiskLevel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestShipsWithDefaultCatalog(t *testing.T) {
	catalog, err := LoadCatalog("../data/regulatory_requirements.json")
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}

	for _, framework := range models.SupportedFrameworks() {
		if len(catalog[framework]) == 0 {
			t.Errorf("default catalog has no %s requirements", framework)
		}
	}
}
