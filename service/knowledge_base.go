package service

import (
	"log"
	"sort"
	"strings"

	"clausecheck-backend/models"
)

// RequirementIndex holds the regulatory requirement catalog, grouped by
// framework. The catalog is loaded once at startup and read-only afterwards,
// so the index needs no locking.
type RequirementIndex struct {
	frameworks map[models.Framework][]*models.RegulatoryRequirement
	byID       map[string]*models.RegulatoryRequirement
}

// NewRequirementIndex builds an index over the given catalog. Catalog order
// within each framework is preserved; it defines gap-report ordering.
func NewRequirementIndex(catalog map[models.Framework][]*models.RegulatoryRequirement) *RequirementIndex {
	idx := &RequirementIndex{
		frameworks: make(map[models.Framework][]*models.RegulatoryRequirement, len(catalog)),
		byID:       make(map[string]*models.RegulatoryRequirement),
	}
	for framework, reqs := range catalog {
		idx.frameworks[framework] = reqs
		for _, req := range reqs {
			idx.byID[req.RequirementID] = req
		}
	}
	return idx
}

// HasFramework reports whether the catalog contains the given framework.
func (idx *RequirementIndex) HasFramework(framework models.Framework) bool {
	_, ok := idx.frameworks[framework]
	return ok
}

// Requirements returns all requirements for a framework in catalog order.
// Unknown frameworks yield nil.
func (idx *RequirementIndex) Requirements(framework models.Framework) []*models.RegulatoryRequirement {
	return idx.frameworks[framework]
}

// AllRequirements returns every requirement across all frameworks.
func (idx *RequirementIndex) AllRequirements() []*models.RegulatoryRequirement {
	var all []*models.RegulatoryRequirement
	for _, framework := range models.SupportedFrameworks() {
		all = append(all, idx.frameworks[framework]...)
	}
	// Catalog may carry frameworks beyond the built-in set
	for framework, reqs := range idx.frameworks {
		if _, known := models.ParseFramework(string(framework)); !known {
			all = append(all, reqs...)
		}
	}
	return all
}

// RequirementsByClauseType returns the requirements whose clause type
// matches the given one, compared case-insensitively with surrounding
// whitespace trimmed. Exact match only, no substring or fuzzy matching.
// An empty framework searches the whole catalog.
func (idx *RequirementIndex) RequirementsByClauseType(clauseType string, framework models.Framework) []*models.RegulatoryRequirement {
	pool := idx.AllRequirements()
	if framework != "" {
		pool = idx.Requirements(framework)
	}

	normalized := normalizeClauseType(clauseType)
	var filtered []*models.RegulatoryRequirement
	for _, req := range pool {
		if normalizeClauseType(req.ClauseType) == normalized {
			filtered = append(filtered, req)
		}
	}
	return filtered
}

// RequirementByID looks up a requirement by its identifier. Returns nil if
// not found.
func (idx *RequirementIndex) RequirementByID(id string) *models.RegulatoryRequirement {
	req, ok := idx.byID[id]
	if !ok {
		log.Printf("Requirement not found: %s", id)
		return nil
	}
	return req
}

// SearchByKeyword returns requirements whose keywords, description or
// article reference contain the term (case-insensitive substring). An empty
// framework searches the whole catalog.
func (idx *RequirementIndex) SearchByKeyword(term string, framework models.Framework) []*models.RegulatoryRequirement {
	pool := idx.AllRequirements()
	if framework != "" {
		pool = idx.Requirements(framework)
	}

	needle := strings.ToLower(term)
	var matches []*models.RegulatoryRequirement
	for _, req := range pool {
		if strings.Contains(strings.ToLower(strings.Join(req.Keywords, " ")), needle) ||
			strings.Contains(strings.ToLower(req.Description), needle) ||
			strings.Contains(strings.ToLower(req.ArticleReference), needle) {
			matches = append(matches, req)
		}
	}
	return matches
}

// AvailableClauseTypes returns the distinct clause types a framework's
// requirements are grouped under, sorted alphabetically.
func (idx *RequirementIndex) AvailableClauseTypes(framework models.Framework) []string {
	seen := make(map[string]struct{})
	var types []string
	for _, req := range idx.Requirements(framework) {
		if _, ok := seen[req.ClauseType]; ok {
			continue
		}
		seen[req.ClauseType] = struct{}{}
		types = append(types, req.ClauseType)
	}
	sort.Strings(types)
	return types
}

// FrameworkStatistics summarizes one framework's catalog.
type FrameworkStatistics struct {
	Total     int `json:"total"`
	Mandatory int `json:"mandatory"`
	Optional  int `json:"optional"`
}

// IndexStatistics summarizes the whole knowledge base.
type IndexStatistics struct {
	TotalRequirements int                                      `json:"total_requirements"`
	Frameworks        map[models.Framework]FrameworkStatistics `json:"frameworks"`
}

// Statistics returns per-framework requirement counts.
func (idx *RequirementIndex) Statistics() IndexStatistics {
	stats := IndexStatistics{
		Frameworks: make(map[models.Framework]FrameworkStatistics, len(idx.frameworks)),
	}
	for framework, reqs := range idx.frameworks {
		fs := FrameworkStatistics{Total: len(reqs)}
		for _, req := range reqs {
			if req.Mandatory {
				fs.Mandatory++
			}
		}
		fs.Optional = fs.Total - fs.Mandatory
		stats.Frameworks[framework] = fs
		stats.TotalRequirements += fs.Total
	}
	return stats
}

func normalizeClauseType(clauseType string) string {
	return strings.ToLower(strings.TrimSpace(clauseType))
}
