package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"clausecheck-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RequirementRepository handles database operations for the regulatory
// requirement catalog, including precomputed pgvector embeddings.
type RequirementRepository struct {
	db *pgxpool.Pool
}

// NewRequirementRepository creates a new requirement repository
func NewRequirementRepository(db *pgxpool.Pool) *RequirementRepository {
	return &RequirementRepository{db: db}
}

// formatVector formats an embedding vector as a string for pgx
func formatVector(embedding []float64) string {
	if len(embedding) == 0 {
		return "[]"
	}
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = fmt.Sprintf("%.6f", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// parseVector parses the pgvector text representation back into a slice
func parseVector(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid vector component %q: %w", p, err)
		}
		out[i] = v
	}
	return out, nil
}

// Upsert inserts a requirement or updates it in place, keyed by
// requirement_id. The embedding column is only written when the requirement
// carries a vector.
func (r *RequirementRepository) Upsert(ctx context.Context, req *models.RegulatoryRequirement) error {
	query := `
		INSERT INTO regulatory_requirements (
			requirement_id, framework, article_reference, clause_type,
			description, mandatory, keywords, risk_level, mandatory_elements, embedding
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10::vector
		)
		ON CONFLICT (requirement_id) DO UPDATE SET
			framework = EXCLUDED.framework,
			article_reference = EXCLUDED.article_reference,
			clause_type = EXCLUDED.clause_type,
			description = EXCLUDED.description,
			mandatory = EXCLUDED.mandatory,
			keywords = EXCLUDED.keywords,
			risk_level = EXCLUDED.risk_level,
			mandatory_elements = EXCLUDED.mandatory_elements,
			embedding = COALESCE(EXCLUDED.embedding, regulatory_requirements.embedding),
			updated_at = NOW()`

	var embedding *string
	if len(req.Embedding) > 0 {
		s := formatVector(req.Embedding)
		embedding = &s
	}

	_, err := r.db.Exec(
		ctx, query,
		req.RequirementID,
		req.Framework,
		req.ArticleReference,
		req.ClauseType,
		req.Description,
		req.Mandatory,
		req.Keywords,
		req.RiskLevel,
		req.MandatoryElements,
		embedding,
	)
	return err
}

// LoadCatalog reads the full catalog from the database, grouped by
// framework and ordered by insertion, embeddings included when present.
func (r *RequirementRepository) LoadCatalog(ctx context.Context) (map[models.Framework][]*models.RegulatoryRequirement, error) {
	query := `
		SELECT requirement_id, framework, article_reference, clause_type,
			description, mandatory, keywords, risk_level, mandatory_elements,
			embedding::text
		FROM regulatory_requirements
		ORDER BY framework, created_at, requirement_id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query requirements: %w", err)
	}
	defer rows.Close()

	catalog := make(map[models.Framework][]*models.RegulatoryRequirement)
	for rows.Next() {
		req := &models.RegulatoryRequirement{}
		var embedding *string
		err := rows.Scan(
			&req.RequirementID,
			&req.Framework,
			&req.ArticleReference,
			&req.ClauseType,
			&req.Description,
			&req.Mandatory,
			&req.Keywords,
			&req.RiskLevel,
			&req.MandatoryElements,
			&embedding,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan requirement: %w", err)
		}
		if embedding != nil {
			vec, err := parseVector(*embedding)
			if err != nil {
				return nil, fmt.Errorf("bad embedding for %s: %w", req.RequirementID, err)
			}
			req.Embedding = vec
		}
		catalog[req.Framework] = append(catalog[req.Framework], req)
	}
	return catalog, rows.Err()
}

// Count returns the number of stored requirements
func (r *RequirementRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM regulatory_requirements").Scan(&count)
	return count, err
}
