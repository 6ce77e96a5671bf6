package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"clausecheck-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StoredReport wraps a compliance report with its persistence identity.
type StoredReport struct {
	ID        uuid.UUID               `json:"id"`
	CreatedAt time.Time               `json:"created_at"`
	Report    models.ComplianceReport `json:"report"`
}

// ReportRepository handles database operations for compliance reports
type ReportRepository struct {
	db *pgxpool.Pool
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create persists a compliance report and returns its assigned id
func (r *ReportRepository) Create(ctx context.Context, report *models.ComplianceReport) (uuid.UUID, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal report: %w", err)
	}

	frameworks := make([]string, len(report.FrameworksChecked))
	for i, f := range report.FrameworksChecked {
		frameworks[i] = string(f)
	}

	query := `
		INSERT INTO compliance_reports (document_id, frameworks, overall_score, report)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	var id uuid.UUID
	err = r.db.QueryRow(ctx, query, report.DocumentID, frameworks, report.OverallScore, payload).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert report: %w", err)
	}
	return id, nil
}

// GetByID retrieves a stored report by its id
func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*StoredReport, error) {
	query := `
		SELECT id, created_at, report
		FROM compliance_reports
		WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// GetLatestByDocumentID retrieves the most recent report for a document
func (r *ReportRepository) GetLatestByDocumentID(ctx context.Context, documentID string) (*StoredReport, error) {
	query := `
		SELECT id, created_at, report
		FROM compliance_reports
		WHERE document_id = $1
		ORDER BY created_at DESC
		LIMIT 1`
	return r.scanOne(r.db.QueryRow(ctx, query, documentID))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *ReportRepository) scanOne(row rowScanner) (*StoredReport, error) {
	stored := &StoredReport{}
	var payload []byte
	if err := row.Scan(&stored.ID, &stored.CreatedAt, &payload); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &stored.Report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return stored, nil
}
