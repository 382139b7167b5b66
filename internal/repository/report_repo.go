package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blueblud7/dailyYoutubeSummary/internal/models"
)

type ReportRepository struct {
	db *pgxpool.Pool
}

func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Insert(ctx context.Context, rep *models.Report) error {
	if rep.ID == uuid.Nil {
		rep.ID = uuid.New()
	}
	query := `
		INSERT INTO reports (id, report_type, title, body, params, period_start, period_end, source_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	params := rep.Params
	if len(params) == 0 {
		params = []byte("{}")
	}
	return r.db.QueryRow(ctx, query,
		rep.ID, rep.ReportType, rep.Title, rep.Body, params,
		rep.PeriodStart, rep.PeriodEnd, rep.SourceCount,
	).Scan(&rep.CreatedAt)
}

func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	query := `
		SELECT id, report_type, title, body, params, period_start, period_end, source_count, created_at
		FROM reports
		WHERE id = $1
	`
	var rep models.Report
	err := r.db.QueryRow(ctx, query, id).Scan(
		&rep.ID, &rep.ReportType, &rep.Title, &rep.Body, &rep.Params,
		&rep.PeriodStart, &rep.PeriodEnd, &rep.SourceCount, &rep.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// List returns the most recent reports, optionally filtered by type.
func (r *ReportRepository) List(ctx context.Context, reportType string, limit int) ([]models.Report, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, report_type, title, body, params, period_start, period_end, source_count, created_at
		FROM reports
	`
	var args []interface{}
	if reportType != "" {
		query += " WHERE report_type = $1 ORDER BY created_at DESC LIMIT $2"
		args = append(args, reportType, limit)
	} else {
		query += " ORDER BY created_at DESC LIMIT $1"
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		var rep models.Report
		if err := rows.Scan(
			&rep.ID, &rep.ReportType, &rep.Title, &rep.Body, &rep.Params,
			&rep.PeriodStart, &rep.PeriodEnd, &rep.SourceCount, &rep.CreatedAt,
		); err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}
