package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blueblud7/dailyYoutubeSummary/internal/models"
)

type KeywordRepository struct {
	db *pgxpool.Pool
}

func NewKeywordRepository(db *pgxpool.Pool) *KeywordRepository {
	return &KeywordRepository{db: db}
}

// Upsert registers the keyword, reactivating it if it was disabled. The
// category is only refreshed when the caller supplies a non-empty one.
func (r *KeywordRepository) Upsert(ctx context.Context, kw *models.Keyword) error {
	if kw.Category == "" {
		kw.Category = "투자"
	}
	query := `
		INSERT INTO keywords (keyword, category, active)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (keyword) DO UPDATE SET
			category = EXCLUDED.category,
			active = TRUE
		RETURNING id, created_at
	`
	return r.db.QueryRow(ctx, query, kw.Keyword, kw.Category).Scan(&kw.ID, &kw.CreatedAt)
}

func (r *KeywordRepository) GetByKeyword(ctx context.Context, keyword string) (*models.Keyword, error) {
	query := `
		SELECT id, keyword, category, active, created_at
		FROM keywords
		WHERE keyword = $1
	`
	var kw models.Keyword
	err := r.db.QueryRow(ctx, query, keyword).Scan(&kw.ID, &kw.Keyword, &kw.Category, &kw.Active, &kw.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &kw, nil
}

func (r *KeywordRepository) List(ctx context.Context, activeOnly bool) ([]models.Keyword, error) {
	query := "SELECT id, keyword, category, active, created_at FROM keywords"
	if activeOnly {
		query += " WHERE active = TRUE"
	}
	query += " ORDER BY keyword"

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keywords []models.Keyword
	for rows.Next() {
		var kw models.Keyword
		if err := rows.Scan(&kw.ID, &kw.Keyword, &kw.Category, &kw.Active, &kw.CreatedAt); err != nil {
			return nil, err
		}
		keywords = append(keywords, kw)
	}
	return keywords, rows.Err()
}

func (r *KeywordRepository) SetActive(ctx context.Context, keyword string, active bool) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE keywords SET active = $2 WHERE keyword = $1",
		keyword, active,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *KeywordRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM keywords WHERE active = TRUE").Scan(&n)
	return n, err
}
