package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blueblud7/dailyYoutubeSummary/internal/models"
)

type InfluencerRepository struct {
	db *pgxpool.Pool
}

func NewInfluencerRepository(db *pgxpool.Pool) *InfluencerRepository {
	return &InfluencerRepository{db: db}
}

func (r *InfluencerRepository) Upsert(ctx context.Context, inf *models.Influencer) error {
	query := `
		INSERT INTO influencers (name, title, expertise_area, channel_ids, bio, influence_score)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO UPDATE SET
			title = EXCLUDED.title,
			expertise_area = EXCLUDED.expertise_area,
			channel_ids = EXCLUDED.channel_ids,
			bio = EXCLUDED.bio,
			influence_score = EXCLUDED.influence_score,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		inf.Name, inf.Title, inf.ExpertiseArea, inf.ChannelIDs, inf.Bio, inf.InfluenceScore,
	).Scan(&inf.ID, &inf.CreatedAt, &inf.UpdatedAt)
}

// GetByName matches case-insensitively on a name fragment.
func (r *InfluencerRepository) GetByName(ctx context.Context, name string) (*models.Influencer, error) {
	query := `
		SELECT id, name, title, expertise_area, channel_ids, bio, influence_score, created_at, updated_at
		FROM influencers
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY influence_score DESC
		LIMIT 1
	`
	var inf models.Influencer
	err := r.db.QueryRow(ctx, query, name).Scan(
		&inf.ID, &inf.Name, &inf.Title, &inf.ExpertiseArea, &inf.ChannelIDs,
		&inf.Bio, &inf.InfluenceScore, &inf.CreatedAt, &inf.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inf, nil
}

func (r *InfluencerRepository) List(ctx context.Context) ([]models.Influencer, error) {
	query := `
		SELECT id, name, title, expertise_area, channel_ids, bio, influence_score, created_at, updated_at
		FROM influencers
		ORDER BY influence_score DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var influencers []models.Influencer
	for rows.Next() {
		var inf models.Influencer
		if err := rows.Scan(
			&inf.ID, &inf.Name, &inf.Title, &inf.ExpertiseArea, &inf.ChannelIDs,
			&inf.Bio, &inf.InfluenceScore, &inf.CreatedAt, &inf.UpdatedAt,
		); err != nil {
			return nil, err
		}
		influencers = append(influencers, inf)
	}
	return influencers, rows.Err()
}
