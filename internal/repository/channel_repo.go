package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blueblud7/dailyYoutubeSummary/internal/models"
)

type ChannelRepository struct {
	db *pgxpool.Pool
}

func NewChannelRepository(db *pgxpool.Pool) *ChannelRepository {
	return &ChannelRepository{db: db}
}

// Upsert inserts the channel or refreshes its metadata if it already exists.
// Re-adding an existing channel is a successful no-op from the caller's view.
func (r *ChannelRepository) Upsert(ctx context.Context, ch *models.Channel) error {
	query := `
		INSERT INTO channels (channel_id, name, url, description, subscriber_count, video_count, active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		ON CONFLICT (channel_id) DO UPDATE SET
			name = EXCLUDED.name,
			url = EXCLUDED.url,
			description = EXCLUDED.description,
			subscriber_count = EXCLUDED.subscriber_count,
			video_count = EXCLUDED.video_count,
			updated_at = NOW()
		RETURNING created_at, updated_at, active
	`
	return r.db.QueryRow(ctx, query,
		ch.ChannelID, ch.Name, ch.URL, ch.Description, ch.SubscriberCount, ch.VideoCount,
	).Scan(&ch.CreatedAt, &ch.UpdatedAt, &ch.Active)
}

// Ensure inserts a minimal channel row if none exists yet, leaving existing
// metadata untouched. Keyword searches surface videos from channels nobody
// registered; those still need a channels row before their videos can be
// stored.
func (r *ChannelRepository) Ensure(ctx context.Context, ch *models.Channel) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO channels (channel_id, name, url, active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (channel_id) DO NOTHING
	`, ch.ChannelID, ch.Name, ch.URL)
	return err
}

func (r *ChannelRepository) GetByID(ctx context.Context, channelID string) (*models.Channel, error) {
	query := `
		SELECT channel_id, name, url, description, subscriber_count, video_count, active, created_at, updated_at
		FROM channels
		WHERE channel_id = $1
	`
	var ch models.Channel
	err := r.db.QueryRow(ctx, query, channelID).Scan(
		&ch.ChannelID, &ch.Name, &ch.URL, &ch.Description,
		&ch.SubscriberCount, &ch.VideoCount, &ch.Active, &ch.CreatedAt, &ch.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

// GetByName matches case-insensitively on a name fragment, most subscribed
// first. Used by the bot's channel command where users type partial names.
func (r *ChannelRepository) GetByName(ctx context.Context, name string) (*models.Channel, error) {
	query := `
		SELECT channel_id, name, url, description, subscriber_count, video_count, active, created_at, updated_at
		FROM channels
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY subscriber_count DESC
		LIMIT 1
	`
	var ch models.Channel
	err := r.db.QueryRow(ctx, query, name).Scan(
		&ch.ChannelID, &ch.Name, &ch.URL, &ch.Description,
		&ch.SubscriberCount, &ch.VideoCount, &ch.Active, &ch.CreatedAt, &ch.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func (r *ChannelRepository) List(ctx context.Context, activeOnly bool) ([]models.Channel, error) {
	query := `
		SELECT channel_id, name, url, description, subscriber_count, video_count, active, created_at, updated_at
		FROM channels
	`
	if activeOnly {
		query += " WHERE active = TRUE"
	}
	query += " ORDER BY name"

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []models.Channel
	for rows.Next() {
		var ch models.Channel
		if err := rows.Scan(
			&ch.ChannelID, &ch.Name, &ch.URL, &ch.Description,
			&ch.SubscriberCount, &ch.VideoCount, &ch.Active, &ch.CreatedAt, &ch.UpdatedAt,
		); err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

func (r *ChannelRepository) SetActive(ctx context.Context, channelID string, active bool) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE channels SET active = $2, updated_at = NOW() WHERE channel_id = $1",
		channelID, active,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *ChannelRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM channels WHERE active = TRUE").Scan(&n)
	return n, err
}
