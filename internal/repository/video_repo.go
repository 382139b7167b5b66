package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blueblud7/dailyYoutubeSummary/internal/models"
)

type VideoRepository struct {
	db *pgxpool.Pool
}

func NewVideoRepository(db *pgxpool.Pool) *VideoRepository {
	return &VideoRepository{db: db}
}

// Insert stores a video if it is new. Returns true when a row was actually
// inserted; false means the video was already known and left untouched.
func (r *VideoRepository) Insert(ctx context.Context, v *models.Video) (bool, error) {
	// Nil slices would encode as SQL NULL and trip the NOT NULL columns.
	if v.Tags == nil {
		v.Tags = []string{}
	}
	if v.MatchedKeywords == nil {
		v.MatchedKeywords = []string{}
	}
	query := `
		INSERT INTO videos (
			video_id, channel_id, title, description, published_at, duration_seconds,
			view_count, like_count, comment_count, video_url, thumbnail_url,
			tags, matched_keywords
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (video_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query,
		v.VideoID, v.ChannelID, v.Title, v.Description, v.PublishedAt, v.DurationSeconds,
		v.ViewCount, v.LikeCount, v.CommentCount, v.VideoURL, v.ThumbnailURL,
		v.Tags, v.MatchedKeywords,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// AppendMatchedKeywords merges new search keywords into the stored set.
// A video surfacing again under another keyword accumulates, never duplicates.
func (r *VideoRepository) AppendMatchedKeywords(ctx context.Context, videoID string, keywords []string) error {
	if len(keywords) == 0 {
		return nil
	}
	query := `
		UPDATE videos
		SET matched_keywords = (
			SELECT ARRAY(SELECT DISTINCT unnest(matched_keywords || $2::text[]) ORDER BY 1)
		)
		WHERE video_id = $1
	`
	tag, err := r.db.Exec(ctx, query, videoID, keywords)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *VideoRepository) SetCaption(ctx context.Context, videoID, text, language string) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE videos SET caption_text = $2, caption_language = $3 WHERE video_id = $1",
		videoID, text, language,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *VideoRepository) Get(ctx context.Context, videoID string) (*models.Video, error) {
	query := `
		SELECT video_id, channel_id, title, description, published_at, duration_seconds,
			view_count, like_count, comment_count, video_url, thumbnail_url,
			tags, matched_keywords, caption_text, caption_language, created_at
		FROM videos
		WHERE video_id = $1
	`
	var v models.Video
	err := r.db.QueryRow(ctx, query, videoID).Scan(
		&v.VideoID, &v.ChannelID, &v.Title, &v.Description, &v.PublishedAt, &v.DurationSeconds,
		&v.ViewCount, &v.LikeCount, &v.CommentCount, &v.VideoURL, &v.ThumbnailURL,
		&v.Tags, &v.MatchedKeywords, &v.CaptionText, &v.CaptionLanguage, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// VideoFilter narrows Query. Zero-valued fields are ignored.
type VideoFilter struct {
	ChannelID string
	Keyword   string
	Since     time.Time
	Until     time.Time
	Limit     int
}

func (r *VideoRepository) Query(ctx context.Context, f VideoFilter) ([]models.Video, error) {
	query := `
		SELECT video_id, channel_id, title, description, published_at, duration_seconds,
			view_count, like_count, comment_count, video_url, thumbnail_url,
			tags, matched_keywords, caption_text, caption_language, created_at
		FROM videos
	`
	var conditions []string
	var args []interface{}
	argNum := 1

	if f.ChannelID != "" {
		conditions = append(conditions, fmt.Sprintf("channel_id = $%d", argNum))
		args = append(args, f.ChannelID)
		argNum++
	}
	if f.Keyword != "" {
		conditions = append(conditions, fmt.Sprintf("($%d = ANY(matched_keywords) OR title ILIKE '%%' || $%d || '%%')", argNum, argNum))
		args = append(args, f.Keyword)
		argNum++
	}
	if !f.Since.IsZero() {
		conditions = append(conditions, fmt.Sprintf("published_at >= $%d", argNum))
		args = append(args, f.Since)
		argNum++
	}
	if !f.Until.IsZero() {
		conditions = append(conditions, fmt.Sprintf("published_at < $%d", argNum))
		args = append(args, f.Until)
		argNum++
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY published_at DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, f.Limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		var v models.Video
		if err := rows.Scan(
			&v.VideoID, &v.ChannelID, &v.Title, &v.Description, &v.PublishedAt, &v.DurationSeconds,
			&v.ViewCount, &v.LikeCount, &v.CommentCount, &v.VideoURL, &v.ThumbnailURL,
			&v.Tags, &v.MatchedKeywords, &v.CaptionText, &v.CaptionLanguage, &v.CreatedAt,
		); err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// Unscored returns videos without an opinion yet, oldest first so a backlog
// drains in publish order.
func (r *VideoRepository) Unscored(ctx context.Context, since time.Time, limit int) ([]models.Video, error) {
	query := `
		SELECT v.video_id, v.channel_id, v.title, v.description, v.published_at, v.duration_seconds,
			v.view_count, v.like_count, v.comment_count, v.video_url, v.thumbnail_url,
			v.tags, v.matched_keywords, v.caption_text, v.caption_language, v.created_at
		FROM videos v
		LEFT JOIN opinions o ON o.video_id = v.video_id
		WHERE o.id IS NULL AND v.published_at >= $1
		ORDER BY v.published_at ASC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		var v models.Video
		if err := rows.Scan(
			&v.VideoID, &v.ChannelID, &v.Title, &v.Description, &v.PublishedAt, &v.DurationSeconds,
			&v.ViewCount, &v.LikeCount, &v.CommentCount, &v.VideoURL, &v.ThumbnailURL,
			&v.Tags, &v.MatchedKeywords, &v.CaptionText, &v.CaptionLanguage, &v.CreatedAt,
		); err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func (r *VideoRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM videos").Scan(&n)
	return n, err
}
