package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blueblud7/dailyYoutubeSummary/internal/models"
)

type OpinionRepository struct {
	db *pgxpool.Pool
}

func NewOpinionRepository(db *pgxpool.Pool) *OpinionRepository {
	return &OpinionRepository{db: db}
}

// Insert stores the opinion for a video. At most one opinion per video exists;
// a second insert for the same video is a silent no-op and returns false.
func (r *OpinionRepository) Insert(ctx context.Context, o *models.Opinion) (bool, error) {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	insights, err := json.Marshal(o.KeyInsights)
	if err != nil {
		return false, fmt.Errorf("failed to marshal key insights: %w", err)
	}
	entities, err := json.Marshal(o.Entities)
	if err != nil {
		return false, fmt.Errorf("failed to marshal entities: %w", err)
	}

	query := `
		INSERT INTO opinions (id, video_id, sentiment, importance, summary, key_insights, entities)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (video_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query,
		o.ID, o.VideoID, o.Sentiment, o.Importance, o.Summary, insights, entities,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *OpinionRepository) ExistsForVideo(ctx context.Context, videoID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM opinions WHERE video_id = $1)", videoID,
	).Scan(&exists)
	return exists, err
}

// OpinionFilter narrows Query. Zero-valued fields are ignored; ChannelIDs
// and Keyword may be combined.
type OpinionFilter struct {
	Since      time.Time
	Until      time.Time
	ChannelIDs []string
	Keyword    string
	EntityName string
	Limit      int
}

// Query returns scored videos joined with their video and channel context,
// newest first.
func (r *OpinionRepository) Query(ctx context.Context, f OpinionFilter) ([]models.ScoredVideo, error) {
	query := `
		SELECT o.id, o.video_id, o.sentiment, o.importance, o.summary, o.key_insights, o.entities, o.created_at,
			v.title, v.video_url, v.channel_id, c.name, v.published_at, v.view_count
		FROM opinions o
		JOIN videos v ON v.video_id = o.video_id
		JOIN channels c ON c.channel_id = v.channel_id
	`
	var conditions []string
	var args []interface{}
	argNum := 1

	if !f.Since.IsZero() {
		conditions = append(conditions, fmt.Sprintf("v.published_at >= $%d", argNum))
		args = append(args, f.Since)
		argNum++
	}
	if !f.Until.IsZero() {
		conditions = append(conditions, fmt.Sprintf("v.published_at < $%d", argNum))
		args = append(args, f.Until)
		argNum++
	}
	if len(f.ChannelIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("v.channel_id = ANY($%d)", argNum))
		args = append(args, f.ChannelIDs)
		argNum++
	}
	if f.Keyword != "" {
		conditions = append(conditions, fmt.Sprintf(
			"($%d = ANY(v.matched_keywords) OR v.title ILIKE '%%' || $%d || '%%' OR o.summary ILIKE '%%' || $%d || '%%')",
			argNum, argNum, argNum))
		args = append(args, f.Keyword)
		argNum++
	}
	if f.EntityName != "" {
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM jsonb_array_elements(o.entities) e WHERE e->>'name' ILIKE '%%' || $%d || '%%')",
			argNum))
		args = append(args, f.EntityName)
		argNum++
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY v.published_at DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, f.Limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.ScoredVideo
	for rows.Next() {
		var sv models.ScoredVideo
		var insights, entities []byte
		if err := rows.Scan(
			&sv.ID, &sv.VideoID, &sv.Sentiment, &sv.Importance, &sv.Summary, &insights, &entities, &sv.CreatedAt,
			&sv.VideoTitle, &sv.VideoURL, &sv.ChannelID, &sv.ChannelName, &sv.PublishedAt, &sv.ViewCount,
		); err != nil {
			return nil, err
		}
		if len(insights) > 0 {
			if err := json.Unmarshal(insights, &sv.KeyInsights); err != nil {
				return nil, fmt.Errorf("failed to unmarshal key insights for %s: %w", sv.VideoID, err)
			}
		}
		if len(entities) > 0 {
			if err := json.Unmarshal(entities, &sv.Entities); err != nil {
				return nil, fmt.Errorf("failed to unmarshal entities for %s: %w", sv.VideoID, err)
			}
		}
		results = append(results, sv)
	}
	return results, rows.Err()
}

// KeywordCounts returns matched-keyword frequencies across videos scored
// since the given time, most frequent first. Feeds the hot-topics report.
func (r *OpinionRepository) KeywordCounts(ctx context.Context, since time.Time, limit int) (map[string]int, error) {
	query := `
		SELECT kw, COUNT(*) AS n
		FROM opinions o
		JOIN videos v ON v.video_id = o.video_id,
		LATERAL unnest(v.matched_keywords) AS kw
		WHERE v.published_at >= $1
		GROUP BY kw
		ORDER BY n DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kw string
		var n int
		if err := rows.Scan(&kw, &n); err != nil {
			return nil, err
		}
		counts[kw] = n
	}
	return counts, rows.Err()
}

func (r *OpinionRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM opinions").Scan(&n)
	return n, err
}
