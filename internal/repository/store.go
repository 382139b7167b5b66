package repository

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blueblud7/dailyYoutubeSummary/internal/models"
)

// Store bundles the repositories behind one facade with a shared error
// taxonomy. Services depend on this, not on individual repositories.
type Store struct {
	Channels    *ChannelRepository
	Keywords    *KeywordRepository
	Videos      *VideoRepository
	Opinions    *OpinionRepository
	Reports     *ReportRepository
	Influencers *InfluencerRepository
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{
		Channels:    NewChannelRepository(db),
		Keywords:    NewKeywordRepository(db),
		Videos:      NewVideoRepository(db),
		Opinions:    NewOpinionRepository(db),
		Reports:     NewReportRepository(db),
		Influencers: NewInfluencerRepository(db),
	}
}

// mapErr translates driver-level failures into the shared taxonomy so
// callers never match on pgx types.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08 is connection exceptions, 57 is operator intervention
		// (shutdown, crash recovery).
		if len(pgErr.Code) >= 2 && (pgErr.Code[:2] == "08" || pgErr.Code[:2] == "57") {
			return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	return err
}

// Channel operations.

func (s *Store) UpsertChannel(ctx context.Context, ch *models.Channel) error {
	return mapErr(s.Channels.Upsert(ctx, ch))
}

func (s *Store) EnsureChannel(ctx context.Context, ch *models.Channel) error {
	return mapErr(s.Channels.Ensure(ctx, ch))
}

func (s *Store) GetChannel(ctx context.Context, channelID string) (*models.Channel, error) {
	ch, err := s.Channels.GetByID(ctx, channelID)
	return ch, mapErr(err)
}

func (s *Store) FindChannelByName(ctx context.Context, name string) (*models.Channel, error) {
	ch, err := s.Channels.GetByName(ctx, name)
	return ch, mapErr(err)
}

func (s *Store) ListChannels(ctx context.Context, activeOnly bool) ([]models.Channel, error) {
	channels, err := s.Channels.List(ctx, activeOnly)
	return channels, mapErr(err)
}

func (s *Store) SetChannelActive(ctx context.Context, channelID string, active bool) error {
	return mapErr(s.Channels.SetActive(ctx, channelID, active))
}

// Keyword operations.

func (s *Store) UpsertKeyword(ctx context.Context, kw *models.Keyword) error {
	return mapErr(s.Keywords.Upsert(ctx, kw))
}

func (s *Store) ListKeywords(ctx context.Context, activeOnly bool) ([]models.Keyword, error) {
	keywords, err := s.Keywords.List(ctx, activeOnly)
	return keywords, mapErr(err)
}

func (s *Store) SetKeywordActive(ctx context.Context, keyword string, active bool) error {
	return mapErr(s.Keywords.SetActive(ctx, keyword, active))
}

// Video operations.

func (s *Store) InsertVideo(ctx context.Context, v *models.Video) (bool, error) {
	inserted, err := s.Videos.Insert(ctx, v)
	return inserted, mapErr(err)
}

func (s *Store) AppendMatchedKeywords(ctx context.Context, videoID string, keywords []string) error {
	return mapErr(s.Videos.AppendMatchedKeywords(ctx, videoID, keywords))
}

func (s *Store) SetCaption(ctx context.Context, videoID, text, language string) error {
	return mapErr(s.Videos.SetCaption(ctx, videoID, text, language))
}

func (s *Store) GetVideo(ctx context.Context, videoID string) (*models.Video, error) {
	v, err := s.Videos.Get(ctx, videoID)
	return v, mapErr(err)
}

func (s *Store) QueryVideos(ctx context.Context, f VideoFilter) ([]models.Video, error) {
	videos, err := s.Videos.Query(ctx, f)
	return videos, mapErr(err)
}

func (s *Store) UnscoredVideos(ctx context.Context, since time.Time, limit int) ([]models.Video, error) {
	videos, err := s.Videos.Unscored(ctx, since, limit)
	return videos, mapErr(err)
}

// Opinion operations.

func (s *Store) InsertOpinion(ctx context.Context, o *models.Opinion) (bool, error) {
	inserted, err := s.Opinions.Insert(ctx, o)
	return inserted, mapErr(err)
}

func (s *Store) HasOpinion(ctx context.Context, videoID string) (bool, error) {
	exists, err := s.Opinions.ExistsForVideo(ctx, videoID)
	return exists, mapErr(err)
}

func (s *Store) QueryOpinions(ctx context.Context, f OpinionFilter) ([]models.ScoredVideo, error) {
	results, err := s.Opinions.Query(ctx, f)
	return results, mapErr(err)
}

func (s *Store) KeywordCounts(ctx context.Context, since time.Time, limit int) (map[string]int, error) {
	counts, err := s.Opinions.KeywordCounts(ctx, since, limit)
	return counts, mapErr(err)
}

// Report operations.

func (s *Store) InsertReport(ctx context.Context, rep *models.Report) error {
	return mapErr(s.Reports.Insert(ctx, rep))
}

func (s *Store) GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	rep, err := s.Reports.GetByID(ctx, id)
	return rep, mapErr(err)
}

func (s *Store) ListReports(ctx context.Context, reportType string, limit int) ([]models.Report, error) {
	reports, err := s.Reports.List(ctx, reportType, limit)
	return reports, mapErr(err)
}

// Influencer operations.

func (s *Store) UpsertInfluencer(ctx context.Context, inf *models.Influencer) error {
	return mapErr(s.Influencers.Upsert(ctx, inf))
}

func (s *Store) FindInfluencerByName(ctx context.Context, name string) (*models.Influencer, error) {
	inf, err := s.Influencers.GetByName(ctx, name)
	return inf, mapErr(err)
}

func (s *Store) ListInfluencers(ctx context.Context) ([]models.Influencer, error) {
	influencers, err := s.Influencers.List(ctx)
	return influencers, mapErr(err)
}

// Stats summarises table counts for the status endpoint.
type Stats struct {
	Channels int `json:"channels"`
	Keywords int `json:"keywords"`
	Videos   int `json:"videos"`
	Opinions int `json:"opinions"`
}

func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	var err error
	if stats.Channels, err = s.Channels.Count(ctx); err != nil {
		return nil, mapErr(err)
	}
	if stats.Keywords, err = s.Keywords.Count(ctx); err != nil {
		return nil, mapErr(err)
	}
	if stats.Videos, err = s.Videos.Count(ctx); err != nil {
		return nil, mapErr(err)
	}
	if stats.Opinions, err = s.Opinions.Count(ctx); err != nil {
		return nil, mapErr(err)
	}
	return &stats, nil
}
