package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/blueblud7/dailyYoutubeSummary/internal/models"
	"github.com/blueblud7/dailyYoutubeSummary/internal/repository"
)

type fakeReportStore struct {
	rows        []models.ScoredVideo
	counts      map[string]int
	channels    map[string]*models.Channel
	influencers map[string]*models.Influencer
	inserted    []*models.Report
	insertErr   error
}

func (f *fakeReportStore) QueryOpinions(ctx context.Context, filter repository.OpinionFilter) ([]models.ScoredVideo, error) {
	var out []models.ScoredVideo
	for _, row := range f.rows {
		if !filter.Since.IsZero() && row.PublishedAt.Before(filter.Since) {
			continue
		}
		if !filter.Until.IsZero() && !row.PublishedAt.Before(filter.Until) {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(row.VideoTitle, filter.Keyword) && !strings.Contains(row.Summary, filter.Keyword) {
			continue
		}
		if len(filter.ChannelIDs) > 0 {
			match := false
			for _, id := range filter.ChannelIDs {
				if row.ChannelID == id {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func (f *fakeReportStore) KeywordCounts(ctx context.Context, since time.Time, limit int) (map[string]int, error) {
	return f.counts, nil
}

func (f *fakeReportStore) InsertReport(ctx context.Context, rep *models.Report) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, rep)
	return nil
}

func (f *fakeReportStore) FindChannelByName(ctx context.Context, name string) (*models.Channel, error) {
	if ch, ok := f.channels[name]; ok {
		return ch, nil
	}
	return nil, models.ErrNotFound
}

func (f *fakeReportStore) FindInfluencerByName(ctx context.Context, name string) (*models.Influencer, error) {
	if inf, ok := f.influencers[name]; ok {
		return inf, nil
	}
	return nil, models.ErrNotFound
}

type fakeReportCache struct {
	entries map[string]string
}

func newFakeReportCache() *fakeReportCache {
	return &fakeReportCache{entries: make(map[string]string)}
}

func (f *fakeReportCache) GetReport(ctx context.Context, reportType, key string) (string, bool) {
	val, ok := f.entries[reportType+":"+key]
	return val, ok
}

func (f *fakeReportCache) SetReport(ctx context.Context, reportType, key, body string) {
	f.entries[reportType+":"+key] = body
}

func TestDailyReportWindowAndPersistence(t *testing.T) {
	today := scoredVideo("today", "ch1", 0.3, 0.5)
	yesterday := scoredVideo("yesterday", "ch1", 0.3, 0.5)
	yesterday.PublishedAt = time.Now().AddDate(0, 0, -1)

	store := &fakeReportStore{rows: []models.ScoredVideo{today, yesterday}}
	svc := NewReportService(store, NewCache(nil))

	rep, err := svc.Daily(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("Daily failed: %v", err)
	}

	if rep.ReportType != models.ReportDaily {
		t.Errorf("unexpected report type %q", rep.ReportType)
	}
	if rep.SourceCount != 1 {
		t.Errorf("yesterday's video must be outside the daily window, got %d sources", rep.SourceCount)
	}
	if !strings.Contains(rep.Body, "영상 today") {
		t.Errorf("today's video missing from report:\n%s", rep.Body)
	}
	if len(store.inserted) != 1 {
		t.Fatalf("report must be persisted, got %d inserts", len(store.inserted))
	}
}

func TestDailyReportSurvivesPersistFailure(t *testing.T) {
	store := &fakeReportStore{
		rows:      []models.ScoredVideo{scoredVideo("v1", "ch1", 0.1, 0.5)},
		insertErr: models.ErrStoreUnavailable,
	}
	svc := NewReportService(store, NewCache(nil))

	rep, err := svc.Daily(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("persist failure must not fail report generation: %v", err)
	}
	if rep.Body == "" {
		t.Error("expected a rendered body despite persist failure")
	}
}

func TestDailyReportCacheHitKeepsMetadata(t *testing.T) {
	store := &fakeReportStore{rows: []models.ScoredVideo{scoredVideo("v1", "ch1", 0.3, 0.5)}}
	svc := NewReportService(store, newFakeReportCache())

	fresh, err := svc.Daily(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("first Daily failed: %v", err)
	}

	cached, err := svc.Daily(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("second Daily failed: %v", err)
	}

	if cached.SourceCount != fresh.SourceCount {
		t.Errorf("cache hit lost source count: fresh %d, cached %d", fresh.SourceCount, cached.SourceCount)
	}
	if string(cached.Params) != string(fresh.Params) {
		t.Errorf("cache hit lost params: fresh %s, cached %s", fresh.Params, cached.Params)
	}
	if cached.Body != fresh.Body {
		t.Error("cache hit body differs from the fresh report")
	}
	if len(store.inserted) != 1 {
		t.Errorf("cache hit must not re-persist, got %d inserts", len(store.inserted))
	}
}

func TestChannelReportUnknownChannel(t *testing.T) {
	store := &fakeReportStore{channels: map[string]*models.Channel{}}
	svc := NewReportService(store, NewCache(nil))

	if _, err := svc.Channel(context.Background(), "없는채널", 7); err == nil {
		t.Error("expected error for unknown channel")
	}
}

func TestInfluencerReportFiltersByChannels(t *testing.T) {
	mine := scoredVideo("mine", "ch1", 0.4, 0.8)
	other := scoredVideo("other", "ch9", -0.4, 0.8)
	store := &fakeReportStore{
		rows: []models.ScoredVideo{mine, other},
		influencers: map[string]*models.Influencer{
			"오건영": {Name: "오건영", Title: "이코노미스트", ChannelIDs: []string{"ch1"}},
		},
	}
	svc := NewReportService(store, NewCache(nil))

	rep, err := svc.Influencer(context.Background(), "오건영", 14)
	if err != nil {
		t.Fatalf("Influencer failed: %v", err)
	}
	if rep.SourceCount != 1 {
		t.Errorf("expected only the influencer's channel counted, got %d", rep.SourceCount)
	}
	if !strings.Contains(rep.Body, "오건영") {
		t.Errorf("influencer name missing:\n%s", rep.Body)
	}
}

func TestMultiReportSectionPerKeyword(t *testing.T) {
	hit := scoredVideo("v1", "ch1", 0.5, 0.5)
	hit.VideoTitle = "금리 전망"
	store := &fakeReportStore{rows: []models.ScoredVideo{hit}}
	svc := NewReportService(store, NewCache(nil))

	rep, err := svc.Multi(context.Background(), []string{"금리", "부동산"}, 7)
	if err != nil {
		t.Fatalf("Multi failed: %v", err)
	}
	if !strings.Contains(rep.Body, "'금리': 1개 분석") {
		t.Errorf("keyword with data missing its line:\n%s", rep.Body)
	}
	if !strings.Contains(rep.Body, "'부동산': 분석된 영상 없음") {
		t.Errorf("keyword without data missing its line:\n%s", rep.Body)
	}
}

func TestHotReportUsesKeywordCounts(t *testing.T) {
	store := &fakeReportStore{counts: map[string]int{"주식": 4, "금리": 7}}
	svc := NewReportService(store, NewCache(nil))

	rep, err := svc.Hot(context.Background(), 3)
	if err != nil {
		t.Fatalf("Hot failed: %v", err)
	}
	if rep.SourceCount != 11 {
		t.Errorf("expected source count 11, got %d", rep.SourceCount)
	}
	if !strings.Contains(rep.Body, "금리") {
		t.Errorf("hot keyword missing:\n%s", rep.Body)
	}
}

func TestTrendReportBucketsByDay(t *testing.T) {
	row := scoredVideo("v1", "ch1", 0.6, 0.5)
	row.VideoTitle = "주식 시장"
	row.PublishedAt = time.Now().AddDate(0, 0, -2)
	store := &fakeReportStore{rows: []models.ScoredVideo{row}}
	svc := NewReportService(store, NewCache(nil))

	rep, err := svc.Trend(context.Background(), "주식", 14)
	if err != nil {
		t.Fatalf("Trend failed: %v", err)
	}
	if rep.SourceCount != 1 {
		t.Errorf("expected 1 source, got %d", rep.SourceCount)
	}
	if !strings.Contains(rep.Body, "0.60") {
		t.Errorf("day's sentiment missing:\n%s", rep.Body)
	}
}

func TestPerspectiveReportAgainstThreshold(t *testing.T) {
	agree := scoredVideo("a", "ch1", 0.2, 0.5)
	agree.VideoTitle = "금리 인하"
	disagree := scoredVideo("d", "ch2", -0.8, 0.5)
	disagree.VideoTitle = "금리 공포"
	store := &fakeReportStore{rows: []models.ScoredVideo{agree, disagree}}
	svc := NewReportService(store, NewCache(nil))

	rep, err := svc.Perspective(context.Background(), "금리", 7)
	if err != nil {
		t.Fatalf("Perspective failed: %v", err)
	}
	if !strings.Contains(rep.Body, "다른 관점") {
		t.Errorf("expected a divergent section:\n%s", rep.Body)
	}
}
