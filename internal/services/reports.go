package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/blueblud7/dailyYoutubeSummary/internal/models"
	"github.com/blueblud7/dailyYoutubeSummary/internal/repository"
)

// ReportStore is the persistence surface the report builder needs;
// implemented by repository.Store.
type ReportStore interface {
	QueryOpinions(ctx context.Context, f repository.OpinionFilter) ([]models.ScoredVideo, error)
	KeywordCounts(ctx context.Context, since time.Time, limit int) (map[string]int, error)
	InsertReport(ctx context.Context, rep *models.Report) error
	FindChannelByName(ctx context.Context, name string) (*models.Channel, error)
	FindInfluencerByName(ctx context.Context, name string) (*models.Influencer, error)
}

// ReportCache is the day-keyed report cache surface; *Cache implements it.
type ReportCache interface {
	GetReport(ctx context.Context, reportType, key string) (string, bool)
	SetReport(ctx context.Context, reportType, key, body string)
}

// ReportService builds and persists reports. Reports are derived data:
// persisting one is best-effort and never blocks returning the rendered
// body to the caller.
type ReportService struct {
	store ReportStore
	cache ReportCache
}

func NewReportService(store ReportStore, cache ReportCache) *ReportService {
	return &ReportService{store: store, cache: cache}
}

// Daily builds the report for one calendar day in local time.
func (s *ReportService) Daily(ctx context.Context, date time.Time) (*models.Report, error) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	end := start.AddDate(0, 0, 1)
	cacheKey := start.Format("2006-01-02")

	if rep, ok := s.cachedReport(ctx, models.ReportDaily, cacheKey); ok {
		return rep, nil
	}

	rows, err := s.store.QueryOpinions(ctx, repository.OpinionFilter{Since: start, Until: end})
	if err != nil {
		return nil, fmt.Errorf("failed to query opinions: %w", err)
	}

	stats := Aggregate(rows)
	body := renderDaily(start, stats, rows)

	rep := &models.Report{
		ReportType:  models.ReportDaily,
		Title:       fmt.Sprintf("%s 일일 투자 리포트", cacheKey),
		Body:        body,
		Params:      mustParams(map[string]interface{}{"date": cacheKey}),
		PeriodStart: start,
		PeriodEnd:   end,
		SourceCount: stats.Count,
	}
	s.persist(ctx, rep)
	s.cacheReport(ctx, models.ReportDaily, cacheKey, rep)
	return rep, nil
}

// Weekly builds the report for the seven days ending at endDate (exclusive).
func (s *ReportService) Weekly(ctx context.Context, endDate time.Time) (*models.Report, error) {
	end := time.Date(endDate.Year(), endDate.Month(), endDate.Day(), 0, 0, 0, 0, endDate.Location())
	start := end.AddDate(0, 0, -7)
	cacheKey := end.Format("2006-01-02")

	if rep, ok := s.cachedReport(ctx, models.ReportWeekly, cacheKey); ok {
		return rep, nil
	}

	rows, err := s.store.QueryOpinions(ctx, repository.OpinionFilter{Since: start, Until: end})
	if err != nil {
		return nil, fmt.Errorf("failed to query opinions: %w", err)
	}

	stats := Aggregate(rows)
	body := renderWeekly(start, end.AddDate(0, 0, -1), stats, rows)

	rep := &models.Report{
		ReportType:  models.ReportWeekly,
		Title:       fmt.Sprintf("주간 투자 리포트 (~%s)", cacheKey),
		Body:        body,
		Params:      mustParams(map[string]interface{}{"end_date": cacheKey}),
		PeriodStart: start,
		PeriodEnd:   end,
		SourceCount: stats.Count,
	}
	s.persist(ctx, rep)
	s.cacheReport(ctx, models.ReportWeekly, cacheKey, rep)
	return rep, nil
}

// Keyword builds a report over everything matching one keyword in the last
// days days.
func (s *ReportService) Keyword(ctx context.Context, keyword string, days int) (*models.Report, error) {
	if days <= 0 {
		days = 7
	}
	end := time.Now()
	start := end.AddDate(0, 0, -days)

	rows, err := s.store.QueryOpinions(ctx, repository.OpinionFilter{Since: start, Keyword: keyword})
	if err != nil {
		return nil, fmt.Errorf("failed to query opinions: %w", err)
	}

	stats := Aggregate(rows)
	body := renderKeyword(keyword, days, stats, rows)

	rep := &models.Report{
		ReportType:  models.ReportKeyword,
		Title:       fmt.Sprintf("'%s' 키워드 분석 리포트", keyword),
		Body:        body,
		Params:      mustParams(map[string]interface{}{"keyword": keyword, "days": days}),
		PeriodStart: start,
		PeriodEnd:   end,
		SourceCount: stats.Count,
	}
	s.persist(ctx, rep)
	return rep, nil
}

// Channel builds a report over one channel, looked up by name fragment.
func (s *ReportService) Channel(ctx context.Context, channelName string, days int) (*models.Report, error) {
	if days <= 0 {
		days = 7
	}
	ch, err := s.store.FindChannelByName(ctx, channelName)
	if err != nil {
		return nil, err
	}

	end := time.Now()
	start := end.AddDate(0, 0, -days)

	rows, err := s.store.QueryOpinions(ctx, repository.OpinionFilter{Since: start, ChannelIDs: []string{ch.ChannelID}})
	if err != nil {
		return nil, fmt.Errorf("failed to query opinions: %w", err)
	}

	stats := Aggregate(rows)
	body := renderChannel(ch.Name, days, stats, rows)

	rep := &models.Report{
		ReportType:  models.ReportChannel,
		Title:       fmt.Sprintf("'%s' 채널 분석 리포트", ch.Name),
		Body:        body,
		Params:      mustParams(map[string]interface{}{"channel_id": ch.ChannelID, "days": days}),
		PeriodStart: start,
		PeriodEnd:   end,
		SourceCount: stats.Count,
	}
	s.persist(ctx, rep)
	return rep, nil
}

// Influencer builds a report over an influencer's registered channels.
func (s *ReportService) Influencer(ctx context.Context, name string, days int) (*models.Report, error) {
	if days <= 0 {
		days = 14
	}
	inf, err := s.store.FindInfluencerByName(ctx, name)
	if err != nil {
		return nil, err
	}

	end := time.Now()
	start := end.AddDate(0, 0, -days)

	rows, err := s.store.QueryOpinions(ctx, repository.OpinionFilter{Since: start, ChannelIDs: inf.ChannelIDs})
	if err != nil {
		return nil, fmt.Errorf("failed to query opinions: %w", err)
	}

	stats := Aggregate(rows)
	body := renderInfluencer(inf.Name, inf.Title, days, stats, rows)

	rep := &models.Report{
		ReportType:  models.ReportInfluencer,
		Title:       fmt.Sprintf("%s 의견 분석", inf.Name),
		Body:        body,
		Params:      mustParams(map[string]interface{}{"influencer": inf.Name, "days": days}),
		PeriodStart: start,
		PeriodEnd:   end,
		SourceCount: stats.Count,
	}
	s.persist(ctx, rep)
	return rep, nil
}

// Perspective contrasts what different channels say about one topic.
func (s *ReportService) Perspective(ctx context.Context, topic string, days int) (*models.Report, error) {
	if days <= 0 {
		days = 7
	}
	end := time.Now()
	start := end.AddDate(0, 0, -days)

	rows, err := s.store.QueryOpinions(ctx, repository.OpinionFilter{Since: start, Keyword: topic})
	if err != nil {
		return nil, fmt.Errorf("failed to query opinions: %w", err)
	}

	overall := Aggregate(rows)
	groups := groupByChannel(rows)
	body := renderPerspective(topic, days, overall, groups)

	rep := &models.Report{
		ReportType:  models.ReportPerspective,
		Title:       fmt.Sprintf("'%s' 관점 비교 리포트", topic),
		Body:        body,
		Params:      mustParams(map[string]interface{}{"topic": topic, "days": days}),
		PeriodStart: start,
		PeriodEnd:   end,
		SourceCount: overall.Count,
	}
	s.persist(ctx, rep)
	return rep, nil
}

// Multi summarises several keywords side by side.
func (s *ReportService) Multi(ctx context.Context, keywords []string, days int) (*models.Report, error) {
	if days <= 0 {
		days = 7
	}
	end := time.Now()
	start := end.AddDate(0, 0, -days)

	sections := make([]multiSection, 0, len(keywords))
	total := 0
	for _, kw := range keywords {
		rows, err := s.store.QueryOpinions(ctx, repository.OpinionFilter{Since: start, Keyword: kw})
		if err != nil {
			return nil, fmt.Errorf("failed to query opinions for %q: %w", kw, err)
		}
		stats := Aggregate(rows)
		total += stats.Count
		sections = append(sections, multiSection{Keyword: kw, Stats: stats})
	}

	body := renderMulti(days, sections)
	rep := &models.Report{
		ReportType:  models.ReportMulti,
		Title:       "멀티 키워드 리포트",
		Body:        body,
		Params:      mustParams(map[string]interface{}{"keywords": keywords, "days": days}),
		PeriodStart: start,
		PeriodEnd:   end,
		SourceCount: total,
	}
	s.persist(ctx, rep)
	return rep, nil
}

// Hot lists the most active keywords in the window.
func (s *ReportService) Hot(ctx context.Context, days int) (*models.Report, error) {
	if days <= 0 {
		days = 3
	}
	end := time.Now()
	start := end.AddDate(0, 0, -days)

	counts, err := s.store.KeywordCounts(ctx, start, 20)
	if err != nil {
		return nil, fmt.Errorf("failed to count keywords: %w", err)
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	body := renderHot(days, counts)

	rep := &models.Report{
		ReportType:  models.ReportHot,
		Title:       "핫 토픽",
		Body:        body,
		Params:      mustParams(map[string]interface{}{"days": days}),
		PeriodStart: start,
		PeriodEnd:   end,
		SourceCount: total,
	}
	s.persist(ctx, rep)
	return rep, nil
}

// Trend shows how sentiment on a keyword moved day by day.
func (s *ReportService) Trend(ctx context.Context, keyword string, days int) (*models.Report, error) {
	if days <= 0 {
		days = 14
	}
	end := time.Now()
	start := end.AddDate(0, 0, -days)

	rows, err := s.store.QueryOpinions(ctx, repository.OpinionFilter{Since: start, Keyword: keyword})
	if err != nil {
		return nil, fmt.Errorf("failed to query opinions: %w", err)
	}

	points := bucketByDay(rows, start, days)
	body := renderTrend(keyword, days, points)

	rep := &models.Report{
		ReportType:  models.ReportTrend,
		Title:       fmt.Sprintf("'%s' 감정 추이", keyword),
		Body:        body,
		Params:      mustParams(map[string]interface{}{"keyword": keyword, "days": days}),
		PeriodStart: start,
		PeriodEnd:   end,
		SourceCount: len(dedupeByVideo(rows)),
	}
	s.persist(ctx, rep)
	return rep, nil
}

// persist stores the report, logging failures without failing the caller.
func (s *ReportService) persist(ctx context.Context, rep *models.Report) {
	if err := s.store.InsertReport(ctx, rep); err != nil {
		log.Printf("ReportService: failed to persist %s report: %v", rep.ReportType, err)
	}
}

// cachedReport returns a cached report in full, not just its body, so a
// cache hit carries the same metadata as a freshly built one.
func (s *ReportService) cachedReport(ctx context.Context, reportType, key string) (*models.Report, bool) {
	raw, ok := s.cache.GetReport(ctx, reportType, key)
	if !ok {
		return nil, false
	}
	var rep models.Report
	if err := json.Unmarshal([]byte(raw), &rep); err != nil {
		return nil, false
	}
	return &rep, true
}

func (s *ReportService) cacheReport(ctx context.Context, reportType, key string, rep *models.Report) {
	data, err := json.Marshal(rep)
	if err != nil {
		return
	}
	s.cache.SetReport(ctx, reportType, key, string(data))
}

func mustParams(params map[string]interface{}) json.RawMessage {
	data, err := json.Marshal(params)
	if err != nil {
		return json.RawMessage("{}")
	}
	return data
}

func groupByChannel(rows []models.ScoredVideo) []perspectiveGroup {
	type agg struct {
		name  string
		count int
		sum   float64
	}
	byChannel := make(map[string]*agg)
	for _, row := range dedupeByVideo(rows) {
		a, ok := byChannel[row.ChannelID]
		if !ok {
			a = &agg{name: row.ChannelName}
			byChannel[row.ChannelID] = a
		}
		a.count++
		a.sum += row.Sentiment
	}

	groups := make([]perspectiveGroup, 0, len(byChannel))
	for _, a := range byChannel {
		groups = append(groups, perspectiveGroup{
			ChannelName:   a.name,
			Count:         a.count,
			MeanSentiment: a.sum / float64(a.count),
		})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].ChannelName < groups[j].ChannelName
	})
	return groups
}

func bucketByDay(rows []models.ScoredVideo, start time.Time, days int) []trendPoint {
	points := make([]trendPoint, days)
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	for i := range points {
		points[i].Date = day.AddDate(0, 0, i)
	}

	for _, row := range dedupeByVideo(rows) {
		idx := int(row.PublishedAt.Sub(day).Hours() / 24)
		if idx < 0 || idx >= days {
			continue
		}
		points[idx].Count++
		points[idx].MeanSentiment += row.Sentiment
	}
	for i := range points {
		if points[i].Count > 0 {
			points[i].MeanSentiment /= float64(points[i].Count)
		}
	}
	return points
}
