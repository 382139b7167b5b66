package services

import (
	"strings"
	"testing"
	"time"

	"github.com/blueblud7/dailyYoutubeSummary/internal/models"
)

func scoredVideo(videoID, channelID string, sentiment, importance float64) models.ScoredVideo {
	sv := models.ScoredVideo{
		ChannelID:   channelID,
		ChannelName: "채널 " + channelID,
		VideoTitle:  "영상 " + videoID,
		PublishedAt: time.Now(),
	}
	sv.VideoID = videoID
	sv.Sentiment = sentiment
	sv.Importance = importance
	sv.Summary = "요약 " + videoID
	return sv
}

func TestAggregateSentimentBuckets(t *testing.T) {
	var rows []models.ScoredVideo
	// 3 positive, 2 neutral (boundary values included), 2 negative.
	rows = append(rows,
		scoredVideo("p1", "ch1", 0.5, 0.5),
		scoredVideo("p2", "ch1", 0.11, 0.5),
		scoredVideo("p3", "ch2", 0.9, 0.5),
		scoredVideo("n1", "ch2", 0.1, 0.5),
		scoredVideo("n2", "ch2", -0.1, 0.5),
		scoredVideo("m1", "ch3", -0.11, 0.5),
		scoredVideo("m2", "ch3", -0.8, 0.5),
	)

	stats := Aggregate(rows)
	if stats.Count != 7 {
		t.Fatalf("expected 7 rows counted, got %d", stats.Count)
	}
	if stats.Positive != 3 {
		t.Errorf("expected 3 positive, got %d", stats.Positive)
	}
	if stats.Neutral != 2 {
		t.Errorf("boundary scores ±0.1 must be neutral, got %d", stats.Neutral)
	}
	if stats.Negative != 2 {
		t.Errorf("expected 2 negative, got %d", stats.Negative)
	}
	if stats.Channels != 3 {
		t.Errorf("expected 3 channels, got %d", stats.Channels)
	}
}

func TestAggregateDeduplicatesByVideo(t *testing.T) {
	rows := []models.ScoredVideo{
		scoredVideo("v1", "ch1", 1.0, 1.0),
		scoredVideo("v1", "ch1", 1.0, 1.0),
		scoredVideo("v2", "ch1", 0.0, 0.0),
	}

	stats := Aggregate(rows)
	if stats.Count != 2 {
		t.Errorf("duplicate video must count once, got %d", stats.Count)
	}
	if stats.MeanSentiment != 0.5 {
		t.Errorf("expected mean 0.5, got %f", stats.MeanSentiment)
	}
}

func TestAggregateEmpty(t *testing.T) {
	stats := Aggregate(nil)
	if stats.Count != 0 || stats.MeanSentiment != 0 {
		t.Errorf("empty aggregate should be zero-valued: %+v", stats)
	}
}

func TestSentimentLabel(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.5, "매우 긍정적"},
		{0.31, "매우 긍정적"},
		{0.3, "긍정적"},
		{0.2, "긍정적"},
		{0.1, "중립적"},
		{0.0, "중립적"},
		{-0.1, "부정적"},
		{-0.3, "매우 부정적"},
		{-0.9, "매우 부정적"},
	}
	for _, tc := range tests {
		if got := sentimentLabel(tc.score); got != tc.want {
			t.Errorf("sentimentLabel(%f) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestRenderKeywordFormat(t *testing.T) {
	rows := []models.ScoredVideo{
		scoredVideo("v1", "ch1", 0.4, 0.9),
		scoredVideo("v2", "ch2", 0.2, 0.5),
		scoredVideo("v3", "ch2", -0.5, 0.3),
	}
	stats := Aggregate(rows)
	body := renderKeyword("금리", 7, stats, rows)

	for _, want := range []string{
		"🔍 **'금리' 키워드 분석 리포트**",
		"• 분석 수: 3개",
		"• 채널 수: 2개",
		"😊 **감정 분포**",
		"• 긍정: 2개",
		"• 중립: 0개",
		"• 부정: 1개",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("report missing %q:\n%s", want, body)
		}
	}
}

func TestRenderDailyNoData(t *testing.T) {
	body := renderDaily(time.Now(), ReportStats{}, nil)
	if !strings.Contains(body, noDataMessage) {
		t.Errorf("empty daily report should carry the no-data message:\n%s", body)
	}
}

func TestRenderHighlightsOrderedByImportance(t *testing.T) {
	rows := []models.ScoredVideo{
		scoredVideo("low", "ch1", 0.0, 0.1),
		scoredVideo("high", "ch1", 0.0, 0.9),
		scoredVideo("mid", "ch1", 0.0, 0.5),
	}
	body := renderDaily(time.Now(), Aggregate(rows), rows)

	highIdx := strings.Index(body, "영상 high")
	midIdx := strings.Index(body, "영상 mid")
	lowIdx := strings.Index(body, "영상 low")
	if highIdx < 0 || midIdx < 0 || lowIdx < 0 {
		t.Fatalf("highlights missing from report:\n%s", body)
	}
	if !(highIdx < midIdx && midIdx < lowIdx) {
		t.Errorf("highlights not ordered by importance:\n%s", body)
	}
}

func TestRenderHotOrdersByCount(t *testing.T) {
	body := renderHot(3, map[string]int{"주식": 5, "금리": 9, "달러": 2})

	kIdx := strings.Index(body, "금리")
	sIdx := strings.Index(body, "주식")
	dIdx := strings.Index(body, "달러")
	if !(kIdx < sIdx && sIdx < dIdx) {
		t.Errorf("hot topics not ordered by count:\n%s", body)
	}
	if !strings.Contains(body, "1. 금리 (9개 영상)") {
		t.Errorf("unexpected hot topic line:\n%s", body)
	}
}

func TestRenderPerspectiveSplitsConsensus(t *testing.T) {
	overall := ReportStats{Count: 4, MeanSentiment: 0.2}
	groups := []perspectiveGroup{
		{ChannelName: "동의채널", Count: 2, MeanSentiment: 0.3},
		{ChannelName: "반대채널", Count: 2, MeanSentiment: -0.4},
	}
	body := renderPerspective("금리", 7, overall, groups)

	consensusIdx := strings.Index(body, "🤝 **공통 의견**")
	divergentIdx := strings.Index(body, "⚡ **다른 관점**")
	if consensusIdx < 0 || divergentIdx < 0 {
		t.Fatalf("perspective sections missing:\n%s", body)
	}
	agreePos := strings.Index(body, "동의채널")
	disagreePos := strings.Index(body, "반대채널")
	if !(consensusIdx < agreePos && agreePos < divergentIdx && divergentIdx < disagreePos) {
		t.Errorf("channels in wrong sections:\n%s", body)
	}
}

func TestRenderTrendSkipsEmptyDays(t *testing.T) {
	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.Local)
	points := []trendPoint{
		{Date: day, Count: 2, MeanSentiment: 0.5},
		{Date: day.AddDate(0, 0, 1), Count: 0},
		{Date: day.AddDate(0, 0, 2), Count: 1, MeanSentiment: -0.2},
	}
	body := renderTrend("주식", 3, points)

	if !strings.Contains(body, "08-01") || !strings.Contains(body, "08-03") {
		t.Errorf("trend days missing:\n%s", body)
	}
	if strings.Contains(body, "08-02") {
		t.Errorf("empty day should be skipped:\n%s", body)
	}
}
