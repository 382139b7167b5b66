package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/blueblud7/dailyYoutubeSummary/internal/models"
)

// ReportStats is the aggregate the renderers work from.
type ReportStats struct {
	Count          int
	Channels       int
	MeanSentiment  float64
	MeanImportance float64
	Positive       int
	Neutral        int
	Negative       int
	TopEntities    []EntityCount
}

type EntityCount struct {
	Name  string
	Count int
}

// Aggregate folds scored videos into report statistics. Rows are deduplicated
// by video ID first so overlapping query results never double-count.
func Aggregate(rows []models.ScoredVideo) ReportStats {
	var stats ReportStats
	seen := make(map[string]bool)
	channels := make(map[string]bool)
	entities := make(map[string]int)
	var sentimentSum, importanceSum float64

	for _, row := range rows {
		if seen[row.VideoID] {
			continue
		}
		seen[row.VideoID] = true

		stats.Count++
		channels[row.ChannelID] = true
		sentimentSum += row.Sentiment
		importanceSum += row.Importance

		switch {
		case row.Sentiment > 0.1:
			stats.Positive++
		case row.Sentiment < -0.1:
			stats.Negative++
		default:
			stats.Neutral++
		}

		for _, e := range row.Entities {
			if e.Name != "" {
				entities[e.Name]++
			}
		}
	}

	stats.Channels = len(channels)
	if stats.Count > 0 {
		stats.MeanSentiment = sentimentSum / float64(stats.Count)
		stats.MeanImportance = importanceSum / float64(stats.Count)
	}

	for name, count := range entities {
		stats.TopEntities = append(stats.TopEntities, EntityCount{Name: name, Count: count})
	}
	sort.Slice(stats.TopEntities, func(i, j int) bool {
		if stats.TopEntities[i].Count != stats.TopEntities[j].Count {
			return stats.TopEntities[i].Count > stats.TopEntities[j].Count
		}
		return stats.TopEntities[i].Name < stats.TopEntities[j].Name
	})
	if len(stats.TopEntities) > 10 {
		stats.TopEntities = stats.TopEntities[:10]
	}

	return stats
}

// sentimentLabel maps a score to its Korean market-mood label.
func sentimentLabel(s float64) string {
	switch {
	case s > 0.3:
		return "매우 긍정적"
	case s > 0.1:
		return "긍정적"
	case s > -0.1:
		return "중립적"
	case s > -0.3:
		return "부정적"
	default:
		return "매우 부정적"
	}
}

// dedupeByVideo returns rows with duplicate video IDs removed, order kept.
func dedupeByVideo(rows []models.ScoredVideo) []models.ScoredVideo {
	seen := make(map[string]bool, len(rows))
	out := rows[:0:0]
	for _, row := range rows {
		if seen[row.VideoID] {
			continue
		}
		seen[row.VideoID] = true
		out = append(out, row)
	}
	return out
}

// topByImportance returns up to n rows, most important first.
func topByImportance(rows []models.ScoredVideo, n int) []models.ScoredVideo {
	sorted := append([]models.ScoredVideo(nil), dedupeByVideo(rows)...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Importance > sorted[j].Importance
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func writeStatsBlock(b *strings.Builder, stats ReportStats) {
	fmt.Fprintf(b, "📊 **분석 현황**\n")
	fmt.Fprintf(b, "• 분석 수: %d개\n", stats.Count)
	fmt.Fprintf(b, "• 채널 수: %d개\n", stats.Channels)
	fmt.Fprintf(b, "• 평균 감정: %.2f (%s)\n\n", stats.MeanSentiment, sentimentLabel(stats.MeanSentiment))
	fmt.Fprintf(b, "😊 **감정 분포**\n")
	fmt.Fprintf(b, "• 긍정: %d개\n", stats.Positive)
	fmt.Fprintf(b, "• 중립: %d개\n", stats.Neutral)
	fmt.Fprintf(b, "• 부정: %d개\n", stats.Negative)
}

func writeHighlights(b *strings.Builder, rows []models.ScoredVideo, n int) {
	top := topByImportance(rows, n)
	if len(top) == 0 {
		return
	}
	fmt.Fprintf(b, "\n💡 **주요 영상**\n")
	for i, row := range top {
		fmt.Fprintf(b, "%d. [%s] %s\n", i+1, row.ChannelName, row.VideoTitle)
		if row.Summary != "" {
			fmt.Fprintf(b, "   → %s\n", row.Summary)
		}
	}
}

func writeEntities(b *strings.Builder, stats ReportStats) {
	if len(stats.TopEntities) == 0 {
		return
	}
	fmt.Fprintf(b, "\n🏷 **주요 키워드/종목**\n")
	for _, e := range stats.TopEntities {
		if e.Count < 2 {
			continue
		}
		fmt.Fprintf(b, "• %s (%d회)\n", e.Name, e.Count)
	}
}

const noDataMessage = "해당 기간에 분석된 영상이 없습니다."

func renderDaily(date time.Time, stats ReportStats, rows []models.ScoredVideo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 **%s 일일 투자 리포트**\n\n", date.Format("2006-01-02"))
	if stats.Count == 0 {
		b.WriteString(noDataMessage)
		return b.String()
	}
	writeStatsBlock(&b, stats)
	writeHighlights(&b, rows, 5)
	writeEntities(&b, stats)
	return b.String()
}

func renderWeekly(start, end time.Time, stats ReportStats, rows []models.ScoredVideo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🗓 **주간 투자 리포트 (%s ~ %s)**\n\n",
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	if stats.Count == 0 {
		b.WriteString(noDataMessage)
		return b.String()
	}
	writeStatsBlock(&b, stats)
	writeHighlights(&b, rows, 7)
	writeEntities(&b, stats)
	return b.String()
}

func renderKeyword(keyword string, days int, stats ReportStats, rows []models.ScoredVideo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔍 **'%s' 키워드 분석 리포트** (최근 %d일)\n\n", keyword, days)
	if stats.Count == 0 {
		fmt.Fprintf(&b, "'%s' 키워드에 대해 %s", keyword, noDataMessage)
		return b.String()
	}
	writeStatsBlock(&b, stats)
	writeHighlights(&b, rows, 5)
	writeEntities(&b, stats)
	return b.String()
}

func renderChannel(channelName string, days int, stats ReportStats, rows []models.ScoredVideo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📺 **'%s' 채널 분석 리포트** (최근 %d일)\n\n", channelName, days)
	if stats.Count == 0 {
		b.WriteString(noDataMessage)
		return b.String()
	}
	writeStatsBlock(&b, stats)
	writeHighlights(&b, rows, 5)
	writeEntities(&b, stats)
	return b.String()
}

func renderInfluencer(name, title string, days int, stats ReportStats, rows []models.ScoredVideo) string {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "👤 **%s (%s) 의견 분석** (최근 %d일)\n\n", name, title, days)
	} else {
		fmt.Fprintf(&b, "👤 **%s 의견 분석** (최근 %d일)\n\n", name, days)
	}
	if stats.Count == 0 {
		b.WriteString(noDataMessage)
		return b.String()
	}
	writeStatsBlock(&b, stats)
	writeHighlights(&b, rows, 5)
	writeEntities(&b, stats)
	return b.String()
}

// perspectiveGroup is one channel's aggregated stance on a topic.
type perspectiveGroup struct {
	ChannelName   string
	Count         int
	MeanSentiment float64
}

// renderPerspective contrasts per-channel stances on a topic. Channels whose
// mean sentiment sits within the agreement threshold of the overall mean are
// consensus; the rest are divergent.
func renderPerspective(topic string, days int, overall ReportStats, groups []perspectiveGroup) string {
	const agreementThreshold = 0.3

	var b strings.Builder
	fmt.Fprintf(&b, "⚖️ **'%s' 관점 비교 리포트** (최근 %d일)\n\n", topic, days)
	if overall.Count == 0 {
		b.WriteString(noDataMessage)
		return b.String()
	}

	fmt.Fprintf(&b, "전체 평균 감정: %.2f (%s), 분석 수: %d개\n\n",
		overall.MeanSentiment, sentimentLabel(overall.MeanSentiment), overall.Count)

	var consensus, divergent []perspectiveGroup
	for _, g := range groups {
		if diff := g.MeanSentiment - overall.MeanSentiment; diff >= -agreementThreshold && diff <= agreementThreshold {
			consensus = append(consensus, g)
		} else {
			divergent = append(divergent, g)
		}
	}

	if len(consensus) > 0 {
		b.WriteString("🤝 **공통 의견**\n")
		for _, g := range consensus {
			fmt.Fprintf(&b, "• %s: %.2f (%s, %d개)\n", g.ChannelName, g.MeanSentiment, sentimentLabel(g.MeanSentiment), g.Count)
		}
	}
	if len(divergent) > 0 {
		b.WriteString("\n⚡ **다른 관점**\n")
		for _, g := range divergent {
			fmt.Fprintf(&b, "• %s: %.2f (%s, %d개)\n", g.ChannelName, g.MeanSentiment, sentimentLabel(g.MeanSentiment), g.Count)
		}
	}
	return b.String()
}

// renderMulti shows one summary line per keyword side by side.
type multiSection struct {
	Keyword string
	Stats   ReportStats
}

func renderMulti(days int, sections []multiSection) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📚 **멀티 키워드 리포트** (최근 %d일)\n\n", days)
	any := false
	for _, sec := range sections {
		if sec.Stats.Count == 0 {
			fmt.Fprintf(&b, "• '%s': 분석된 영상 없음\n", sec.Keyword)
			continue
		}
		any = true
		fmt.Fprintf(&b, "• '%s': %d개 분석, 평균 감정 %.2f (%s)\n",
			sec.Keyword, sec.Stats.Count, sec.Stats.MeanSentiment, sentimentLabel(sec.Stats.MeanSentiment))
	}
	if !any && len(sections) == 0 {
		b.WriteString(noDataMessage)
	}
	return b.String()
}

func renderHot(days int, counts map[string]int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔥 **핫 토픽** (최근 %d일)\n\n", days)
	if len(counts) == 0 {
		b.WriteString(noDataMessage)
		return b.String()
	}

	type kv struct {
		Keyword string
		Count   int
	}
	sorted := make([]kv, 0, len(counts))
	for k, v := range counts {
		sorted = append(sorted, kv{k, v})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Count != sorted[j].Count {
			return sorted[i].Count > sorted[j].Count
		}
		return sorted[i].Keyword < sorted[j].Keyword
	})

	for i, item := range sorted {
		if i >= 10 {
			break
		}
		fmt.Fprintf(&b, "%d. %s (%d개 영상)\n", i+1, item.Keyword, item.Count)
	}
	return b.String()
}

// trendPoint is one day's sentiment aggregate.
type trendPoint struct {
	Date          time.Time
	Count         int
	MeanSentiment float64
}

func renderTrend(keyword string, days int, points []trendPoint) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📈 **'%s' 감정 추이** (최근 %d일)\n\n", keyword, days)
	any := false
	for _, p := range points {
		if p.Count == 0 {
			continue
		}
		any = true
		fmt.Fprintf(&b, "• %s: %.2f (%s, %d개)\n",
			p.Date.Format("01-02"), p.MeanSentiment, sentimentLabel(p.MeanSentiment), p.Count)
	}
	if !any {
		b.WriteString(noDataMessage)
	}
	return b.String()
}
