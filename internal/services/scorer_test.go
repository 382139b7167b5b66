package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/blueblud7/dailyYoutubeSummary/internal/models"
)

// testScorer builds a Scorer whose model calls are served by fn, with one
// rate slot primed.
func testScorer(fn func(ctx context.Context, prompt string) (string, error)) *Scorer {
	rateChan := make(chan struct{}, 1)
	rateChan <- struct{}{}
	return &Scorer{rateChan: rateChan, generate: fn}
}

func TestScoreRetriesMalformedResponseOnce(t *testing.T) {
	var prompts []string
	s := testScorer(func(ctx context.Context, prompt string) (string, error) {
		prompts = append(prompts, prompt)
		if len(prompts) == 1 {
			return "죄송하지만 JSON을 만들 수 없습니다.", nil
		}
		return `{"summary": "요약", "sentiment_score": 0.3, "importance_score": 0.6}`, nil
	})

	opinion, err := s.Score(context.Background(), ScoreRequest{VideoID: "v1", Title: "제목", Text: "내용"})
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if len(prompts) != 2 {
		t.Fatalf("expected exactly one retry, got %d calls", len(prompts))
	}
	if !strings.Contains(prompts[1], "유효한 JSON만") {
		t.Error("retry should use the strict-format prompt")
	}
	if opinion.VideoID != "v1" || opinion.Sentiment != 0.3 {
		t.Errorf("unexpected opinion: %+v", opinion)
	}
}

func TestScoreGivesUpAfterSecondMalformedResponse(t *testing.T) {
	calls := 0
	s := testScorer(func(ctx context.Context, prompt string) (string, error) {
		calls++
		return "still not json", nil
	})

	_, err := s.Score(context.Background(), ScoreRequest{VideoID: "v1", Title: "제목", Text: "내용"})
	if !errors.Is(err, models.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected exactly 2 calls, got %d", calls)
	}
}

func TestParseOpinion(t *testing.T) {
	raw := `{
		"summary": "금리 인하 기대가 커지고 있다.",
		"key_insights": ["연준의 스탠스 변화", "반도체 업황 회복"],
		"sentiment_score": 0.4,
		"importance_score": 0.8,
		"mentioned_entities": [{"name": "삼성전자", "category": "company"}]
	}`

	opinion, err := ParseOpinion(raw)
	if err != nil {
		t.Fatalf("ParseOpinion failed: %v", err)
	}
	if opinion.Summary != "금리 인하 기대가 커지고 있다." {
		t.Errorf("unexpected summary: %q", opinion.Summary)
	}
	if len(opinion.KeyInsights) != 2 {
		t.Errorf("expected 2 insights, got %d", len(opinion.KeyInsights))
	}
	if opinion.Sentiment != 0.4 {
		t.Errorf("expected sentiment 0.4, got %f", opinion.Sentiment)
	}
	if len(opinion.Entities) != 1 || opinion.Entities[0].Name != "삼성전자" {
		t.Errorf("unexpected entities: %+v", opinion.Entities)
	}
}

func TestParseOpinionWithCodeFence(t *testing.T) {
	raw := "```json\n{\"summary\": \"요약\", \"sentiment_score\": -0.2, \"importance_score\": 0.5}\n```"

	opinion, err := ParseOpinion(raw)
	if err != nil {
		t.Fatalf("ParseOpinion failed: %v", err)
	}
	if opinion.Sentiment != -0.2 {
		t.Errorf("expected sentiment -0.2, got %f", opinion.Sentiment)
	}
}

func TestParseOpinionWithSurroundingProse(t *testing.T) {
	raw := "다음은 분석 결과입니다:\n{\"summary\": \"요약\", \"sentiment_score\": 0, \"importance_score\": 0.3}\n도움이 되셨기를 바랍니다."

	opinion, err := ParseOpinion(raw)
	if err != nil {
		t.Fatalf("ParseOpinion failed: %v", err)
	}
	if opinion.Summary != "요약" {
		t.Errorf("unexpected summary: %q", opinion.Summary)
	}
}

func TestParseOpinionStringEntities(t *testing.T) {
	// Models frequently return entity lists as bare strings.
	raw := `{"summary": "요약", "sentiment_score": 0.1, "importance_score": 0.2, "mentioned_entities": ["테슬라", "달러"]}`

	opinion, err := ParseOpinion(raw)
	if err != nil {
		t.Fatalf("ParseOpinion failed: %v", err)
	}
	if len(opinion.Entities) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(opinion.Entities))
	}
	if opinion.Entities[0].Name != "테슬라" || opinion.Entities[1].Name != "달러" {
		t.Errorf("unexpected entities: %+v", opinion.Entities)
	}
}

func TestParseOpinionClampsScores(t *testing.T) {
	raw := `{"summary": "요약", "sentiment_score": 5.0, "importance_score": -1.0}`

	opinion, err := ParseOpinion(raw)
	if err != nil {
		t.Fatalf("ParseOpinion failed: %v", err)
	}
	if opinion.Sentiment != 1.0 {
		t.Errorf("sentiment should clamp to 1.0, got %f", opinion.Sentiment)
	}
	if opinion.Importance != 0.0 {
		t.Errorf("importance should clamp to 0.0, got %f", opinion.Importance)
	}
}

func TestParseOpinionRejectsGarbage(t *testing.T) {
	for _, raw := range []string{
		"",
		"no json here at all",
		`{"sentiment_score": 0.5}`, // missing summary
		`{"summary": }`,
	} {
		if _, err := ParseOpinion(raw); err == nil {
			t.Errorf("expected error for %q", raw)
		}
	}
}

func TestBuildScorePromptTruncatesText(t *testing.T) {
	// The leading ASCII byte shifts the rune alignment so a naive byte cut
	// would land mid-rune.
	req := ScoreRequest{
		VideoID:     "abc",
		Title:       "제목",
		ChannelName: "채널",
		Text:        "a" + strings.Repeat("가", maxCaptionChars),
	}
	prompt := buildScorePrompt(req, false)
	if len(prompt) > maxCaptionChars+2000 {
		t.Errorf("prompt not truncated: %d bytes", len(prompt))
	}
	if !utf8.ValidString(prompt) {
		t.Error("truncation must not split a rune")
	}
}

func TestBuildScorePromptStrictSuffix(t *testing.T) {
	req := ScoreRequest{VideoID: "abc", Title: "제목", Text: "내용"}
	if got := buildScorePrompt(req, true); !strings.Contains(got, "유효한 JSON만") {
		t.Error("strict prompt missing format reminder")
	}
	if got := buildScorePrompt(req, false); strings.Contains(got, "유효한 JSON만") {
		t.Error("non-strict prompt should not carry the strict reminder")
	}
}
