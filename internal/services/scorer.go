package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/blueblud7/dailyYoutubeSummary/internal/models"
)

// maxCaptionChars bounds the transcript portion of the prompt. Finance talk
// videos front-load their thesis, so truncation loses little.
const maxCaptionChars = 24000

// Scorer turns a video's text into a structured opinion via Gemini.
type Scorer struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	rateChan chan struct{} // Token bucket

	// generate produces raw model output for a prompt. Indirected so the
	// retry policy can be exercised without a live model.
	generate func(ctx context.Context, prompt string) (string, error)
}

func NewScorer(apiKey, modelName string, concurrentReqs int) (*Scorer, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.3)
	model.SetTopP(0.95)

	if concurrentReqs <= 0 {
		concurrentReqs = 5
	}
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	s := &Scorer{
		client:   client,
		model:    model,
		rateChan: rateChan,
	}
	s.generate = s.callModel
	return s, nil
}

func (s *Scorer) Close() {
	s.client.Close()
}

// acquireRate blocks until a rate slot is available
func (s *Scorer) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *Scorer) releaseRate() {
	s.rateChan <- struct{}{}
}

// ScoreRequest carries everything the model sees about one video.
type ScoreRequest struct {
	VideoID     string
	Title       string
	ChannelName string
	Text        string // captions, or description when no captions exist
	Keywords    []string
}

// Score produces the opinion for one video. One strict-format retry covers
// malformed model output; transient 429s back off up to three times. The
// returned opinion is not yet persisted.
func (s *Scorer) Score(ctx context.Context, req ScoreRequest) (*models.Opinion, error) {
	if err := s.acquireRate(ctx); err != nil {
		return nil, err
	}
	defer s.releaseRate()

	prompt := buildScorePrompt(req, false)

	raw, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	opinion, perr := ParseOpinion(raw)
	if perr != nil {
		// One retry with a stricter format reminder before giving up.
		log.Printf("Scorer: malformed response for %s, retrying with strict prompt: %v", req.VideoID, perr)
		raw, err = s.generate(ctx, buildScorePrompt(req, true))
		if err != nil {
			return nil, err
		}
		opinion, perr = ParseOpinion(raw)
		if perr != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrMalformedResponse, perr)
		}
	}

	opinion.ID = uuid.New()
	opinion.VideoID = req.VideoID
	return opinion, nil
}

// callModel calls the model, backing off on rate-limit responses.
func (s *Scorer) callModel(ctx context.Context, prompt string) (string, error) {
	backoff := 2 * time.Second
	for attempt := 0; ; attempt++ {
		resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
		if err == nil {
			text := extractText(resp)
			if text == "" {
				return "", fmt.Errorf("%w: empty response", models.ErrMalformedResponse)
			}
			return text, nil
		}
		if !isRateLimited(err) || attempt >= 3 {
			if isRateLimited(err) {
				return "", fmt.Errorf("%w: %v", models.ErrRateLimited, err)
			}
			return "", fmt.Errorf("Gemini API error: %w", err)
		}
		log.Printf("Scorer: rate limited, backing off %s (attempt %d)", backoff, attempt+1)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return "", ctx.Err()
		}
		backoff *= 2
	}
}

func isRateLimited(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == 429
	}
	return false
}

func buildScorePrompt(req ScoreRequest, strict bool) string {
	var b strings.Builder

	b.WriteString("당신은 금융 콘텐츠 분석 전문가입니다. 아래 유튜브 영상의 내용을 분석하세요.\n\n")
	b.WriteString(fmt.Sprintf("채널: %s\n제목: %s\n", req.ChannelName, req.Title))
	if len(req.Keywords) > 0 {
		b.WriteString("관련 키워드: " + strings.Join(req.Keywords, ", ") + "\n")
	}

	text := req.Text
	if len(text) > maxCaptionChars {
		// Cut on a rune boundary so the prompt stays valid UTF-8.
		cut := maxCaptionChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	b.WriteString("\n내용:\n" + text + "\n\n")

	b.WriteString(`다음 필드를 가진 JSON 객체만 반환하세요:
{
  "summary": "핵심 주장 요약 (2-3 문장, 한국어)",
  "key_insights": ["주요 인사이트 1", "주요 인사이트 2", "주요 인사이트 3"],
  "sentiment_score": -1.0에서 1.0 사이 숫자 (시장 전망: -1 매우 비관, 0 중립, 1 매우 낙관),
  "importance_score": 0.0에서 1.0 사이 숫자 (투자 판단에 대한 중요도),
  "mentioned_entities": [{"name": "엔터티 이름", "category": "company|person|indicator|asset"}]
}`)

	if strict {
		b.WriteString("\n\n반드시 유효한 JSON만 반환하세요. 마크다운 코드 블록, 설명 문장, JSON 외의 어떤 텍스트도 포함하지 마세요.")
	}

	return b.String()
}

type opinionPayload struct {
	Summary           string          `json:"summary"`
	KeyInsights       []string        `json:"key_insights"`
	SentimentScore    float64         `json:"sentiment_score"`
	ImportanceScore   float64         `json:"importance_score"`
	MentionedEntities []models.Entity `json:"mentioned_entities"`
}

// ParseOpinion extracts the opinion JSON from raw model output. It tolerates
// markdown fences and prose around the object, and clamps scores to their
// documented ranges.
func ParseOpinion(raw string) (*models.Opinion, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	// Keep only the outermost object in case the model added prose.
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}
	cleaned = cleaned[start : end+1]

	var payload opinionPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("invalid opinion JSON: %w", err)
	}
	if payload.Summary == "" {
		return nil, fmt.Errorf("opinion JSON missing summary")
	}

	return &models.Opinion{
		Sentiment:   clamp(payload.SentimentScore, -1, 1),
		Importance:  clamp(payload.ImportanceScore, 0, 1),
		Summary:     payload.Summary,
		KeyInsights: payload.KeyInsights,
		Entities:    payload.MentionedEntities,
	}, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
