package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/blueblud7/dailyYoutubeSummary/internal/models"
	"github.com/blueblud7/dailyYoutubeSummary/internal/services"
)

// maxMessageRunes is Telegram's hard message limit. Longer reports are split
// on line boundaries.
const maxMessageRunes = 4000

const helpText = `📖 **사용 가능한 명령어**

/daily - 오늘의 투자 리포트
/weekly - 주간 투자 리포트
/keyword <키워드> - 키워드 분석 리포트
/channel <채널명> - 채널 분석 리포트
/influencer <이름> - 인플루언서 의견 분석
/multi <키워드1> <키워드2> ... - 멀티 키워드 리포트
/hot - 요즘 핫한 토픽
/trend <키워드> - 감정 추이

일반 문장으로 물어봐도 됩니다. 예: "오늘 주식 시장 어때?"`

const startText = `👋 안녕하세요! 유튜브 투자 콘텐츠 분석 봇입니다.

매일 아침 주요 경제 유튜브 채널의 영상을 분석해서 리포트를 보내드립니다.
/help 를 입력하면 사용 가능한 명령어를 볼 수 있습니다.`

const failText = "😥 죄송합니다, 요청을 처리하지 못했습니다. 잠시 후 다시 시도해주세요."

// Bot serves interactive queries over Telegram long polling and pushes
// scheduled reports to subscriber chats.
type Bot struct {
	api     *tgbotapi.BotAPI
	reports *services.ReportService
	chatIDs []int64
	done    chan struct{}
}

func New(token string, reports *services.ReportService, chatIDs []int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	return &Bot{
		api:     api,
		reports: reports,
		chatIDs: chatIDs,
		done:    make(chan struct{}),
	}, nil
}

// Start begins consuming updates. Blocks until Stop is called.
func (b *Bot) Start(ctx context.Context) {
	log.Printf("Telegram bot authorized as @%s", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-b.done:
			return
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			go b.handle(ctx, update.Message)
		}
	}
}

func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
	close(b.done)
}

func (b *Bot) handle(ctx context.Context, msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	req := Classify(msg.Text)
	chatID := msg.Chat.ID

	var body string
	var err error

	switch req.Command {
	case CmdStart:
		body = startText
	case CmdHelp:
		body = helpText
	case CmdDaily:
		body, err = b.reportBody(b.reports.Daily(ctx, time.Now()))
	case CmdWeekly:
		body, err = b.reportBody(b.reports.Weekly(ctx, time.Now()))
	case CmdKeyword:
		if len(req.Args) == 0 {
			body = "사용법: /keyword <키워드>"
			break
		}
		body, err = b.reportBody(b.reports.Keyword(ctx, req.Args[0], 7))
	case CmdChannel:
		if len(req.Args) == 0 {
			body = "사용법: /channel <채널명>"
			break
		}
		body, err = b.reportBody(b.reports.Channel(ctx, strings.Join(req.Args, " "), 7))
	case CmdInfluencer:
		if len(req.Args) == 0 {
			body = "사용법: /influencer <이름>"
			break
		}
		body, err = b.reportBody(b.reports.Influencer(ctx, strings.Join(req.Args, " "), 14))
	case CmdMulti:
		if len(req.Args) == 0 {
			body = "사용법: /multi <키워드1> <키워드2> ..."
			break
		}
		body, err = b.reportBody(b.reports.Multi(ctx, req.Args, 7))
	case CmdHot:
		body, err = b.reportBody(b.reports.Hot(ctx, 3))
	case CmdTrend:
		if len(req.Args) == 0 {
			body = "사용법: /trend <키워드>"
			break
		}
		body, err = b.reportBody(b.reports.Trend(ctx, req.Args[0], 14))
	default:
		body = "무엇을 도와드릴까요? /help 를 입력해보세요."
	}

	if err != nil {
		log.Printf("Bot: command %v failed for chat %d: %v", req.Command, chatID, err)
		if errors.Is(err, models.ErrNotFound) {
			body = "😥 해당 이름으로 등록된 채널이나 인플루언서를 찾지 못했습니다."
		} else {
			body = failText
		}
	}

	if err := b.Send(chatID, body); err != nil {
		log.Printf("Bot: send to chat %d failed: %v", chatID, err)
	}
}

func (b *Bot) reportBody(rep *models.Report, err error) (string, error) {
	if err != nil {
		return "", err
	}
	return rep.Body, nil
}

// Send delivers a message, splitting it under Telegram's length limit. Each
// chunk gets one retry; a chunk failing twice aborts the rest and returns
// models.ErrDeliveryFailed.
func (b *Bot) Send(chatID int64, text string) error {
	for _, chunk := range splitMessage(text, maxMessageRunes) {
		msg := tgbotapi.NewMessage(chatID, chunk)
		msg.ParseMode = tgbotapi.ModeMarkdown

		_, err := b.api.Send(msg)
		if err != nil {
			time.Sleep(time.Second)
			if _, err = b.api.Send(msg); err != nil {
				return fmt.Errorf("%w: chat %d: %v", models.ErrDeliveryFailed, chatID, err)
			}
		}
	}
	return nil
}

// Push sends a report to every subscribed chat. Per-chat failures are logged
// and do not stop delivery to the remaining chats.
func (b *Bot) Push(rep *models.Report) {
	for _, chatID := range b.chatIDs {
		if err := b.Send(chatID, rep.Body); err != nil {
			log.Printf("Bot: push to chat %d failed: %v", chatID, err)
		}
	}
}

// splitMessage breaks text into chunks of at most limit runes, splitting on
// line boundaries where possible. A single line longer than the limit is
// hard-split.
func splitMessage(text string, limit int) []string {
	if len([]rune(text)) <= limit {
		return []string{text}
	}

	var chunks []string
	var current []rune
	for _, line := range strings.Split(text, "\n") {
		runes := []rune(line)

		// Hard-split any single line over the limit.
		for len(runes) > limit {
			if len(current) > 0 {
				chunks = append(chunks, string(current))
				current = nil
			}
			chunks = append(chunks, string(runes[:limit]))
			runes = runes[limit:]
		}

		needed := len(runes)
		if len(current) > 0 {
			needed += len(current) + 1
		}
		if needed > limit {
			chunks = append(chunks, string(current))
			current = nil
		}
		if len(current) > 0 {
			current = append(current, '\n')
		}
		current = append(current, runes...)
	}
	if len(current) > 0 {
		chunks = append(chunks, string(current))
	}
	return chunks
}
