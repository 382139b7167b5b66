package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	ytapi "github.com/hightemp/youtube-transcript-api-go/api"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/blueblud7/dailyYoutubeSummary/internal/models"
)

// captionLanguages is the preference order for transcripts. Auto-generated
// tracks count; a transcript in any of these beats no transcript.
var captionLanguages = []string{"ko", "en", "ja", "zh"}

// YouTubeService wraps the Data API v3 with a rotating key pool. When the
// active key exhausts its daily quota the service moves to the next key and
// retries; only with every key exhausted does a call fail with
// models.ErrQuotaExceeded.
type YouTubeService struct {
	mu            sync.Mutex
	apiKeys       []string
	keyIndex      int
	client        *youtube.Service
	transcriptAPI *ytapi.YouTubeTranscriptApi
}

func NewYouTubeService(apiKeys []string) (*YouTubeService, error) {
	if len(apiKeys) == 0 {
		return nil, fmt.Errorf("at least one YouTube API key is required")
	}
	s := &YouTubeService{
		apiKeys:       apiKeys,
		transcriptAPI: ytapi.NewYouTubeTranscriptApi(),
	}
	if err := s.rebuildClient(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *YouTubeService) rebuildClient(ctx context.Context) error {
	client, err := youtube.NewService(ctx, option.WithAPIKey(s.apiKeys[s.keyIndex]))
	if err != nil {
		return fmt.Errorf("failed to create YouTube client: %w", err)
	}
	s.client = client
	return nil
}

// withRotation runs fn, rotating through the key pool on quota errors. The
// lock covers only the client snapshot and the key swap, never the network
// call itself, so concurrent fetches proceed in parallel.
func (s *YouTubeService) withRotation(ctx context.Context, fn func(*youtube.Service) error) error {
	for attempts := 0; attempts < len(s.apiKeys); attempts++ {
		s.mu.Lock()
		client := s.client
		keyAtCall := s.keyIndex
		s.mu.Unlock()

		err := fn(client)
		if err == nil {
			return nil
		}
		if !isQuotaExceeded(err) {
			return err
		}

		s.mu.Lock()
		// Another goroutine may have rotated already while we were on the
		// wire; only advance if the key we used is still active.
		if s.keyIndex == keyAtCall {
			log.Printf("YouTube API key %d/%d exhausted, rotating", s.keyIndex+1, len(s.apiKeys))
			s.keyIndex = (s.keyIndex + 1) % len(s.apiKeys)
			if rerr := s.rebuildClient(ctx); rerr != nil {
				s.mu.Unlock()
				return rerr
			}
		}
		s.mu.Unlock()
	}
	return fmt.Errorf("%w: all %d API keys exhausted", models.ErrQuotaExceeded, len(s.apiKeys))
}

func isQuotaExceeded(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	if gerr.Code == 429 {
		return true
	}
	if gerr.Code != 403 {
		return false
	}
	for _, e := range gerr.Errors {
		if e.Reason == "quotaExceeded" || e.Reason == "dailyLimitExceeded" || e.Reason == "rateLimitExceeded" {
			return true
		}
	}
	return false
}

// ChannelDetails resolves a channel's current metadata. Unknown IDs yield
// models.ErrNotFound.
func (s *YouTubeService) ChannelDetails(ctx context.Context, channelID string) (*models.Channel, error) {
	var ch *models.Channel
	err := s.withRotation(ctx, func(client *youtube.Service) error {
		resp, err := client.Channels.List([]string{"snippet", "statistics"}).
			Id(channelID).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		if len(resp.Items) == 0 {
			return fmt.Errorf("%w: channel %s", models.ErrNotFound, channelID)
		}
		item := resp.Items[0]
		ch = &models.Channel{
			ChannelID:       item.Id,
			Name:            item.Snippet.Title,
			URL:             "https://www.youtube.com/channel/" + item.Id,
			Description:     item.Snippet.Description,
			SubscriberCount: int64(item.Statistics.SubscriberCount),
			VideoCount:      int64(item.Statistics.VideoCount),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// FetchChannelVideos walks the channel's uploads playlist and returns videos
// published at or after since, with full statistics attached.
func (s *YouTubeService) FetchChannelVideos(ctx context.Context, channelID string, since time.Time) ([]models.VideoCandidate, error) {
	var uploadsID string
	err := s.withRotation(ctx, func(client *youtube.Service) error {
		resp, err := client.Channels.List([]string{"contentDetails"}).
			Id(channelID).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		if len(resp.Items) == 0 {
			return fmt.Errorf("%w: channel %s", models.ErrNotFound, channelID)
		}
		uploadsID = resp.Items[0].ContentDetails.RelatedPlaylists.Uploads
		return nil
	})
	if err != nil {
		return nil, err
	}

	var videoIDs []string
	pageToken := ""
	for {
		var resp *youtube.PlaylistItemListResponse
		err := s.withRotation(ctx, func(client *youtube.Service) error {
			call := client.PlaylistItems.List([]string{"contentDetails"}).
				PlaylistId(uploadsID).
				MaxResults(50).
				Context(ctx)
			if pageToken != "" {
				call = call.PageToken(pageToken)
			}
			var err error
			resp, err = call.Do()
			return err
		})
		if err != nil {
			return nil, err
		}

		done := false
		for _, item := range resp.Items {
			publishedAt, err := time.Parse(time.RFC3339, item.ContentDetails.VideoPublishedAt)
			if err != nil {
				continue
			}
			// Uploads playlists are newest-first; stop at the first
			// video older than the window.
			if publishedAt.Before(since) {
				done = true
				break
			}
			videoIDs = append(videoIDs, item.ContentDetails.VideoId)
		}
		if done || resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	return s.videoDetails(ctx, videoIDs)
}

// SearchVideos runs a keyword search restricted to the window and resolves
// the hits to full video details.
func (s *YouTubeService) SearchVideos(ctx context.Context, keyword string, since time.Time, maxResults int64) ([]models.VideoCandidate, error) {
	if maxResults <= 0 {
		maxResults = 50
	}
	var videoIDs []string
	err := s.withRotation(ctx, func(client *youtube.Service) error {
		resp, err := client.Search.List([]string{"id"}).
			Q(keyword).
			Type("video").
			Order("date").
			PublishedAfter(since.UTC().Format(time.RFC3339)).
			RelevanceLanguage("ko").
			MaxResults(maxResults).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		videoIDs = videoIDs[:0]
		for _, item := range resp.Items {
			if item.Id != nil && item.Id.VideoId != "" {
				videoIDs = append(videoIDs, item.Id.VideoId)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.videoDetails(ctx, videoIDs)
}

// videoDetails resolves IDs to candidates in batches of 50, deduplicating IDs
// first. Order of the input is preserved.
func (s *YouTubeService) videoDetails(ctx context.Context, videoIDs []string) ([]models.VideoCandidate, error) {
	videoIDs = dedupeIDs(videoIDs)
	var candidates []models.VideoCandidate

	for start := 0; start < len(videoIDs); start += 50 {
		end := start + 50
		if end > len(videoIDs) {
			end = len(videoIDs)
		}
		batch := videoIDs[start:end]

		err := s.withRotation(ctx, func(client *youtube.Service) error {
			resp, err := client.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
				Id(batch...).
				Context(ctx).
				Do()
			if err != nil {
				return err
			}
			for _, item := range resp.Items {
				publishedAt, _ := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
				thumbnail := ""
				if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.High != nil {
					thumbnail = item.Snippet.Thumbnails.High.Url
				}
				candidates = append(candidates, models.VideoCandidate{
					VideoID:         item.Id,
					ChannelID:       item.Snippet.ChannelId,
					ChannelTitle:    item.Snippet.ChannelTitle,
					Title:           item.Snippet.Title,
					Description:     item.Snippet.Description,
					PublishedAt:     publishedAt,
					DurationSeconds: parseISODuration(item.ContentDetails.Duration),
					ViewCount:       int64(item.Statistics.ViewCount),
					LikeCount:       int64(item.Statistics.LikeCount),
					CommentCount:    int64(item.Statistics.CommentCount),
					ThumbnailURL:    thumbnail,
					Tags:            item.Snippet.Tags,
				})
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return candidates, nil
}

// FetchCaptions returns the transcript text and its language. Languages are
// tried in preference order, then any available track. A video without
// captions yields models.ErrNotFound.
func (s *YouTubeService) FetchCaptions(videoID string) (text, language string, err error) {
	// Trailing empty entry means "any available track".
	for _, lang := range append(append([]string{}, captionLanguages...), "") {
		var spec []string
		if lang != "" {
			spec = []string{lang}
		}
		transcript, terr := s.transcriptAPI.GetTranscript(videoID, spec)
		if terr != nil {
			continue
		}
		var b strings.Builder
		for _, entry := range transcript.Entries {
			t := strings.TrimSpace(entry.Text)
			if t == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteString(" ")
			}
			b.WriteString(t)
		}
		if joined := b.String(); joined != "" {
			return joined, lang, nil
		}
	}
	return "", "", fmt.Errorf("%w: no captions for video %s", models.ErrNotFound, videoID)
}

func dedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

var durationRe = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseISODuration converts the API's ISO 8601 durations (PT1H2M3S) into
// seconds. Malformed input parses to zero.
func parseISODuration(d string) int {
	m := durationRe.FindStringSubmatch(d)
	if m == nil {
		return 0
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	return hours*3600 + minutes*60 + seconds
}
