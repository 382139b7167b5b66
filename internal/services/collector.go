package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/blueblud7/dailyYoutubeSummary/internal/models"
)

// VideoSource is the fetcher surface the collector needs.
type VideoSource interface {
	ChannelDetails(ctx context.Context, channelID string) (*models.Channel, error)
	FetchChannelVideos(ctx context.Context, channelID string, since time.Time) ([]models.VideoCandidate, error)
	SearchVideos(ctx context.Context, keyword string, since time.Time, maxResults int64) ([]models.VideoCandidate, error)
	FetchCaptions(videoID string) (text, language string, err error)
}

// OpinionScorer scores one video's text.
type OpinionScorer interface {
	Score(ctx context.Context, req ScoreRequest) (*models.Opinion, error)
}

// CollectorStore is the persistence surface the collector needs; implemented
// by repository.Store.
type CollectorStore interface {
	UpsertChannel(ctx context.Context, ch *models.Channel) error
	EnsureChannel(ctx context.Context, ch *models.Channel) error
	InsertVideo(ctx context.Context, v *models.Video) (bool, error)
	AppendMatchedKeywords(ctx context.Context, videoID string, keywords []string) error
	SetCaption(ctx context.Context, videoID, text, language string) error
	HasOpinion(ctx context.Context, videoID string) (bool, error)
	InsertOpinion(ctx context.Context, o *models.Opinion) (bool, error)
	UnscoredVideos(ctx context.Context, since time.Time, limit int) ([]models.Video, error)
}

// RunResult summarises one collection pass.
type RunResult struct {
	VideosCollected  int      `json:"videos_collected"`
	CaptionsFetched  int      `json:"captions_fetched"`
	OpinionsScored   int      `json:"opinions_scored"`
	SourcesAttempted int      `json:"sources_attempted"`
	SourcesFailed    int      `json:"sources_failed"`
	Errors           []string `json:"errors,omitempty"`
}

// Collector runs the fetch → caption → score pipeline. Fetching fans out over
// a bounded worker pool; all database writes go through a single goroutine so
// insert/append ordering stays deterministic.
type Collector struct {
	source  VideoSource
	scorer  OpinionScorer
	store   CollectorStore
	cache   *Cache
	workers int
}

func NewCollector(source VideoSource, scorer OpinionScorer, store CollectorStore, cache *Cache, workers int) *Collector {
	if workers <= 0 {
		workers = 4
	}
	return &Collector{
		source:  source,
		scorer:  scorer,
		store:   store,
		cache:   cache,
		workers: workers,
	}
}

// fetchedBatch is one source's worth of candidates with the keyword (if any)
// that surfaced them.
type fetchedBatch struct {
	candidates []models.VideoCandidate
	keyword    string
	sourceName string
	err        error
}

// Run executes one collection pass over the given channels and keywords.
// A failing source is logged and counted, never fatal; quota exhaustion
// aborts the fetch phase early but still scores what was collected. A store
// outage is the one fatal class: the pass aborts and the error surfaces.
func (c *Collector) Run(ctx context.Context, channelIDs, keywords []string, since time.Time) (*RunResult, error) {
	result := &RunResult{}
	start := time.Now()
	log.Printf("Collection run started: %d channels, %d keywords, since %s",
		len(channelIDs), len(keywords), since.Format(time.RFC3339))

	batches := c.fetchAll(ctx, channelIDs, keywords, since, result)

	// Single writer: persist batches in arrival order. Keyword searches
	// surface videos from channels nobody registered; those get a stub
	// channel row first so the video's channel reference resolves.
	var toScore []models.Video
	seen := make(map[string]bool)
	ensured := make(map[string]bool)
	channelTitles := make(map[string]string)
	for _, batch := range batches {
		for _, cand := range batch.candidates {
			channelTitles[cand.ChannelID] = cand.ChannelTitle
			if !ensured[cand.ChannelID] {
				stub := models.Channel{
					ChannelID: cand.ChannelID,
					Name:      cand.ChannelTitle,
					URL:       "https://www.youtube.com/channel/" + cand.ChannelID,
				}
				if err := c.store.EnsureChannel(ctx, &stub); err != nil {
					if errors.Is(err, models.ErrStoreUnavailable) {
						return result, err
					}
					result.Errors = append(result.Errors, fmt.Sprintf("ensure channel %s: %v", cand.ChannelID, err))
					continue
				}
				ensured[cand.ChannelID] = true
			}
			video := candidateToVideo(cand, batch.keyword)
			inserted, err := c.store.InsertVideo(ctx, &video)
			if err != nil {
				if errors.Is(err, models.ErrStoreUnavailable) {
					return result, err
				}
				result.Errors = append(result.Errors, fmt.Sprintf("insert %s: %v", video.VideoID, err))
				continue
			}
			if inserted {
				result.VideosCollected++
			} else if batch.keyword != "" {
				// Known video surfacing under a new keyword.
				if err := c.store.AppendMatchedKeywords(ctx, video.VideoID, []string{batch.keyword}); err != nil {
					if errors.Is(err, models.ErrStoreUnavailable) {
						return result, err
					}
					result.Errors = append(result.Errors, fmt.Sprintf("append keywords %s: %v", video.VideoID, err))
				}
			}
			if !seen[video.VideoID] {
				seen[video.VideoID] = true
				toScore = append(toScore, video)
			}
		}
	}

	if err := c.captionAndScore(ctx, toScore, channelTitles, result); err != nil {
		return result, err
	}

	log.Printf("Collection run finished in %s: %d videos, %d captions, %d opinions, %d/%d sources failed",
		time.Since(start).Round(time.Second), result.VideosCollected, result.CaptionsFetched,
		result.OpinionsScored, result.SourcesFailed, result.SourcesAttempted)
	return result, nil
}

// fetchAll fans source fetches out over the worker pool.
func (c *Collector) fetchAll(ctx context.Context, channelIDs, keywords []string, since time.Time, result *RunResult) []fetchedBatch {
	type job struct {
		channelID string
		keyword   string
	}
	jobs := make([]job, 0, len(channelIDs)+len(keywords))
	for _, id := range channelIDs {
		jobs = append(jobs, job{channelID: id})
	}
	for _, kw := range keywords {
		jobs = append(jobs, job{keyword: kw})
	}
	result.SourcesAttempted = len(jobs)

	sem := make(chan struct{}, c.workers)
	out := make([]fetchedBatch, len(jobs))
	var wg sync.WaitGroup

	for i, j := range jobs {
		wg.Add(1)
		go func(i int, j job) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			var batch fetchedBatch
			if j.channelID != "" {
				batch.sourceName = "channel " + j.channelID
				batch.candidates, batch.err = c.source.FetchChannelVideos(ctx, j.channelID, since)
			} else {
				batch.sourceName = "keyword " + j.keyword
				batch.keyword = j.keyword
				batch.candidates, batch.err = c.source.SearchVideos(ctx, j.keyword, since, 50)
			}
			out[i] = batch
		}(i, j)
	}
	wg.Wait()

	var batches []fetchedBatch
	for _, batch := range out {
		if batch.err != nil {
			result.SourcesFailed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", batch.sourceName, batch.err))
			if errors.Is(batch.err, models.ErrNotFound) {
				log.Printf("Collector: %s not found, skipping", batch.sourceName)
			} else {
				log.Printf("Collector: %s failed: %v", batch.sourceName, batch.err)
			}
			continue
		}
		batches = append(batches, batch)
	}
	return batches
}

// captionAndScore resolves captions and opinions for freshly collected
// videos. Videos that already carry an opinion are never re-scored. Returns
// the first store-outage error; everything else is recorded per video.
func (c *Collector) captionAndScore(ctx context.Context, videos []models.Video, channelTitles map[string]string, result *RunResult) error {
	sem := make(chan struct{}, c.workers)
	var wg sync.WaitGroup
	var mu sync.Mutex // serialises store writes and result updates
	var fatal error

	for _, video := range videos {
		mu.Lock()
		down := fatal != nil
		mu.Unlock()
		if down {
			break
		}

		scored, err := c.store.HasOpinion(ctx, video.VideoID)
		if err != nil {
			if errors.Is(err, models.ErrStoreUnavailable) {
				wg.Wait()
				return err
			}
			mu.Lock()
			result.Errors = append(result.Errors, fmt.Sprintf("opinion check %s: %v", video.VideoID, err))
			mu.Unlock()
			continue
		}
		if scored {
			continue
		}

		wg.Add(1)
		go func(video models.Video) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			text := c.resolveCaptions(ctx, video, &mu, result)
			if text == "" {
				// No captions: score from title and description alone.
				text = video.Description
			}

			channelName := channelTitles[video.ChannelID]
			if channelName == "" {
				channelName = video.ChannelID
			}
			opinion, err := c.scorer.Score(ctx, ScoreRequest{
				VideoID:     video.VideoID,
				Title:       video.Title,
				ChannelName: channelName,
				Text:        text,
				Keywords:    video.MatchedKeywords,
			})
			if err != nil {
				mu.Lock()
				result.Errors = append(result.Errors, fmt.Sprintf("score %s: %v", video.VideoID, err))
				mu.Unlock()
				log.Printf("Collector: scoring %s failed: %v", video.VideoID, err)
				return
			}

			mu.Lock()
			defer mu.Unlock()
			inserted, err := c.store.InsertOpinion(ctx, opinion)
			if err != nil {
				if errors.Is(err, models.ErrStoreUnavailable) {
					if fatal == nil {
						fatal = err
					}
					return
				}
				result.Errors = append(result.Errors, fmt.Sprintf("insert opinion %s: %v", video.VideoID, err))
				return
			}
			if inserted {
				result.OpinionsScored++
			}
		}(video)
	}
	wg.Wait()
	return fatal
}

// resolveCaptions returns transcript text for a video, consulting the cache
// before the network and persisting what it finds.
func (c *Collector) resolveCaptions(ctx context.Context, video models.Video, mu *sync.Mutex, result *RunResult) string {
	if cached, ok := c.cache.GetTranscript(ctx, video.VideoID); ok {
		return cached
	}

	text, language, err := c.source.FetchCaptions(video.VideoID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			log.Printf("Collector: captions for %s failed: %v", video.VideoID, err)
		}
		return ""
	}

	c.cache.SetTranscript(ctx, video.VideoID, text)
	mu.Lock()
	defer mu.Unlock()
	if err := c.store.SetCaption(ctx, video.VideoID, text, language); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("set caption %s: %v", video.VideoID, err))
	} else {
		result.CaptionsFetched++
	}
	return text
}

// ScoreBacklog scores stored videos that never received an opinion, e.g.
// after a scorer outage. Captions are resolved the same way as during a
// collection pass.
func (c *Collector) ScoreBacklog(ctx context.Context, since time.Time, limit int) (*RunResult, error) {
	if limit <= 0 {
		limit = 100
	}
	videos, err := c.store.UnscoredVideos(ctx, since, limit)
	if err != nil {
		return nil, err
	}

	result := &RunResult{}
	if err := c.captionAndScore(ctx, videos, map[string]string{}, result); err != nil {
		return result, err
	}
	log.Printf("Backlog scoring: %d candidates, %d opinions", len(videos), result.OpinionsScored)
	return result, nil
}

// AddChannel resolves a channel against the API and registers it for future
// collection runs. Re-adding is idempotent.
func (c *Collector) AddChannel(ctx context.Context, channelID string) (*models.Channel, error) {
	ch, err := c.source.ChannelDetails(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if err := c.store.UpsertChannel(ctx, ch); err != nil {
		return nil, err
	}
	return ch, nil
}

func candidateToVideo(cand models.VideoCandidate, keyword string) models.Video {
	var matched []string
	if keyword != "" {
		matched = []string{keyword}
	}
	return models.Video{
		VideoID:         cand.VideoID,
		ChannelID:       cand.ChannelID,
		Title:           cand.Title,
		Description:     cand.Description,
		PublishedAt:     cand.PublishedAt,
		DurationSeconds: cand.DurationSeconds,
		ViewCount:       cand.ViewCount,
		LikeCount:       cand.LikeCount,
		CommentCount:    cand.CommentCount,
		VideoURL:        cand.URL(),
		ThumbnailURL:    cand.ThumbnailURL,
		Tags:            cand.Tags,
		MatchedKeywords: matched,
	}
}
