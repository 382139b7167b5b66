package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/blueblud7/dailyYoutubeSummary/internal/models"
	"github.com/blueblud7/dailyYoutubeSummary/internal/repository"
	"github.com/blueblud7/dailyYoutubeSummary/internal/services"
)

type CollectionHandler struct {
	collector *services.Collector
	store     *repository.Store
	daysBack  int
}

func NewCollectionHandler(collector *services.Collector, store *repository.Store, daysBack int) *CollectionHandler {
	if daysBack <= 0 {
		daysBack = 1
	}
	return &CollectionHandler{collector: collector, store: store, daysBack: daysBack}
}

// AddChannels registers channels for collection. Each ID is resolved against
// the YouTube API; unknown IDs are reported per-item without failing the
// batch.
func (h *CollectionHandler) AddChannels(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChannelIDs []string `json:"channel_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.ChannelIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "channel_ids is required", r))
		return
	}

	type itemResult struct {
		ChannelID string `json:"channel_id"`
		Name      string `json:"name,omitempty"`
		Error     string `json:"error,omitempty"`
	}
	results := make([]itemResult, 0, len(req.ChannelIDs))
	for _, id := range req.ChannelIDs {
		ch, err := h.collector.AddChannel(r.Context(), id)
		if err != nil {
			results = append(results, itemResult{ChannelID: id, Error: err.Error()})
			continue
		}
		results = append(results, itemResult{ChannelID: ch.ChannelID, Name: ch.Name})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func (h *CollectionHandler) ListChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := h.store.ListChannels(r.Context(), false)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if channels == nil {
		channels = []models.Channel{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"channels": channels})
}

func (h *CollectionHandler) AddKeywords(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Keywords []struct {
			Keyword  string `json:"keyword"`
			Category string `json:"category"`
		} `json:"keywords"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Keywords) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "keywords is required", r))
		return
	}

	var added []models.Keyword
	for _, item := range req.Keywords {
		if item.Keyword == "" {
			continue
		}
		kw := models.Keyword{Keyword: item.Keyword, Category: item.Category}
		if err := h.store.UpsertKeyword(r.Context(), &kw); err != nil {
			handleServiceError(w, r, err)
			return
		}
		added = append(added, kw)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"keywords": added})
}

func (h *CollectionHandler) ListKeywords(w http.ResponseWriter, r *http.Request) {
	keywords, err := h.store.ListKeywords(r.Context(), false)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if keywords == nil {
		keywords = []models.Keyword{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"keywords": keywords})
}

// Run triggers a collection pass over the currently registered channels and
// keywords. The pass runs in the background; the response acknowledges the
// start, not the result.
func (h *CollectionHandler) Run(w http.ResponseWriter, r *http.Request) {
	channels, err := h.store.ListChannels(r.Context(), true)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	keywords, err := h.store.ListKeywords(r.Context(), true)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	channelIDs := make([]string, 0, len(channels))
	for _, ch := range channels {
		channelIDs = append(channelIDs, ch.ChannelID)
	}
	keywordList := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		keywordList = append(keywordList, kw.Keyword)
	}

	since := time.Now().AddDate(0, 0, -h.daysBack)
	go func() {
		ctx, cancel := contextWithTimeout(90 * time.Minute)
		defer cancel()
		result, err := h.collector.Run(ctx, channelIDs, keywordList, since)
		if err != nil {
			log.Printf("Manual collection failed: %v", err)
			return
		}
		log.Printf("Manual collection: %d videos, %d opinions", result.VideosCollected, result.OpinionsScored)
	}()

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"status":   "started",
		"channels": len(channelIDs),
		"keywords": len(keywordList),
		"since":    since.Format(time.RFC3339),
	})
}

// RemoveChannel deactivates a channel; its history stays queryable but
// future collection passes skip it.
func (h *CollectionHandler) RemoveChannel(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "id")
	if err := h.store.SetChannelActive(r.Context(), channelID, false); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"channel_id": channelID, "status": "deactivated"})
}

func (h *CollectionHandler) RemoveKeyword(w http.ResponseWriter, r *http.Request) {
	keyword := chi.URLParam(r, "keyword")
	if err := h.store.SetKeywordActive(r.Context(), keyword, false); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"keyword": keyword, "status": "deactivated"})
}

// ListVideos exposes the collected videos for inspection, filterable by
// channel, keyword and window.
func (h *CollectionHandler) ListVideos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	days, _ := strconv.Atoi(q.Get("days"))
	if days <= 0 {
		days = 7
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	videos, err := h.store.QueryVideos(r.Context(), repository.VideoFilter{
		ChannelID: q.Get("channel_id"),
		Keyword:   q.Get("keyword"),
		Since:     time.Now().AddDate(0, 0, -days),
		Limit:     limit,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if videos == nil {
		videos = []models.Video{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"videos": videos})
}

// Rescore drains videos that never received an opinion.
func (h *CollectionHandler) Rescore(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days <= 0 {
		days = 7
	}

	since := time.Now().AddDate(0, 0, -days)
	go func() {
		ctx, cancel := contextWithTimeout(60 * time.Minute)
		defer cancel()
		result, err := h.collector.ScoreBacklog(ctx, since, 200)
		if err != nil {
			log.Printf("Backlog rescore failed: %v", err)
			return
		}
		log.Printf("Backlog rescore: %d opinions", result.OpinionsScored)
	}()

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"status": "started",
		"since":  since.Format(time.RFC3339),
	})
}

func (h *CollectionHandler) Status(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
