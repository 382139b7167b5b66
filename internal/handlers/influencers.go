package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/blueblud7/dailyYoutubeSummary/internal/models"
	"github.com/blueblud7/dailyYoutubeSummary/internal/repository"
)

type InfluencerHandler struct {
	store *repository.Store
}

func NewInfluencerHandler(store *repository.Store) *InfluencerHandler {
	return &InfluencerHandler{store: store}
}

// Add registers or updates an influencer and the channels their opinions
// are read from.
func (h *InfluencerHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name           string   `json:"name"`
		Title          string   `json:"title"`
		ExpertiseArea  string   `json:"expertise_area"`
		ChannelIDs     []string `json:"channel_ids"`
		Bio            string   `json:"bio"`
		InfluenceScore float64  `json:"influence_score"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "name is required", r))
		return
	}
	if len(req.ChannelIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "channel_ids is required", r))
		return
	}

	inf := models.Influencer{
		Name:           req.Name,
		Title:          req.Title,
		ExpertiseArea:  req.ExpertiseArea,
		ChannelIDs:     req.ChannelIDs,
		Bio:            req.Bio,
		InfluenceScore: req.InfluenceScore,
	}
	if err := h.store.UpsertInfluencer(r.Context(), &inf); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inf)
}

func (h *InfluencerHandler) List(w http.ResponseWriter, r *http.Request) {
	influencers, err := h.store.ListInfluencers(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if influencers == nil {
		influencers = []models.Influencer{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"influencers": influencers})
}
