package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/blueblud7/dailyYoutubeSummary/internal/models"
	"github.com/blueblud7/dailyYoutubeSummary/internal/repository"
	"github.com/blueblud7/dailyYoutubeSummary/internal/services"
)

type ReportHandler struct {
	reports *services.ReportService
	store   *repository.Store
}

func NewReportHandler(reports *services.ReportService, store *repository.Store) *ReportHandler {
	return &ReportHandler{reports: reports, store: store}
}

// Daily builds the daily report. An optional ?date=YYYY-MM-DD picks the day;
// default is today.
func (h *ReportHandler) Daily(w http.ResponseWriter, r *http.Request) {
	date := time.Now()
	if s := r.URL.Query().Get("date"); s != "" {
		parsed, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "date must be YYYY-MM-DD", r))
			return
		}
		date = parsed
	}

	rep, err := h.reports.Daily(r.Context(), date)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *ReportHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	rep, err := h.reports.Weekly(r.Context(), time.Now())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *ReportHandler) Keyword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Keyword string `json:"keyword"`
		Days    int    `json:"days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Keyword == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "keyword is required", r))
		return
	}

	rep, err := h.reports.Keyword(r.Context(), req.Keyword, req.Days)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *ReportHandler) Channel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Channel string `json:"channel"`
		Days    int    `json:"days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Channel == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "channel is required", r))
		return
	}

	rep, err := h.reports.Channel(r.Context(), req.Channel, req.Days)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *ReportHandler) Influencer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Days int    `json:"days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "name is required", r))
		return
	}

	rep, err := h.reports.Influencer(r.Context(), req.Name, req.Days)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *ReportHandler) Perspective(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Topic string `json:"topic"`
		Days  int    `json:"days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Topic == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "topic is required", r))
		return
	}

	rep, err := h.reports.Perspective(r.Context(), req.Topic, req.Days)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *ReportHandler) Multi(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Keywords []string `json:"keywords"`
		Days     int      `json:"days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Keywords) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "keywords is required", r))
		return
	}

	rep, err := h.reports.Multi(r.Context(), req.Keywords, req.Days)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *ReportHandler) Hot(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	rep, err := h.reports.Hot(r.Context(), days)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *ReportHandler) Trend(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "keyword is required", r))
		return
	}
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	rep, err := h.reports.Trend(r.Context(), keyword, days)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// History lists persisted reports, optionally filtered by ?type=.
func (h *ReportHandler) History(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	reports, err := h.store.ListReports(r.Context(), r.URL.Query().Get("type"), limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if reports == nil {
		reports = []models.Report{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reports": reports})
}

func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid report ID", r))
		return
	}

	rep, err := h.store.GetReport(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
