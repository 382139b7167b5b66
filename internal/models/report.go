package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	ReportDaily       = "daily"
	ReportWeekly      = "weekly"
	ReportKeyword     = "keyword"
	ReportChannel     = "channel"
	ReportInfluencer  = "influencer"
	ReportPerspective = "perspective"
	ReportMulti       = "multi"
	ReportHot         = "hot"
	ReportTrend       = "trend"
)

// Report is a rendered summary, immutable once stored and retained for
// history lookup.
type Report struct {
	ID          uuid.UUID       `json:"id"`
	ReportType  string          `json:"report_type"`
	Title       string          `json:"title"`
	Body        string          `json:"body"`
	Params      json.RawMessage `json:"params"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
	SourceCount int             `json:"source_count"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Influencer struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Title          string    `json:"title"`
	ExpertiseArea  string    `json:"expertise_area"`
	ChannelIDs     []string  `json:"channel_ids"`
	Bio            string    `json:"bio"`
	InfluenceScore float64   `json:"influence_score"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// API error envelope.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
