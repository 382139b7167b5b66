package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entity is a company, person or economic indicator mentioned in a video.
type Entity struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// UnmarshalJSON accepts both {"name":...,"category":...} objects and bare
// strings; the model frequently returns entity lists as plain strings.
func (e *Entity) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		e.Name = strings.TrimSpace(s)
		e.Category = ""
		return nil
	}
	type alias Entity
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*e = Entity(a)
	return nil
}

// Opinion is the scored result for a video. At most one exists per video,
// and it is never mutated after insert.
type Opinion struct {
	ID          uuid.UUID `json:"id"`
	VideoID     string    `json:"video_id"`
	Sentiment   float64   `json:"sentiment"`  // -1.0 (bearish) .. 1.0 (bullish)
	Importance  float64   `json:"importance"` // 0.0 .. 1.0
	Summary     string    `json:"summary"`
	KeyInsights []string  `json:"key_insights"`
	Entities    []Entity  `json:"entities"`
	CreatedAt   time.Time `json:"created_at"`
}

// ScoredVideo is the joined row the report builder works from: an opinion
// together with the video and channel context it came from.
type ScoredVideo struct {
	Opinion
	VideoTitle  string    `json:"video_title"`
	VideoURL    string    `json:"video_url"`
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	PublishedAt time.Time `json:"published_at"`
	ViewCount   int64     `json:"view_count"`
}
