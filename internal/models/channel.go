package models

import "time"

type Channel struct {
	ChannelID       string    `json:"channel_id"`
	Name            string    `json:"name"`
	URL             string    `json:"url"`
	Description     string    `json:"description"`
	SubscriberCount int64     `json:"subscriber_count"`
	VideoCount      int64     `json:"video_count"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Keyword struct {
	ID        int64     `json:"id"`
	Keyword   string    `json:"keyword"`
	Category  string    `json:"category"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
