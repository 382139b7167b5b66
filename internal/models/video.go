package models

import "time"

// Video is an immutable record of a discovered video. Re-fetching a stored
// video is a no-op apart from matched_keywords accumulation.
type Video struct {
	VideoID         string    `json:"video_id"`
	ChannelID       string    `json:"channel_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	PublishedAt     time.Time `json:"published_at"`
	DurationSeconds int       `json:"duration_seconds"`
	ViewCount       int64     `json:"view_count"`
	LikeCount       int64     `json:"like_count"`
	CommentCount    int64     `json:"comment_count"`
	VideoURL        string    `json:"video_url"`
	ThumbnailURL    string    `json:"thumbnail_url"`
	Tags            []string  `json:"tags"`
	MatchedKeywords []string  `json:"matched_keywords"`
	CaptionText     string    `json:"caption_text"`
	CaptionLanguage string    `json:"caption_language"`
	CreatedAt       time.Time `json:"created_at"`
}

// VideoCandidate is what the fetcher returns before persistence: metadata
// only, captions are resolved separately.
type VideoCandidate struct {
	VideoID         string
	ChannelID       string
	ChannelTitle    string
	Title           string
	Description     string
	PublishedAt     time.Time
	DurationSeconds int
	ViewCount       int64
	LikeCount       int64
	CommentCount    int64
	ThumbnailURL    string
	Tags            []string
}

func (c VideoCandidate) URL() string {
	return "https://www.youtube.com/watch?v=" + c.VideoID
}
