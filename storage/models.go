package storage

import (
	"encoding/json"
	"time"
)

// Channel is a YouTube channel whose uploads have been scraped.
type Channel struct {
	// ChannelID is the YouTube channel ID (e.g., "UCXIyz409s7bNWVcM-vjfdVA").
	ChannelID string `json:"channel_id"`
	// Title is the channel's display title.
	Title string `json:"title"`
	// UploadsPlaylistID is the channel's uploads playlist, taken from contentDetails.
	UploadsPlaylistID string `json:"uploads_playlist_id"`
	// Raw is the channel resource as returned by the API.
	Raw json.RawMessage `json:"raw,omitempty"`
	// UpdatedAt is when this record was last written.
	UpdatedAt time.Time `json:"updated_at"`
}

// URL returns the channel's YouTube URL.
func (c Channel) URL() string {
	return "https://www.youtube.com/channel/" + c.ChannelID
}

// Video is a single upload and its popularity counters.
type Video struct {
	// VideoID is the YouTube video ID (e.g., "dQw4w9WgXcQ").
	VideoID string `json:"video_id"`
	// ChannelID references Channel.ChannelID. It is not enforced.
	ChannelID string `json:"channel_id"`
	// Title is the title from the playlist item.
	Title string `json:"title"`
	// LikeCount, DislikeCount and ViewCount come from one statistics read.
	LikeCount    int64 `json:"like_count"`
	DislikeCount int64 `json:"dislike_count"`
	ViewCount    int64 `json:"view_count"`
	// Raw is the video resource as returned by the API.
	Raw json.RawMessage `json:"raw,omitempty"`
	// UpdatedAt is when this record was last written.
	UpdatedAt time.Time `json:"updated_at"`
}

// WatchURL returns the canonical watch URL for this video.
func (v Video) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + v.VideoID
}

// RunStatus is the state of a scrape run.
type RunStatus string

const (
	RunRunning RunStatus = "running"
	RunDone    RunStatus = "done"
	RunFailed  RunStatus = "failed"
)

// ScrapeRun records one scrape invocation. It is informational only; scrapes
// never resume from it.
type ScrapeRun struct {
	// RunID is a random UUID assigned when the run starts.
	RunID string `json:"run_id"`
	// Query is the handle or ID the user asked for.
	Query string `json:"query"`
	// ChannelID is set once the channel has been resolved.
	ChannelID string `json:"channel_id,omitempty"`
	// Status is running until the run finishes.
	Status RunStatus `json:"status"`
	// VideosProcessed counts videos upserted by this run.
	VideosProcessed int `json:"videos_processed"`
	// Pages counts playlist pages fetched.
	Pages int `json:"pages"`
	// QuotaUnits is the estimated Data API quota consumed.
	QuotaUnits int `json:"quota_units"`
	// LastError holds the failure message of a failed run.
	LastError string `json:"last_error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}
