package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"bestvids/storage"
)

// DefaultVideoParts is the videos.list part set used when none is configured.
var DefaultVideoParts = []string{"statistics"}

// VideoEnricher fetches a playlist item's statistics and builds the video
// record to persist. It issues one videos.list call per item.
type VideoEnricher struct {
	client *Client
	parts  []string
}

// NewVideoEnricher returns an enricher requesting parts from videos.list.
// Empty parts means DefaultVideoParts.
func NewVideoEnricher(client *Client, parts []string) *VideoEnricher {
	if len(parts) == 0 {
		parts = DefaultVideoParts
	}
	return &VideoEnricher{client: client, parts: parts}
}

// Parts returns the requested videos.list parts, comma separated.
func (e *VideoEnricher) Parts() string {
	return strings.Join(e.parts, ",")
}

// Enrich looks up item's statistics and merges them with the item's title and
// ID. The lookup must return exactly one video. Counts the platform hides are
// stored as 0.
func (e *VideoEnricher) Enrich(ctx context.Context, channelID string, item PlaylistItem) (*storage.Video, error) {
	items, err := e.client.videos(ctx, item.VideoID, e.parts)
	if err != nil {
		return nil, err
	}
	if len(items) != 1 {
		return nil, &VideoNotFoundError{VideoID: item.VideoID, Count: len(items)}
	}

	v := items[0]
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode video %s: %w", item.VideoID, err)
	}

	video := &storage.Video{
		VideoID:   item.VideoID,
		ChannelID: channelID,
		Title:     item.Title,
		Raw:       raw,
	}
	if s := v.Statistics; s != nil {
		video.LikeCount = int64(s.LikeCount)
		video.DislikeCount = int64(s.DislikeCount)
		video.ViewCount = int64(s.ViewCount)
	}
	return video, nil
}
