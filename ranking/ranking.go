// Package ranking orders a channel's stored videos by like ratio.
package ranking

import (
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog/log"

	"bestvids/storage"
	"bestvids/youtube"
)

// Entry is one ranked video.
type Entry struct {
	Score float64
	*storage.Video
}

// Ranking is a channel and its videos, ordered lowest score first.
type Ranking struct {
	Channel *storage.Channel
	Entries []Entry
}

// Store is the subset of storage the engine reads.
type Store interface {
	FindChannel(ctx context.Context, key string) (*storage.Channel, error)
	ListVideos(ctx context.Context, channelID string) ([]*storage.Video, error)
}

// Engine ranks persisted videos.
type Engine struct {
	store Store
}

// NewEngine returns an engine reading from store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Rank looks the channel up by ID or title and returns its videos sorted
// ascending by score, then by like count. Ties keep retrieval order, so the
// best-rated videos come last.
func (e *Engine) Rank(ctx context.Context, key string) (*Ranking, error) {
	channel, err := e.store.FindChannel(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, &youtube.ChannelNotFoundError{Query: key}
	}
	if err != nil {
		return nil, err
	}

	videos, err := e.store.ListVideos(ctx, channel.ChannelID)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, len(videos))
	for i, v := range videos {
		entries[i] = Entry{Score: Score(v.LikeCount, v.DislikeCount), Video: v}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score < entries[j].Score
		}
		return entries[i].LikeCount < entries[j].LikeCount
	})

	log.Debug().Str("channel_id", channel.ChannelID).Int("videos", len(entries)).Msg("ranking: ranked channel")
	return &Ranking{Channel: channel, Entries: entries}, nil
}
