package youtube

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	ytapi "google.golang.org/api/youtube/v3"

	"bestvids/storage"
)

// ChannelResolver turns a user-supplied handle or channel ID into exactly one
// persisted channel.
type ChannelResolver struct {
	client *Client
	store  storage.ChannelStore
}

// NewChannelResolver returns a resolver that persists what it resolves to store.
func NewChannelResolver(client *Client, store storage.ChannelStore) *ChannelResolver {
	return &ChannelResolver{client: client, store: store}
}

// Resolve looks query up as a legacy username first and, when nothing
// matches, as a channel ID. More than one match from the answering lookup is
// an AmbiguousChannelError; no match from either is a ChannelNotFoundError.
// The resolved channel is upserted before it is returned.
func (r *ChannelResolver) Resolve(ctx context.Context, query string) (*storage.Channel, error) {
	if query == "" {
		return nil, &ChannelNotFoundError{Query: query}
	}

	by := "username"
	items, err := r.client.channelsByUsername(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		log.Debug().Str("query", query).Msg("youtube: no channel by username, trying id")
		by = "id"
		items, err = r.client.channelsByID(ctx, query)
		if err != nil {
			return nil, err
		}
	}

	switch {
	case len(items) == 0:
		return nil, &ChannelNotFoundError{Query: query}
	case len(items) > 1:
		return nil, &AmbiguousChannelError{Query: query, By: by, Count: len(items)}
	}

	channel, err := channelRecord(items[0])
	if err != nil {
		return nil, err
	}
	if err := r.store.UpsertChannel(ctx, channel); err != nil {
		return nil, err
	}

	log.Info().
		Str("channel_id", channel.ChannelID).
		Str("title", channel.Title).
		Str("by", by).
		Msg("youtube: resolved channel")
	return channel, nil
}

func channelRecord(item *ytapi.Channel) (*storage.Channel, error) {
	raw, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("encode channel %s: %w", item.Id, err)
	}

	channel := &storage.Channel{ChannelID: item.Id, Raw: raw}
	if item.Snippet != nil {
		channel.Title = item.Snippet.Title
	}
	if item.ContentDetails != nil && item.ContentDetails.RelatedPlaylists != nil {
		channel.UploadsPlaylistID = item.ContentDetails.RelatedPlaylists.Uploads
	}
	return channel, nil
}
