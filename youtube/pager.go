package youtube

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// PlaylistItem describes one playlist entry.
type PlaylistItem struct {
	VideoID string
	Title   string
}

// PlaylistPager walks a playlist one page at a time. Use it like a
// bufio.Scanner:
//
//	pager := client.Playlist(playlistID)
//	for pager.Next(ctx) {
//		item := pager.Item()
//		...
//	}
//	if err := pager.Err(); err != nil {
//		...
//	}
//
// A page is fetched only when the previous one has been consumed. Paging
// stops when the API returns no next page token. A failed page fetch, or a
// page with an item lacking a video ID, ends the sequence. A pager cannot be restarted.
type PlaylistPager struct {
	client     *Client
	playlistID string

	page  []PlaylistItem
	pos   int
	item  PlaylistItem
	token string
	pages int
	done  bool
	err   error
}

// Playlist returns a pager over the items of playlistID.
func (c *Client) Playlist(playlistID string) *PlaylistPager {
	return &PlaylistPager{client: c, playlistID: playlistID}
}

// Next advances to the next item, fetching a page when needed. It returns
// false once the playlist is exhausted or a fetch fails.
func (p *PlaylistPager) Next(ctx context.Context) bool {
	for p.pos >= len(p.page) {
		if p.done {
			return false
		}
		if err := p.fetch(ctx); err != nil {
			p.err = err
			p.done = true
			p.page, p.pos = nil, 0
			return false
		}
	}

	p.item = p.page[p.pos]
	p.pos++
	return true
}

// Item returns the item Next advanced to.
func (p *PlaylistPager) Item() PlaylistItem {
	return p.item
}

// Err returns the error that ended the sequence, if any.
func (p *PlaylistPager) Err() error {
	return p.err
}

// Pages returns the number of pages fetched so far.
func (p *PlaylistPager) Pages() int {
	return p.pages
}

func (p *PlaylistPager) fetch(ctx context.Context) error {
	resp, err := p.client.playlistPage(ctx, p.playlistID, p.token)
	if err != nil {
		return err
	}
	p.pages++

	p.page = p.page[:0]
	p.pos = 0
	for _, it := range resp.Items {
		if it.Snippet == nil || it.Snippet.ResourceId == nil || it.Snippet.ResourceId.VideoId == "" {
			return &TransportError{Op: "playlistItems.list", Err: fmt.Errorf("item %q has no video id", it.Id)}
		}
		p.page = append(p.page, PlaylistItem{
			VideoID: it.Snippet.ResourceId.VideoId,
			Title:   it.Snippet.Title,
		})
	}

	p.token = resp.NextPageToken
	if p.token == "" {
		p.done = true
	}

	log.Debug().
		Str("playlist_id", p.playlistID).
		Int("page", p.pages).
		Int("items", len(p.page)).
		Bool("last", p.done).
		Msg("youtube: fetched playlist page")
	return nil
}
