package ranking

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
)

// Render writes the ranking in listing order, one block per video:
//
//	0.985	1,712	23	Samuel Truth - Rua (44,300 views)
//	https://www.youtube.com/watch?v=v5yHI3KsaM4
//
// followed by a blank line.
func Render(w io.Writer, r *Ranking) error {
	for _, e := range r.Entries {
		_, err := fmt.Fprintf(w, "%05.3f\t%s\t%s\t%s (%s views)\n%s\n\n",
			e.Score,
			humanize.Comma(e.LikeCount),
			humanize.Comma(e.DislikeCount),
			e.Title,
			humanize.Comma(e.ViewCount),
			e.WatchURL(),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

type jsonEntry struct {
	Score        float64 `json:"score"`
	VideoID      string  `json:"video_id"`
	Title        string  `json:"title"`
	LikeCount    int64   `json:"like_count"`
	DislikeCount int64   `json:"dislike_count"`
	ViewCount    int64   `json:"view_count"`
	URL          string  `json:"url"`
}

type jsonRanking struct {
	ChannelID string      `json:"channel_id"`
	Title     string      `json:"title"`
	Videos    []jsonEntry `json:"videos"`
}

// RenderJSON writes the ranking as an indented JSON document, in the same
// order as Render.
func RenderJSON(w io.Writer, r *Ranking) error {
	out := jsonRanking{
		ChannelID: r.Channel.ChannelID,
		Title:     r.Channel.Title,
		Videos:    make([]jsonEntry, 0, len(r.Entries)),
	}
	for _, e := range r.Entries {
		out.Videos = append(out.Videos, jsonEntry{
			Score:        e.Score,
			VideoID:      e.VideoID,
			Title:        e.Title,
			LikeCount:    e.LikeCount,
			DislikeCount: e.DislikeCount,
			ViewCount:    e.ViewCount,
			URL:          e.WatchURL(),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
