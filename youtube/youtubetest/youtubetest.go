// Package youtubetest provides an in-process fake of the YouTube Data API
// endpoints used by bestvids: channels.list, playlistItems.list and
// videos.list.
package youtubetest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	ytapi "google.golang.org/api/youtube/v3"
)

// API is a fake Data API. Configure its fields before serving requests.
type API struct {
	mu sync.Mutex

	// Usernames maps a legacy username to the channel IDs it returns.
	Usernames map[string][]string
	Channels  map[string]*ytapi.Channel
	// ChannelIDs overrides what an id lookup returns, for duplicate answers.
	ChannelIDs map[string][]string
	// Playlists maps a playlist ID to its video IDs, in order.
	Playlists map[string][]string
	Stats     map[string]*ytapi.VideoStatistics
	// VideoCount overrides how many copies of a video videos.list returns.
	VideoCount map[string]int
	// FailPlaylistAt makes the given 1-based playlistItems.list request fail.
	FailPlaylistAt int

	calls         map[string]int
	playlistPages int
}

// New returns an empty fake.
func New() *API {
	return &API{
		Usernames:  map[string][]string{},
		Channels:   map[string]*ytapi.Channel{},
		ChannelIDs: map[string][]string{},
		Playlists:  map[string][]string{},
		Stats:      map[string]*ytapi.VideoStatistics{},
		VideoCount: map[string]int{},
		calls:      map[string]int{},
	}
}

// Start serves the fake until the test ends.
func (a *API) Start(t testing.TB) *httptest.Server {
	srv := httptest.NewServer(a)
	t.Cleanup(srv.Close)
	return srv
}

// Endpoint returns the base URL to configure a client with.
func Endpoint(srv *httptest.Server) string {
	return srv.URL + "/"
}

// AddChannel registers a channel with the given uploads playlist.
func (a *API) AddChannel(id, title, uploads string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Channels[id] = &ytapi.Channel{
		Id:      id,
		Snippet: &ytapi.ChannelSnippet{Title: title},
		ContentDetails: &ytapi.ChannelContentDetails{
			RelatedPlaylists: &ytapi.ChannelContentDetailsRelatedPlaylists{Uploads: uploads},
		},
	}
}

// AddUploads appends n videos named <prefix>000, <prefix>001, ... to a
// playlist, each with likes = index+1 and dislikes = index. It returns the
// new IDs.
func (a *API) AddUploads(playlistID, prefix string, n int) []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	ids := make([]string, n)
	for i := range ids {
		id := fmt.Sprintf("%s%03d", prefix, i)
		ids[i] = id
		a.Stats[id] = &ytapi.VideoStatistics{
			LikeCount:    uint64(i + 1),
			DislikeCount: uint64(i),
			ViewCount:    uint64(100 * (i + 1)),
		}
	}
	a.Playlists[playlistID] = append(a.Playlists[playlistID], ids...)
	return ids
}

// Update runs fn with the fake locked, for changes made while serving.
func (a *API) Update(fn func(a *API)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn(a)
}

// Calls returns how many requests an endpoint ("channels", "playlistItems",
// "videos") has served.
func (a *API) Calls(endpoint string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[endpoint]
}

// ResetCalls zeroes the request counters.
func (a *API) ResetCalls() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = map[string]int{}
	a.playlistPages = 0
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	q := r.URL.Query()
	switch {
	case strings.HasSuffix(r.URL.Path, "/channels"):
		a.calls["channels"]++
		resp := &ytapi.ChannelListResponse{}
		if name := q.Get("forUsername"); name != "" {
			for _, id := range a.Usernames[name] {
				resp.Items = append(resp.Items, a.Channels[id])
			}
		} else if ids, ok := a.ChannelIDs[q.Get("id")]; ok {
			for _, id := range ids {
				resp.Items = append(resp.Items, a.Channels[id])
			}
		} else if c, ok := a.Channels[q.Get("id")]; ok {
			resp.Items = append(resp.Items, c)
		}
		writeJSON(w, resp)

	case strings.HasSuffix(r.URL.Path, "/playlistItems"):
		a.calls["playlistItems"]++
		a.playlistPages++
		if a.FailPlaylistAt > 0 && a.playlistPages == a.FailPlaylistAt {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error":{"code":500,"message":"backend error"}}`)
			return
		}

		ids := a.Playlists[q.Get("playlistId")]
		offset, _ := strconv.Atoi(q.Get("pageToken"))
		size, _ := strconv.Atoi(q.Get("maxResults"))
		if size <= 0 {
			size = 5
		}
		offset = min(offset, len(ids))
		end := min(offset+size, len(ids))

		resp := &ytapi.PlaylistItemListResponse{}
		for _, id := range ids[offset:end] {
			resp.Items = append(resp.Items, &ytapi.PlaylistItem{
				Id: "item-" + id,
				Snippet: &ytapi.PlaylistItemSnippet{
					Title:      "title " + id,
					ResourceId: &ytapi.ResourceId{Kind: "youtube#video", VideoId: id},
				},
			})
		}
		if end < len(ids) {
			resp.NextPageToken = strconv.Itoa(end)
		}
		writeJSON(w, resp)

	case strings.HasSuffix(r.URL.Path, "/videos"):
		a.calls["videos"]++
		id := q.Get("id")
		count := 1
		if n, ok := a.VideoCount[id]; ok {
			count = n
		}
		resp := &ytapi.VideoListResponse{}
		for range count {
			resp.Items = append(resp.Items, &ytapi.Video{Id: id, Statistics: a.Stats[id]})
		}
		writeJSON(w, resp)

	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
