// Package youtube reads channels, upload playlists and video statistics from
// the YouTube Data API v3.
package youtube

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"
)

// ClientConfig configures a Client.
type ClientConfig struct {
	// RequestsPerSecond throttles outgoing API requests. 0 disables throttling.
	RequestsPerSecond float64
	// Endpoint overrides the API base URL. Empty uses the public endpoint.
	Endpoint string
}

// Client issues the three Data API reads the scraper needs. Every call is
// blocking and counted against the quota meter. Calls are never retried.
type Client struct {
	service *ytapi.Service
	quota   *QuotaMeter
}

// NewClient builds a Client on top of an authorized HTTP client.
func NewClient(ctx context.Context, httpClient *http.Client, cfg ClientConfig) (*Client, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("youtube: http client required")
	}

	opts := []option.ClientOption{option.WithHTTPClient(throttle(httpClient, cfg.RequestsPerSecond))}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	service, err := ytapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	return &Client{service: service, quota: NewQuotaMeter(DefaultDailyQuota)}, nil
}

// Quota returns the meter tracking units spent by this client.
func (c *Client) Quota() *QuotaMeter {
	return c.quota
}

var channelParts = []string{"contentDetails", "snippet"}

func (c *Client) channelsByUsername(ctx context.Context, username string) ([]*ytapi.Channel, error) {
	var resp *ytapi.ChannelListResponse
	err := c.call("channels.list", func() (err error) {
		resp, err = c.service.Channels.List(channelParts).ForUsername(username).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) channelsByID(ctx context.Context, id string) ([]*ytapi.Channel, error) {
	var resp *ytapi.ChannelListResponse
	err := c.call("channels.list", func() (err error) {
		resp, err = c.service.Channels.List(channelParts).Id(id).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// maxPageSize is the largest page playlistItems.list will return.
const maxPageSize = 50

func (c *Client) playlistPage(ctx context.Context, playlistID, pageToken string) (*ytapi.PlaylistItemListResponse, error) {
	var resp *ytapi.PlaylistItemListResponse
	err := c.call("playlistItems.list", func() (err error) {
		call := c.service.PlaylistItems.List([]string{"snippet"}).
			PlaylistId(playlistID).
			MaxResults(maxPageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err = call.Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) videos(ctx context.Context, videoID string, parts []string) ([]*ytapi.Video, error) {
	var resp *ytapi.VideoListResponse
	err := c.call("videos.list", func() (err error) {
		resp, err = c.service.Videos.List(parts).Id(videoID).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// call runs one API request, charging its quota cost up front.
func (c *Client) call(op string, fn func() error) error {
	c.quota.Spend(op, unitsPerCall)
	if err := fn(); err != nil {
		return &TransportError{Op: op, Err: err}
	}
	return nil
}
