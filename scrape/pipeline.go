// Package scrape ingests a channel's uploads: it resolves the channel, walks
// its uploads playlist, fetches every video's statistics and upserts the
// result.
package scrape

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"bestvids/storage"
	"bestvids/youtube"
)

// ErrNoUploads is returned for a channel without an uploads playlist.
var ErrNoUploads = errors.New("scrape: channel has no uploads playlist")

// Resolver resolves a user query to exactly one persisted channel.
type Resolver interface {
	Resolve(ctx context.Context, query string) (*storage.Channel, error)
}

// Pager is a lazy sequence of playlist items.
type Pager interface {
	Next(ctx context.Context) bool
	Item() youtube.PlaylistItem
	Err() error
	Pages() int
}

// Enricher turns a playlist item into a video record.
type Enricher interface {
	Enrich(ctx context.Context, channelID string, item youtube.PlaylistItem) (*storage.Video, error)
}

// Store is where videos and run records are written.
type Store interface {
	storage.VideoStore
	storage.RunStore
}

// QuotaCounter reports quota units spent so far.
type QuotaCounter interface {
	Used() int
}

// Pipeline runs one channel scrape at a time. It is not safe for concurrent use.
type Pipeline struct {
	resolver Resolver
	pages    func(playlistID string) Pager
	enricher Enricher
	store    Store

	// Quota, when set, is sampled to record each run's quota cost.
	Quota QuotaCounter
	// OnTransition, when set, is called on every state change.
	OnTransition func(from, to State)
	// OnVideo, when set, is called after each video is stored.
	OnVideo func(video *storage.Video)
}

// NewPipeline wires a pipeline. pages opens a pager over a playlist.
func NewPipeline(resolver Resolver, pages func(playlistID string) Pager, enricher Enricher, store Store) *Pipeline {
	return &Pipeline{
		resolver: resolver,
		pages:    pages,
		enricher: enricher,
		store:    store,
	}
}

// Result summarizes a successful scrape.
type Result struct {
	RunID   string
	Channel *storage.Channel
	// Videos is the number of videos upserted.
	Videos int
	Pages  int
}

// Run scrapes the channel matching query. Each playlist item is enriched and
// upserted before the next one is read. Errors are returned unchanged and
// whatever was upserted before the failure stays in the store. Re-running
// the scrape overwrites it.
func (p *Pipeline) Run(ctx context.Context, query string) (*Result, error) {
	run := &storage.ScrapeRun{
		RunID:     uuid.NewString(),
		Query:     query,
		Status:    storage.RunRunning,
		StartedAt: time.Now().UTC(),
	}
	logger := log.With().Str("run_id", run.RunID).Str("query", query).Logger()

	if err := p.store.CreateRun(ctx, run); err != nil {
		logger.Warn().Err(err).Msg("scrape: failed to record run start")
	}
	quotaStart := p.quotaUsed()

	logger.Info().Msg("scrape: started")
	ex := &execution{Pipeline: p, run: run, state: Resolving}
	channel, err := ex.execute(ctx)

	run.FinishedAt = time.Now().UTC()
	run.QuotaUnits = p.quotaUsed() - quotaStart
	if err != nil {
		run.Status = storage.RunFailed
		run.LastError = err.Error()
	} else {
		run.Status = storage.RunDone
	}
	if ferr := p.store.FinishRun(context.WithoutCancel(ctx), run); ferr != nil {
		logger.Warn().Err(ferr).Msg("scrape: failed to record run result")
	}

	if err != nil {
		logger.Error().Err(err).
			Int("videos", run.VideosProcessed).
			Str("state", ex.state.String()).
			Msg("scrape: failed")
		return nil, err
	}

	logger.Info().
		Str("channel_id", channel.ChannelID).
		Int("videos", run.VideosProcessed).
		Int("pages", run.Pages).
		Int("quota_units", run.QuotaUnits).
		Dur("elapsed", run.FinishedAt.Sub(run.StartedAt)).
		Msg("scrape: done")

	return &Result{
		RunID:   run.RunID,
		Channel: channel,
		Videos:  run.VideosProcessed,
		Pages:   run.Pages,
	}, nil
}

func (p *Pipeline) quotaUsed() int {
	if p.Quota == nil {
		return 0
	}
	return p.Quota.Used()
}

// execution is the state of a single Run.
type execution struct {
	*Pipeline
	run   *storage.ScrapeRun
	state State
}

func (ex *execution) enter(to State) {
	from := ex.state
	ex.state = to
	log.Debug().Str("run_id", ex.run.RunID).Stringer("from", from).Stringer("to", to).Msg("scrape: transition")
	if ex.OnTransition != nil {
		ex.OnTransition(from, to)
	}
}

func (ex *execution) fail(err error) error {
	ex.enter(Failed)
	return err
}

func (ex *execution) execute(ctx context.Context) (*storage.Channel, error) {
	channel, err := ex.resolver.Resolve(ctx, ex.run.Query)
	if err != nil {
		return nil, ex.fail(err)
	}
	ex.run.ChannelID = channel.ChannelID
	if channel.UploadsPlaylistID == "" {
		return nil, ex.fail(ErrNoUploads)
	}

	ex.enter(Paging)
	pager := ex.pages(channel.UploadsPlaylistID)
	for pager.Next(ctx) {
		ex.run.Pages = pager.Pages()
		item := pager.Item()

		ex.enter(Enriching)
		video, err := ex.enricher.Enrich(ctx, channel.ChannelID, item)
		if err != nil {
			return nil, ex.fail(err)
		}
		if err := ex.store.UpsertVideo(ctx, video); err != nil {
			return nil, ex.fail(err)
		}
		ex.run.VideosProcessed++
		log.Debug().
			Str("run_id", ex.run.RunID).
			Str("video_id", video.VideoID).
			Int64("likes", video.LikeCount).
			Int64("dislikes", video.DislikeCount).
			Msg("scrape: stored video")
		if ex.OnVideo != nil {
			ex.OnVideo(video)
		}

		ex.enter(Paging)
	}
	ex.run.Pages = pager.Pages()
	if err := pager.Err(); err != nil {
		return nil, ex.fail(err)
	}

	ex.enter(Done)
	return channel, nil
}
