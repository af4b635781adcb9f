// Package storage persists channels, videos and scrape runs in a local
// SQLite database.
package storage

import (
	"context"
	"errors"
	"fmt"

	"bestvids/internal/fsutil"
)

// Sentinel errors for common storage conditions.
var (
	// ErrNotFound indicates the requested record was not found.
	ErrNotFound = errors.New("storage: not found")
	// ErrInvalidInput indicates invalid or malformed input was provided.
	ErrInvalidInput = errors.New("storage: invalid input")
	// ErrLockTimeout indicates another writer holds the database lock.
	ErrLockTimeout = fsutil.ErrLockTimeout
)

// StorageError wraps storage errors with operation and entity context.
// Use errors.As() to extract this error type and get operation details:
//
//	var storErr *storage.StorageError
//	if errors.As(err, &storErr) {
//		fmt.Printf("Failed to %s %s %s: %v\n", storErr.Op, storErr.Entity, storErr.ID, storErr.Err)
//	}
type StorageError struct {
	// Op is the operation that failed ("upsert", "read", "list", "migrate").
	Op string
	// Entity is the record type ("channel", "video", "run", "store").
	Entity string
	// ID is the record key if applicable.
	ID string
	// Err is the underlying error that occurred.
	Err error
}

// Error returns a string representation of the storage error.
func (e *StorageError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("storage: %s %s %s: %v", e.Op, e.Entity, e.ID, e.Err)
	}
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Entity, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *StorageError) Unwrap() error { return e.Err }

// Store is the record store shared by the scrape and ranking paths.
// Implementations assume a single writer.
type Store interface {
	ChannelStore
	VideoStore
	RunStore

	// Close releases any resources held by the store.
	Close() error
}

// ChannelStore handles channel persistence.
type ChannelStore interface {
	// UpsertChannel inserts the channel or overwrites every field of the
	// record with the same ChannelID.
	UpsertChannel(ctx context.Context, channel *Channel) error
	// GetChannel retrieves a channel by its platform ID.
	GetChannel(ctx context.Context, channelID string) (*Channel, error)
	// GetChannelByTitle retrieves the first stored channel with the given title.
	GetChannelByTitle(ctx context.Context, title string) (*Channel, error)
	// FindChannel looks a channel up by platform ID, then by title.
	FindChannel(ctx context.Context, key string) (*Channel, error)
	// ListChannels returns all channels ordered by title, case-insensitive.
	ListChannels(ctx context.Context) ([]*Channel, error)
}

// VideoStore handles video persistence.
type VideoStore interface {
	// UpsertVideo inserts the video or overwrites every field of the record
	// with the same VideoID.
	UpsertVideo(ctx context.Context, video *Video) error
	// GetVideo retrieves a video by its platform ID.
	GetVideo(ctx context.Context, videoID string) (*Video, error)
	// ListVideos returns a channel's videos in the order they were first stored.
	ListVideos(ctx context.Context, channelID string) ([]*Video, error)
}

// RunStore records scrape invocations.
type RunStore interface {
	// CreateRun records the start of a scrape.
	CreateRun(ctx context.Context, run *ScrapeRun) error
	// FinishRun stores the final state of a scrape.
	FinishRun(ctx context.Context, run *ScrapeRun) error
	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]*ScrapeRun, error)
}
