package youtube

import (
	"errors"
	"fmt"
)

// Sentinel errors for channel resolution and video enrichment.
var (
	ErrChannelNotFound  = errors.New("youtube: channel not found")
	ErrAmbiguousChannel = errors.New("youtube: ambiguous channel")
	ErrVideoNotFound    = errors.New("youtube: video not found")
	ErrTransport        = errors.New("youtube: transport failure")
)

// ChannelNotFoundError reports that no channel matched a query, either by
// username or by ID.
type ChannelNotFoundError struct {
	// Query is the handle or ID that was looked up.
	Query string
}

func (e *ChannelNotFoundError) Error() string {
	return fmt.Sprintf("youtube: no channel matches %q", e.Query)
}

// Is reports whether target is ErrChannelNotFound.
func (e *ChannelNotFoundError) Is(target error) bool { return target == ErrChannelNotFound }

// AmbiguousChannelError reports that a lookup matched more than one channel.
//
//	var ambErr *youtube.AmbiguousChannelError
//	if errors.As(err, &ambErr) {
//		fmt.Printf("%q matched %d channels by %s\n", ambErr.Query, ambErr.Count, ambErr.By)
//	}
type AmbiguousChannelError struct {
	// Query is the handle or ID that was looked up.
	Query string
	// By is the lookup that matched ("username" or "id").
	By string
	// Count is the number of channels returned.
	Count int
}

func (e *AmbiguousChannelError) Error() string {
	return fmt.Sprintf("youtube: %q matches %d channels by %s", e.Query, e.Count, e.By)
}

// Is reports whether target is ErrAmbiguousChannel.
func (e *AmbiguousChannelError) Is(target error) bool { return target == ErrAmbiguousChannel }

// VideoNotFoundError reports that a statistics lookup did not return exactly
// one video.
type VideoNotFoundError struct {
	VideoID string
	// Count is the number of videos the lookup returned.
	Count int
}

func (e *VideoNotFoundError) Error() string {
	return fmt.Sprintf("youtube: video %s: lookup returned %d results, want 1", e.VideoID, e.Count)
}

// Is reports whether target is ErrVideoNotFound.
func (e *VideoNotFoundError) Is(target error) bool { return target == ErrVideoNotFound }

// TransportError wraps a failed Data API call. Network failures and API
// error responses are not distinguished.
type TransportError struct {
	// Op is the API method that failed (e.g. "channels.list").
	Op string
	// Err is the underlying error.
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("youtube: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *TransportError) Unwrap() error { return e.Err }

// Is reports whether target is ErrTransport.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }
