package bestvids

import (
	"bestvids/auth"
	"bestvids/storage"
	"bestvids/youtube"
)

// Error handling types exported for library users.
//
// Every typed error matches its sentinel with errors.Is():
//
//	if errors.Is(err, bestvids.ErrChannelNotFound) {
//		fmt.Println("Channel not found")
//	}
//
// and carries details retrievable with errors.As():
//
//	var ambErr *bestvids.AmbiguousChannelError
//	if errors.As(err, &ambErr) {
//		fmt.Printf("%q matched %d channels\n", ambErr.Query, ambErr.Count)
//	}

// Type aliases for convenient error handling.
type (
	// ChannelNotFoundError reports a query that matched no channel.
	ChannelNotFoundError = youtube.ChannelNotFoundError
	// AmbiguousChannelError reports a query that matched several channels.
	AmbiguousChannelError = youtube.AmbiguousChannelError
	// VideoNotFoundError reports a statistics lookup without exactly one result.
	VideoNotFoundError = youtube.VideoNotFoundError
	// TransportError wraps a failed Data API call.
	TransportError = youtube.TransportError
	// AuthorizationError reports a failed or declined credential exchange.
	AuthorizationError = auth.AuthorizationError
	// StorageError wraps errors during storage operations.
	StorageError = storage.StorageError
)

// Sentinel errors exported from sub-packages.
var (
	ErrChannelNotFound  = youtube.ErrChannelNotFound
	ErrAmbiguousChannel = youtube.ErrAmbiguousChannel
	ErrVideoNotFound    = youtube.ErrVideoNotFound
	ErrTransport        = youtube.ErrTransport
	ErrAuthorization    = auth.ErrAuthorization

	// Storage errors
	// ErrNotFound indicates a record was not found in storage.
	ErrNotFound = storage.ErrNotFound
	// ErrInvalidInput indicates invalid input was provided to storage.
	ErrInvalidInput = storage.ErrInvalidInput
	// ErrLockTimeout indicates another writer holds the database lock.
	ErrLockTimeout = storage.ErrLockTimeout
)
