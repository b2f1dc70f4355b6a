package interfaces

import (
	"context"

	"feed-monitor/src/models"
)

// -----------------------------------------------------------------------------
// IFrameSource is an ordered stream of text frames from the feed.
// -----------------------------------------------------------------------------

type IFrameSource interface {

	// -----------------------------------------------------------------------------

	// Name identifies the feed in logs and status.
	Name() string

	// -----------------------------------------------------------------------------

	// Open connects to the feed and sends the subscription request.
	Open(ctx context.Context) error

	// -----------------------------------------------------------------------------

	// Next blocks until the next text frame arrives.
	// Returns io.EOF when the stream ends normally.
	Next(ctx context.Context) (string, error)

	// -----------------------------------------------------------------------------

	// Close releases the connection. Safe to call more than once.
	Close() error

	// -----------------------------------------------------------------------------

	// Status reports the current connection state.
	Status() models.MDataSourceStatus
}
