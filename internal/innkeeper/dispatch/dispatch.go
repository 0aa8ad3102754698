// Package dispatch delivers booking summaries over side channels (chat
// network, document delivery) outside the main conversation.
package dispatch

import "context"

// Error is the typed failure every dispatcher returns, so callers can tell a
// transport failure apart from a programming error and offer the guest a
// retry.
type Error struct {
	Channel     string
	Destination string
	Err         error
}

func (e *Error) Error() string {
	return "dispatch via " + e.Channel + " to " + e.Destination + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Dispatcher sends a prepared summary to one destination on one channel.
type Dispatcher interface {
	// Channel names the transport ("matrix", "document").
	Channel() string
	// Send delivers the summary. Failures are returned as *Error.
	Send(ctx context.Context, destination, summary string) error
}
