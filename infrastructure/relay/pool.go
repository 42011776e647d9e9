// Package relay implements the multiplexer that fans a filter set out across
// a relay set, merges the streamed results, and resolves on the earliest of
// all relays ending, an early-exit quorum, or the time budget.
package relay

import (
	"context"

	"github.com/nbd-wtf/go-nostr"
)

// HandleStatus is the connection state of a relay handle.
type HandleStatus int

const (
	HandleConnected HandleStatus = iota
	HandlePending
	HandleClosed
)

// String returns the status name for logs and the status endpoint.
func (s HandleStatus) String() string {
	switch s {
	case HandleConnected:
		return "connected"
	case HandlePending:
		return "pending"
	case HandleClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Subscription is one open subscription against one relay. Close is
// idempotent and never reports an error.
type Subscription interface {
	Close()
}

// Handle is a single relay connection slot. Subscribe streams matching events
// into onEvent and signals onEOSE at most once, when the relay reports the
// end of stored events or the stream ends for any other reason.
type Handle interface {
	URL() string
	Status() HandleStatus
	Subscribe(ctx context.Context, filters nostr.Filters, onEvent func(*nostr.Event), onEOSE func()) (Subscription, error)
}

// Pool owns relay connections for the whole process. EnsureRelay returns an
// existing handle when one is already connected. Close is idempotent.
type Pool interface {
	EnsureRelay(ctx context.Context, url string) (Handle, error)
	Close()
}
