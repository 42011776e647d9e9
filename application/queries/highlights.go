package queries

import (
	"github.com/nbd-wtf/go-nostr"

	"octavo/domain/core/valueobjects"
)

// ListHighlightsQuery asks for recent highlights.
type ListHighlightsQuery struct {
	Relays valueobjects.RelaySet
}

// Validate validates the ListHighlightsQuery
func (q ListHighlightsQuery) Validate() error {
	return nil
}

// ListHighlightsResult carries highlights, newest first, with a display
// handle per author key.
type ListHighlightsResult struct {
	Events  []*nostr.Event
	Handles map[string]string
}
