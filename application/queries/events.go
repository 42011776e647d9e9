package queries

import (
	"errors"

	"github.com/nbd-wtf/go-nostr"

	"octavo/domain/core/valueobjects"
)

// GetEventQuery asks for a single event by id, for requests addressed by
// nevent or note entities. Kind and Hints are optional decode by-products
// that steer relay selection.
type GetEventQuery struct {
	ID     string
	Kind   int
	Hints  []string
	Relays valueobjects.RelaySet
}

// Validate validates the GetEventQuery
func (q GetEventQuery) Validate() error {
	if !valueobjects.IsHexKey(q.ID) {
		return errors.New("event id must be 64 hex characters")
	}
	return nil
}

// GetEventResult carries the fetched event and a display handle for its
// author.
type GetEventResult struct {
	Event  *nostr.Event
	Handle string
}
