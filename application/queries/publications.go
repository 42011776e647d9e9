// Package queries defines the read-side requests the HTTP layer dispatches
// through the query bus, together with their result shapes.
package queries

import (
	"errors"

	"github.com/nbd-wtf/go-nostr"

	"octavo/domain/core/valueobjects"
)

// GetPublicationQuery asks for the latest publication index at a
// replaceable address. Relays carries the request's explicit relay override
// and may be empty.
type GetPublicationQuery struct {
	Address valueobjects.Address
	Relays  valueobjects.RelaySet
}

// Validate validates the GetPublicationQuery
func (q GetPublicationQuery) Validate() error {
	if q.Address.IsZero() {
		return errors.New("address is required")
	}
	return nil
}

// GetPublicationResult carries the resolved index event and a display
// handle for its author.
type GetPublicationResult struct {
	Event  *nostr.Event
	Handle string
}

// ListPublicationsQuery asks for the top-level publication list.
type ListPublicationsQuery struct {
	Relays valueobjects.RelaySet
}

// Validate validates the ListPublicationsQuery
func (q ListPublicationsQuery) Validate() error {
	return nil
}

// ListPublicationsResult carries top-level publications, newest first, with
// a display handle per author key.
type ListPublicationsResult struct {
	Events  []*nostr.Event
	Handles map[string]string
}
