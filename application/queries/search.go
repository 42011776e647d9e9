package queries

import (
	"errors"
	"strings"

	"github.com/nbd-wtf/go-nostr"

	"octavo/domain/core/valueobjects"
)

// SearchPublicationsQuery asks for publications matching a free-text query
// against title, discriminator and author metadata.
type SearchPublicationsQuery struct {
	Text   string
	Relays valueobjects.RelaySet
}

// Validate validates the SearchPublicationsQuery
func (q SearchPublicationsQuery) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return errors.New("search text is required")
	}
	return nil
}

// SearchPublicationsResult carries matches, newest first, with a display
// handle per author key.
type SearchPublicationsResult struct {
	Events  []*nostr.Event
	Handles map[string]string
}
