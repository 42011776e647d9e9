package queries

import (
	"errors"

	"github.com/nbd-wtf/go-nostr"

	"octavo/domain/core/entities"
	"octavo/domain/core/valueobjects"
)

// GetHierarchyQuery asks for the assembled content tree below a publication
// index event.
type GetHierarchyQuery struct {
	Root   *nostr.Event
	Relays valueobjects.RelaySet
}

// Validate validates the GetHierarchyQuery
func (q GetHierarchyQuery) Validate() error {
	if q.Root == nil {
		return errors.New("root event is required")
	}
	return nil
}

// GetHierarchyResult carries the assembled tree.
type GetHierarchyResult struct {
	Root *entities.Node
}
