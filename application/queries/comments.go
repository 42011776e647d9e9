package queries

import (
	"errors"

	"octavo/domain/core/entities"
	"octavo/domain/core/valueobjects"
)

// GetCommentsQuery asks for the discussion below a root event. RootAddress
// is set when the root is replaceable so comments anchored to the address
// are found as well.
type GetCommentsQuery struct {
	RootID      string
	RootAddress valueobjects.Address
	Relays      valueobjects.RelaySet
}

// Validate validates the GetCommentsQuery
func (q GetCommentsQuery) Validate() error {
	if q.RootID == "" {
		return errors.New("root event id is required")
	}
	return nil
}

// GetCommentsResult carries the threaded discussion with a display handle
// per comment author.
type GetCommentsResult struct {
	Roots   []*entities.ThreadNode
	Total   int
	Handles map[string]string
}
