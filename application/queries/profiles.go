package queries

import (
	"errors"

	"octavo/domain/core/entities"
	"octavo/domain/core/valueobjects"
)

// GetProfileQuery asks for an author's metadata profile.
type GetProfileQuery struct {
	PubKey string
	Relays valueobjects.RelaySet
}

// Validate validates the GetProfileQuery
func (q GetProfileQuery) Validate() error {
	if !valueobjects.IsHexKey(q.PubKey) {
		return errors.New("author key must be 64 hex characters")
	}
	return nil
}

// GetProfileResult carries the profile when one was found; Handle is always
// set, falling back to an abbreviated author key.
type GetProfileResult struct {
	Profile *entities.Profile
	Handle  string
}
