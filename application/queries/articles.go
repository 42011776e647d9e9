package queries

import (
	"errors"

	"github.com/nbd-wtf/go-nostr"

	"octavo/domain/core"
	"octavo/domain/core/valueobjects"
)

// GetArticleQuery asks for the latest long-form article at a replaceable
// address.
type GetArticleQuery struct {
	Address valueobjects.Address
	Relays  valueobjects.RelaySet
}

// Validate validates the GetArticleQuery
func (q GetArticleQuery) Validate() error {
	if q.Address.IsZero() {
		return errors.New("address is required")
	}
	if q.Address.Kind() != core.KindArticle {
		return errors.New("address does not name an article")
	}
	return nil
}

// GetArticleResult carries the resolved article event and a display handle
// for its author.
type GetArticleResult struct {
	Event  *nostr.Event
	Handle string
}

// ListArticlesQuery asks for the long-form article list.
type ListArticlesQuery struct {
	Relays valueobjects.RelaySet
}

// Validate validates the ListArticlesQuery
func (q ListArticlesQuery) Validate() error {
	return nil
}

// ListArticlesResult carries articles, newest first, with a display handle
// per author key.
type ListArticlesResult struct {
	Events  []*nostr.Event
	Handles map[string]string
}
