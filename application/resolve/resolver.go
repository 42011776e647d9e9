// Package resolve decodes the bech32 address variants accepted by the HTTP
// surface and selects the relay set a request runs against.
package resolve

import (
	"fmt"
	"strings"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"
	"go.uber.org/zap"

	"octavo/domain/core"
	"octavo/domain/core/valueobjects"
	"octavo/infrastructure/config"
	apperrors "octavo/pkg/errors"
)

// Target is a decoded address. Exactly one of Address, EventID, or PubKey is
// set, matching the naddr, nevent/note, and npub variants.
type Target struct {
	Address valueobjects.Address
	EventID string
	PubKey  string
	Author  string
	Kind    int
	Relays  []string
}

// IsAddress reports whether the target names a replaceable series.
func (t *Target) IsAddress() bool { return !t.Address.IsZero() }

// IsEvent reports whether the target names a single event id.
func (t *Target) IsEvent() bool { return t.EventID != "" }

// IsProfile reports whether the target names an author key only.
func (t *Target) IsProfile() bool { return t.PubKey != "" }

// TargetKind returns the best kind hint carried by the target, zero when the
// address variant does not encode one.
func (t *Target) TargetKind() int {
	if t.IsAddress() {
		return t.Address.Kind()
	}
	return t.Kind
}

// Resolver decodes addresses and applies the relay selection rules against
// the configured defaults.
type Resolver struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewResolver creates a resolver bound to the process configuration.
func NewResolver(cfg *config.Config, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{cfg: cfg, logger: logger}
}

// Decode turns any of the four supported variants into a Target.
func (r *Resolver) Decode(code string) (*Target, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperrors.NewBadAddressError(code, fmt.Errorf("empty address"))
	}

	prefix, value, err := nip19.Decode(code)
	if err != nil {
		return nil, apperrors.NewBadAddressError(code, err)
	}

	switch prefix {
	case "npub":
		pk, ok := value.(string)
		if !ok {
			return nil, apperrors.NewBadAddressError(code, fmt.Errorf("unexpected npub payload"))
		}
		return &Target{PubKey: pk}, nil

	case "note":
		id, ok := value.(string)
		if !ok {
			return nil, apperrors.NewBadAddressError(code, fmt.Errorf("unexpected note payload"))
		}
		return &Target{EventID: id}, nil

	case "nevent":
		ptr, ok := value.(nostr.EventPointer)
		if !ok {
			return nil, apperrors.NewBadAddressError(code, fmt.Errorf("unexpected nevent payload"))
		}
		return &Target{EventID: ptr.ID, Author: ptr.Author, Kind: ptr.Kind, Relays: ptr.Relays}, nil

	case "naddr":
		ptr, ok := value.(nostr.EntityPointer)
		if !ok {
			return nil, apperrors.NewBadAddressError(code, fmt.Errorf("unexpected naddr payload"))
		}
		addr, err := valueobjects.NewAddress(ptr.Kind, ptr.PublicKey, ptr.Identifier)
		if err != nil {
			return nil, err
		}
		return &Target{Address: addr, Kind: ptr.Kind, Relays: ptr.Relays}, nil

	default:
		return nil, apperrors.NewBadAddressError(code, fmt.Errorf("unsupported prefix %q", prefix))
	}
}

// DecodeItem decodes an address for a detail endpoint. A bare profile key is
// a mismatch at these call sites.
func (r *Resolver) DecodeItem(code string) (*Target, error) {
	t, err := r.Decode(code)
	if err != nil {
		return nil, err
	}
	if t.IsProfile() {
		return nil, apperrors.NewBadAddressError(code, fmt.Errorf("expected an event or replaceable address, got a profile key"))
	}
	return t, nil
}

// DecodePublicKey accepts an npub or a raw 64-character hex key.
func (r *Resolver) DecodePublicKey(code string) (string, error) {
	code = strings.TrimSpace(code)
	if valueobjects.IsHexKey(code) {
		return strings.ToLower(code), nil
	}
	t, err := r.Decode(code)
	if err != nil {
		return "", err
	}
	if !t.IsProfile() {
		return "", apperrors.NewBadAddressError(code, fmt.Errorf("expected a profile key"))
	}
	return t.PubKey, nil
}

// RelaysFor picks the relay set for a decoded target. An explicit set wins,
// then hints embedded in the address, then the kind defaults.
func (r *Resolver) RelaysFor(explicit valueobjects.RelaySet, t *Target) valueobjects.RelaySet {
	if !explicit.IsEmpty() {
		return explicit
	}
	if t != nil && len(t.Relays) > 0 {
		if hinted := valueobjects.NewRelaySet(t.Relays); !hinted.IsEmpty() {
			return hinted
		}
	}
	kind := 0
	if t != nil {
		kind = t.TargetKind()
	}
	if kind == core.KindArticle {
		return r.DefaultArticleRelays()
	}
	return r.DefaultPublicationRelays()
}

// DefaultPublicationRelays returns the configured publication relay set.
func (r *Resolver) DefaultPublicationRelays() valueobjects.RelaySet {
	return valueobjects.NewRelaySet(r.cfg.PublicationRelays)
}

// DefaultArticleRelays returns the configured article relay set.
func (r *Resolver) DefaultArticleRelays() valueobjects.RelaySet {
	return valueobjects.NewRelaySet(r.cfg.ArticleRelays)
}

// PublicationRelays resolves list-endpoint relays: the explicit set when
// present, the publication defaults otherwise.
func (r *Resolver) PublicationRelays(explicit valueobjects.RelaySet) valueobjects.RelaySet {
	if !explicit.IsEmpty() {
		return explicit
	}
	return r.DefaultPublicationRelays()
}

// ArticleRelays resolves list-endpoint relays for article kinds.
func (r *Resolver) ArticleRelays(explicit valueobjects.RelaySet) valueobjects.RelaySet {
	if !explicit.IsEmpty() {
		return explicit
	}
	return r.DefaultArticleRelays()
}
