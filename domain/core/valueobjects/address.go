package valueobjects

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"

	"octavo/domain/core"
	pkgerrors "octavo/pkg/errors"
)

// Address is a value object identifying the latest event in a replaceable
// series by its (kind, author, discriminator) triple.
type Address struct {
	kind       int
	pubKey     string
	identifier string
}

// NewAddress creates an address with validation
func NewAddress(kind int, pubKey, identifier string) (Address, error) {
	if !core.IsAddressableKind(kind) {
		return Address{}, pkgerrors.NewUnsupportedKindError(kind)
	}
	if !IsHexKey(pubKey) {
		return Address{}, pkgerrors.NewBadAddressError(pubKey, fmt.Errorf("author key must be 64 hex characters"))
	}
	return Address{kind: kind, pubKey: strings.ToLower(pubKey), identifier: identifier}, nil
}

// ParseAddress parses the canonical "kind:pubkey:identifier" form used in
// a-tags. The identifier may itself contain colons.
func ParseAddress(s string) (Address, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return Address{}, pkgerrors.NewBadAddressError(s, fmt.Errorf("expected kind:pubkey:identifier"))
	}
	kind, err := strconv.Atoi(parts[0])
	if err != nil {
		return Address{}, pkgerrors.NewBadAddressError(s, fmt.Errorf("kind is not a number: %w", err))
	}
	return NewAddress(kind, parts[1], parts[2])
}

// AddressOf derives the canonical address of an event from its kind, author
// and first d-tag. The second return is false for non-replaceable kinds.
func AddressOf(ev *nostr.Event) (Address, bool) {
	if ev == nil || !core.IsAddressableKind(ev.Kind) {
		return Address{}, false
	}
	identifier := ""
	for _, tag := range ev.Tags {
		if len(tag) >= 2 && tag[0] == "d" {
			identifier = tag[1]
			break
		}
	}
	addr, err := NewAddress(ev.Kind, ev.PubKey, identifier)
	if err != nil {
		return Address{}, false
	}
	return addr, true
}

// Kind returns the event kind component
func (a Address) Kind() int {
	return a.kind
}

// PubKey returns the author key component in lowercase hex
func (a Address) PubKey() string {
	return a.pubKey
}

// Identifier returns the d-tag discriminator component
func (a Address) Identifier() string {
	return a.identifier
}

// String returns the canonical "kind:pubkey:identifier" form
func (a Address) String() string {
	return fmt.Sprintf("%d:%s:%s", a.kind, a.pubKey, a.identifier)
}

// Naddr encodes the address as a bech32 naddr entity with optional relay hints
func (a Address) Naddr(relays []string) (string, error) {
	return nip19.EncodeEntity(a.pubKey, a.kind, a.identifier, relays)
}

// Equals checks if two addresses identify the same replaceable series
func (a Address) Equals(other Address) bool {
	return a.kind == other.kind && a.pubKey == other.pubKey && a.identifier == other.identifier
}

// IsZero checks if the address is the zero value
func (a Address) IsZero() bool {
	return a.pubKey == ""
}

// IsHexKey validates a 32-byte case-insensitive hex key
func IsHexKey(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
