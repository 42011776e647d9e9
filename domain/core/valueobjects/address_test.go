package valueobjects_test

import (
	"strings"
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"octavo/domain/core/valueobjects"
	pkgerrors "octavo/pkg/errors"
)

const testPubKey = "3bf0c63fcb93463407af97a5e5ee64fa883d107ef9e558472c4eb9aaaefa459d"

// TestParseAddressRoundTrip verifies that parsing the canonical string form
// of an address reproduces the original triple.
func TestParseAddressRoundTrip(t *testing.T) {
	addr, err := valueobjects.NewAddress(30040, testPubKey, "the-raven")
	require.NoError(t, err)

	parsed, err := valueobjects.ParseAddress(addr.String())
	require.NoError(t, err)

	assert.Equal(t, 30040, parsed.Kind())
	assert.Equal(t, testPubKey, parsed.PubKey())
	assert.Equal(t, "the-raven", parsed.Identifier())
	assert.True(t, addr.Equals(parsed))
}

// TestParseAddressIdentifierWithColons verifies that only the first two
// colons delimit the triple; the discriminator keeps any of its own.
func TestParseAddressIdentifierWithColons(t *testing.T) {
	addr, err := valueobjects.ParseAddress("30040:" + testPubKey + ":part:one:a")
	require.NoError(t, err)
	assert.Equal(t, "part:one:a", addr.Identifier())
}

// TestParseAddressRejectsMalformedInput tests the bad-address taxonomy.
func TestParseAddressRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "missing components", input: "30040:" + testPubKey},
		{name: "kind not a number", input: "abc:" + testPubKey + ":x"},
		{name: "short pubkey", input: "30040:abcdef:x"},
		{name: "non-hex pubkey", input: "30040:" + strings.Repeat("z", 64) + ":x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := valueobjects.ParseAddress(tt.input)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsBadAddress(err), "expected bad-address, got %v", err)
		})
	}
}

// TestNewAddressRejectsNonReplaceableKind verifies the unsupported-kind error.
func TestNewAddressRejectsNonReplaceableKind(t *testing.T) {
	_, err := valueobjects.NewAddress(1, testPubKey, "x")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnsupportedKind))
}

// TestAddressOf derives addresses from events, including the no-d-tag case.
func TestAddressOf(t *testing.T) {
	ev := &nostr.Event{
		Kind:   30041,
		PubKey: testPubKey,
		Tags:   nostr.Tags{{"title", "Chapter One"}, {"d", "ch-1"}},
	}

	addr, ok := valueobjects.AddressOf(ev)
	require.True(t, ok)
	assert.Equal(t, "30041:"+testPubKey+":ch-1", addr.String())

	noD := &nostr.Event{Kind: 30040, PubKey: testPubKey}
	addr, ok = valueobjects.AddressOf(noD)
	require.True(t, ok)
	assert.Equal(t, "", addr.Identifier())

	plain := &nostr.Event{Kind: 1, PubKey: testPubKey}
	_, ok = valueobjects.AddressOf(plain)
	assert.False(t, ok)
}
