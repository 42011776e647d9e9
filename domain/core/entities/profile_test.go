package entities_test

import (
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"

	"octavo/domain/core/entities"
)

const authorKey = "3bf0c63fcb93463407af97a5e5ee64fa883d107ef9e558472c4eb9aaaefa459d"

// TestParseProfileHandlePreference checks the display preference chain:
// display_name, then name, then the verification identifier.
func TestParseProfileHandlePreference(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "display name wins",
			content: `{"name":"fiatjaf","display_name":"Fiatjaf","nip05":"fiatjaf@example.com"}`,
			want:    "Fiatjaf",
		},
		{
			name:    "falls back to name",
			content: `{"name":"fiatjaf","nip05":"fiatjaf@example.com"}`,
			want:    "fiatjaf",
		},
		{
			name:    "falls back to verification identifier",
			content: `{"nip05":"fiatjaf@example.com"}`,
			want:    "fiatjaf@example.com",
		},
		{
			name:    "root identifier drops the underscore",
			content: `{"nip05":"_@example.com"}`,
			want:    "example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := entities.ParseProfile(&nostr.Event{Kind: 0, PubKey: authorKey, Content: tt.content})
			assert.Equal(t, tt.want, p.Handle())
		})
	}
}

// TestParseProfileMalformedContent keeps the author key and falls back to a
// shortened npub handle.
func TestParseProfileMalformedContent(t *testing.T) {
	p := entities.ParseProfile(&nostr.Event{Kind: 0, PubKey: authorKey, Content: "{not json"})
	assert.Equal(t, authorKey, p.PubKey)

	handle := p.Handle()
	assert.NotEmpty(t, handle)
	assert.Contains(t, handle, "npub1")
}
