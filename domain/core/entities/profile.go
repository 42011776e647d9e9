package entities

import (
	"encoding/json"
	"strings"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"
)

// Profile is the parsed content of a kind-0 metadata event. Only the fields
// the reader displays are kept; everything else in the content is ignored.
type Profile struct {
	PubKey      string `json:"-"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	NIP05       string `json:"nip05"`
	About       string `json:"about"`
	Picture     string `json:"picture"`
}

// ParseProfile decodes the content of a metadata event. A malformed content
// string yields an empty profile for the author rather than an error; the
// author key is always set.
func ParseProfile(ev *nostr.Event) Profile {
	p := Profile{PubKey: ev.PubKey}
	if err := json.Unmarshal([]byte(ev.Content), &p); err != nil {
		return Profile{PubKey: ev.PubKey}
	}
	p.PubKey = ev.PubKey
	return p
}

// Handle returns the best display string for the author: display name,
// then name, then the verification identifier, then a shortened npub.
func (p Profile) Handle() string {
	if name := strings.TrimSpace(p.DisplayName); name != "" {
		return name
	}
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	if id := strings.TrimSpace(p.NIP05); id != "" {
		return strings.TrimPrefix(id, "_@")
	}
	return ShortNpub(p.PubKey)
}

// ShortNpub renders an abbreviated bech32 form of an author key for display
// when no profile is available.
func ShortNpub(pubKey string) string {
	npub, err := nip19.EncodePublicKey(pubKey)
	if err != nil || len(npub) < 13 {
		if len(pubKey) > 8 {
			return pubKey[:8]
		}
		return pubKey
	}
	return npub[:9] + "…" + npub[len(npub)-4:]
}
