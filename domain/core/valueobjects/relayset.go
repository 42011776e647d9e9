package valueobjects

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// RelaySet is an immutable, normalized set of relay websocket URLs. The
// normal form lowercases the host, defaults the wss scheme and drops
// trailing slashes so that the same relay spelled differently hashes to the
// same cache key.
type RelaySet struct {
	urls []string
}

// NewRelaySet normalizes and deduplicates the given URLs. Empty entries are
// dropped; an empty result is a valid (empty) set.
func NewRelaySet(urls []string) RelaySet {
	seen := make(map[string]bool, len(urls))
	normalized := make([]string, 0, len(urls))
	for _, raw := range urls {
		u := NormalizeRelayURL(raw)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		normalized = append(normalized, u)
	}
	return RelaySet{urls: normalized}
}

// ParseRelaySet builds a set from a comma-separated query parameter
func ParseRelaySet(param string) RelaySet {
	return NewRelaySet(strings.Split(param, ","))
}

// URLs returns the relay URLs in insertion order. The returned slice is a
// copy; the set itself never changes.
func (s RelaySet) URLs() []string {
	out := make([]string, len(s.urls))
	copy(out, s.urls)
	return out
}

// Len returns the number of relays in the set
func (s RelaySet) Len() int {
	return len(s.urls)
}

// IsEmpty checks if the set has no relays
func (s RelaySet) IsEmpty() bool {
	return len(s.urls) == 0
}

// Hash returns a short stable digest of the set, independent of URL order.
// Used as the relay-set component of cache keys.
func (s RelaySet) Hash() string {
	sorted := s.URLs()
	sort.Strings(sorted)
	sum := sha256.Sum256([]byte(strings.Join(sorted, ",")))
	return hex.EncodeToString(sum[:8])
}

// String returns the comma-joined URL list
func (s RelaySet) String() string {
	return strings.Join(s.urls, ",")
}

// NormalizeRelayURL brings a single relay URL to normal form. Returns ""
// for blank input.
func NormalizeRelayURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}
	switch {
	case strings.HasPrefix(u, "wss://"), strings.HasPrefix(u, "ws://"):
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	default:
		u = "wss://" + u
	}
	u = strings.TrimSuffix(u, "/")
	// Hosts are case-insensitive; paths are not.
	schemeEnd := strings.Index(u, "://") + 3
	if i := strings.Index(u[schemeEnd:], "/"); i >= 0 {
		return strings.ToLower(u[:schemeEnd+i]) + u[schemeEnd+i:]
	}
	return strings.ToLower(u)
}
