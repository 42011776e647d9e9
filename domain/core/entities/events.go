package entities

import (
	"sort"

	"github.com/nbd-wtf/go-nostr"

	"octavo/domain/core/valueobjects"
)

// NewestEvent returns the event with the greatest created_at, nil for empty
// input. Ties keep the earlier-seen event.
func NewestEvent(events []*nostr.Event) *nostr.Event {
	var newest *nostr.Event
	for _, ev := range events {
		if ev == nil {
			continue
		}
		if newest == nil || ev.CreatedAt > newest.CreatedAt {
			newest = ev
		}
	}
	return newest
}

// LatestByAddress collapses replaceable candidates to the newest event per
// canonical address. Events without a canonical address are dropped.
func LatestByAddress(events []*nostr.Event) map[string]*nostr.Event {
	latest := make(map[string]*nostr.Event)
	for _, ev := range events {
		addr, ok := valueobjects.AddressOf(ev)
		if !ok {
			continue
		}
		key := addr.String()
		if current, exists := latest[key]; !exists || ev.CreatedAt > current.CreatedAt {
			latest[key] = ev
		}
	}
	return latest
}

// CollapseAddresses reduces a batch to the newest event per replaceable
// address, dropping events without one. Order is not preserved.
func CollapseAddresses(events []*nostr.Event) []*nostr.Event {
	latest := LatestByAddress(events)
	out := make([]*nostr.Event, 0, len(latest))
	for _, ev := range latest {
		out = append(out, ev)
	}
	return out
}

// LatestByAuthor returns the newest event per author key.
func LatestByAuthor(events []*nostr.Event) map[string]*nostr.Event {
	latest := make(map[string]*nostr.Event)
	for _, ev := range events {
		if ev == nil {
			continue
		}
		if current, exists := latest[ev.PubKey]; !exists || ev.CreatedAt > current.CreatedAt {
			latest[ev.PubKey] = ev
		}
	}
	return latest
}

// SortByCreatedDesc orders events newest first, in place. Ties keep their
// relative order.
func SortByCreatedDesc(events []*nostr.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt > events[j].CreatedAt
	})
}

// ByID indexes events by their id, keeping the first occurrence.
func ByID(events []*nostr.Event) map[string]*nostr.Event {
	byID := make(map[string]*nostr.Event, len(events))
	for _, ev := range events {
		if ev == nil {
			continue
		}
		if _, exists := byID[ev.ID]; !exists {
			byID[ev.ID] = ev
		}
	}
	return byID
}
