package services

import (
	"github.com/nbd-wtf/go-nostr"

	"octavo/domain/core/valueobjects"
)

// FilterTopLevel returns the events no other event in the batch references,
// whether by replaceable address in an a-tag or by id in an e-tag. Relay
// list responses mix publication roots with the parts they contain; index
// pages show only the roots.
func FilterTopLevel(events []*nostr.Event) []*nostr.Event {
	referencedAddrs := make(map[string]bool)
	referencedIDs := make(map[string]bool)
	for _, ev := range events {
		if ev == nil {
			continue
		}
		selfAddr, hasAddr := valueobjects.AddressOf(ev)
		for _, tag := range ev.Tags {
			if len(tag) < 2 || tag[1] == "" {
				continue
			}
			switch tag[0] {
			case "a":
				addr, err := valueobjects.ParseAddress(tag[1])
				if err != nil {
					continue
				}
				if hasAddr && addr.Equals(selfAddr) {
					continue
				}
				referencedAddrs[addr.String()] = true
			case "e":
				if tag[1] != ev.ID {
					referencedIDs[tag[1]] = true
				}
			}
		}
	}

	out := make([]*nostr.Event, 0, len(events))
	for _, ev := range events {
		if ev == nil || referencedIDs[ev.ID] {
			continue
		}
		if addr, ok := valueobjects.AddressOf(ev); ok && referencedAddrs[addr.String()] {
			continue
		}
		out = append(out, ev)
	}
	return out
}
