package services

import (
	"sort"

	"github.com/nbd-wtf/go-nostr"

	"octavo/domain/core/entities"
	"octavo/domain/core/valueobjects"
)

// BuildThread links a flat batch of comment events into a forest of reply
// trees. Parent candidates are examined in strict priority order: the first
// e-tag naming another event in the batch, then the first a-tag naming
// another event's replaceable address (falling back to an id match on the
// raw tag value), then the first i-tag shared with another event's external
// identifier. Events without a parent become roots. Roots and every reply
// list come back sorted by ascending creation time.
func BuildThread(events []*nostr.Event) []*entities.ThreadNode {
	nodes := make([]*entities.ThreadNode, 0, len(events))
	byID := make(map[string]*entities.ThreadNode, len(events))
	for _, ev := range events {
		if ev == nil || ev.ID == "" || byID[ev.ID] != nil {
			continue
		}
		node := entities.NewThreadNode(ev)
		nodes = append(nodes, node)
		byID[ev.ID] = node
	}

	roots := make([]*entities.ThreadNode, 0, len(nodes))
	for _, node := range nodes {
		parent := resolveParent(node, nodes, byID)
		if parent == nil {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	sortByCreation(roots)
	for _, node := range nodes {
		sortByCreation(node.Children)
	}
	return roots
}

func resolveParent(node *entities.ThreadNode, nodes []*entities.ThreadNode, byID map[string]*entities.ThreadNode) *entities.ThreadNode {
	if id := entities.EventTag(node.Event, "e"); id != "" {
		if parent := byID[id]; parent != nil && parent != node {
			return parent
		}
	}
	if ref := entities.EventTag(node.Event, "a"); ref != "" {
		if addr, err := valueobjects.ParseAddress(ref); err == nil {
			for _, candidate := range nodes {
				if candidate == node {
					continue
				}
				if candidateAddr, ok := valueobjects.AddressOf(candidate.Event); ok && candidateAddr.Equals(addr) {
					return candidate
				}
			}
		}
		if parent := byID[ref]; parent != nil && parent != node {
			return parent
		}
	}
	if external := entities.EventTag(node.Event, "i"); external != "" {
		for _, candidate := range nodes {
			if candidate == node {
				continue
			}
			if hasExternalID(candidate.Event, external) {
				return candidate
			}
		}
	}
	return nil
}

func hasExternalID(ev *nostr.Event, value string) bool {
	for _, tag := range ev.Tags {
		if len(tag) >= 2 && (tag[0] == "I" || tag[0] == "i") && tag[1] == value {
			return true
		}
	}
	return false
}

func sortByCreation(nodes []*entities.ThreadNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Event.CreatedAt < nodes[j].Event.CreatedAt
	})
}
