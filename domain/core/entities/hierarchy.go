package entities

import (
	"github.com/nbd-wtf/go-nostr"

	"octavo/domain/core"
)

// Node is one resolved position in a publication hierarchy: the event plus
// its ordered children. Children are filled in during assembly and never
// mutated afterwards.
type Node struct {
	Event    *nostr.Event
	Children []*Node
}

// NewNode wraps an event as a hierarchy node with no children
func NewNode(ev *nostr.Event) *Node {
	return &Node{Event: ev}
}

// IsIndex reports whether this node is a composite the assembler descended
// into. Leaves (parts, articles, unknown kinds) always answer false.
func (n *Node) IsIndex() bool {
	return n.Event != nil && core.IsIndexKind(n.Event.Kind)
}

// Walk visits the node and every descendant in depth-first, source order.
// Returning false from fn stops the walk.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, child := range n.Children {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}

// CountNodes returns the total number of nodes in the subtree.
func (n *Node) CountNodes() int {
	count := 0
	n.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}

// Flatten returns the events of the subtree in depth-first, source order.
// This is the reading order of the publication.
func (n *Node) Flatten() []*nostr.Event {
	out := make([]*nostr.Event, 0, 8)
	n.Walk(func(node *Node) bool {
		if node.Event != nil {
			out = append(out, node.Event)
		}
		return true
	})
	return out
}

// Title returns the display title of the node's event: the first title tag,
// else the first d-tag, else a truncated event id.
func (n *Node) Title() string {
	if n.Event == nil {
		return ""
	}
	return EventTitle(n.Event)
}

// EventTitle extracts a display title from an event's tags
func EventTitle(ev *nostr.Event) string {
	var dTag string
	for _, tag := range ev.Tags {
		if len(tag) < 2 {
			continue
		}
		switch tag[0] {
		case "title":
			if tag[1] != "" {
				return tag[1]
			}
		case "d":
			if dTag == "" {
				dTag = tag[1]
			}
		}
	}
	if dTag != "" {
		return dTag
	}
	if len(ev.ID) > 8 {
		return ev.ID[:8]
	}
	return ev.ID
}

// EventTag returns the value of the first tag with the given name, or ""
// when absent.
func EventTag(ev *nostr.Event, name string) string {
	for _, tag := range ev.Tags {
		if len(tag) >= 2 && tag[0] == name {
			return tag[1]
		}
	}
	return ""
}
