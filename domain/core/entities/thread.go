package entities

import (
	"github.com/nbd-wtf/go-nostr"
)

// ThreadNode is a comment event plus its ordered replies. Children are
// linked once during thread building and sorted by ascending creation time.
type ThreadNode struct {
	Event    *nostr.Event
	Children []*ThreadNode
}

// NewThreadNode wraps a comment event as an unlinked thread node
func NewThreadNode(ev *nostr.Event) *ThreadNode {
	return &ThreadNode{Event: ev, Children: []*ThreadNode{}}
}

// Size returns the number of comments in the subtree including the node
func (n *ThreadNode) Size() int {
	if n == nil {
		return 0
	}
	size := 1
	for _, child := range n.Children {
		size += child.Size()
	}
	return size
}

// Depth returns the longest reply chain length below the node, counting
// the node itself.
func (n *ThreadNode) Depth() int {
	if n == nil {
		return 0
	}
	max := 0
	for _, child := range n.Children {
		if d := child.Depth(); d > max {
			max = d
		}
	}
	return max + 1
}
