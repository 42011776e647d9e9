package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"octavo/application/services"
	"octavo/domain/core"
	"octavo/domain/core/entities"
	"octavo/domain/core/valueobjects"
)

const (
	authorOne = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	authorTwo = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

// fakeFetcher answers every fetch by matching the filters against a fixed
// event set, the way a relay would.
type fakeFetcher struct {
	mu     sync.Mutex
	events []*nostr.Event
	calls  int
}

func newFakeFetcher(events ...*nostr.Event) *fakeFetcher {
	return &fakeFetcher{events: events}
}

func (f *fakeFetcher) respond(filters nostr.Filters) []*nostr.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	var out []*nostr.Event
	for _, ev := range f.events {
		for _, filter := range filters {
			if filter.Matches(ev) {
				out = append(out, ev)
				break
			}
		}
	}
	return out
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeFetcher) FetchItem(ctx context.Context, filters nostr.Filters, relayURLs []string) []*nostr.Event {
	return f.respond(filters)
}

func (f *fakeFetcher) FetchProfile(ctx context.Context, filters nostr.Filters, relayURLs []string) []*nostr.Event {
	return f.respond(filters)
}

func (f *fakeFetcher) FetchList(ctx context.Context, filters nostr.Filters, relayURLs []string, limit int) []*nostr.Event {
	return f.respond(filters)
}

func (f *fakeFetcher) FetchLevel(ctx context.Context, filters nostr.Filters, relayURLs []string, children int) []*nostr.Event {
	return f.respond(filters)
}

func replaceable(kind int, id, author, d string, createdAt int64, refs ...nostr.Tag) *nostr.Event {
	tags := nostr.Tags{{"d", d}}
	tags = append(tags, refs...)
	return &nostr.Event{
		ID:        id,
		PubKey:    author,
		Kind:      kind,
		CreatedAt: nostr.Timestamp(createdAt),
		Tags:      tags,
	}
}

func aTag(kind int, author, d string) nostr.Tag {
	return nostr.Tag{"a", fmt.Sprintf("%d:%s:%s", kind, author, d)}
}

func testRelays() valueobjects.RelaySet {
	return valueobjects.NewRelaySet([]string{"wss://test.example"})
}

func childTitles(n *entities.Node) []string {
	titles := make([]string, 0, len(n.Children))
	for _, child := range n.Children {
		titles = append(titles, child.Title())
	}
	return titles
}

func TestBuildKeepsNewestPerAddress(t *testing.T) {
	index := replaceable(core.KindPublicationIndex, "idx1", authorOne, "book", 5000,
		aTag(core.KindPublicationPart, authorOne, "sec1"))
	old := replaceable(core.KindPublicationPart, "old1", authorOne, "sec1", 1000)
	updated := replaceable(core.KindPublicationPart, "new1", authorOne, "sec1", 2000)

	asm := services.NewAssembler(newFakeFetcher(old, updated), zap.NewNop())
	root := asm.Build(context.Background(), index, testRelays())

	require.Len(t, root.Children, 1)
	assert.Equal(t, "new1", root.Children[0].Event.ID)
}

func TestBuildPreservesTagOrder(t *testing.T) {
	leafY := replaceable(core.KindPublicationPart, "leafy000", authorTwo, "y", 100)
	index := replaceable(core.KindPublicationIndex, "idx1", authorOne, "book", 5000,
		aTag(core.KindPublicationPart, authorOne, "x"),
		nostr.Tag{"e", leafY.ID},
		aTag(core.KindPublicationPart, authorOne, "z"))
	leafX := replaceable(core.KindPublicationPart, "leafx000", authorOne, "x", 100)
	leafZ := replaceable(core.KindPublicationPart, "leafz000", authorOne, "z", 100)

	asm := services.NewAssembler(newFakeFetcher(leafX, leafY, leafZ), zap.NewNop())
	root := asm.Build(context.Background(), index, testRelays())

	assert.Equal(t, []string{"x", "y", "z"}, childTitles(root))
}

func TestBuildBreaksReferenceCycles(t *testing.T) {
	indexI := replaceable(core.KindPublicationIndex, "idx-i", authorOne, "i", 100,
		aTag(core.KindPublicationIndex, authorOne, "j"))
	indexJ := replaceable(core.KindPublicationIndex, "idx-j", authorOne, "j", 100,
		aTag(core.KindPublicationIndex, authorOne, "i"))

	asm := services.NewAssembler(newFakeFetcher(indexI, indexJ), zap.NewNop())
	root := asm.Build(context.Background(), indexI, testRelays())

	require.Len(t, root.Children, 1)
	child := root.Children[0]
	assert.Equal(t, "idx-j", child.Event.ID)
	assert.Empty(t, child.Children, "the cycle back to the root must not expand")
}

func TestBuildDeduplicatesRepeatedReferences(t *testing.T) {
	index := replaceable(core.KindPublicationIndex, "idx1", authorOne, "book", 5000,
		aTag(core.KindPublicationPart, authorOne, "x"),
		aTag(core.KindPublicationPart, authorOne, "x"))
	leaf := replaceable(core.KindPublicationPart, "leaf1", authorOne, "x", 100)

	asm := services.NewAssembler(newFakeFetcher(leaf), zap.NewNop())
	root := asm.Build(context.Background(), index, testRelays())

	assert.Len(t, root.Children, 1)
}

func TestBuildSkipsSelfReference(t *testing.T) {
	index := replaceable(core.KindPublicationIndex, "idx1", authorOne, "book", 5000)
	index.Tags = append(index.Tags, nostr.Tag{"e", "idx1"})

	fetcher := newFakeFetcher(index)
	asm := services.NewAssembler(fetcher, zap.NewNop())
	root := asm.Build(context.Background(), index, testRelays())

	assert.Empty(t, root.Children)
	assert.Zero(t, fetcher.callCount(), "a level with no usable references must not fetch")
}

func TestBuildSkipsNonPublicationAddressTags(t *testing.T) {
	index := replaceable(core.KindPublicationIndex, "idx1", authorOne, "book", 5000,
		aTag(core.KindArticle, authorOne, "essay"),
		aTag(core.KindPublicationPart, authorOne, "x"))
	essay := replaceable(core.KindArticle, "art1", authorOne, "essay", 100)
	leaf := replaceable(core.KindPublicationPart, "leaf1", authorOne, "x", 100)

	asm := services.NewAssembler(newFakeFetcher(essay, leaf), zap.NewNop())
	root := asm.Build(context.Background(), index, testRelays())

	require.Len(t, root.Children, 1)
	assert.Equal(t, "leaf1", root.Children[0].Event.ID)
}

func TestBuildExpandsSharedBranchInBothPaths(t *testing.T) {
	shared := replaceable(core.KindPublicationPart, "shared1", authorOne, "shared", 100)
	left := replaceable(core.KindPublicationIndex, "idx-l", authorOne, "left", 100,
		aTag(core.KindPublicationPart, authorOne, "shared"))
	right := replaceable(core.KindPublicationIndex, "idx-r", authorOne, "right", 100,
		aTag(core.KindPublicationPart, authorOne, "shared"))
	root := replaceable(core.KindPublicationIndex, "idx-root", authorOne, "root", 100,
		aTag(core.KindPublicationIndex, authorOne, "left"),
		aTag(core.KindPublicationIndex, authorOne, "right"))

	asm := services.NewAssembler(newFakeFetcher(shared, left, right), zap.NewNop())
	tree := asm.Build(context.Background(), root, testRelays())

	require.Len(t, tree.Children, 2)
	require.Len(t, tree.Children[0].Children, 1)
	require.Len(t, tree.Children[1].Children, 1)
	assert.Equal(t, "shared1", tree.Children[0].Children[0].Event.ID)
	assert.Equal(t, "shared1", tree.Children[1].Children[0].Event.ID)
}

func TestBuildToleratesUnresolvedReferences(t *testing.T) {
	index := replaceable(core.KindPublicationIndex, "idx1", authorOne, "book", 5000,
		aTag(core.KindPublicationPart, authorOne, "missing"),
		aTag(core.KindPublicationPart, authorOne, "present"))
	leaf := replaceable(core.KindPublicationPart, "leaf1", authorOne, "present", 100)

	asm := services.NewAssembler(newFakeFetcher(leaf), zap.NewNop())
	root := asm.Build(context.Background(), index, testRelays())

	require.Len(t, root.Children, 1)
	assert.Equal(t, "leaf1", root.Children[0].Event.ID)
}

func TestBuildPathsNeverRepeatAnId(t *testing.T) {
	deep := replaceable(core.KindPublicationIndex, "idx-deep", authorOne, "deep", 100,
		aTag(core.KindPublicationIndex, authorOne, "root"),
		aTag(core.KindPublicationPart, authorOne, "leaf"))
	leaf := replaceable(core.KindPublicationPart, "leaf1", authorOne, "leaf", 100)
	root := replaceable(core.KindPublicationIndex, "idx-root", authorOne, "root", 100,
		aTag(core.KindPublicationIndex, authorOne, "deep"))

	asm := services.NewAssembler(newFakeFetcher(deep, leaf, root), zap.NewNop())
	tree := asm.Build(context.Background(), root, testRelays())

	var assertPath func(node *entities.Node, seen map[string]bool)
	assertPath = func(node *entities.Node, seen map[string]bool) {
		require.False(t, seen[node.Event.ID], "id %s repeats on a path", node.Event.ID)
		seen[node.Event.ID] = true
		for _, child := range node.Children {
			assertPath(child, seen)
		}
		delete(seen, node.Event.ID)
	}
	assertPath(tree, map[string]bool{})
}
