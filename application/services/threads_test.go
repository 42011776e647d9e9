package services_test

import (
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"octavo/application/services"
	"octavo/domain/core"
)

func comment(id string, createdAt int64, tags ...nostr.Tag) *nostr.Event {
	return &nostr.Event{
		ID:        id,
		PubKey:    authorOne,
		Kind:      core.KindComment,
		CreatedAt: nostr.Timestamp(createdAt),
		Tags:      tags,
	}
}

func TestBuildThreadEventTagWinsOverAddressTag(t *testing.T) {
	c1 := comment("c1", 100)
	c2 := replaceable(core.KindArticle, "art1", authorOne, "essay", 50)
	c3 := comment("c3", 200,
		nostr.Tag{"e", "c1"},
		aTag(core.KindArticle, authorOne, "essay"))

	roots := services.BuildThread([]*nostr.Event{c1, c2, c3})

	require.Len(t, roots, 2)
	assert.Equal(t, "art1", roots[0].Event.ID)
	assert.Empty(t, roots[0].Children)
	require.Equal(t, "c1", roots[1].Event.ID)
	require.Len(t, roots[1].Children, 1)
	assert.Equal(t, "c3", roots[1].Children[0].Event.ID)
}

func TestBuildThreadAttachesByAddress(t *testing.T) {
	article := replaceable(core.KindArticle, "art1", authorOne, "essay", 10)
	reply := comment("c1", 20, aTag(core.KindArticle, authorOne, "essay"))

	roots := services.BuildThread([]*nostr.Event{article, reply})

	require.Len(t, roots, 1)
	require.Len(t, roots[0].Children, 1)
	assert.Equal(t, "c1", roots[0].Children[0].Event.ID)
}

func TestBuildThreadAddressFallsBackToID(t *testing.T) {
	parent := comment("c0", 10)
	reply := comment("c1", 20, nostr.Tag{"a", "c0"})

	roots := services.BuildThread([]*nostr.Event{parent, reply})

	require.Len(t, roots, 1)
	require.Len(t, roots[0].Children, 1)
	assert.Equal(t, "c1", roots[0].Children[0].Event.ID)
}

func TestBuildThreadAttachesByExternalIdentifier(t *testing.T) {
	highlight := &nostr.Event{
		ID:        "h1",
		PubKey:    authorOne,
		Kind:      core.KindHighlight,
		CreatedAt: 10,
		Tags:      nostr.Tags{{"I", "isbn:9780000000000"}},
	}
	reply := comment("c1", 20, nostr.Tag{"i", "isbn:9780000000000"})

	roots := services.BuildThread([]*nostr.Event{highlight, reply})

	require.Len(t, roots, 1)
	assert.Equal(t, "h1", roots[0].Event.ID)
	require.Len(t, roots[0].Children, 1)
	assert.Equal(t, "c1", roots[0].Children[0].Event.ID)
}

func TestBuildThreadDiscardsSelfReference(t *testing.T) {
	only := comment("c1", 10, nostr.Tag{"e", "c1"})

	roots := services.BuildThread([]*nostr.Event{only})

	require.Len(t, roots, 1)
	assert.Empty(t, roots[0].Children)
}

func TestBuildThreadUnknownParentBecomesRoot(t *testing.T) {
	orphan := comment("c1", 10, nostr.Tag{"e", "missing"})

	roots := services.BuildThread([]*nostr.Event{orphan})

	require.Len(t, roots, 1)
	assert.Equal(t, "c1", roots[0].Event.ID)
}

func TestBuildThreadFallsThroughToNextRule(t *testing.T) {
	article := replaceable(core.KindArticle, "art1", authorOne, "essay", 10)
	reply := comment("c1", 20,
		nostr.Tag{"e", "missing"},
		aTag(core.KindArticle, authorOne, "essay"))

	roots := services.BuildThread([]*nostr.Event{article, reply})

	require.Len(t, roots, 1)
	require.Len(t, roots[0].Children, 1)
	assert.Equal(t, "c1", roots[0].Children[0].Event.ID)
}

func TestBuildThreadSortsByCreation(t *testing.T) {
	late := comment("r-late", 300)
	early := comment("r-early", 100)
	middle := comment("r-middle", 200)
	replyNew := comment("c-new", 500, nostr.Tag{"e", "r-early"})
	replyOld := comment("c-old", 400, nostr.Tag{"e", "r-early"})

	roots := services.BuildThread([]*nostr.Event{late, early, middle, replyNew, replyOld})

	require.Len(t, roots, 3)
	assert.Equal(t, "r-early", roots[0].Event.ID)
	assert.Equal(t, "r-middle", roots[1].Event.ID)
	assert.Equal(t, "r-late", roots[2].Event.ID)
	require.Len(t, roots[0].Children, 2)
	assert.Equal(t, "c-old", roots[0].Children[0].Event.ID)
	assert.Equal(t, "c-new", roots[0].Children[1].Event.ID)
}

func TestBuildThreadIgnoresNilAndDuplicateEvents(t *testing.T) {
	only := comment("c1", 10)

	roots := services.BuildThread([]*nostr.Event{nil, only, only})

	require.Len(t, roots, 1)
	assert.Equal(t, "c1", roots[0].Event.ID)
}
