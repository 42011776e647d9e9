package services_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"octavo/application/services"
	"octavo/domain/core"
	"octavo/domain/core/entities"
)

func nodeWithContent(kind int, id, title, content string) *entities.Node {
	return entities.NewNode(&nostr.Event{
		ID:      id,
		PubKey:  authorOne,
		Kind:    kind,
		Content: content,
		Tags:    nostr.Tags{{"d", id}, {"title", title}},
	})
}

func TestComposePublicationNestsSections(t *testing.T) {
	root := nodeWithContent(core.KindPublicationIndex, "root", "The Book", "")
	opening := nodeWithContent(core.KindPublicationPart, "ch1", "Opening", "First words.")
	partTwo := nodeWithContent(core.KindPublicationIndex, "p2", "Part Two", "")
	closing := nodeWithContent(core.KindPublicationPart, "ch2", "Closing", "Last words.")
	partTwo.Children = append(partTwo.Children, closing)
	root.Children = append(root.Children, opening, partTwo)

	doc := services.ComposePublication(root, "daniel")

	assert.Equal(t, "The Book", doc.Title)
	assert.Equal(t, "daniel", doc.Author)

	content := doc.Content
	assert.Contains(t, content, "= The Book\n")
	assert.Contains(t, content, "== Opening\n\nFirst words.")
	assert.Contains(t, content, "== Part Two\n")
	assert.Contains(t, content, "=== Closing\n\nLast words.")
	assert.Less(t, strings.Index(content, "== Opening"), strings.Index(content, "== Part Two"),
		"sections must keep the index order")
}

func TestComposePublicationCarriesCoverImage(t *testing.T) {
	root := entities.NewNode(&nostr.Event{
		ID:     "root",
		PubKey: authorOne,
		Kind:   core.KindPublicationIndex,
		Tags: nostr.Tags{
			{"d", "book"},
			{"title", "Illustrated"},
			{"image", "https://covers.example/front.jpg"},
		},
	})

	doc := services.ComposePublication(root, "daniel")
	assert.Equal(t, "https://covers.example/front.jpg", doc.Image)
}

func TestComposePublicationCapsHeadingDepth(t *testing.T) {
	root := nodeWithContent(core.KindPublicationIndex, "n0", "Level 0", "")
	current := root
	for i := 1; i <= 8; i++ {
		child := nodeWithContent(core.KindPublicationIndex, fmt.Sprintf("n%d", i), fmt.Sprintf("Level %d", i), "")
		current.Children = append(current.Children, child)
		current = child
	}

	doc := services.ComposePublication(root, "")
	assert.Contains(t, doc.Content, "====== Level 7")
	assert.Contains(t, doc.Content, "====== Level 8")
	assert.NotContains(t, doc.Content, "=======", "heading markers must not exceed the format's maximum")
}

func TestComposeArticleWrapsContent(t *testing.T) {
	article := &nostr.Event{
		ID:      "art1",
		PubKey:  authorOne,
		Kind:    core.KindArticle,
		Content: "Call me Ishmael.",
		Tags: nostr.Tags{
			{"d", "whale"},
			{"title", "Moby-Dick"},
			{"image", "https://covers.example/whale.png"},
		},
	}

	doc := services.ComposeArticle(article, "herman")
	require.Equal(t, "Moby-Dick", doc.Title)
	assert.Equal(t, "herman", doc.Author)
	assert.Equal(t, "https://covers.example/whale.png", doc.Image)
	assert.Equal(t, "= Moby-Dick\n\nCall me Ishmael.\n", doc.Content)
}

func TestComposeArticleWithoutTitleFallsBackToDiscriminator(t *testing.T) {
	article := &nostr.Event{
		ID:      "art1",
		PubKey:  authorOne,
		Kind:    core.KindArticle,
		Content: "Body.",
		Tags:    nostr.Tags{{"d", "untitled-draft"}},
	}

	doc := services.ComposeArticle(article, "")
	assert.Equal(t, "untitled-draft", doc.Title)
	assert.Contains(t, doc.Content, "= untitled-draft\n")
}
