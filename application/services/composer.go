package services

import (
	"strings"

	"github.com/nbd-wtf/go-nostr"

	"octavo/domain/core/entities"
)

// AsciiDoc sections nest no deeper than five levels below the title.
const maxSectionDepth = 6

// Document is a renderable text document with its display metadata. Content
// is AsciiDoc; the converter and the media embedder both consume it.
type Document struct {
	Content string
	Title   string
	Author  string
	Image   string
}

// ComposePublication flattens an assembled hierarchy into one document. The
// root becomes the document title and every descendant becomes a section at
// its tree depth, in the order the assembler preserved from the index tags.
func ComposePublication(root *entities.Node, author string) Document {
	var b strings.Builder
	writeSection(&b, root, 0)
	return Document{
		Content: b.String(),
		Title:   root.Title(),
		Author:  author,
		Image:   entities.EventTag(root.Event, "image"),
	}
}

// ComposeArticle wraps a single long-form event as a document of its own.
func ComposeArticle(ev *nostr.Event, author string) Document {
	var b strings.Builder
	b.WriteString("= " + entities.EventTitle(ev) + "\n\n")
	if content := strings.TrimSpace(ev.Content); content != "" {
		b.WriteString(content + "\n")
	}
	return Document{
		Content: b.String(),
		Title:   entities.EventTitle(ev),
		Author:  author,
		Image:   entities.EventTag(ev, "image"),
	}
}

func writeSection(b *strings.Builder, node *entities.Node, depth int) {
	marker := strings.Repeat("=", min(depth+1, maxSectionDepth))
	b.WriteString(marker + " " + node.Title() + "\n\n")
	if content := strings.TrimSpace(node.Event.Content); content != "" {
		b.WriteString(content + "\n\n")
	}
	for _, child := range node.Children {
		writeSection(b, child, depth+1)
	}
}
