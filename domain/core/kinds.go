// Package core defines the event vocabulary the reader understands.
package core

// Event kinds recognized by the reader. Publications follow the NKBIP-01
// layout: a 30040 index event carries ordered references to 30041 sections
// and, occasionally, 30023 articles or nested 30040 indexes.
const (
	KindProfile          = 0
	KindNote             = 1
	KindComment          = 1111
	KindHighlight        = 9802
	KindArticle          = 30023
	KindPublicationIndex = 30040
	KindPublicationPart  = 30041
)

// IsPublicationKind reports whether the kind participates in publication
// hierarchies as a composite or leaf content node.
func IsPublicationKind(kind int) bool {
	return kind == KindPublicationIndex || kind == KindPublicationPart
}

// IsIndexKind reports whether the kind is a composite node that the
// assembler recurses into.
func IsIndexKind(kind int) bool {
	return kind == KindPublicationIndex
}

// IsLeafKind reports whether the kind terminates recursion. Unknown kinds
// are treated as leaves as well; this only names the recognized ones.
func IsLeafKind(kind int) bool {
	return kind == KindPublicationPart || kind == KindArticle
}

// IsAddressableKind reports whether events of this kind are replaceable by
// their (kind, author, d-tag) address.
func IsAddressableKind(kind int) bool {
	return kind >= 30000 && kind < 40000
}
