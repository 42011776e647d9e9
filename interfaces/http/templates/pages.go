package templates

import "html/template"

// ListItem is one row on a list page.
type ListItem struct {
	Title   string
	Author  string
	Summary string
	Href    string
	When    string
}

// ListPageData drives the publication and article list pages.
type ListPageData struct {
	Title    string
	Subtitle string
	Items    []ListItem
}

// HighlightItem is one quoted passage on the highlights page.
type HighlightItem struct {
	Quote      string
	Author     string
	SourceHref string
	When       string
}

// HighlightsPageData drives the highlights page.
type HighlightsPageData struct {
	Title string
	Items []HighlightItem
}

// TOCEntry is one row of a publication's table of contents.
type TOCEntry struct {
	Title string
	Depth int
	Href  string
}

// CommentView is one comment, flattened from its thread with a depth for
// indentation.
type CommentView struct {
	Author string
	When   string
	Body   template.HTML
	Depth  int
}

// PublicationPageData drives the publication detail page.
type PublicationPageData struct {
	Title        string
	Author       string
	Summary      string
	Image        string
	When         string
	ViewHref     string
	EpubHref     string
	DownloadBase string
	Formats      []string
	TOC          []TOCEntry
	Comments     []CommentView
}

// ArticlePageData drives the article reading page.
type ArticlePageData struct {
	Title        string
	Author       string
	When         string
	Image        string
	Body         template.HTML
	DownloadBase string
	Formats      []string
	Comments     []CommentView
}

// EventPageData drives the single-event page for note and nevent lookups.
type EventPageData struct {
	Title  string
	Author string
	When   string
	Body   template.HTML
}

// ProfilePageData drives the author page.
type ProfilePageData struct {
	Handle  string
	Name    string
	NIP05   string
	Npub    string
	Picture string
	About   template.HTML
}

// SearchPageData drives the search page.
type SearchPageData struct {
	Query string
	Items []ListItem
}

// RenderLibrary renders the publication list page.
func RenderLibrary(data ListPageData) ([]byte, error) {
	if data.Title == "" {
		data.Title = "Library"
	}
	return execute("library.tmpl", data)
}

// RenderArticles renders the article list page.
func RenderArticles(data ListPageData) ([]byte, error) {
	if data.Title == "" {
		data.Title = "Articles"
	}
	return execute("articles.tmpl", data)
}

// RenderHighlights renders the highlights page.
func RenderHighlights(data HighlightsPageData) ([]byte, error) {
	if data.Title == "" {
		data.Title = "Highlights"
	}
	return execute("highlights.tmpl", data)
}

// RenderPublication renders the publication detail page.
func RenderPublication(data PublicationPageData) ([]byte, error) {
	return execute("publication.tmpl", data)
}

// RenderArticle renders the article reading page.
func RenderArticle(data ArticlePageData) ([]byte, error) {
	return execute("article.tmpl", data)
}

// RenderEvent renders the single-event page.
func RenderEvent(data EventPageData) ([]byte, error) {
	return execute("event.tmpl", data)
}

// RenderProfile renders the author page.
func RenderProfile(data ProfilePageData) ([]byte, error) {
	return execute("profile.tmpl", data)
}

// RenderSearch renders the search page.
func RenderSearch(data SearchPageData) ([]byte, error) {
	return execute("search.tmpl", data)
}
