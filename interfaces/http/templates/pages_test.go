package templates_test

import (
	"html/template"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"octavo/interfaces/http/templates"
)

func TestRenderLibraryListsItems(t *testing.T) {
	html, err := templates.RenderLibrary(templates.ListPageData{
		Items: []templates.ListItem{
			{Title: "The Book", Author: "ann", Href: "/?id=naddr1abc", When: "2026-01-02"},
			{Title: "Another", Author: "bob", Href: "/?id=naddr1def", Summary: "Short blurb."},
		},
	})
	require.NoError(t, err)

	page := string(html)
	assert.Contains(t, page, "The Book")
	assert.Contains(t, page, `href="/?id=naddr1abc"`)
	assert.Contains(t, page, "ann")
	assert.Contains(t, page, "Short blurb.")
	assert.Contains(t, page, "<title>Library</title>")
}

func TestRenderLibraryEmptyState(t *testing.T) {
	html, err := templates.RenderLibrary(templates.ListPageData{})
	require.NoError(t, err)
	assert.Contains(t, string(html), "No publications found")
}

func TestRenderPublicationShowsActionsAndContents(t *testing.T) {
	html, err := templates.RenderPublication(templates.PublicationPageData{
		Title:        "The Book",
		Author:       "ann",
		When:         "2026-01-02",
		ViewHref:     "/view?id=naddr1abc",
		EpubHref:     "/view-epub?id=naddr1abc",
		DownloadBase: "/download?id=naddr1abc&format=",
		Formats:      []string{"epub", "pdf"},
		TOC: []templates.TOCEntry{
			{Title: "Opening", Depth: 0, Href: "/?id=naddr1part"},
			{Title: "Deeper", Depth: 1},
		},
		Comments: []templates.CommentView{
			{Author: "bob", Body: template.HTML("<p>Lovely.</p>"), Depth: 0},
		},
	})
	require.NoError(t, err)

	page := string(html)
	assert.Contains(t, page, `href="/view?id=naddr1abc"`)
	assert.Contains(t, page, `href="/view-epub?id=naddr1abc"`)
	assert.Contains(t, page, `format=epub`)
	assert.Contains(t, page, `format=pdf`)
	assert.Contains(t, page, "Opening")
	assert.Contains(t, page, "Deeper")
	assert.Contains(t, page, "<p>Lovely.</p>")
}

func TestRenderArticleKeepsRenderedBody(t *testing.T) {
	html, err := templates.RenderArticle(templates.ArticlePageData{
		Title:  "Essay",
		Author: "ann",
		Body:   template.HTML("<p>Hello <em>reader</em>.</p>"),
	})
	require.NoError(t, err)
	assert.Contains(t, string(html), "<p>Hello <em>reader</em>.</p>")
}

func TestRenderHighlightsQuotes(t *testing.T) {
	html, err := templates.RenderHighlights(templates.HighlightsPageData{
		Items: []templates.HighlightItem{
			{Quote: "Call me Ishmael.", Author: "herman", SourceHref: "/?id=naddr1whale"},
		},
	})
	require.NoError(t, err)

	page := string(html)
	assert.Contains(t, page, "Call me Ishmael.")
	assert.Contains(t, page, `href="/?id=naddr1whale"`)
}

func TestRenderSearchEscapesQuery(t *testing.T) {
	html, err := templates.RenderSearch(templates.SearchPageData{Query: `<script>alert(1)</script>`})
	require.NoError(t, err)

	page := string(html)
	assert.NotContains(t, page, "<script>alert(1)</script>")
	assert.Contains(t, page, "&lt;script&gt;")
}

func TestRenderProfileShowsIdentity(t *testing.T) {
	html, err := templates.RenderProfile(templates.ProfilePageData{
		Handle: "ann",
		NIP05:  "ann@example.com",
		Npub:   "npub1exampleexample",
		About:  template.HTML("<p>Writes books.</p>"),
	})
	require.NoError(t, err)

	page := string(html)
	assert.Contains(t, page, "ann@example.com")
	assert.Contains(t, page, "npub1exampleexample")
	assert.Contains(t, page, "<p>Writes books.</p>")
}

func TestMarkdownRendererSanitizes(t *testing.T) {
	renderer := templates.NewMarkdownRenderer()

	out, err := renderer.Render("**bold** move\n\n<script>alert(1)</script>")
	require.NoError(t, err)

	body := string(out)
	assert.Contains(t, body, "<strong>bold</strong>")
	assert.NotContains(t, body, "<script>")
}

func TestMarkdownRendererEmptyInput(t *testing.T) {
	renderer := templates.NewMarkdownRenderer()

	out, err := renderer.Render("   \n ")
	require.NoError(t, err)
	assert.Empty(t, string(out))
}
