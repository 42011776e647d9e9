package handlers

import (
	"html"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"
	"go.uber.org/zap"

	"octavo/application/queries"
	querybus "octavo/application/queries/bus"
	"octavo/application/resolve"
	"octavo/domain/core"
	"octavo/domain/core/entities"
	"octavo/domain/core/valueobjects"
	"octavo/infrastructure/render"
	"octavo/interfaces/http/templates"
	apperrors "octavo/pkg/errors"
)

// DetailHandler serves the root endpoint, dispatching on the decoded id
// to a publication, article, event, or profile page.
type DetailHandler struct {
	queryBus *querybus.QueryBus
	resolver *resolve.Resolver
	markdown templates.MarkdownRenderer
	errors   *apperrors.ErrorHandler
	logger   *zap.Logger
}

// NewDetailHandler creates a new detail handler
func NewDetailHandler(queryBus *querybus.QueryBus, resolver *resolve.Resolver, markdown templates.MarkdownRenderer, errors *apperrors.ErrorHandler, logger *zap.Logger) *DetailHandler {
	return &DetailHandler{
		queryBus: queryBus,
		resolver: resolver,
		markdown: markdown,
		errors:   errors,
		logger:   logger,
	}
}

// Home handles GET /. Without an id it redirects to the library; with one
// it decodes the entity and renders the matching page.
func (h *DetailHandler) Home(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		http.Redirect(w, r, "/books", http.StatusFound)
		return
	}

	target, err := h.resolver.Decode(id)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	relays := relaysParam(r)
	switch {
	case target.IsProfile():
		h.profilePage(w, r, target.PubKey, relays)
	case target.IsAddress():
		h.addressPage(w, r, id, target, relays)
	default:
		h.eventPage(w, r, id, target, relays)
	}
}

func (h *DetailHandler) addressPage(w http.ResponseWriter, r *http.Request, code string, target *resolve.Target, relays valueobjects.RelaySet) {
	switch target.Address.Kind() {
	case core.KindPublicationIndex:
		result, err := h.queryBus.Ask(r.Context(), queries.GetPublicationQuery{Address: target.Address, Relays: relays})
		if err != nil {
			h.errors.Handle(w, r, err)
			return
		}
		pub, ok := result.(*queries.GetPublicationResult)
		if !ok {
			h.errors.Handle(w, r, apperrors.NewInternalError("unexpected publication result"))
			return
		}
		h.publicationPage(w, r, code, pub.Event, pub.Handle, relays)

	case core.KindArticle:
		result, err := h.queryBus.Ask(r.Context(), queries.GetArticleQuery{Address: target.Address, Relays: relays})
		if err != nil {
			h.errors.Handle(w, r, err)
			return
		}
		art, ok := result.(*queries.GetArticleResult)
		if !ok {
			h.errors.Handle(w, r, apperrors.NewInternalError("unexpected article result"))
			return
		}
		h.articlePage(w, r, code, art.Event, art.Handle, relays)

	case core.KindPublicationPart:
		result, err := h.queryBus.Ask(r.Context(), queries.GetPublicationQuery{Address: target.Address, Relays: relays})
		if err != nil {
			h.errors.Handle(w, r, err)
			return
		}
		part, ok := result.(*queries.GetPublicationResult)
		if !ok {
			h.errors.Handle(w, r, apperrors.NewInternalError("unexpected publication result"))
			return
		}
		h.plainEventPage(w, r, part.Event, part.Handle)

	default:
		h.errors.Handle(w, r, apperrors.NewUnsupportedKindError(target.Address.Kind()))
	}
}

func (h *DetailHandler) eventPage(w http.ResponseWriter, r *http.Request, code string, target *resolve.Target, relays valueobjects.RelaySet) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetEventQuery{
		ID:     target.EventID,
		Kind:   target.Kind,
		Hints:  target.Relays,
		Relays: relays,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	res, ok := result.(*queries.GetEventResult)
	if !ok {
		h.errors.Handle(w, r, apperrors.NewInternalError("unexpected event result"))
		return
	}

	switch res.Event.Kind {
	case core.KindPublicationIndex:
		h.publicationPage(w, r, code, res.Event, res.Handle, relays)
	case core.KindArticle:
		h.articlePage(w, r, code, res.Event, res.Handle, relays)
	default:
		h.plainEventPage(w, r, res.Event, res.Handle)
	}
}

func (h *DetailHandler) publicationPage(w http.ResponseWriter, r *http.Request, code string, ev *nostr.Event, handle string, relays valueobjects.RelaySet) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetHierarchyQuery{Root: ev, Relays: relays})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	hierarchy, ok := result.(*queries.GetHierarchyResult)
	if !ok {
		h.errors.Handle(w, r, apperrors.NewInternalError("unexpected hierarchy result"))
		return
	}

	suffix := relaySuffix(r)
	escaped := url.QueryEscape(code)
	page, err := templates.RenderPublication(templates.PublicationPageData{
		Title:        entities.EventTitle(ev),
		Author:       handle,
		Summary:      entities.EventTag(ev, "summary"),
		Image:        proxiedImage(entities.EventTag(ev, "image")),
		When:         formatWhen(ev.CreatedAt),
		ViewHref:     "/view?id=" + escaped + suffix,
		EpubHref:     "/view-epub?id=" + escaped + suffix,
		DownloadBase: "/download?id=" + escaped + suffix + "&format=",
		Formats:      render.SupportedFormats(),
		TOC:          tocEntries(hierarchy.Root, suffix),
		Comments:     h.comments(r, ev, relays),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	writeHTML(w, page)
}

func (h *DetailHandler) articlePage(w http.ResponseWriter, r *http.Request, code string, ev *nostr.Event, handle string, relays valueobjects.RelaySet) {
	body, err := h.markdown.Render(ev.Content)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	suffix := relaySuffix(r)
	escaped := url.QueryEscape(code)
	page, err := templates.RenderArticle(templates.ArticlePageData{
		Title:        entities.EventTitle(ev),
		Author:       handle,
		When:         formatWhen(ev.CreatedAt),
		Image:        proxiedImage(entities.EventTag(ev, "image")),
		Body:         body,
		DownloadBase: "/download?id=" + escaped + suffix + "&format=",
		Formats:      render.SupportedFormats(),
		Comments:     h.comments(r, ev, relays),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	writeHTML(w, page)
}

func (h *DetailHandler) plainEventPage(w http.ResponseWriter, r *http.Request, ev *nostr.Event, handle string) {
	page, err := templates.RenderEvent(templates.EventPageData{
		Title:  entities.EventTitle(ev),
		Author: handle,
		When:   formatWhen(ev.CreatedAt),
		Body:   plainParagraphs(ev.Content),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	writeHTML(w, page)
}

func (h *DetailHandler) profilePage(w http.ResponseWriter, r *http.Request, pubKey string, relays valueobjects.RelaySet) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetProfileQuery{PubKey: pubKey, Relays: relays})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	res, ok := result.(*queries.GetProfileResult)
	if !ok {
		h.errors.Handle(w, r, apperrors.NewInternalError("unexpected profile result"))
		return
	}

	data := templates.ProfilePageData{Handle: res.Handle}
	if npub, encErr := nip19.EncodePublicKey(pubKey); encErr == nil {
		data.Npub = npub
	}
	if res.Profile != nil {
		data.Name = res.Profile.Name
		data.NIP05 = res.Profile.NIP05
		data.Picture = proxiedImage(res.Profile.Picture)
		if about := strings.TrimSpace(res.Profile.About); about != "" {
			if body, mdErr := h.markdown.Render(about); mdErr == nil {
				data.About = body
			}
		}
	}

	page, err := templates.RenderProfile(data)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	writeHTML(w, page)
}

// comments loads the discussion below an event. The discussion is
// supplementary; a fetch failure degrades to an empty section rather than
// failing the page.
func (h *DetailHandler) comments(r *http.Request, ev *nostr.Event, relays valueobjects.RelaySet) []templates.CommentView {
	query := queries.GetCommentsQuery{RootID: ev.ID, Relays: relays}
	if addr, ok := valueobjects.AddressOf(ev); ok {
		query.RootAddress = addr
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.logger.Warn("comment lookup failed",
			zap.String("event_id", ev.ID),
			zap.Error(err))
		return nil
	}
	res, ok := result.(*queries.GetCommentsResult)
	if !ok {
		return nil
	}
	return flattenComments(res.Roots, res.Handles, h.markdown)
}

// tocEntries flattens a content tree into ordered table-of-contents rows.
// The root itself is the page being shown and is skipped.
func tocEntries(root *entities.Node, suffix string) []templates.TOCEntry {
	var entries []templates.TOCEntry
	var walk func(node *entities.Node, depth int)
	walk = func(node *entities.Node, depth int) {
		for _, child := range node.Children {
			entries = append(entries, templates.TOCEntry{
				Title: child.Title(),
				Depth: depth,
				Href:  detailHref(child.Event, suffix),
			})
			walk(child, depth+1)
		}
	}
	walk(root, 0)
	return entries
}

// plainParagraphs renders untyped event content as escaped paragraphs.
func plainParagraphs(content string) template.HTML {
	var b strings.Builder
	for _, para := range strings.Split(strings.TrimSpace(content), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(html.EscapeString(para), "\n", "<br>"))
		b.WriteString("</p>\n")
	}
	return template.HTML(b.String())
}
