package handlers

import (
	"net/http"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"
	"go.uber.org/zap"

	"octavo/application/queries"
	querybus "octavo/application/queries/bus"
	"octavo/domain/core/valueobjects"
	"octavo/interfaces/http/templates"
	apperrors "octavo/pkg/errors"
)

// LibraryHandler serves the list pages: publications, articles, highlights
// and search.
type LibraryHandler struct {
	queryBus *querybus.QueryBus
	errors   *apperrors.ErrorHandler
	logger   *zap.Logger
}

// NewLibraryHandler creates a new library handler
func NewLibraryHandler(queryBus *querybus.QueryBus, errors *apperrors.ErrorHandler, logger *zap.Logger) *LibraryHandler {
	return &LibraryHandler{
		queryBus: queryBus,
		errors:   errors,
		logger:   logger,
	}
}

// Books handles GET /books
func (h *LibraryHandler) Books(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListPublicationsQuery{Relays: relaysParam(r)})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	list, ok := result.(*queries.ListPublicationsResult)
	if !ok {
		h.errors.Handle(w, r, apperrors.NewInternalError("unexpected publication list result"))
		return
	}

	page, err := templates.RenderLibrary(templates.ListPageData{
		Items: listItems(list.Events, list.Handles, relaySuffix(r)),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	writeHTML(w, page)
}

// Articles handles GET /articles
func (h *LibraryHandler) Articles(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListArticlesQuery{Relays: relaysParam(r)})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	list, ok := result.(*queries.ListArticlesResult)
	if !ok {
		h.errors.Handle(w, r, apperrors.NewInternalError("unexpected article list result"))
		return
	}

	page, err := templates.RenderArticles(templates.ListPageData{
		Items: listItems(list.Events, list.Handles, relaySuffix(r)),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	writeHTML(w, page)
}

// Highlights handles GET /highlights
func (h *LibraryHandler) Highlights(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListHighlightsQuery{Relays: relaysParam(r)})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	list, ok := result.(*queries.ListHighlightsResult)
	if !ok {
		h.errors.Handle(w, r, apperrors.NewInternalError("unexpected highlight list result"))
		return
	}

	suffix := relaySuffix(r)
	items := make([]templates.HighlightItem, 0, len(list.Events))
	for _, ev := range list.Events {
		items = append(items, templates.HighlightItem{
			Quote:      ev.Content,
			Author:     displayHandle(list.Handles, ev.PubKey),
			SourceHref: highlightSource(ev, suffix),
			When:       formatWhen(ev.CreatedAt),
		})
	}

	page, err := templates.RenderHighlights(templates.HighlightsPageData{Items: items})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	writeHTML(w, page)
}

// Search handles GET /search
func (h *LibraryHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	data := templates.SearchPageData{Query: query}

	if query != "" {
		result, err := h.queryBus.Ask(r.Context(), queries.SearchPublicationsQuery{
			Text:   query,
			Relays: relaysParam(r),
		})
		if err != nil {
			h.errors.Handle(w, r, err)
			return
		}
		matches, ok := result.(*queries.SearchPublicationsResult)
		if !ok {
			h.errors.Handle(w, r, apperrors.NewInternalError("unexpected search result"))
			return
		}
		data.Items = listItems(matches.Events, matches.Handles, relaySuffix(r))
	}

	page, err := templates.RenderSearch(data)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	writeHTML(w, page)
}

// highlightSource links a highlight back to the work it quotes, via its
// a-tag when the source is replaceable, its e-tag otherwise.
func highlightSource(ev *nostr.Event, suffix string) string {
	for _, tag := range ev.Tags {
		if len(tag) < 2 {
			continue
		}
		switch tag[0] {
		case "a":
			if addr, err := valueobjects.ParseAddress(tag[1]); err == nil {
				if naddr, encErr := addr.Naddr(nil); encErr == nil {
					return "/?id=" + naddr + suffix
				}
			}
		case "e":
			if note, err := nip19.EncodeNote(tag[1]); err == nil {
				return "/?id=" + note + suffix
			}
		}
	}
	return ""
}
