package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/nbd-wtf/go-nostr"
	"go.uber.org/zap"

	"octavo/application/queries"
	querybus "octavo/application/queries/bus"
	"octavo/application/resolve"
	"octavo/application/services"
	"octavo/domain/core"
	"octavo/domain/core/valueobjects"
	"octavo/infrastructure/config"
	"octavo/infrastructure/render"
	apperrors "octavo/pkg/errors"
)

// DocumentHandler serves converted documents: reading views, inline e-books
// and file downloads.
type DocumentHandler struct {
	queryBus  *querybus.QueryBus
	documents *services.DocumentService
	resolver  *resolve.Resolver
	cfg       *config.Config
	errors    *apperrors.ErrorHandler
	logger    *zap.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(queryBus *querybus.QueryBus, documents *services.DocumentService, resolver *resolve.Resolver, cfg *config.Config, errors *apperrors.ErrorHandler, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		queryBus:  queryBus,
		documents: documents,
		resolver:  resolver,
		cfg:       cfg,
		errors:    errors,
		logger:    logger,
	}
}

// View handles GET /view, serving the document as a readable web page.
func (h *DocumentHandler) View(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, render.FormatHTML5, false)
}

// ViewEpub handles GET /view-epub, serving the document as an inline EPUB
// for readers that open the format natively.
func (h *DocumentHandler) ViewEpub(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, render.FormatEPUB, false)
}

// Download handles GET /download, serving the requested format as a file
// attachment. The format defaults to epub.
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	format := strings.TrimSpace(r.URL.Query().Get("format"))
	if format == "" {
		format = render.FormatEPUB
	}
	if !render.IsSupportedFormat(format) {
		h.errors.Handle(w, r, apperrors.NewValidationError("unsupported format "+strconv.Quote(format)))
		return
	}
	h.serve(w, r, format, true)
}

func (h *DocumentHandler) serve(w http.ResponseWriter, r *http.Request, format string, attachment bool) {
	doc, err := h.materialize(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	data, mediaType, err := h.documents.Render(r.Context(), doc, format)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	w.Header().Set("Content-Type", mediaType)
	cacheFor(w, h.cfg.Cache.DerivedTTL)
	if attachment {
		filename := downloadFilename(doc.Title, render.FileExtensionFor(format))
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// materialize resolves the request's id into a composed document ready for
// conversion.
func (h *DocumentHandler) materialize(r *http.Request) (services.Document, error) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	target, err := h.resolver.DecodeItem(id)
	if err != nil {
		return services.Document{}, err
	}

	relays := relaysParam(r)
	if target.IsAddress() {
		switch target.Address.Kind() {
		case core.KindPublicationIndex:
			result, err := h.queryBus.Ask(r.Context(), queries.GetPublicationQuery{Address: target.Address, Relays: relays})
			if err != nil {
				return services.Document{}, err
			}
			pub, ok := result.(*queries.GetPublicationResult)
			if !ok {
				return services.Document{}, apperrors.NewInternalError("unexpected publication result")
			}
			return h.composePublication(r, pub.Event, pub.Handle, relays)

		case core.KindArticle:
			result, err := h.queryBus.Ask(r.Context(), queries.GetArticleQuery{Address: target.Address, Relays: relays})
			if err != nil {
				return services.Document{}, err
			}
			art, ok := result.(*queries.GetArticleResult)
			if !ok {
				return services.Document{}, apperrors.NewInternalError("unexpected article result")
			}
			return services.ComposeArticle(art.Event, art.Handle), nil

		case core.KindPublicationPart:
			result, err := h.queryBus.Ask(r.Context(), queries.GetPublicationQuery{Address: target.Address, Relays: relays})
			if err != nil {
				return services.Document{}, err
			}
			part, ok := result.(*queries.GetPublicationResult)
			if !ok {
				return services.Document{}, apperrors.NewInternalError("unexpected publication result")
			}
			return services.ComposeArticle(part.Event, part.Handle), nil

		default:
			return services.Document{}, apperrors.NewUnsupportedKindError(target.Address.Kind())
		}
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetEventQuery{
		ID:     target.EventID,
		Kind:   target.Kind,
		Hints:  target.Relays,
		Relays: relays,
	})
	if err != nil {
		return services.Document{}, err
	}
	res, ok := result.(*queries.GetEventResult)
	if !ok {
		return services.Document{}, apperrors.NewInternalError("unexpected event result")
	}
	if res.Event.Kind == core.KindPublicationIndex {
		return h.composePublication(r, res.Event, res.Handle, relays)
	}
	return services.ComposeArticle(res.Event, res.Handle), nil
}

func (h *DocumentHandler) composePublication(r *http.Request, ev *nostr.Event, handle string, relays valueobjects.RelaySet) (services.Document, error) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetHierarchyQuery{Root: ev, Relays: relays})
	if err != nil {
		return services.Document{}, err
	}
	hierarchy, ok := result.(*queries.GetHierarchyResult)
	if !ok {
		return services.Document{}, apperrors.NewInternalError("unexpected hierarchy result")
	}
	return services.ComposePublication(hierarchy.Root, handle), nil
}
