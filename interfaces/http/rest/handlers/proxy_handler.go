package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"octavo/application/services"
	"octavo/infrastructure/config"
	apperrors "octavo/pkg/errors"
)

// ProxyHandler serves remote images through the service so that e-paper
// browsers without broad TLS support can still load them.
type ProxyHandler struct {
	documents *services.DocumentService
	cfg       *config.Config
	errors    *apperrors.ErrorHandler
	logger    *zap.Logger
}

// NewProxyHandler creates a new image proxy handler
func NewProxyHandler(documents *services.DocumentService, cfg *config.Config, errors *apperrors.ErrorHandler, logger *zap.Logger) *ProxyHandler {
	return &ProxyHandler{
		documents: documents,
		cfg:       cfg,
		errors:    errors,
		logger:    logger,
	}
}

// ImageProxy handles GET /image-proxy
func (h *ProxyHandler) ImageProxy(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("url"))
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		h.errors.Handle(w, r, apperrors.NewValidationError("url must be an http or https address"))
		return
	}

	data, mediaType, err := h.documents.ProxyImage(r.Context(), raw)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mediaType)
	cacheFor(w, h.cfg.Cache.MediaTTL)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
