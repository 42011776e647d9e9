package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"octavo/application/commands"
	commandbus "octavo/application/commands/bus"
	"octavo/application/ports"
	"octavo/application/services"
	"octavo/infrastructure/cache"
	"octavo/infrastructure/config"
	apperrors "octavo/pkg/errors"
)

// OpsHandler serves the operational endpoints: status, health and cache
// administration.
type OpsHandler struct {
	commandBus *commandbus.CommandBus
	caches     *cache.Tiered
	documents  *services.DocumentService
	probe      ports.RelayProbe
	cfg        *config.Config
	errors     *apperrors.ErrorHandler
	logger     *zap.Logger
	instance   string
	started    time.Time
}

// NewOpsHandler creates a new operations handler
func NewOpsHandler(commandBus *commandbus.CommandBus, caches *cache.Tiered, documents *services.DocumentService, probe ports.RelayProbe, cfg *config.Config, errors *apperrors.ErrorHandler, logger *zap.Logger) *OpsHandler {
	return &OpsHandler{
		commandBus: commandBus,
		caches:     caches,
		documents:  documents,
		probe:      probe,
		cfg:        cfg,
		errors:     errors,
		logger:     logger,
		instance:   uuid.NewString(),
		started:    time.Now(),
	}
}

type statusResponse struct {
	Status    string          `json:"status"`
	Instance  string          `json:"instance"`
	StartedAt time.Time       `json:"started_at"`
	Uptime    string          `json:"uptime"`
	Renderer  string          `json:"renderer"`
	Cache     cacheStatus     `json:"cache"`
	Relays    map[string]bool `json:"relays"`
}

type cacheStatus struct {
	Namespaces []cache.Stats    `json:"namespaces"`
	Sizes      map[string]int64 `json:"sizes"`
	TotalBytes int64            `json:"total_bytes"`
}

// Status handles GET /status, reporting cache counters and the
// reachability of every configured relay.
func (h *OpsHandler) Status(w http.ResponseWriter, r *http.Request) {
	urls := append(append([]string(nil), h.cfg.PublicationRelays...), h.cfg.ArticleRelays...)
	sizes, total := h.caches.Sizes()

	h.respondJSON(w, http.StatusOK, statusResponse{
		Status:    "ok",
		Instance:  h.instance,
		StartedAt: h.started.UTC(),
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Renderer:  h.documents.RendererState(),
		Cache: cacheStatus{
			Namespaces: h.caches.Stats(),
			Sizes:      sizes,
			TotalBytes: total,
		},
		Relays: h.probe.CheckAll(r.Context(), urls),
	})
}

// ClearCache handles POST /clear-cache
func (h *OpsHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.commandBus.Send(r.Context(), commands.ClearCacheCommand{}); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "cache cleared"})
}

// Healthz handles GET /healthz
func (h *OpsHandler) Healthz(w http.ResponseWriter, _ *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *OpsHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
