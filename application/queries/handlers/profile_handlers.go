package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"octavo/application/queries"
	"octavo/application/services"
)

// GetProfileHandler handles author profile queries. A missing profile event
// is not an error; the result carries a nil profile and a shortened-npub
// handle so callers can still render an attribution line.
type GetProfileHandler struct {
	orchestrator *services.Orchestrator
	logger       *zap.Logger
}

// NewGetProfileHandler creates a new profile handler
func NewGetProfileHandler(orchestrator *services.Orchestrator, logger *zap.Logger) *GetProfileHandler {
	return &GetProfileHandler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// Handle executes the profile query
func (h *GetProfileHandler) Handle(ctx context.Context, query queries.GetProfileQuery) (*queries.GetProfileResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	profile := h.orchestrator.Profile(ctx, query.PubKey, query.Relays)
	handle := h.orchestrator.HandleFor(ctx, query.PubKey, query.Relays)

	return &queries.GetProfileResult{
		Profile: profile,
		Handle:  handle,
	}, nil
}
