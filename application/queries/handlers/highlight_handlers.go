package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"octavo/application/queries"
	"octavo/application/services"
)

// ListHighlightsHandler handles the recent-highlights list query
type ListHighlightsHandler struct {
	orchestrator *services.Orchestrator
	logger       *zap.Logger
}

// NewListHighlightsHandler creates a new highlight list handler
func NewListHighlightsHandler(orchestrator *services.Orchestrator, logger *zap.Logger) *ListHighlightsHandler {
	return &ListHighlightsHandler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// Handle executes the highlight list query
func (h *ListHighlightsHandler) Handle(ctx context.Context, query queries.ListHighlightsQuery) (*queries.ListHighlightsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	events := h.orchestrator.Highlights(ctx, query.Relays)
	handles := h.orchestrator.HandlesFor(ctx, events, query.Relays)

	return &queries.ListHighlightsResult{
		Events:  events,
		Handles: handles,
	}, nil
}
