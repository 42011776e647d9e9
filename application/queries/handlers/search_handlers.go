package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"octavo/application/queries"
	"octavo/application/services"
)

// SearchPublicationsHandler handles free-text publication search
type SearchPublicationsHandler struct {
	orchestrator *services.Orchestrator
	logger       *zap.Logger
}

// NewSearchPublicationsHandler creates a new search handler
func NewSearchPublicationsHandler(orchestrator *services.Orchestrator, logger *zap.Logger) *SearchPublicationsHandler {
	return &SearchPublicationsHandler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// Handle executes the search query
func (h *SearchPublicationsHandler) Handle(ctx context.Context, query queries.SearchPublicationsQuery) (*queries.SearchPublicationsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	events := h.orchestrator.SearchPublications(ctx, query.Text, query.Relays)
	handles := h.orchestrator.HandlesFor(ctx, events, query.Relays)

	h.logger.Debug("Search completed",
		zap.Int("matches", len(events)),
	)

	return &queries.SearchPublicationsResult{
		Events:  events,
		Handles: handles,
	}, nil
}
