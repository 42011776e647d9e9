// Package handlers wires each query type to the orchestrator flow that can
// answer it. Handlers validate, delegate, and attach author handles; all
// caching and relay logic stays in the application services.
package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"octavo/application/queries"
	"octavo/application/services"
)

// GetPublicationHandler handles publication detail queries
type GetPublicationHandler struct {
	orchestrator *services.Orchestrator
	logger       *zap.Logger
}

// NewGetPublicationHandler creates a new publication detail handler
func NewGetPublicationHandler(orchestrator *services.Orchestrator, logger *zap.Logger) *GetPublicationHandler {
	return &GetPublicationHandler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// Handle executes the publication detail query
func (h *GetPublicationHandler) Handle(ctx context.Context, query queries.GetPublicationQuery) (*queries.GetPublicationResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	event, err := h.orchestrator.PublicationByAddress(ctx, query.Address, query.Relays)
	if err != nil {
		return nil, err
	}

	return &queries.GetPublicationResult{
		Event:  event,
		Handle: h.orchestrator.HandleFor(ctx, event.PubKey, query.Relays),
	}, nil
}

// ListPublicationsHandler handles the top-level publication list query
type ListPublicationsHandler struct {
	orchestrator *services.Orchestrator
	logger       *zap.Logger
}

// NewListPublicationsHandler creates a new publication list handler
func NewListPublicationsHandler(orchestrator *services.Orchestrator, logger *zap.Logger) *ListPublicationsHandler {
	return &ListPublicationsHandler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// Handle executes the publication list query
func (h *ListPublicationsHandler) Handle(ctx context.Context, query queries.ListPublicationsQuery) (*queries.ListPublicationsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	events := h.orchestrator.Publications(ctx, query.Relays)
	handles := h.orchestrator.HandlesFor(ctx, events, query.Relays)

	h.logger.Debug("Publication list served",
		zap.Int("count", len(events)),
	)

	return &queries.ListPublicationsResult{
		Events:  events,
		Handles: handles,
	}, nil
}
