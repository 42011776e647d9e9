package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"octavo/application/queries"
	"octavo/application/services"
)

// GetEventHandler handles lookups of single events by id, typically decoded
// from nevent or note references.
type GetEventHandler struct {
	orchestrator *services.Orchestrator
	logger       *zap.Logger
}

// NewGetEventHandler creates a new event lookup handler
func NewGetEventHandler(orchestrator *services.Orchestrator, logger *zap.Logger) *GetEventHandler {
	return &GetEventHandler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// Handle executes the event lookup query
func (h *GetEventHandler) Handle(ctx context.Context, query queries.GetEventQuery) (*queries.GetEventResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	event, err := h.orchestrator.EventByID(ctx, query.ID, query.Kind, query.Hints, query.Relays)
	if err != nil {
		return nil, err
	}

	return &queries.GetEventResult{
		Event:  event,
		Handle: h.orchestrator.HandleFor(ctx, event.PubKey, query.Relays),
	}, nil
}
