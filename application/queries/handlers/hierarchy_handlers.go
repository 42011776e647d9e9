package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"octavo/application/queries"
	"octavo/application/services"
)

// GetHierarchyHandler handles content tree assembly for a publication index
type GetHierarchyHandler struct {
	orchestrator *services.Orchestrator
	logger       *zap.Logger
}

// NewGetHierarchyHandler creates a new hierarchy handler
func NewGetHierarchyHandler(orchestrator *services.Orchestrator, logger *zap.Logger) *GetHierarchyHandler {
	return &GetHierarchyHandler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// Handle executes the hierarchy query
func (h *GetHierarchyHandler) Handle(ctx context.Context, query queries.GetHierarchyQuery) (*queries.GetHierarchyResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	root := h.orchestrator.Hierarchy(ctx, query.Root, query.Relays)

	h.logger.Debug("Hierarchy assembled",
		zap.String("root", query.Root.ID),
		zap.Int("nodes", root.CountNodes()),
	)

	return &queries.GetHierarchyResult{Root: root}, nil
}
