package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"octavo/application/queries"
	"octavo/application/services"
)

// GetCommentsHandler handles discussion queries, returning the fetched
// comments already threaded into parent/child trees.
type GetCommentsHandler struct {
	orchestrator *services.Orchestrator
	logger       *zap.Logger
}

// NewGetCommentsHandler creates a new comment thread handler
func NewGetCommentsHandler(orchestrator *services.Orchestrator, logger *zap.Logger) *GetCommentsHandler {
	return &GetCommentsHandler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// Handle executes the comment thread query
func (h *GetCommentsHandler) Handle(ctx context.Context, query queries.GetCommentsQuery) (*queries.GetCommentsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	events := h.orchestrator.Comments(ctx, query.RootID, query.RootAddress, query.Relays)
	roots := services.BuildThread(events)
	handles := h.orchestrator.HandlesFor(ctx, events, query.Relays)

	h.logger.Debug("Comment thread built",
		zap.String("root", query.RootID),
		zap.Int("comments", len(events)),
		zap.Int("roots", len(roots)),
	)

	return &queries.GetCommentsResult{
		Roots:   roots,
		Total:   len(events),
		Handles: handles,
	}, nil
}
