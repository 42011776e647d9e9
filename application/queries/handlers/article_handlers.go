package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"octavo/application/queries"
	"octavo/application/services"
)

// GetArticleHandler handles long-form article detail queries
type GetArticleHandler struct {
	orchestrator *services.Orchestrator
	logger       *zap.Logger
}

// NewGetArticleHandler creates a new article detail handler
func NewGetArticleHandler(orchestrator *services.Orchestrator, logger *zap.Logger) *GetArticleHandler {
	return &GetArticleHandler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// Handle executes the article detail query
func (h *GetArticleHandler) Handle(ctx context.Context, query queries.GetArticleQuery) (*queries.GetArticleResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	event, err := h.orchestrator.ArticleByAddress(ctx, query.Address, query.Relays)
	if err != nil {
		return nil, err
	}

	return &queries.GetArticleResult{
		Event:  event,
		Handle: h.orchestrator.HandleFor(ctx, event.PubKey, query.Relays),
	}, nil
}

// ListArticlesHandler handles the article list query
type ListArticlesHandler struct {
	orchestrator *services.Orchestrator
	logger       *zap.Logger
}

// NewListArticlesHandler creates a new article list handler
func NewListArticlesHandler(orchestrator *services.Orchestrator, logger *zap.Logger) *ListArticlesHandler {
	return &ListArticlesHandler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// Handle executes the article list query
func (h *ListArticlesHandler) Handle(ctx context.Context, query queries.ListArticlesQuery) (*queries.ListArticlesResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	events := h.orchestrator.Articles(ctx, query.Relays)
	handles := h.orchestrator.HandlesFor(ctx, events, query.Relays)

	h.logger.Debug("Article list served",
		zap.Int("count", len(events)),
	)

	return &queries.ListArticlesResult{
		Events:  events,
		Handles: handles,
	}, nil
}
