// Package commands holds the few state-changing operations the service
// supports. Relay content is read-only from this side; commands act on
// local state such as the cache.
package commands

import (
	"context"

	"go.uber.org/zap"

	"octavo/infrastructure/cache"
)

// ClearCacheCommand flushes every cache namespace
type ClearCacheCommand struct{}

// Validate validates the command
func (c ClearCacheCommand) Validate() error {
	return nil
}

// ClearCacheHandler handles the ClearCacheCommand
type ClearCacheHandler struct {
	caches *cache.Tiered
	logger *zap.Logger
}

// NewClearCacheHandler creates a new handler instance
func NewClearCacheHandler(caches *cache.Tiered, logger *zap.Logger) *ClearCacheHandler {
	return &ClearCacheHandler{
		caches: caches,
		logger: logger,
	}
}

// Handle executes the cache flush
func (h *ClearCacheHandler) Handle(ctx context.Context, cmd ClearCacheCommand) error {
	h.caches.ClearAll()
	h.logger.Info("All cache namespaces flushed")
	return nil
}
