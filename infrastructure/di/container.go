// Package di assembles the object graph of the service.
package di

import (
	"go.uber.org/zap"

	"octavo/application/commands/bus"
	"octavo/application/ports"
	querybus "octavo/application/queries/bus"
	"octavo/application/resolve"
	"octavo/application/services"
	"octavo/infrastructure/cache"
	"octavo/infrastructure/config"
	"octavo/infrastructure/relay"
	apperrors "octavo/pkg/errors"
	"octavo/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	Pool         relay.Pool
	Fetcher      ports.Fetcher
	Probe        ports.RelayProbe
	Caches       *cache.Tiered
	Resolver     *resolve.Resolver
	Assembler    *services.Assembler
	Orchestrator *services.Orchestrator
	Embedder     *services.Embedder
	Renderer     ports.Renderer
	Documents    *services.DocumentService
	ErrorHandler *apperrors.ErrorHandler
	Metrics      *observability.Metrics
	CommandBus   *bus.CommandBus
	QueryBus     *querybus.QueryBus
}

// Shutdown releases the long-lived resources the container owns. The relay
// pool close is idempotent.
func (c *Container) Shutdown() {
	c.Pool.Close()
	_ = c.Logger.Sync()
}
