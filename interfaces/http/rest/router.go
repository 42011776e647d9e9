// Package rest wires the HTTP surface of the reader: the browsing pages,
// the conversion endpoints and the operational routes.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	commandbus "octavo/application/commands/bus"
	"octavo/application/ports"
	querybus "octavo/application/queries/bus"
	"octavo/application/resolve"
	"octavo/application/services"
	"octavo/infrastructure/cache"
	"octavo/infrastructure/config"
	"octavo/interfaces/http/rest/handlers"
	"octavo/interfaces/http/rest/middleware"
	"octavo/interfaces/http/templates"
	apperrors "octavo/pkg/errors"
	"octavo/pkg/ratelimit"
)

// Router creates and configures the HTTP router
type Router struct {
	queryBus   *querybus.QueryBus
	commandBus *commandbus.CommandBus
	resolver   *resolve.Resolver
	documents  *services.DocumentService
	caches     *cache.Tiered
	probe      ports.RelayProbe
	markdown   templates.MarkdownRenderer
	errors     *apperrors.ErrorHandler
	cfg        *config.Config
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	queryBus *querybus.QueryBus,
	commandBus *commandbus.CommandBus,
	resolver *resolve.Resolver,
	documents *services.DocumentService,
	caches *cache.Tiered,
	probe ports.RelayProbe,
	markdown templates.MarkdownRenderer,
	errors *apperrors.ErrorHandler,
	cfg *config.Config,
	logger *zap.Logger,
) *Router {
	return &Router{
		queryBus:   queryBus,
		commandBus: commandBus,
		resolver:   resolver,
		documents:  documents,
		caches:     caches,
		probe:      probe,
		markdown:   markdown,
		errors:     errors,
		cfg:        cfg,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(rt.errors.Middleware)
	router.Use(middleware.Logger(rt.logger))

	// Everything served here is public; CORS stays permissive.
	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	library := handlers.NewLibraryHandler(rt.queryBus, rt.errors, rt.logger)
	detail := handlers.NewDetailHandler(rt.queryBus, rt.resolver, rt.markdown, rt.errors, rt.logger)
	documents := handlers.NewDocumentHandler(rt.queryBus, rt.documents, rt.resolver, rt.cfg, rt.errors, rt.logger)
	ops := handlers.NewOpsHandler(rt.commandBus, rt.caches, rt.documents, rt.probe, rt.cfg, rt.errors, rt.logger)
	proxy := handlers.NewProxyHandler(rt.documents, rt.cfg, rt.errors, rt.logger)

	// Browsing pages
	router.Get("/", detail.Home)
	router.Get("/books", library.Books)
	router.Get("/articles", library.Articles)
	router.Get("/highlights", library.Highlights)
	router.Get("/search", library.Search)

	// Conversion endpoints. A single conversion can hold the external
	// converter for minutes.
	router.Group(func(g chi.Router) {
		if rt.cfg.Throttle.ConversionBurst > 0 {
			limiter := ratelimit.New(rt.cfg.Throttle.ConversionBurst, rt.cfg.Throttle.ConversionRefill)
			g.Use(middleware.Throttle(limiter, rt.errors))
		}
		g.Get("/view", documents.View)
		g.Get("/view-epub", documents.ViewEpub)
		g.Get("/download", documents.Download)
	})
	router.Get("/image-proxy", proxy.ImageProxy)

	// Operational routes
	router.Get("/status", ops.Status)
	router.Post("/clear-cache", ops.ClearCache)
	router.Get("/healthz", ops.Healthz)
	router.Handle("/metrics", promhttp.Handler())

	return router
}
