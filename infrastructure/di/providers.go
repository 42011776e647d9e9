package di

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"octavo/application/commands"
	"octavo/application/commands/bus"
	"octavo/application/ports"
	"octavo/application/queries"
	querybus "octavo/application/queries/bus"
	queries_handlers "octavo/application/queries/handlers"
	"octavo/application/resolve"
	"octavo/application/services"
	"octavo/infrastructure/cache"
	"octavo/infrastructure/config"
	"octavo/infrastructure/media"
	"octavo/infrastructure/relay"
	"octavo/infrastructure/render"
	apperrors "octavo/pkg/errors"
	"octavo/pkg/observability"
)

// ProvideLogger creates a new logger instance. With a log file configured
// the logger writes JSON through a size-rotated file; otherwise it follows
// the environment.
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.LogFile != "" {
		level := zapcore.InfoLevel
		if cfg.IsDevelopment() {
			level = zapcore.DebugLevel
		}
		encoderCfg := zap.NewProductionEncoderConfig()
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		core := zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderCfg),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   cfg.LogFile,
				MaxSize:    50, // megabytes
				MaxBackups: 3,
				MaxAge:     14, // days
				Compress:   true,
			}),
			level,
		)
		return zap.New(core), nil
	}

	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvidePool creates the process-wide relay connection pool
func ProvidePool(logger *zap.Logger) relay.Pool {
	return relay.NewNostrPool(logger)
}

// ProvideFetcher creates the relay multiplexer
func ProvideFetcher(pool relay.Pool, logger *zap.Logger) ports.Fetcher {
	return relay.NewMultiplexer(pool, logger)
}

// ProvideProbe creates the relay reachability probe
func ProvideProbe(pool relay.Pool, logger *zap.Logger) ports.RelayProbe {
	return relay.NewProbe(pool, logger)
}

// ProvideCaches creates the namespaced cache tiers
func ProvideCaches(cfg *config.Config, logger *zap.Logger) *cache.Tiered {
	return cache.NewTiered(cfg.Cache, logger)
}

// ProvideResolver creates the address resolver
func ProvideResolver(cfg *config.Config, logger *zap.Logger) *resolve.Resolver {
	return resolve.NewResolver(cfg, logger)
}

// ProvideAssembler creates the hierarchy assembler
func ProvideAssembler(fetcher ports.Fetcher, logger *zap.Logger) *services.Assembler {
	return services.NewAssembler(fetcher, logger)
}

// ProvideOrchestrator creates the read-side orchestrator
func ProvideOrchestrator(
	fetcher ports.Fetcher,
	caches *cache.Tiered,
	resolver *resolve.Resolver,
	assembler *services.Assembler,
	cfg *config.Config,
	logger *zap.Logger,
) *services.Orchestrator {
	return services.NewOrchestrator(fetcher, caches, resolver, assembler, cfg, logger)
}

// ProvideImageProcessor creates the image recompressor
func ProvideImageProcessor(cfg *config.Config, logger *zap.Logger) ports.ImageProcessor {
	return media.NewProcessor(cfg.Media, logger)
}

// ProvideEmbedder creates the media embedder
func ProvideEmbedder(cfg *config.Config, processor ports.ImageProcessor, logger *zap.Logger) *services.Embedder {
	return services.NewEmbedder(cfg.Media, processor, logger)
}

// ProvideRenderer creates the external converter client
func ProvideRenderer(cfg *config.Config, logger *zap.Logger) ports.Renderer {
	return render.NewClient(cfg, logger)
}

// ProvideDocumentService creates the document conversion service
func ProvideDocumentService(
	embedder *services.Embedder,
	renderer ports.Renderer,
	caches *cache.Tiered,
	logger *zap.Logger,
) *services.DocumentService {
	return services.NewDocumentService(embedder, renderer, caches, logger)
}

// ProvideErrorHandler creates the HTTP error responder
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *apperrors.ErrorHandler {
	return apperrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideMetrics creates the Prometheus metrics sink
func ProvideMetrics() *observability.Metrics {
	return observability.NewMetrics(prometheus.DefaultRegisterer, "octavo")
}

// CommandHandlerAdapter adapts specific command handlers to the generic interface
type CommandHandlerAdapter struct {
	handler func(context.Context, bus.Command) error
}

func (a *CommandHandlerAdapter) Handle(ctx context.Context, cmd bus.Command) error {
	return a.handler(ctx, cmd)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(caches *cache.Tiered, logger *zap.Logger) *bus.CommandBus {
	commandBus := bus.NewCommandBus()
	pipeline := bus.NewPipeline(bus.LoggingMiddleware(&zapLoggerAdapter{logger}))

	clearCacheHandler := commands.NewClearCacheHandler(caches, logger)
	commandBus.Register(commands.ClearCacheCommand{}, pipeline.Execute(&CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			clearCmd, ok := cmd.(commands.ClearCacheCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return clearCacheHandler.Handle(ctx, clearCmd)
		},
	}))

	return commandBus
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// ProvideQueryBus creates a query bus with every read handler registered,
// each wrapped with the metrics middleware.
func ProvideQueryBus(
	orchestrator *services.Orchestrator,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *querybus.QueryBus {
	queryBus := querybus.NewQueryBus()
	mw := querybus.NewMetricsMiddleware(&metricsAdapter{metrics: metrics})

	// Register GetPublicationQuery handler
	getPublicationHandler := queries_handlers.NewGetPublicationHandler(orchestrator, logger)
	queryBus.Register(queries.GetPublicationQuery{}, mw.Wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetPublicationQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return getPublicationHandler.Handle(ctx, getQuery)
		},
	}))

	// Register ListPublicationsQuery handler
	listPublicationsHandler := queries_handlers.NewListPublicationsHandler(orchestrator, logger)
	queryBus.Register(queries.ListPublicationsQuery{}, mw.Wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			listQuery, ok := query.(queries.ListPublicationsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return listPublicationsHandler.Handle(ctx, listQuery)
		},
	}))

	// Register GetArticleQuery handler
	getArticleHandler := queries_handlers.NewGetArticleHandler(orchestrator, logger)
	queryBus.Register(queries.GetArticleQuery{}, mw.Wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetArticleQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return getArticleHandler.Handle(ctx, getQuery)
		},
	}))

	// Register ListArticlesQuery handler
	listArticlesHandler := queries_handlers.NewListArticlesHandler(orchestrator, logger)
	queryBus.Register(queries.ListArticlesQuery{}, mw.Wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			listQuery, ok := query.(queries.ListArticlesQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return listArticlesHandler.Handle(ctx, listQuery)
		},
	}))

	// Register ListHighlightsQuery handler
	listHighlightsHandler := queries_handlers.NewListHighlightsHandler(orchestrator, logger)
	queryBus.Register(queries.ListHighlightsQuery{}, mw.Wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			listQuery, ok := query.(queries.ListHighlightsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return listHighlightsHandler.Handle(ctx, listQuery)
		},
	}))

	// Register GetEventQuery handler
	getEventHandler := queries_handlers.NewGetEventHandler(orchestrator, logger)
	queryBus.Register(queries.GetEventQuery{}, mw.Wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetEventQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return getEventHandler.Handle(ctx, getQuery)
		},
	}))

	// Register GetCommentsQuery handler
	getCommentsHandler := queries_handlers.NewGetCommentsHandler(orchestrator, logger)
	queryBus.Register(queries.GetCommentsQuery{}, mw.Wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetCommentsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return getCommentsHandler.Handle(ctx, getQuery)
		},
	}))

	// Register GetHierarchyQuery handler
	getHierarchyHandler := queries_handlers.NewGetHierarchyHandler(orchestrator, logger)
	queryBus.Register(queries.GetHierarchyQuery{}, mw.Wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetHierarchyQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return getHierarchyHandler.Handle(ctx, getQuery)
		},
	}))

	// Register GetProfileQuery handler
	getProfileHandler := queries_handlers.NewGetProfileHandler(orchestrator, logger)
	queryBus.Register(queries.GetProfileQuery{}, mw.Wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetProfileQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return getProfileHandler.Handle(ctx, getQuery)
		},
	}))

	// Register SearchPublicationsQuery handler
	searchHandler := queries_handlers.NewSearchPublicationsHandler(orchestrator, logger)
	queryBus.Register(queries.SearchPublicationsQuery{}, mw.Wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			searchQuery, ok := query.(queries.SearchPublicationsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return searchHandler.Handle(ctx, searchQuery)
		},
	}))

	return queryBus
}

// metricsAdapter adapts observability.Metrics to the query bus Metrics interface
type metricsAdapter struct {
	metrics *observability.Metrics
}

func (a *metricsAdapter) StartTimer(metric, label string) querybus.Timer {
	return a.metrics.StartTimer(metric, label)
}

func (a *metricsAdapter) Increment(metric, label string) {
	a.metrics.Increment(metric, label)
}

// zapLoggerAdapter adapts zap.Logger to the command bus Logger interface
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, a.fieldsToZap(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, a.fieldsToZap(keysAndValues...)...)
}

func (a *zapLoggerAdapter) fieldsToZap(keysAndValues ...interface{}) []zap.Field {
	var zapFields []zap.Field
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, _ := keysAndValues[i].(string)
		zapFields = append(zapFields, zap.Any(key, keysAndValues[i+1]))
	}
	return zapFields
}
