package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"go.uber.org/zap"

	"octavo/application/ports"
	"octavo/infrastructure/cache"
	"octavo/infrastructure/render"
)

// DocumentService turns composed documents into finished files: media gets
// inlined, the converter is called, and the result is cached under its
// content digest so unchanged publications never convert twice.
type DocumentService struct {
	embedder *Embedder
	renderer ports.Renderer
	caches   *cache.Tiered
	logger   *zap.Logger
}

// NewDocumentService creates a document service
func NewDocumentService(
	embedder *Embedder,
	renderer ports.Renderer,
	caches *cache.Tiered,
	logger *zap.Logger,
) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		embedder: embedder,
		renderer: renderer,
		caches:   caches,
		logger:   logger,
	}
}

// RendererState reports the converter circuit state when the renderer
// exposes one.
func (s *DocumentService) RendererState() string {
	if r, ok := s.renderer.(interface{ BreakerState() string }); ok {
		return r.BreakerState()
	}
	return "unknown"
}

// Render converts a document to the requested format and returns the bytes
// with their media type. The derived cache is keyed by the digest of the
// embedded content plus the format, so two addresses resolving to identical
// content share one conversion.
func (s *DocumentService) Render(ctx context.Context, doc Document, format string) ([]byte, string, error) {
	// A dropped client connection does not cancel an in-flight conversion;
	// the embed and render budgets are the only deadlines.
	ctx = context.WithoutCancel(ctx)
	embedded := s.embedder.Embed(ctx, doc.Content)

	sum := sha256.Sum256([]byte(embedded))
	key := hex.EncodeToString(sum[:]) + ":" + format
	if data, mediaType, ok := s.caches.Derived.GetExtra(key); ok {
		return data, mediaType, nil
	}

	data, err := s.renderer.Convert(ctx, format, ports.RenderRequest{
		Content: embedded,
		Title:   doc.Title,
		Author:  doc.Author,
		Image:   doc.Image,
	})
	if err != nil {
		return nil, "", err
	}

	mediaType := render.MediaTypeFor(format)
	s.caches.Derived.SetWithExtra(key, data, mediaType)
	s.logger.Debug("Document converted",
		zap.String("format", format),
		zap.String("title", doc.Title),
		zap.Int("bytes", len(data)),
	)
	return data, mediaType, nil
}

// ProxyImage fetches and recompresses a remote image for the proxy
// endpoint, caching the processed bytes by URL digest.
func (s *DocumentService) ProxyImage(ctx context.Context, rawURL string) ([]byte, string, error) {
	sum := sha256.Sum256([]byte(rawURL))
	key := hex.EncodeToString(sum[:])
	if data, mediaType, ok := s.caches.Media.GetExtra(key); ok {
		return data, mediaType, nil
	}

	data, mediaType, err := s.embedder.FetchImage(context.WithoutCancel(ctx), rawURL)
	if err != nil {
		return nil, "", err
	}
	s.caches.Media.SetWithExtra(key, data, mediaType)
	return data, mediaType, nil
}
