package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"octavo/application/ports"
	"octavo/infrastructure/config"
	apperrors "octavo/pkg/errors"
)

// mediaDirectivePattern matches AsciiDoc media macros: image::url[attrs]
// for block form, image:url[attrs] for inline, and the video and audio
// equivalents. The URL runs up to the attribute bracket and cannot contain
// whitespace.
var mediaDirectivePattern = regexp.MustCompile(`\b(image|video|audio)(::?)([^\s\[\]]+)\[([^\]]*)\]`)

// Streaming platforms serve players, not files; their URLs stay external.
var streamingHosts = []string{
	"youtube.com",
	"youtu.be",
	"vimeo.com",
	"dailymotion.com",
	"twitch.tv",
	"soundcloud.com",
}

// Embedder inlines external media referenced by content directives as
// base64 data URIs so converted documents are self-contained. Fetch
// failures, oversize responses and streaming hosts all leave the original
// URL in place.
type Embedder struct {
	cfg       config.MediaConfig
	client    *http.Client
	processor ports.ImageProcessor
	logger    *zap.Logger
}

// NewEmbedder creates a media embedder. The processor recompresses images
// before inlining and may be nil to embed originals.
func NewEmbedder(cfg config.MediaConfig, processor ports.ImageProcessor, logger *zap.Logger) *Embedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Embedder{
		cfg:       cfg,
		client:    &http.Client{},
		processor: processor,
		logger:    logger,
	}
}

// Embed rewrites every embeddable media directive in content to carry a
// data URI, preserving the directive's delimiter style and attribute list.
// The content is rebuilt from the parsed directives rather than patched by
// substring search, so repeated URLs with differing attributes stay intact.
// When the embedded document exceeds the size ceiling it is reassembled
// with images only and audio and video keep their external URLs.
func (e *Embedder) Embed(ctx context.Context, content string) string {
	matches := mediaDirectivePattern.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return content
	}

	type span struct {
		start, end int
		text       string
		image      bool
	}

	dataURIs := make(map[string]string)
	spans := make([]span, 0, len(matches))
	for _, m := range matches {
		class := content[m[2]:m[3]]
		delimiter := content[m[4]:m[5]]
		url := content[m[6]:m[7]]
		attrs := content[m[8]:m[9]]

		key := class + "\n" + url
		uri, seen := dataURIs[key]
		if !seen {
			uri = e.inline(ctx, class, url)
			dataURIs[key] = uri
		}
		if uri == "" {
			continue
		}
		spans = append(spans, span{
			start: m[0],
			end:   m[1],
			text:  class + delimiter + uri + "[" + attrs + "]",
			image: class == "image",
		})
	}
	if len(spans) == 0 {
		return content
	}

	assemble := func(imagesOnly bool) string {
		var b strings.Builder
		b.Grow(len(content))
		last := 0
		for _, s := range spans {
			if imagesOnly && !s.image {
				continue
			}
			b.WriteString(content[last:s.start])
			b.WriteString(s.text)
			last = s.end
		}
		b.WriteString(content[last:])
		return b.String()
	}

	out := assemble(false)
	if int64(len(out)) > e.cfg.MaxEmbedBytes {
		e.logger.Warn("Embedded document exceeds size ceiling, keeping audio and video external",
			zap.Int("embedded_bytes", len(out)),
			zap.Int64("limit", e.cfg.MaxEmbedBytes))
		out = assemble(true)
	}
	return out
}

// FetchImage downloads a single image under the embedder's size ceiling and
// recompression rules. Used by the image proxy endpoint.
func (e *Embedder) FetchImage(ctx context.Context, rawURL string) ([]byte, string, error) {
	data, mediaType, err := e.fetch(ctx, "image", rawURL)
	if err != nil {
		return nil, "", err
	}
	if e.processor != nil {
		data, mediaType = e.processor.Process(data, mediaType)
	}
	return data, mediaType, nil
}

// inline fetches one URL and returns its data URI, or "" when the original
// URL should stay in place.
func (e *Embedder) inline(ctx context.Context, class, rawURL string) string {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return ""
	}
	for _, host := range streamingHosts {
		if strings.Contains(rawURL, host) {
			e.logger.Debug("Skipping streaming host", zap.String("url", rawURL))
			return ""
		}
	}

	data, mediaType, err := e.fetch(ctx, class, rawURL)
	if err != nil {
		e.logger.Debug("Media fetch failed, keeping external URL",
			zap.String("url", rawURL),
			zap.Error(err))
		return ""
	}
	if class == "image" && e.processor != nil {
		data, mediaType = e.processor.Process(data, mediaType)
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// fetch downloads a URL within the per-type time budget and the absolute
// size ceiling. The ceiling is checked against the declared content length
// and again against the bytes actually read.
func (e *Embedder) fetch(ctx context.Context, class, rawURL string) ([]byte, string, error) {
	budget := e.cfg.ImageFetchTimeout
	if class != "image" {
		budget = e.cfg.AVFetchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, "", apperrors.NewUpstreamTimeoutError("media fetch", err)
		}
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if resp.ContentLength > e.cfg.MaxEmbedBytes {
		return nil, "", apperrors.NewOversizeError(resp.ContentLength, e.cfg.MaxEmbedBytes)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, e.cfg.MaxEmbedBytes+1))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, "", apperrors.NewUpstreamTimeoutError("media fetch", err)
		}
		return nil, "", err
	}
	if int64(len(data)) > e.cfg.MaxEmbedBytes {
		return nil, "", apperrors.NewOversizeError(int64(len(data)), e.cfg.MaxEmbedBytes)
	}
	return data, detectMediaType(resp.Header.Get("Content-Type"), rawURL), nil
}

// detectMediaType prefers the response header and falls back to the URL
// extension.
func detectMediaType(header, rawURL string) string {
	if header != "" {
		if parsed, _, err := mime.ParseMediaType(header); err == nil &&
			parsed != "" && parsed != "application/octet-stream" {
			return parsed
		}
	}
	if byExt := extensionMediaType(rawURL); byExt != "" {
		return byExt
	}
	return "application/octet-stream"
}

func extensionMediaType(rawURL string) string {
	trimmed := rawURL
	for _, sep := range []string{"?", "#"} {
		if i := strings.Index(trimmed, sep); i >= 0 {
			trimmed = trimmed[:i]
		}
	}
	switch strings.ToLower(path.Ext(trimmed)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mp3":
		return "audio/mpeg"
	case ".ogg":
		return "audio/ogg"
	case ".wav":
		return "audio/wav"
	}
	return ""
}
