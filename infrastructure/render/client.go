// Package render calls the external document converter that turns
// assembled publications into downloadable formats.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"octavo/application/ports"
	"octavo/infrastructure/config"
	apperrors "octavo/pkg/errors"
)

// Output formats the converter understands.
const (
	FormatEPUB     = "epub"
	FormatPDF      = "pdf"
	FormatHTML5    = "html5"
	FormatDocBook5 = "docbook5"
	FormatMobi     = "mobi"
	FormatAZW3     = "azw3"
)

// SupportedFormats lists the output formats in display order.
func SupportedFormats() []string {
	return []string{FormatEPUB, FormatPDF, FormatHTML5, FormatDocBook5, FormatMobi, FormatAZW3}
}

// IsSupportedFormat reports whether the converter can produce the format.
func IsSupportedFormat(format string) bool {
	switch format {
	case FormatEPUB, FormatPDF, FormatHTML5, FormatDocBook5, FormatMobi, FormatAZW3:
		return true
	}
	return false
}

// Mobile e-reader formats shell out to a slower toolchain on the converter
// side and get the longer budget.
func isMobileFormat(format string) bool {
	return format == FormatMobi || format == FormatAZW3
}

// MediaTypeFor returns the response content type for a converted document.
func MediaTypeFor(format string) string {
	switch format {
	case FormatEPUB:
		return "application/epub+zip"
	case FormatPDF:
		return "application/pdf"
	case FormatHTML5:
		return "text/html; charset=utf-8"
	case FormatDocBook5:
		return "application/xml"
	case FormatMobi:
		return "application/x-mobipocket-ebook"
	case FormatAZW3:
		return "application/vnd.amazon.ebook"
	}
	return "application/octet-stream"
}

// FileExtensionFor returns the download filename extension for a format.
func FileExtensionFor(format string) string {
	if format == FormatHTML5 {
		return "html"
	}
	if format == FormatDocBook5 {
		return "xml"
	}
	return format
}

// Client talks to the external document converter over HTTP. One circuit
// breaker guards all formats; a converter that is down fails every format
// alike.
type Client struct {
	baseURL       string
	client        *http.Client
	breaker       *gobreaker.CircuitBreaker
	timeout       time.Duration
	mobileTimeout time.Duration
	logger        *zap.Logger
}

// NewClient creates a renderer client from configuration.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "renderer",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.8
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Renderer circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return &Client{
		baseURL:       strings.TrimRight(cfg.PandocAPIURL, "/"),
		client:        &http.Client{},
		breaker:       breaker,
		timeout:       cfg.RenderTimeout,
		mobileTimeout: cfg.RenderTimeoutMobi,
		logger:        logger,
	}
}

// BreakerState reports the current circuit state for the status page.
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

// Convert renders the document to the requested format and returns the
// produced bytes. Timeouts surface as upstream-timeout errors; a non-200
// response, an empty document and an open breaker all surface as
// render-failed.
func (c *Client) Convert(ctx context.Context, format string, req ports.RenderRequest) ([]byte, error) {
	if !IsSupportedFormat(format) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unsupported output format %q", format))
	}

	budget := c.timeout
	if isMobileFormat(format) {
		budget = c.mobileTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode render request").WithCause(err)
	}

	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.post(ctx, format, body)
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewUpstreamTimeoutError("render "+format, err)
		}
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperrors.NewRenderFailedError(format, err)
	}

	data := result.([]byte)
	c.logger.Debug("Document converted",
		zap.String("format", format),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)))
	return data, nil
}

func (c *Client) post(ctx context.Context, format string, body []byte) ([]byte, error) {
	url := fmt.Sprintf("%s/convert/%s", c.baseURL, format)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewRenderFailedError(format,
			fmt.Errorf("converter returned status %d", resp.StatusCode))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, apperrors.NewRenderFailedError(format,
			errors.New("converter returned an empty document"))
	}
	return data, nil
}
