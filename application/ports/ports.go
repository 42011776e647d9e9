// Package ports declares the collaborator interfaces the application layer
// depends on. Infrastructure provides the implementations; handlers and
// services only see these contracts.
package ports

import (
	"context"

	"github.com/nbd-wtf/go-nostr"
)

// Fetcher is the relay multiplexer as the application sees it. Every method
// fans the filter set out across the relay URLs, deduplicates by event id,
// and resolves on the earliest of all relays ending, an early-exit quorum,
// or the method's time budget. The methods differ only in their termination
// profile.
type Fetcher interface {
	// FetchItem looks up a small fixed result; the first relay to answer
	// with a match settles the call.
	FetchItem(ctx context.Context, filters nostr.Filters, relayURLs []string) []*nostr.Event

	// FetchProfile is FetchItem with a tighter budget for kind-0 lookups.
	FetchProfile(ctx context.Context, filters nostr.Filters, relayURLs []string) []*nostr.Event

	// FetchList scales its budget and early-exit quorum with the requested
	// limit.
	FetchList(ctx context.Context, filters nostr.Filters, relayURLs []string, limit int) []*nostr.Event

	// FetchLevel scales its budget with the number of child references of
	// one hierarchy level.
	FetchLevel(ctx context.Context, filters nostr.Filters, relayURLs []string, children int) []*nostr.Event
}

// RenderRequest is the JSON payload for the external converter.
type RenderRequest struct {
	Content string `json:"content"`
	Title   string `json:"title"`
	Author  string `json:"author"`
	Image   string `json:"image,omitempty"`
}

// Renderer converts an assembled document into a derived file. Format is one
// of epub, pdf, html5, docbook5, mobi, azw3.
type Renderer interface {
	Convert(ctx context.Context, format string, req RenderRequest) ([]byte, error)
}

// ImageProcessor recompresses a fetched image before inlining. It returns
// the processed bytes and their media type; on any failure, or when the
// result would not be smaller, it returns the input unchanged.
type ImageProcessor interface {
	Process(data []byte, mediaType string) ([]byte, string)
}

// RelayProbe reports relay reachability for the status endpoint.
type RelayProbe interface {
	CheckAll(ctx context.Context, urls []string) map[string]bool
}
