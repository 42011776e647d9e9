package relay

import (
	"context"

	"github.com/nbd-wtf/go-nostr"
	"go.uber.org/zap"
)

// Probe checks relay reachability for the status endpoint. A relay passes
// when a minimal subscription yields either a stored event or an end of
// stream within the probe budget.
type Probe struct {
	pool   Pool
	logger *zap.Logger
}

// NewProbe creates a probe over the shared pool.
func NewProbe(pool Pool, logger *zap.Logger) *Probe {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Probe{pool: pool, logger: logger}
}

// Check reports whether the relay answered within the probe budget.
func (p *Probe) Check(ctx context.Context, url string) bool {
	ctx, cancel := context.WithTimeout(ctx, ProbeBudget)
	defer cancel()

	handle, err := p.pool.EnsureRelay(ctx, url)
	if err != nil {
		p.logger.Debug("Relay probe connect failed", zap.String("relay", url), zap.Error(err))
		return false
	}

	answered := make(chan struct{}, 2)
	mark := func() {
		select {
		case answered <- struct{}{}:
		default:
		}
	}

	sub, err := handle.Subscribe(ctx, nostr.Filters{{Limit: 1}},
		func(*nostr.Event) { mark() },
		func() { mark() },
	)
	if err != nil {
		p.logger.Debug("Relay probe subscribe failed", zap.String("relay", url), zap.Error(err))
		return false
	}
	defer sub.Close()

	select {
	case <-answered:
		return true
	case <-ctx.Done():
		return false
	}
}

// CheckAll probes every relay concurrently and returns url to reachability.
func (p *Probe) CheckAll(ctx context.Context, urls []string) map[string]bool {
	results := make(map[string]bool, len(urls))
	type outcome struct {
		url string
		ok  bool
	}
	ch := make(chan outcome, len(urls))
	for _, url := range urls {
		go func(u string) {
			ch <- outcome{url: u, ok: p.Check(ctx, u)}
		}(url)
	}
	for range urls {
		o := <-ch
		results[o.url] = o.ok
	}
	return results
}
