package relay

import (
	"context"
	"sync"

	"github.com/nbd-wtf/go-nostr"
	"go.uber.org/zap"

	apperrors "octavo/pkg/errors"
)

// NostrPool adapts a nostr.SimplePool to the Pool interface. The underlying
// pool is created on first use and closed exactly once; EnsureRelay after
// Close reports an error instead of reviving connections.
type NostrPool struct {
	mu     sync.Mutex
	pool   *nostr.SimplePool
	cancel context.CancelFunc
	closed bool
	logger *zap.Logger
}

// NewNostrPool creates an empty pool. No connection is opened until the
// first EnsureRelay call.
func NewNostrPool(logger *zap.Logger) *NostrPool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NostrPool{logger: logger}
}

// EnsureRelay connects to the relay or returns the pooled connection.
func (p *NostrPool) EnsureRelay(ctx context.Context, url string) (Handle, error) {
	pool, err := p.simplePool()
	if err != nil {
		return nil, err
	}

	rl, err := pool.EnsureRelay(url)
	if err != nil {
		return nil, err
	}
	return &nostrHandle{relay: rl}, nil
}

func (p *NostrPool) simplePool() (*nostr.SimplePool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, apperrors.NewInternalError("relay pool is closed")
	}
	if p.pool == nil {
		ctx, cancel := context.WithCancel(context.Background())
		p.pool = nostr.NewSimplePool(ctx)
		p.cancel = cancel
		p.logger.Info("Relay pool initialized")
	}
	return p.pool, nil
}

// Close shuts down every pooled connection. Safe to call more than once.
func (p *NostrPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	if p.cancel != nil {
		p.cancel()
		p.logger.Info("Relay pool closed")
	}
}

// nostrHandle wraps one pooled relay connection.
type nostrHandle struct {
	relay *nostr.Relay
}

func (h *nostrHandle) URL() string {
	return h.relay.URL
}

func (h *nostrHandle) Status() HandleStatus {
	if h.relay == nil {
		return HandleClosed
	}
	if h.relay.IsConnected() {
		return HandleConnected
	}
	return HandlePending
}

// Subscribe opens a subscription and pumps it until the relay signals the end
// of stored events, the stream closes, or the context ends. onEOSE fires at
// most once; a dropped stream counts as end of stream.
func (h *nostrHandle) Subscribe(ctx context.Context, filters nostr.Filters, onEvent func(*nostr.Event), onEOSE func()) (Subscription, error) {
	sub, err := h.relay.Subscribe(ctx, filters)
	if err != nil {
		return nil, err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-sub.EndOfStoredEvents:
				onEOSE()
				return
			case ev, ok := <-sub.Events:
				if !ok {
					onEOSE()
					return
				}
				if ev != nil {
					onEvent(ev)
				}
			}
		}
	}()

	return &nostrSubscription{sub: sub}, nil
}

// nostrSubscription makes Unsub idempotent.
type nostrSubscription struct {
	sub  *nostr.Subscription
	once sync.Once
}

func (s *nostrSubscription) Close() {
	s.once.Do(s.sub.Unsub)
}
