package relay

import (
	"context"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"go.uber.org/zap"
)

// FetchOptions selects the termination behavior of a fetch. Budget is the
// hard ceiling. With EarlyExit set, the fetch resolves as soon as at least
// one relay has signalled end of stream and MinResults events are admitted.
type FetchOptions struct {
	Budget     time.Duration
	EarlyExit  bool
	MinResults int
}

// signal is one item on the merged stream: an admitted-candidate event or an
// end-of-stream mark for a relay. Subscribe failures surface as end-of-stream
// so a dead relay never stalls termination.
type signal struct {
	event *nostr.Event
	eose  bool
	relay string
}

// Multiplexer fans a filter set out across a relay set and merges results.
type Multiplexer struct {
	pool   Pool
	logger *zap.Logger
}

// NewMultiplexer creates a multiplexer over the given pool.
func NewMultiplexer(pool Pool, logger *zap.Logger) *Multiplexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Multiplexer{pool: pool, logger: logger}
}

// Fetch subscribes to every relay in parallel and returns the deduplicated
// events admitted before the earliest of: every relay signalling end of
// stream, the early-exit condition, or the budget elapsing. Filters pass
// through verbatim. A relay that fails to connect or subscribe counts as
// ended; when every relay fails the result is empty, not an error.
func (m *Multiplexer) Fetch(ctx context.Context, filters nostr.Filters, relayURLs []string, opts FetchOptions) []*nostr.Event {
	if len(relayURLs) == 0 {
		return nil
	}

	budget := opts.Budget
	if budget <= 0 {
		budget = ItemBudget
	}

	// A dropped client connection does not cancel relay work; the budget is
	// the only deadline.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), budget)
	defer cancel()

	started := time.Now()
	signals := make(chan signal)
	for _, url := range relayURLs {
		go m.subscribeRelay(ctx, url, filters, signals)
	}

	var admitted []*nostr.Event
	seen := make(map[string]struct{})
	remaining := len(relayURLs)
	reason := "budget"

loop:
	for {
		select {
		case sig := <-signals:
			if sig.eose {
				remaining--
			} else if _, dup := seen[sig.event.ID]; !dup {
				seen[sig.event.ID] = struct{}{}
				admitted = append(admitted, sig.event)
			}

			if remaining == 0 {
				reason = "all_eose"
				break loop
			}
			if opts.EarlyExit && remaining < len(relayURLs) && len(admitted) >= opts.MinResults {
				reason = "early_exit"
				break loop
			}
		case <-ctx.Done():
			break loop
		}
	}

	m.logger.Debug("Relay fetch resolved",
		zap.Int("relays", len(relayURLs)),
		zap.Int("events", len(admitted)),
		zap.String("reason", reason),
		zap.Duration("elapsed", time.Since(started)),
	)
	return admitted
}

// FetchItem runs a fetch shaped for single-item lookups.
func (m *Multiplexer) FetchItem(ctx context.Context, filters nostr.Filters, relayURLs []string) []*nostr.Event {
	return m.Fetch(ctx, filters, relayURLs, ItemOptions())
}

// FetchProfile runs a fetch shaped for kind-0 profile lookups.
func (m *Multiplexer) FetchProfile(ctx context.Context, filters nostr.Filters, relayURLs []string) []*nostr.Event {
	return m.Fetch(ctx, filters, relayURLs, ProfileOptions())
}

// FetchList runs a fetch whose budget scales with the requested limit.
func (m *Multiplexer) FetchList(ctx context.Context, filters nostr.Filters, relayURLs []string, limit int) []*nostr.Event {
	return m.Fetch(ctx, filters, relayURLs, ListOptions(limit))
}

// FetchLevel runs a fetch whose budget scales with a hierarchy level's child
// reference count.
func (m *Multiplexer) FetchLevel(ctx context.Context, filters nostr.Filters, relayURLs []string, children int) []*nostr.Event {
	return m.Fetch(ctx, filters, relayURLs, LevelOptions(children))
}

// subscribeRelay feeds one relay's stream into the merged channel. Sends are
// abandoned once the fetch context ends, so a resolved fetch never blocks a
// pump. The subscription closes when the fetch resolves.
func (m *Multiplexer) subscribeRelay(ctx context.Context, url string, filters nostr.Filters, signals chan<- signal) {
	send := func(sig signal) {
		select {
		case signals <- sig:
		case <-ctx.Done():
		}
	}

	handle, err := m.pool.EnsureRelay(ctx, url)
	if err != nil {
		m.logger.Debug("Relay connect failed", zap.String("relay", url), zap.Error(err))
		send(signal{eose: true, relay: url})
		return
	}

	sub, err := handle.Subscribe(ctx, filters,
		func(ev *nostr.Event) { send(signal{event: ev, relay: url}) },
		func() { send(signal{eose: true, relay: url}) },
	)
	if err != nil {
		m.logger.Debug("Relay subscribe failed", zap.String("relay", url), zap.Error(err))
		send(signal{eose: true, relay: url})
		return
	}

	<-ctx.Done()
	sub.Close()
}
