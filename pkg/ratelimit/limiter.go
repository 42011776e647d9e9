// Package ratelimit implements the token bucket in front of the conversion
// endpoints. A conversion occupies the external converter for seconds to
// minutes, so each client gets a small burst and a steady refill rather than
// a raw requests-per-second bound.
package ratelimit

import (
	"sync"
	"time"
)

// Idle buckets are dropped once they would have fully refilled anyway.
const sweepEvery = 5 * time.Minute

// Limiter is a keyed token bucket. A fresh key starts with a full burst;
// every refill interval returns one token up to the burst ceiling.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	burst   int
	refill  time.Duration
	swept   time.Time
}

type bucket struct {
	tokens int
	topped time.Time
}

// New creates a limiter allowing burst conversions up front and one more per
// refill interval.
func New(burst int, refill time.Duration) *Limiter {
	if burst < 1 {
		burst = 1
	}
	if refill <= 0 {
		refill = time.Second
	}
	return &Limiter{
		buckets: make(map[string]*bucket),
		burst:   burst,
		refill:  refill,
		swept:   time.Now(),
	}
}

// Allow reports whether the keyed client may start another conversion now,
// consuming a token when it may.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.sweep(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.burst, topped: now}
		l.buckets[key] = b
	}

	if b.tokens < l.burst {
		if earned := int(now.Sub(b.topped) / l.refill); earned > 0 {
			b.tokens += earned
			// Advancing by whole intervals keeps the fractional remainder
			// counting toward the next token.
			b.topped = b.topped.Add(time.Duration(earned) * l.refill)
			if b.tokens >= l.burst {
				b.tokens = l.burst
				b.topped = now
			}
		}
	} else {
		b.topped = now
	}

	if b.tokens == 0 {
		return false
	}
	b.tokens--
	return true
}

// sweep drops buckets idle long enough to be full again. Caller holds the
// lock.
func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.swept) < sweepEvery {
		return
	}
	idle := time.Duration(l.burst) * l.refill
	for key, b := range l.buckets {
		if now.Sub(b.topped) > idle {
			delete(l.buckets, key)
		}
	}
	l.swept = now
}
