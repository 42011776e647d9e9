package ratelimit_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"octavo/pkg/ratelimit"
)

func TestLimiterAllowsBurstThenDenies(t *testing.T) {
	l := ratelimit.New(3, time.Hour)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("client"), "request %d should fit the burst", i+1)
	}
	assert.False(t, l.Allow("client"), "a drained bucket must deny")
}

func TestLimiterRefillsOverTime(t *testing.T) {
	l := ratelimit.New(1, 100*time.Millisecond)

	assert.True(t, l.Allow("client"))
	assert.False(t, l.Allow("client"))

	time.Sleep(150 * time.Millisecond)
	assert.True(t, l.Allow("client"), "a refill interval should return a token")
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	l := ratelimit.New(1, time.Hour)

	assert.True(t, l.Allow("one"))
	assert.False(t, l.Allow("one"))
	assert.True(t, l.Allow("two"), "a different client keeps its own bucket")
}
