package fetch

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// RateLimiter spaces out requests to the same host.
type RateLimiter struct {
	last         map[string]time.Time
	mu           sync.Mutex
	defaultDelay time.Duration
	log          *logrus.Entry
}

// NewRateLimiter creates a RateLimiter. defaultDelay applies when ApplyDelay gets a non-positive delay.
func NewRateLimiter(defaultDelay time.Duration, log *logrus.Entry) *RateLimiter {
	return &RateLimiter{
		last:         make(map[string]time.Time),
		defaultDelay: defaultDelay,
		log:          log,
	}
}

// ApplyDelay waits until minDelay (+/- 10% jitter) has passed since the last request to host,
// returning early if ctx is done.
func (rl *RateLimiter) ApplyDelay(ctx context.Context, host string, minDelay time.Duration) {
	if minDelay <= 0 {
		minDelay = rl.defaultDelay
	}
	if minDelay <= 0 {
		return
	}

	rl.mu.Lock()
	lastReq, ok := rl.last[host]
	rl.mu.Unlock()
	if !ok {
		return
	}

	elapsed := time.Since(lastReq)
	if elapsed >= minDelay {
		return
	}

	wait := minDelay - elapsed
	if window := int64(wait) / 5; window > 0 {
		wait += time.Duration(rand.Int63n(window)) - (wait / 10)
	}
	if wait <= 0 {
		return
	}

	rl.log.WithFields(logrus.Fields{"host": host, "sleep": wait, "required_delay": minDelay}).Debug("Rate limit applying sleep")
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// UpdateLastRequestTime records now as the last request time for host.
func (rl *RateLimiter) UpdateLastRequestTime(host string) {
	rl.mu.Lock()
	rl.last[host] = time.Now()
	rl.mu.Unlock()
}
