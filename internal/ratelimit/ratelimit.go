// Package ratelimit provides a keyed token-bucket limiter. The HTTP layer
// uses it to throttle movie selection per client address.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultIdleTTL is how long a key may go unused before its bucket is evicted.
const DefaultIdleTTL = 10 * time.Minute

// KeyedRateLimiter manages per-key rate limiting.
// Each unique key gets its own independent bucket.
type KeyedRateLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*entry
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	now      func() time.Time

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New creates a keyed limiter allowing rps requests per second with the given
// burst. Idle buckets are swept every idleTTL; zero means DefaultIdleTTL.
func New(rps float64, burst int, idleTTL time.Duration) *KeyedRateLimiter {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}

	krl := &KeyedRateLimiter{
		limiters: make(map[string]*entry),
		limit:    rate.Limit(rps),
		burst:    burst,
		idleTTL:  idleTTL,
		now:      time.Now,
		done:     make(chan struct{}),
	}

	krl.wg.Add(1)
	go krl.cleanup()

	return krl
}

// PerMinute creates a limiter expressed in requests per minute.
func PerMinute(n, burst int) *KeyedRateLimiter {
	return New(float64(n)/60, burst, 0)
}

// Allow reports whether a request for key may proceed now. It never blocks.
func (krl *KeyedRateLimiter) Allow(key string) bool {
	return krl.getLimiter(key).AllowN(krl.now(), 1)
}

// Wait blocks until a request for key is allowed or ctx is done.
func (krl *KeyedRateLimiter) Wait(ctx context.Context, key string) error {
	return krl.getLimiter(key).Wait(ctx)
}

// RetryAfter estimates how long key must wait for its next token.
func (krl *KeyedRateLimiter) RetryAfter(key string) time.Duration {
	r := krl.getLimiter(key).ReserveN(krl.now(), 1)
	defer r.CancelAt(krl.now())
	return r.DelayFrom(krl.now())
}

// Len returns the number of tracked keys.
func (krl *KeyedRateLimiter) Len() int {
	krl.mu.RLock()
	defer krl.mu.RUnlock()
	return len(krl.limiters)
}

func (krl *KeyedRateLimiter) getLimiter(key string) *rate.Limiter {
	now := krl.now()

	krl.mu.RLock()
	e, exists := krl.limiters[key]
	krl.mu.RUnlock()

	if exists {
		krl.mu.Lock()
		e.lastSeen = now
		krl.mu.Unlock()
		return e.limiter
	}

	krl.mu.Lock()
	defer krl.mu.Unlock()

	// Double-check after acquiring write lock
	if e, exists = krl.limiters[key]; exists {
		e.lastSeen = now
		return e.limiter
	}

	e = &entry{limiter: rate.NewLimiter(krl.limit, krl.burst), lastSeen: now}
	krl.limiters[key] = e
	return e.limiter
}

// sweep drops buckets idle for longer than idleTTL.
func (krl *KeyedRateLimiter) sweep() int {
	cutoff := krl.now().Add(-krl.idleTTL)

	krl.mu.Lock()
	defer krl.mu.Unlock()

	removed := 0
	for key, e := range krl.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(krl.limiters, key)
			removed++
		}
	}
	return removed
}

// Stop shuts down the cleanup goroutine.
func (krl *KeyedRateLimiter) Stop() {
	krl.stopOnce.Do(func() {
		close(krl.done)
	})
	krl.wg.Wait()
}

func (krl *KeyedRateLimiter) cleanup() {
	defer krl.wg.Done()

	ticker := time.NewTicker(krl.idleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-krl.done:
			return
		case <-ticker.C:
			krl.sweep()
		}
	}
}
