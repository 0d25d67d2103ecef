package ratelimiter

import (
	"sync"
	"time"
)

// bucket is a token bucket for a single identity
type bucket struct {
	tokens     float64
	lastRefill time.Time
	lastSeen   time.Time
}

// UserRateLimiter keeps one token bucket per identity and drops buckets idle longer than expiration
type UserRateLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	rate       float64 // tokens per second
	capacity   float64
	expiration time.Duration
	now        func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a limiter refilling rate tokens per second up to capacity.
// Idle identities are swept every expiration interval.
func New(rate, capacity float64, expiration time.Duration) *UserRateLimiter {
	rl := &UserRateLimiter{
		buckets:    make(map[string]*bucket),
		rate:       rate,
		capacity:   capacity,
		expiration: expiration,
		now:        time.Now,
		stop:       make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

func (rl *UserRateLimiter) Allow(identity string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[identity]
	if !ok {
		b = &bucket{tokens: rl.capacity, lastRefill: now}
		rl.buckets[identity] = b
	}
	b.lastSeen = now

	b.tokens += now.Sub(b.lastRefill).Seconds() * rl.rate
	if b.tokens > rl.capacity {
		b.tokens = rl.capacity
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

func (rl *UserRateLimiter) sweepLoop() {
	ticker := time.NewTicker(rl.expiration)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stop:
			return
		}
	}
}

func (rl *UserRateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.expiration)
	for id, b := range rl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(rl.buckets, id)
		}
	}
}

func (rl *UserRateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

// Stop terminates the sweeper. Safe to call more than once.
func (rl *UserRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func Rps10() *UserRateLimiter {
	return New(10, 10, time.Hour)
}

func OnceInSecond() *UserRateLimiter {
	return New(1, 1, time.Hour)
}
