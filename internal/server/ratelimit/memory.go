package ratelimit

import (
	"sync"
	"time"
)

// memoryLimiter is a token-bucket limiter. Each key costs O(1) space:
// a token count and the time it was last refilled.
type memoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*tokenBucket
	config  Config

	cleanupT *time.Ticker
	stopCh   chan struct{}
}

type tokenBucket struct {
	tokens     float64
	lastUpdate time.Time
}

// NewMemoryLimiter creates an in-memory token-bucket limiter. Call Stop when
// the limiter is no longer needed to end its cleanup goroutine.
func NewMemoryLimiter(cfg Config) Stoppable {
	l := &memoryLimiter{
		buckets:  make(map[string]*tokenBucket),
		config:   cfg,
		cleanupT: time.NewTicker(cfg.Window * 2),
		stopCh:   make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow consumes one token for the key, refilling at Requests/Window.
func (l *memoryLimiter) Allow(key string) bool {
	if !l.config.Enabled {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	capacity := float64(l.config.Requests)
	fillRate := capacity / l.config.Window.Seconds()

	b, exists := l.buckets[key]
	if !exists {
		l.buckets[key] = &tokenBucket{tokens: capacity - 1, lastUpdate: now}
		return true
	}

	elapsed := now.Sub(b.lastUpdate).Seconds()
	b.tokens = min(capacity, b.tokens+elapsed*fillRate)
	b.lastUpdate = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Reset clears the bucket for the key.
func (l *memoryLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

// Stop ends the cleanup goroutine.
func (l *memoryLimiter) Stop() {
	close(l.stopCh)
}

func (l *memoryLimiter) cleanupLoop() {
	for {
		select {
		case <-l.cleanupT.C:
			l.dropStale()
		case <-l.stopCh:
			l.cleanupT.Stop()
			return
		}
	}
}

// dropStale removes buckets idle for two full windows; by then they are back
// at capacity and carry no state worth keeping.
func (l *memoryLimiter) dropStale() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	staleThreshold := l.config.Window * 2
	for key, b := range l.buckets {
		if now.Sub(b.lastUpdate) > staleThreshold {
			delete(l.buckets, key)
		}
	}
}
