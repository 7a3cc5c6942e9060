package rate

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per key and forgets keys idle for longer
// than Expiry.
type Limiter struct {
	Expiry  time.Duration
	Burst   int
	Every   time.Duration
	clients map[string]*clientLimiter
	mu      sync.Mutex
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewLimiter starts the eviction loop, which stops when ctx is done.
func NewLimiter(ctx context.Context, burst int, every time.Duration, expiry time.Duration) *Limiter {
	lm := &Limiter{
		Expiry:  expiry,
		Burst:   burst,
		Every:   every,
		clients: make(map[string]*clientLimiter),
	}
	go lm.refresh(ctx)
	return lm
}

func (l *Limiter) Check(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cl, ok := l.clients[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Every(l.Every), l.Burst)}
		l.clients[key] = cl
	}
	cl.lastAccess = time.Now()
	return cl.limiter.Allow()
}

func (l *Limiter) refresh(ctx context.Context) {
	interval := l.Expiry
	if interval > time.Minute || interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.evict()
		}
	}
}

func (l *Limiter) evict() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, v := range l.clients {
		if time.Since(v.lastAccess) > l.Expiry {
			delete(l.clients, key)
		}
	}
}
