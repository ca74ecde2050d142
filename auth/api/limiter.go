package api

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type (
	// Throttle configures how many login attempts a client can make
	Throttle struct {
		PerMinute int
		Burst     int
	}

	limiterRegistry struct {
		mu       sync.Mutex
		limiters map[string]*clientLimiter
		every    rate.Limit
		burst    int
		capacity int
		now      func() time.Time
	}

	clientLimiter struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}
)

const (
	// the registry never tracks more clients than this, idle ones go
	// first, then the least recently seen
	maxTrackedClients = 4096
	clientIdleTimeout = 10 * time.Minute
)

func newLimiterRegistry(t Throttle) *limiterRegistry {
	return &limiterRegistry{
		limiters: make(map[string]*clientLimiter),
		every:    rate.Every(time.Minute / time.Duration(t.PerMinute)),
		burst:    t.Burst,
		capacity: maxTrackedClients,
		now:      time.Now,
	}
}

// Allow reports whether the client behind r may attempt another login
func (l *limiterRegistry) Allow(r *http.Request) bool {
	key := clientAddr(r)
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	cl, found := l.limiters[key]
	if !found {
		if len(l.limiters) >= l.capacity {
			l.prune(now)
		}
		if len(l.limiters) >= l.capacity {
			l.evictOldest()
		}
		cl = &clientLimiter{limiter: rate.NewLimiter(l.every, l.burst)}
		l.limiters[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

func (l *limiterRegistry) prune(now time.Time) {
	for k, cl := range l.limiters {
		if now.Sub(cl.lastSeen) > clientIdleTimeout {
			delete(l.limiters, k)
		}
	}
}

func (l *limiterRegistry) evictOldest() {
	var oldest string
	var oldestSeen time.Time
	first := true
	for k, cl := range l.limiters {
		if first || cl.lastSeen.Before(oldestSeen) {
			oldest, oldestSeen, first = k, cl.lastSeen, false
		}
	}
	if !first {
		delete(l.limiters, oldest)
	}
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
