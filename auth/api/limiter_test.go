package api

import (
	"fmt"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiterRegistry(t *testing.T) {
	now := time.Unix(1700000000, 0)
	l := newLimiterRegistry(Throttle{PerMinute: 60, Burst: 1})
	l.now = func() time.Time { return now }

	first := httptest.NewRequest("POST", "/api/login", nil)
	first.RemoteAddr = "10.0.0.1:1234"
	other := httptest.NewRequest("POST", "/api/login", nil)
	other.RemoteAddr = "10.0.0.2:1234"

	if !l.Allow(first) {
		t.Fatal("first attempt should be allowed")
	}
	first.RemoteAddr = "10.0.0.1:5555"
	if l.Allow(first) {
		t.Fatal("second attempt from the same host should be throttled")
	}
	if !l.Allow(other) {
		t.Fatal("clients must not share a limiter")
	}
	now = now.Add(time.Second)
	if !l.Allow(first) {
		t.Fatal("limiter should refill after one interval")
	}

	now = now.Add(clientIdleTimeout + time.Second)
	l.prune(now)
	if len(l.limiters) != 0 {
		t.Fatalf("idle clients should be forgotten, got %v", len(l.limiters))
	}
}

func TestLimiterRegistryCapacity(t *testing.T) {
	now := time.Unix(1700000000, 0)
	l := newLimiterRegistry(Throttle{PerMinute: 60, Burst: 1})
	l.now = func() time.Time { return now }
	l.capacity = 3

	req := httptest.NewRequest("POST", "/api/login", nil)
	for i := 0; i < 3*l.capacity; i++ {
		req.RemoteAddr = fmt.Sprintf("10.0.%v.%v:1234", i/256, i%256)
		l.Allow(req)
		now = now.Add(time.Millisecond)
		if len(l.limiters) > l.capacity {
			t.Fatalf("registry should hold at most %v clients, got %v", l.capacity, len(l.limiters))
		}
	}
	if _, found := l.limiters["10.0.0.0"]; found {
		t.Fatal("least recently seen client should have been evicted")
	}
	last := fmt.Sprintf("10.0.0.%v", 3*l.capacity-1)
	if _, found := l.limiters[last]; !found {
		t.Fatal("most recent client should still be tracked")
	}
}
