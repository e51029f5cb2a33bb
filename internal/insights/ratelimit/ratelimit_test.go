package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLimiter_Allow(t *testing.T) {
	tests := []struct {
		name       string
		perSecond  float64
		burst      int
		key        string
		calls      int
		wantPassed int
	}{
		{
			name:       "all requests within burst",
			perSecond:  1,
			burst:      5,
			key:        "10.0.0.1",
			calls:      5,
			wantPassed: 5,
		},
		{
			name:       "exceed burst",
			perSecond:  0.001,
			burst:      3,
			key:        "10.0.0.2",
			calls:      5,
			wantPassed: 3,
		},
		{
			name:       "single request",
			perSecond:  1,
			burst:      10,
			key:        "10.0.0.3",
			calls:      1,
			wantPassed: 1,
		},
		{
			name:       "zero burst blocks all",
			perSecond:  1,
			burst:      0,
			key:        "10.0.0.4",
			calls:      3,
			wantPassed: 0,
		},
		{
			name:       "empty key",
			perSecond:  0.001,
			burst:      2,
			key:        "",
			calls:      3,
			wantPassed: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.perSecond, tt.burst)
			defer l.Close()

			now := time.Now()
			passed := 0
			for range tt.calls {
				if l.allowAt(tt.key, now) {
					passed++
				}
			}

			if passed != tt.wantPassed {
				t.Errorf("passed = %d, want %d", passed, tt.wantPassed)
			}
		})
	}
}

func TestLimiter_Refill(t *testing.T) {
	l := New(2, 1)
	defer l.Close()

	now := time.Now()
	if !l.allowAt("ip", now) {
		t.Fatal("first request should pass")
	}
	if l.allowAt("ip", now) {
		t.Fatal("second immediate request should be limited")
	}
	if !l.allowAt("ip", now.Add(500*time.Millisecond)) {
		t.Error("request after refill interval should pass")
	}
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	l := New(0.001, 1)
	defer l.Close()

	now := time.Now()
	if !l.allowAt("a", now) || !l.allowAt("b", now) {
		t.Fatal("each key should get its own bucket")
	}
	if l.allowAt("a", now) {
		t.Error("key a should be limited")
	}
}

func TestLimiter_Evict(t *testing.T) {
	l := New(1, 1)
	defer l.Close()

	now := time.Now()
	l.allowAt("stale", now.Add(-2*idleTTL))
	l.allowAt("fresh", now)

	l.evict(now)

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.clients["stale"]; ok {
		t.Error("stale client should be evicted")
	}
	if _, ok := l.clients["fresh"]; !ok {
		t.Error("fresh client should be kept")
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	l := New(0.001, 50)
	defer l.Close()

	var passed atomic.Int32
	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("shared") {
				passed.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := passed.Load(); got != 50 {
		t.Errorf("passed = %d, want 50", got)
	}
}
