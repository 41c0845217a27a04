package tool

import (
	"testing"
	"time"
)

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	r := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !r.Allow() {
			t.Fatalf("call %d rejected under limit", i)
		}
	}
	if r.Allow() {
		t.Fatal("call over limit allowed")
	}
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	r := NewRateLimiter(2, time.Minute)
	now := time.Now()
	r.now = func() time.Time { return now }

	if !r.Allow() || !r.Allow() {
		t.Fatal("initial calls rejected")
	}
	if r.Allow() {
		t.Fatal("over limit allowed")
	}

	// Half the window later, still full.
	now = now.Add(30 * time.Second)
	if r.Allow() {
		t.Fatal("allowed before window expired")
	}

	// Past the window, the old calls expire.
	now = now.Add(31 * time.Second)
	if !r.Allow() {
		t.Fatal("rejected after window expired")
	}
}

func TestRateLimiterReset(t *testing.T) {
	r := NewRateLimiter(1, time.Minute)
	r.Allow()
	if r.Allow() {
		t.Fatal("over limit allowed")
	}
	r.Reset()
	if !r.Allow() {
		t.Fatal("rejected after reset")
	}
}
