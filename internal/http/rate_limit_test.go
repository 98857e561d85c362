package httpx

import (
	"testing"
	"time"
)

func TestMemoryRateLimiterDeniesOverLimit(t *testing.T) {
	rl := NewMemoryRateLimiter()
	defer rl.Close()

	for i := 0; i < 3; i++ {
		if d := rl.Allow("ip:1.2.3.4", 3, time.Minute); !d.allowed {
			t.Fatalf("request %d must be allowed", i+1)
		}
	}
	d := rl.Allow("ip:1.2.3.4", 3, time.Minute)
	if d.allowed {
		t.Fatal("fourth request in window must be denied")
	}
	if d.windowEnd.IsZero() {
		t.Fatal("denial must carry the window end")
	}
	if other := rl.Allow("ip:5.6.7.8", 3, time.Minute); !other.allowed {
		t.Fatal("different key must have its own window")
	}
}

func TestMemoryRateLimiterCleanupDropsExpired(t *testing.T) {
	rl := NewMemoryRateLimiter().(*memoryRateLimiter)
	defer rl.Close()

	rl.Allow("ip:1.2.3.4", 1, 10*time.Millisecond)
	rl.cleanup(time.Now().Add(time.Second))

	rl.mu.Lock()
	remaining := len(rl.entries)
	rl.mu.Unlock()
	if remaining != 0 {
		t.Fatalf("expected expired entries swept, %d left", remaining)
	}
}

func TestMemoryRateLimiterZeroLimitAlwaysAllows(t *testing.T) {
	rl := NewMemoryRateLimiter()
	defer rl.Close()

	for i := 0; i < 10; i++ {
		if d := rl.Allow("ip:1.2.3.4", 0, time.Minute); !d.allowed {
			t.Fatal("zero limit must disable limiting")
		}
	}
}
