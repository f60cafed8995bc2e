package middleware

import (
	"testing"
	"time"
)

func TestRateLimiterAllowsBurstThenBlocks(t *testing.T) {
	current := time.Unix(0, 0)
	limiter := NewRateLimiter(func() time.Time { return current })
	rule := RateLimitRule{Rate: 1, Burst: 3}

	for i := 0; i < 3; i++ {
		allowed, _ := limiter.Allow("u1|analyze", rule)
		if !allowed {
			t.Fatalf("request %d should be within burst", i+1)
		}
	}

	allowed, retryAfter := limiter.Allow("u1|analyze", rule)
	if allowed {
		t.Fatalf("fourth request should be blocked")
	}
	if retryAfter <= 0 {
		t.Fatalf("expected positive retry delay, got %v", retryAfter)
	}
}

func TestRateLimiterRefillsOverTime(t *testing.T) {
	current := time.Unix(0, 0)
	limiter := NewRateLimiter(func() time.Time { return current })
	rule := RateLimitRule{Rate: 1, Burst: 1}

	if allowed, _ := limiter.Allow("u1|analyze", rule); !allowed {
		t.Fatalf("first request should pass")
	}
	if allowed, _ := limiter.Allow("u1|analyze", rule); allowed {
		t.Fatalf("second immediate request should be blocked")
	}

	current = current.Add(2 * time.Second)
	if allowed, _ := limiter.Allow("u1|analyze", rule); !allowed {
		t.Fatalf("request after refill should pass")
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	current := time.Unix(0, 0)
	limiter := NewRateLimiter(func() time.Time { return current })
	rule := RateLimitRule{Rate: 1, Burst: 1}

	if allowed, _ := limiter.Allow("u1|analyze", rule); !allowed {
		t.Fatalf("first u1 request should pass")
	}
	if allowed, _ := limiter.Allow("u2|analyze", rule); !allowed {
		t.Fatalf("u2 must not share u1's bucket")
	}
}
