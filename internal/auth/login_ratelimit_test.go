package auth

import (
	"testing"
	"time"
)

func TestLoginRateLimiter_Basic(t *testing.T) {
	rl := NewLoginRateLimiter(3, time.Minute, 1*time.Second, 10*time.Second)

	ip := "192.168.1.1"
	email := "customer@stmarys.example"

	blocked, _ := rl.IsBlocked(ip, email)
	if blocked {
		t.Error("should not be blocked initially")
	}

	rl.RecordFailure(ip, email)
	rl.RecordFailure(ip, email)
	blocked, _ = rl.IsBlocked(ip, email)
	if blocked {
		t.Error("should not be blocked with 2 failures (threshold is 3)")
	}

	rl.RecordFailure(ip, email)
	blocked, remaining := rl.IsBlocked(ip, email)
	if !blocked {
		t.Error("should be blocked after 3 failures")
	}
	if remaining <= 0 {
		t.Error("remaining time should be positive")
	}
}

func TestLoginRateLimiter_DifferentKeys(t *testing.T) {
	rl := NewLoginRateLimiter(2, time.Minute, 1*time.Second, 10*time.Second)

	rl.RecordFailure("1.1.1.1", "a@example.com")
	rl.RecordFailure("1.1.1.1", "a@example.com")

	if blocked, _ := rl.IsBlocked("1.1.1.1", "a@example.com"); !blocked {
		t.Error("a@example.com should be blocked from 1.1.1.1")
	}
	if blocked, _ := rl.IsBlocked("1.1.1.1", "b@example.com"); blocked {
		t.Error("b@example.com should not be blocked")
	}
	if blocked, _ := rl.IsBlocked("2.2.2.2", "a@example.com"); blocked {
		t.Error("a@example.com should not be blocked from 2.2.2.2")
	}
}

func TestLoginRateLimiter_SuccessClearsRecord(t *testing.T) {
	rl := NewLoginRateLimiter(3, time.Minute, 1*time.Second, 10*time.Second)

	ip := "192.168.1.1"
	email := "tech@procare.example"

	rl.RecordFailure(ip, email)
	rl.RecordFailure(ip, email)
	rl.RecordSuccess(ip, email)

	rl.RecordFailure(ip, email)
	rl.RecordFailure(ip, email)
	if blocked, _ := rl.IsBlocked(ip, email); blocked {
		t.Error("should not be blocked after success cleared record")
	}
}

func TestLoginRateLimiter_WindowAndUnblock(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	rl := NewLoginRateLimiter(2, time.Minute, 10*time.Second, time.Minute)
	rl.now = func() time.Time { return now }

	rl.RecordFailure("ip", "u")
	now = now.Add(2 * time.Minute)
	rl.RecordFailure("ip", "u")
	if blocked, _ := rl.IsBlocked("ip", "u"); blocked {
		t.Error("failures outside the window should not add up")
	}

	rl.RecordFailure("ip", "u")
	if blocked, _ := rl.IsBlocked("ip", "u"); !blocked {
		t.Error("should be blocked after 2 failures in the window")
	}

	now = now.Add(11 * time.Second)
	if blocked, _ := rl.IsBlocked("ip", "u"); blocked {
		t.Error("block should lift after the backoff")
	}
}

func TestLoginRateLimiter_ExponentialBackoff(t *testing.T) {
	rl := NewLoginRateLimiter(2, time.Minute, 1*time.Second, 30*time.Second)

	backoff1 := rl.calculateBackoff(2) // At threshold
	backoff2 := rl.calculateBackoff(3) // 1 over
	backoff3 := rl.calculateBackoff(4) // 2 over

	if backoff1 != 1*time.Second {
		t.Errorf("expected 1s backoff at threshold, got %v", backoff1)
	}
	if backoff2 != 2*time.Second {
		t.Errorf("expected 2s backoff 1 over, got %v", backoff2)
	}
	if backoff3 != 4*time.Second {
		t.Errorf("expected 4s backoff 2 over, got %v", backoff3)
	}
}

func TestLoginRateLimiter_MaxBackoff(t *testing.T) {
	rl := NewLoginRateLimiter(2, time.Minute, 1*time.Second, 5*time.Second)

	if backoff := rl.calculateBackoff(100); backoff != 5*time.Second {
		t.Errorf("backoff should be capped at max, got %v", backoff)
	}
}

func TestLoginRateLimiter_StatsAndCleanup(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	rl := NewLoginRateLimiter(2, time.Minute, 1*time.Second, 10*time.Second)
	rl.now = func() time.Time { return now }

	rl.RecordFailure("1.1.1.1", "user1")
	rl.RecordFailure("1.1.1.1", "user1") // Block
	rl.RecordFailure("2.2.2.2", "user2")

	stats := rl.Stats()
	if stats["tracked_keys"].(int) != 2 {
		t.Errorf("expected 2 tracked keys, got %v", stats["tracked_keys"])
	}
	if stats["blocked_count"].(int) != 1 {
		t.Errorf("expected 1 blocked, got %v", stats["blocked_count"])
	}

	if removed := rl.Cleanup(); removed != 0 {
		t.Errorf("fresh entries should stay, removed %d", removed)
	}
	now = now.Add(3 * time.Minute)
	if removed := rl.Cleanup(); removed != 2 {
		t.Errorf("expected 2 stale entries removed, got %d", removed)
	}
}
