package auth

import (
	"sync"
	"time"
)

// LoginRateLimiter implements fail2ban-style rate limiting for login attempts.
// It tracks failed attempts by IP and email, applying exponential backoff.
type LoginRateLimiter struct {
	mu       sync.RWMutex
	attempts map[string]*attemptRecord

	maxAttempts int
	window      time.Duration
	baseBackoff time.Duration
	maxBackoff  time.Duration
	now         func() time.Time
}

type attemptRecord struct {
	failures  int
	lastFail  time.Time
	blockedAt time.Time
}

// NewLoginRateLimiter creates a new rate limiter.
// maxAttempts: number of failures before blocking
// window: time window to count failures
// baseBackoff: initial backoff duration after block
// maxBackoff: maximum backoff duration
func NewLoginRateLimiter(maxAttempts int, window, baseBackoff, maxBackoff time.Duration) *LoginRateLimiter {
	if maxAttempts < 1 {
		maxAttempts = 5
	}
	if maxBackoff < baseBackoff {
		maxBackoff = baseBackoff
	}
	return &LoginRateLimiter{
		attempts:    make(map[string]*attemptRecord),
		maxAttempts: maxAttempts,
		window:      window,
		baseBackoff: baseBackoff,
		maxBackoff:  maxBackoff,
		now:         time.Now,
	}
}

func (rl *LoginRateLimiter) key(ip, email string) string {
	return ip + ":" + email
}

// IsBlocked checks if an IP+email combination is currently blocked
func (rl *LoginRateLimiter) IsBlocked(ip, email string) (bool, time.Duration) {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	rec, exists := rl.attempts[rl.key(ip, email)]
	if !exists || rec.blockedAt.IsZero() {
		return false, 0
	}

	unblockTime := rec.blockedAt.Add(rl.calculateBackoff(rec.failures))
	now := rl.now()
	if now.After(unblockTime) {
		return false, 0
	}
	return true, unblockTime.Sub(now)
}

// RecordFailure records a failed login attempt
func (rl *LoginRateLimiter) RecordFailure(ip, email string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	k := rl.key(ip, email)
	rec, exists := rl.attempts[k]
	if !exists {
		rec = &attemptRecord{}
		rl.attempts[k] = rec
	}

	now := rl.now()
	if !rec.lastFail.IsZero() && now.Sub(rec.lastFail) > rl.window {
		rec.failures = 0
		rec.blockedAt = time.Time{}
	}

	rec.failures++
	rec.lastFail = now

	if rec.failures >= rl.maxAttempts {
		rec.blockedAt = now
	}
}

// RecordSuccess clears the failure record for successful login
func (rl *LoginRateLimiter) RecordSuccess(ip, email string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.attempts, rl.key(ip, email))
}

// calculateBackoff returns exponential backoff duration
func (rl *LoginRateLimiter) calculateBackoff(failures int) time.Duration {
	if failures <= rl.maxAttempts {
		return rl.baseBackoff
	}

	shift := failures - rl.maxAttempts
	if shift > 30 {
		return rl.maxBackoff
	}
	backoff := rl.baseBackoff * time.Duration(1<<shift)
	if backoff > rl.maxBackoff {
		return rl.maxBackoff
	}
	return backoff
}

// Cleanup removes entries idle for more than two windows and returns how
// many were dropped. The runner calls it periodically.
func (rl *LoginRateLimiter) Cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	staleThreshold := 2 * rl.window
	if staleThreshold < rl.maxBackoff {
		staleThreshold = rl.maxBackoff
	}
	removed := 0
	for k, rec := range rl.attempts {
		if now.Sub(rec.lastFail) > staleThreshold {
			delete(rl.attempts, k)
			removed++
		}
	}
	return removed
}

// Stats returns current rate limiter statistics (for monitoring)
func (rl *LoginRateLimiter) Stats() map[string]interface{} {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	now := rl.now()
	blocked := 0
	for _, rec := range rl.attempts {
		if !rec.blockedAt.IsZero() && now.Before(rec.blockedAt.Add(rl.calculateBackoff(rec.failures))) {
			blocked++
		}
	}

	return map[string]interface{}{
		"tracked_keys":  len(rl.attempts),
		"blocked_count": blocked,
		"max_attempts":  rl.maxAttempts,
		"window_sec":    int(rl.window.Seconds()),
	}
}
