package service

import (
	"time"

	"github.com/accountd/accountd/internal/config"
)

// LockoutPolicy decides when repeated login failures lock an account and for
// how long. The policy itself is pure arithmetic; the state transitions it
// drives (incrementing counters, setting lockout_until) live in the auth
// service and the user repository.
//
// Expiry is lazy: a past lockout_until simply counts as unlocked on the next
// attempt, no background sweeper resets anything.
type LockoutPolicy struct {
	// MaxAttempts is the number of consecutive failures that triggers a lock.
	MaxAttempts int

	// Window is how long an account stays locked once triggered.
	Window time.Duration
}

// NewLockoutPolicy builds a [LockoutPolicy] from the auth configuration.
func NewLockoutPolicy(cfg config.Auth) LockoutPolicy {
	return LockoutPolicy{
		MaxAttempts: cfg.MaxLoginAttempts,
		Window:      cfg.LockoutWindow,
	}
}

// Remaining returns how much longer the lockout is in force, or zero when the
// account is not locked or the lockout has already expired.
func (p LockoutPolicy) Remaining(lockoutUntil *time.Time, now time.Time) time.Duration {
	if lockoutUntil == nil || !lockoutUntil.After(now) {
		return 0
	}
	return lockoutUntil.Sub(now)
}

// ShouldLock reports whether the given failure count triggers a lock.
func (p LockoutPolicy) ShouldLock(attempts int) bool {
	return attempts >= p.MaxAttempts
}

// LockUntil returns the instant a lock started at now would expire.
func (p LockoutPolicy) LockUntil(now time.Time) time.Time {
	return now.Add(p.Window)
}
