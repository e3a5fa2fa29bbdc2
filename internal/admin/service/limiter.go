package service

import (
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultMaxLoginAttempts is how many failed logins a single key may
	// accumulate before the lockout kicks in.
	DefaultMaxLoginAttempts = 5

	// DefaultLockoutWindow bounds both the accumulation window and the
	// lockout itself. Attempts older than the window are forgotten.
	DefaultLockoutWindow = 15 * time.Minute
)

// RateLimitedError reports a locked-out login key. RetryAfter is the time
// until the window expires, rounded up to whole seconds for the header.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("too many login attempts, retry in %s", e.RetryAfter)
}

type attemptWindow struct {
	count int
	last  time.Time
}

// LoginLimiter tracks failed login attempts per key (the client IP) in
// memory. A key moves through three states: clear (no tracked failures),
// accumulating (some failures inside the window) and locked (max failures
// reached). A successful login clears the key immediately; otherwise the
// key resets itself once a full window passes without a new failure. Each
// failure refreshes the timestamp, so a locked key stays locked for the
// whole window counted from its most recent failure.
//
// The clock is injectable so tests can drive the window without sleeping.
type LoginLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attemptWindow

	max    int
	window time.Duration
	now    func() time.Time
}

func NewLoginLimiter(max int, window time.Duration) *LoginLimiter {
	if max <= 0 {
		max = DefaultMaxLoginAttempts
	}
	if window <= 0 {
		window = DefaultLockoutWindow
	}
	return &LoginLimiter{
		attempts: make(map[string]*attemptWindow),
		max:      max,
		window:   window,
		now:      time.Now,
	}
}

// Check reports whether a login attempt for key may proceed. A locked key
// returns a *RateLimitedError carrying the remaining lockout time.
func (l *LoginLimiter) Check(key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.attempts[key]
	if !ok {
		return nil
	}

	now := l.now()
	if now.Sub(w.last) >= l.window {
		delete(l.attempts, key)
		return nil
	}

	if w.count >= l.max {
		retry := w.last.Add(l.window).Sub(now)
		return &RateLimitedError{RetryAfter: retry.Round(time.Second)}
	}
	return nil
}

// RecordFailure counts one failed attempt against key and refreshes the
// key's last-failure timestamp; the window (and a lockout) always measures
// from the most recent failure. A failure after the window expires starts
// a fresh count.
func (l *LoginLimiter) RecordFailure(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.attempts[key]
	if !ok || now.Sub(w.last) >= l.window {
		l.attempts[key] = &attemptWindow{count: 1, last: now}
		return
	}
	w.count++
	w.last = now
}

// Clear forgets all failures for key. Called on successful login.
func (l *LoginLimiter) Clear(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, key)
}

// Remaining reports how many attempts key has left before lockout.
func (l *LoginLimiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.attempts[key]
	if !ok || l.now().Sub(w.last) >= l.window {
		return l.max
	}
	if w.count >= l.max {
		return 0
	}
	return l.max - w.count
}

// Sweep drops expired windows. The app runs this periodically so long-idle
// keys do not pin memory.
func (l *LoginLimiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, w := range l.attempts {
		if now.Sub(w.last) >= l.window {
			delete(l.attempts, key)
		}
	}
}
