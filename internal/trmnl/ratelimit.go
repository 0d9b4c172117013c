package trmnl

import (
	"sync"
	"time"
)

// RateLimiter enforces the display sink's delivery budget: at most cap sends
// per wall-clock hour, spaced at least an hour/cap apart. The count resets
// when the clock crosses an hour boundary, not on a sliding window, which is
// why this is a small state machine rather than a token bucket. One poll
// loop owns the limiter; the mutex only guards the status endpoint reading
// alongside it.
type RateLimiter struct {
	mu          sync.Mutex
	cap         int
	windowStart time.Time
	count       int
	lastSend    time.Time
}

// NewRateLimiter creates a limiter allowing hourlyCap sends per clock hour.
func NewRateLimiter(hourlyCap int) *RateLimiter {
	return &RateLimiter{cap: hourlyCap}
}

// CanSend reports whether a delivery is permitted at the given instant.
func (l *RateLimiter) CanSend(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.roll(now)
	if l.count >= l.cap {
		return false
	}
	if !l.lastSend.IsZero() && now.Sub(l.lastSend) < l.minInterval() {
		return false
	}
	return true
}

// RecordSend counts a delivery. Call only after a confirmed success.
func (l *RateLimiter) RecordSend(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.roll(now)
	l.count++
	l.lastSend = now
}

// Status returns the current window's send count and the hourly cap.
func (l *RateLimiter) Status(now time.Time) (count, cap int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.roll(now)
	return l.count, l.cap
}

// roll resets the window when the wall clock has crossed an hour boundary
// since windowStart. lastSend is cleared too: the minimum-interval check
// applies within a window, not across the boundary.
func (l *RateLimiter) roll(now time.Time) {
	hour := now.Truncate(time.Hour)
	if hour.After(l.windowStart) {
		l.windowStart = hour
		l.count = 0
		l.lastSend = time.Time{}
	}
}

func (l *RateLimiter) minInterval() time.Duration {
	if l.cap <= 0 {
		return time.Hour
	}
	return time.Hour / time.Duration(l.cap)
}
