package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"
)

const (
	// MaxFailures is the number of wrong passwords an address may send
	// within Window before it is blocked.
	MaxFailures = 5
	// Window is both the counting window and the block duration.
	Window = 15 * time.Minute

	maxTracked = 10000
)

type attempts struct {
	count int
	first time.Time
}

// RateLimiter counts failed password attempts per client address. A nil
// *RateLimiter allows everything.
type RateLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attempts
	blocked  map[string]time.Time
	now      func() time.Time
}

// NewRateLimiter returns an empty limiter.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		attempts: make(map[string]*attempts),
		blocked:  make(map[string]time.Time),
		now:      time.Now,
	}
}

// Allow reports whether ip is currently allowed to try a password.
func (l *RateLimiter) Allow(ip string) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	until, ok := l.blocked[ip]
	if !ok {
		return true
	}
	if l.now().Before(until) {
		return false
	}
	delete(l.blocked, ip)
	delete(l.attempts, ip)
	return true
}

// RecordFailure counts a wrong password and blocks ip for Window once
// MaxFailures are reached within Window.
func (l *RateLimiter) RecordFailure(ip string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.attempts) >= maxTracked {
		l.prune(now)
	}

	a, ok := l.attempts[ip]
	if !ok || now.Sub(a.first) > Window {
		a = &attempts{first: now}
		l.attempts[ip] = a
	}
	a.count++
	if a.count >= MaxFailures {
		l.blocked[ip] = now.Add(Window)
	}
}

// Reset forgets ip's failures after a successful attempt.
func (l *RateLimiter) Reset(ip string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, ip)
	delete(l.blocked, ip)
}

func (l *RateLimiter) prune(now time.Time) {
	for ip, a := range l.attempts {
		if now.Sub(a.first) > Window {
			delete(l.attempts, ip)
		}
	}
	for ip, until := range l.blocked {
		if !now.Before(until) {
			delete(l.blocked, ip)
		}
	}
}

// ClientIP returns the host part of the request's remote address.
func ClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
