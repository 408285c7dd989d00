package middleware

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewRateLimiter()
	l.now = func() time.Time { return now }

	for i := 0; i < MaxFailures-1; i++ {
		l.RecordFailure("1.2.3.4")
	}
	if !l.Allow("1.2.3.4") {
		t.Fatal("blocked before reaching the limit")
	}
	l.RecordFailure("1.2.3.4")
	if l.Allow("1.2.3.4") {
		t.Fatal("expected block after MaxFailures")
	}
	if !l.Allow("5.6.7.8") {
		t.Error("other addresses must not be affected")
	}

	now = now.Add(Window + time.Second)
	if !l.Allow("1.2.3.4") {
		t.Error("block should expire after Window")
	}
}

func TestRateLimiter_WindowResets(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewRateLimiter()
	l.now = func() time.Time { return now }

	for i := 0; i < MaxFailures-1; i++ {
		l.RecordFailure("ip")
	}
	now = now.Add(Window + time.Minute)
	l.RecordFailure("ip")
	if !l.Allow("ip") {
		t.Error("failures outside the window must not add up")
	}
}

func TestRateLimiter_Reset(t *testing.T) {
	l := NewRateLimiter()
	for i := 0; i < MaxFailures; i++ {
		l.RecordFailure("ip")
	}
	l.Reset("ip")
	if !l.Allow("ip") {
		t.Error("Reset must lift the block")
	}
}

func TestRateLimiter_Nil(t *testing.T) {
	var l *RateLimiter
	l.RecordFailure("ip")
	l.Reset("ip")
	if !l.Allow("ip") {
		t.Error("nil limiter must allow everything")
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.168.1.10:4321"
	if got := ClientIP(req); got != "192.168.1.10" {
		t.Errorf("ClientIP = %q", got)
	}
	req.RemoteAddr = "unix-socket"
	if got := ClientIP(req); got != "unix-socket" {
		t.Errorf("ClientIP = %q", got)
	}
}
