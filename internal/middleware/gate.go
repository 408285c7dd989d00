// Package middleware provides HTTP middlewares for the vault password gate,
// failed-attempt rate limiting and request logging.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/alexandercyber0x0/Idea-Hub-1/internal/crypto"
	"go.uber.org/zap"
)

// HeaderEncryptionKey carries the vault password on data requests.
const HeaderEncryptionKey = "X-Encryption-Key"

type ctxKey string

const sessionKey ctxKey = "session"

// Authenticator is the part of the password lifecycle the gate needs.
type Authenticator interface {
	IsSetup(ctx context.Context) bool
	Verify(ctx context.Context, password string) bool
	Touch(ctx context.Context)
	NewSession(password string) *crypto.Session
}

// Gate checks the vault password sent in X-Encryption-Key.
//
// Without the header, or before a password has been set up, the request
// passes through without a session and data is served as stored. With a
// valid password a key session is stored in the request context and closed
// when the request ends. A wrong password is answered with 401 and counted
// against the client's address; once the limiter blocks an address every
// request carrying the header gets 429 until the block expires.
func Gate(auth Authenticator, limiter *RateLimiter, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			password := r.Header.Get(HeaderEncryptionKey)
			if password == "" || !auth.IsSetup(r.Context()) {
				next.ServeHTTP(w, r)
				return
			}

			ip := ClientIP(r)
			if !limiter.Allow(ip) {
				WriteError(w, http.StatusTooManyRequests, "Too many failed attempts, try again later")
				return
			}
			if !auth.Verify(r.Context(), password) {
				limiter.RecordFailure(ip)
				log.Info("rejected vault password", zap.String("ip", ip), zap.String("path", r.URL.Path))
				WriteError(w, http.StatusUnauthorized, "Invalid password")
				return
			}
			limiter.Reset(ip)
			auth.Touch(r.Context())

			sess := auth.NewSession(password)
			defer sess.Close()
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// SessionFromContext returns the request's key session, or nil when the
// request carried no verified password.
func SessionFromContext(ctx context.Context) *crypto.Session {
	sess, _ := ctx.Value(sessionKey).(*crypto.Session)
	return sess
}

// WithSession returns a copy of ctx carrying sess.
func WithSession(ctx context.Context, sess *crypto.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// WriteError writes {"error": msg} with the given status.
func WriteError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
