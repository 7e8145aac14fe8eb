package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"
)

// UsernameRateLimiter creates a middleware that limits form submissions per
// submitted username, allowing limit requests per minute. It complements the
// account lockout by slowing down guessing before the lock engages. A limit
// of 0 disables throttling.
func UsernameRateLimiter(limit int) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(limit, time.Minute,
		httprate.WithKeyFuncs(KeyByUsername),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Too many attempts. Try later", http.StatusTooManyRequests)
		}),
	)
}

// KeyByUsername keys requests by the lower-cased "username" form field. The
// parsed form stays cached on the request for the handler.
func KeyByUsername(r *http.Request) (string, error) {
	return "username:" + strings.ToLower(strings.TrimSpace(r.PostFormValue("username"))), nil
}
