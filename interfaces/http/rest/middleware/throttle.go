package middleware

import (
	"net"
	"net/http"

	apperrors "octavo/pkg/errors"
	"octavo/pkg/ratelimit"
)

// Throttle rejects requests from clients that drained their conversion
// bucket. Keyed by client IP; RealIP runs earlier in the chain so the key
// survives a reverse proxy.
func Throttle(limiter *ratelimit.Limiter, errors *apperrors.ErrorHandler) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientKey(r)) {
				errors.Handle(w, r, apperrors.NewRateLimitedError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
