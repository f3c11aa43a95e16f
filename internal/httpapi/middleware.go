package httpapi

import (
	"net/http"
	"strconv"

	"github.com/davidarico/stinkbot-sub000/internal/auth"
	"github.com/davidarico/stinkbot-sub000/internal/ratelimit"
)

// RateLimitMiddleware returns a middleware that limits by key extracted from the request (e.g. IP).
// When over limit, responds with 429 and optional Retry-After header.
func RateLimitMiddleware(limiter ratelimit.Limiter, keyFunc func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)
			if key == "" {
				key = "unknown"
			}
			allowed, retryAfter := limiter.Allow(key)
			if !allowed {
				if retryAfter > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				}
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitKeyByIP returns the client IP from the request (using X-Real-IP / X-Forwarded-For when set).
func RateLimitKeyByIP(r *http.Request) string {
	if x := r.Header.Get("X-Real-IP"); x != "" {
		return x
	}
	if x := r.Header.Get("X-Forwarded-For"); x != "" {
		return x
	}
	return r.RemoteAddr
}

// DefaultMaxBodyBytes caps JSON request bodies at 1MB.
const DefaultMaxBodyBytes = 1 << 20

// LimitRequestBody returns middleware that limits request body size; over-size requests get 413.
func LimitRequestBody(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// RequireModerator returns middleware that checks the X-Moderator-Key
// header against the configured bcrypt hash. With no hash configured,
// moderator endpoints are disabled outright.
func RequireModerator(moderatorKeyHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if moderatorKeyHash == "" {
				http.Error(w, "moderator access not configured", http.StatusForbidden)
				return
			}
			key := r.Header.Get("X-Moderator-Key")
			if key == "" || !auth.VerifyModeratorKey(key, moderatorKeyHash) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
