package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/davidarico/stinkbot-sub000/internal/auth"
	"github.com/davidarico/stinkbot-sub000/internal/ratelimit"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireModerator(t *testing.T) {
	hash, err := auth.HashModeratorKey("letmein")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h := RequireModerator(hash)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/resolve", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no key: status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/resolve", nil)
	req.Header.Set("X-Moderator-Key", "wrong")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong key: status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/resolve", nil)
	req.Header.Set("X-Moderator-Key", "letmein")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("valid key: status = %d, want 200", rec.Code)
	}

	// Unconfigured hash disables the endpoints entirely.
	off := RequireModerator("")(okHandler())
	req = httptest.NewRequest(http.MethodPost, "/resolve", nil)
	req.Header.Set("X-Moderator-Key", "letmein")
	rec = httptest.NewRecorder()
	off.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("unconfigured: status = %d, want 403", rec.Code)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := ratelimit.NewInMemory(2, time.Minute)
	h := RateLimitMiddleware(limiter, RateLimitKeyByIP)(okHandler())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/actions", nil)
		req.Header.Set("X-Real-IP", "10.0.0.1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i+1, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/actions", nil)
	req.Header.Set("X-Real-IP", "10.0.0.1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("over limit: status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}

	// A different client is not affected.
	req = httptest.NewRequest(http.MethodPost, "/actions", nil)
	req.Header.Set("X-Real-IP", "10.0.0.2")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("other client: status = %d, want 200", rec.Code)
	}
}
