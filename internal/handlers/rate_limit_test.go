package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront-system/internal/config"
)

type stubLimiter struct {
	enabled   bool
	allowed   bool
	remaining int64
	resetAt   time.Time
	err       error
	calls     int
	lastScope string
	lastLimit int64
}

func (s *stubLimiter) AllowScoped(ctx context.Context, scope, key string, limit int64) (bool, int64, time.Time, error) {
	s.calls++
	s.lastScope = scope
	s.lastLimit = limit
	return s.allowed, s.remaining, s.resetAt, s.err
}
func (s *stubLimiter) Enabled() bool { return s.enabled }
func (s *stubLimiter) Limit() int64  { return 10 }

func (s *stubLimiter) Usage(ctx context.Context, key string) (int64, int64, *time.Time, error) {
	used := int64(10) - s.remaining
	if s.resetAt.IsZero() {
		return used, s.remaining, nil, s.err
	}
	reset := s.resetAt
	return used, s.remaining, &reset, s.err
}

func TestRateLimitMiddleware_DisabledPassesThrough(t *testing.T) {
	limiter := &stubLimiter{enabled: false}
	called := false
	handler := RateLimitMiddleware(limiter, newTestLogger(), func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
	rr := httptest.NewRecorder()
	handler(rr, req)

	if !called {
		t.Fatalf("disabled limiter must pass through")
	}
	if limiter.calls != 0 {
		t.Fatalf("disabled limiter must not be consulted")
	}
}

func TestRateLimitMiddleware_SetsHeaders(t *testing.T) {
	limiter := &stubLimiter{
		enabled:   true,
		allowed:   true,
		remaining: 7,
		resetAt:   time.Now().Add(30 * time.Second),
	}
	handler := RateLimitMiddleware(limiter, newTestLogger(), func(w http.ResponseWriter, r *http.Request) {
		writeJSONResponse(w, http.StatusOK, map[string]string{"ok": "yes"})
	})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
	req.RemoteAddr = "10.0.0.1:54321"
	rr := httptest.NewRecorder()
	handler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Header().Get("X-RateLimit-Limit") != "10" {
		t.Fatalf("missing limit header")
	}
	if rr.Header().Get("X-RateLimit-Remaining") != "7" {
		t.Fatalf("missing remaining header")
	}
	if rr.Header().Get("X-RateLimit-Reset") == "" {
		t.Fatalf("missing reset header")
	}
}

func TestRateLimitHandler_StatusDisabled(t *testing.T) {
	cfg := &config.RateLimitConfig{Enabled: false}
	h := NewRateLimitHandler(&stubLimiter{}, newTestLogger(), cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/rate-limit/status", nil)
	rr := httptest.NewRecorder()
	h.Status(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["enabled"] != false {
		t.Fatalf("expected disabled status, got %+v", resp)
	}
}

func TestRateLimitHandler_Status(t *testing.T) {
	cfg := &config.RateLimitConfig{Enabled: true, Requests: 10, WindowSeconds: 60}
	limiter := &stubLimiter{enabled: true, remaining: 7, resetAt: time.Now().Add(30 * time.Second)}
	h := NewRateLimitHandler(limiter, newTestLogger(), cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/rate-limit/status", nil)
	req.RemoteAddr = "10.0.0.1:54321"
	rr := httptest.NewRecorder()
	h.Status(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["enabled"] != true {
		t.Fatalf("expected enabled status, got %+v", resp)
	}
	if resp["remaining"] != float64(7) {
		t.Fatalf("unexpected remaining: %v", resp["remaining"])
	}
	if resp["key"] != "10.0.0.1" {
		t.Fatalf("unexpected key: %v", resp["key"])
	}
	if _, ok := resp["reset_at"]; !ok {
		t.Fatalf("expected reset_at in response")
	}
}

func TestCheckoutRateLimitMiddleware_UsesOwnLimit(t *testing.T) {
	limiter := &stubLimiter{
		enabled:   true,
		allowed:   true,
		remaining: 3,
		resetAt:   time.Now().Add(30 * time.Second),
	}
	handler := CheckoutRateLimitMiddleware(limiter, newTestLogger(), 5, func(w http.ResponseWriter, r *http.Request) {
		writeJSONResponse(w, http.StatusOK, map[string]string{"ok": "yes"})
	})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
	req.RemoteAddr = "10.0.0.1:54321"
	rr := httptest.NewRecorder()
	handler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if limiter.lastScope != "checkout" {
		t.Fatalf("expected checkout scope, got %q", limiter.lastScope)
	}
	if limiter.lastLimit != 5 {
		t.Fatalf("expected limit 5, got %d", limiter.lastLimit)
	}
	if rr.Header().Get("X-RateLimit-Limit") != "5" {
		t.Fatalf("expected scoped limit in header, got %q", rr.Header().Get("X-RateLimit-Limit"))
	}
}

func TestCheckoutRateLimitMiddleware_Blocks(t *testing.T) {
	limiter := &stubLimiter{enabled: true, allowed: false}
	called := false
	handler := CheckoutRateLimitMiddleware(limiter, newTestLogger(), 5, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodPost, "/api/promo/validate", nil)
	rr := httptest.NewRecorder()
	handler(rr, req)

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if called {
		t.Fatalf("blocked request must not reach handler")
	}
}

func TestRateLimitMiddleware_Blocks(t *testing.T) {
	limiter := &stubLimiter{enabled: true, allowed: false}
	called := false
	handler := RateLimitMiddleware(limiter, newTestLogger(), func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
	rr := httptest.NewRecorder()
	handler(rr, req)

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if called {
		t.Fatalf("blocked request must not reach handler")
	}
}
