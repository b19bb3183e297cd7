package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestRateLimiter_Allow tests bucket exhaustion and refill.
func TestRateLimiter_Allow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := NewRateLimiter(ctx, 2, time.Second)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	got := []bool{rl.Allow("1.1.1.1"), rl.Allow("1.1.1.1"), rl.Allow("1.1.1.1"), rl.Allow("2.2.2.2")}
	want := []bool{true, true, false, true}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %v, want %v", i, got[i], want[i])
		}
	}

	now = now.Add(time.Second)
	if !rl.Allow("1.1.1.1") {
		t.Error("expected refill after one interval")
	}

	now = now.Add(10 * time.Minute)
	rl.evict(5 * time.Minute)
	if len(rl.visitors) != 0 {
		t.Errorf("visitors = %d after eviction, want 0", len(rl.visitors))
	}
}

// TestRateLimit_Rejects tests the 429 response.
func TestRateLimit_Rejects(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	handler := RateLimit(NewRateLimiter(ctx, 1, time.Hour))(okHandler(http.StatusOK))

	codes := []int{}
	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 429]", codes)
	}
}

// TestCORS tests the allow-all headers and preflight short circuit.
func TestCORS(t *testing.T) {
	called := false
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	req := httptest.NewRequest(http.MethodOptions, "/members", nil)
	req.Header.Set("Origin", "https://desk.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent || called {
		t.Errorf("preflight: code = %d, called = %v", rr.Code, called)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" || rr.Header().Get("Access-Control-Allow-Headers") != "content-type" {
		t.Errorf("headers = %v", rr.Header())
	}
	if rr.Header().Get("Access-Control-Allow-Credentials") != "" {
		t.Error("credentials must not be allowed")
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/members", nil))
	if !called || rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("simple request should pass through with CORS headers")
	}
}

// TestCSRF_FormPostsOnly tests that JSON passes and forged forms are rejected.
func TestCSRF_FormPostsOnly(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	handler := CSRF(key, false)(okHandler(http.StatusOK))

	tests := []struct {
		name        string
		method      string
		contentType string
		want        int
	}{
		{"json post", "POST", "application/json", http.StatusOK},
		{"bodyless post", "POST", "", http.StatusOK},
		{"get", "GET", "", http.StatusOK},
		{"form post without token", "POST", "application/x-www-form-urlencoded", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/admin/mark-inactive-by-attendance", strings.NewReader("a=b"))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("code = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}
