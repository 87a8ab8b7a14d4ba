package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DukeRupert/fleet/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestLimiter returns a limiter driven by a controllable clock.
func newTestLimiter(t *testing.T, limit int, window time.Duration) (*RateLimiter, *time.Time) {
	t.Helper()
	rl := NewRateLimiter(limit, window)
	t.Cleanup(rl.Stop)

	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }
	return rl, &clock
}

// =============================================================================
// RateLimiter Tests
// =============================================================================

func TestRateLimiter_Allow(t *testing.T) {
	rl, _ := newTestLimiter(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("ip:10.0.0.1"), "request %d should be allowed", i+1)
	}
	assert.False(t, rl.Allow("ip:10.0.0.1"), "4th request should be denied")

	assert.True(t, rl.Allow("ip:10.0.0.2"), "other keys have their own budget")
}

func TestRateLimiter_WindowExpiry(t *testing.T) {
	rl, clock := newTestLimiter(t, 1, time.Minute)

	require.True(t, rl.Allow("caller:dana"))
	require.False(t, rl.Allow("caller:dana"))
	assert.Equal(t, time.Minute, rl.TimeUntilReset("caller:dana"))

	*clock = clock.Add(40 * time.Second)
	assert.Equal(t, 20*time.Second, rl.TimeUntilReset("caller:dana"))

	*clock = clock.Add(21 * time.Second)
	assert.True(t, rl.Allow("caller:dana"), "a new window starts after expiry")
}

func TestRateLimiter_TimeUntilReset_UnknownKey(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, time.Minute)
	assert.Zero(t, rl.TimeUntilReset("ip:unknown"))
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl, clock := newTestLimiter(t, 5, time.Minute)

	rl.Allow("ip:old")
	*clock = clock.Add(2 * time.Minute)
	rl.Allow("ip:fresh")

	rl.sweep()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.entries, "ip:old")
	assert.Contains(t, rl.entries, "ip:fresh")
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}

// =============================================================================
// RateLimitMiddleware Tests
// =============================================================================

func newLimitedHandler(t *testing.T, limit int) http.Handler {
	t.Helper()
	rl, _ := newTestLimiter(t, limit, time.Minute)
	mw := NewRateLimitMiddleware(rl, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return mw.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRateLimitMiddleware_LimitsWrites(t *testing.T) {
	handler := newLimitedHandler(t, 2)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("POST", "/api/inspections", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("PUT", "/api/inspections/abc", nil))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "rate_limit_exceeded", body["error"])
}

func TestRateLimitMiddleware_ReadsPassThrough(t *testing.T) {
	handler := newLimitedHandler(t, 1)

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/inspections", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimitMiddleware_KeysByCallerAndIP(t *testing.T) {
	handler := newLimitedHandler(t, 1)

	send := func(name, ip string) int {
		req := httptest.NewRequest("DELETE", "/api/inspections/abc", nil)
		req.RemoteAddr = ip + ":5000"
		if name != "" {
			req = req.WithContext(auth.WithCaller(req.Context(), auth.Caller{Name: name, Role: auth.RoleInspector}))
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("dana", "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("dana", "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("dana", "10.0.0.2"), "a caller's budget follows it across addresses")
	assert.Equal(t, http.StatusOK, send("lee", "10.0.0.3"))
	assert.Equal(t, http.StatusTooManyRequests, send("", "10.0.0.3"), "anonymous requests share the IP budget")
}

func TestRateLimitMiddleware_RotatingCallerHeaderStillLimited(t *testing.T) {
	handler := newLimitedHandler(t, 2)

	codes := make([]int, 0, 4)
	for _, name := range []string{"a", "b", "c", "d"} {
		req := httptest.NewRequest("POST", "/api/inspections", nil)
		req.RemoteAddr = "198.51.100.4:443"
		req = req.WithContext(auth.WithCaller(req.Context(), auth.Caller{Name: name, Role: auth.RoleInspector}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}

func TestRateLimitKeys(t *testing.T) {
	testCases := []struct {
		name     string
		setup    func(r *http.Request) *http.Request
		expected []string
	}{
		{
			name:     "remote addr",
			setup:    func(r *http.Request) *http.Request { r.RemoteAddr = "192.168.1.1:1234"; return r },
			expected: []string{"ip:192.168.1.1"},
		},
		{
			name: "x-forwarded-for first hop",
			setup: func(r *http.Request) *http.Request {
				r.Header.Set("X-Forwarded-For", "203.0.113.1, 10.0.0.1")
				return r
			},
			expected: []string{"ip:203.0.113.1"},
		},
		{
			name: "x-real-ip",
			setup: func(r *http.Request) *http.Request {
				r.Header.Set("X-Real-IP", " 203.0.113.9 ")
				return r
			},
			expected: []string{"ip:203.0.113.9"},
		},
		{
			name: "caller adds its own bucket",
			setup: func(r *http.Request) *http.Request {
				r.Header.Set("X-Forwarded-For", "203.0.113.1")
				return r.WithContext(auth.WithCaller(r.Context(), auth.Caller{Name: "dana", Role: auth.RoleManager}))
			},
			expected: []string{"ip:203.0.113.1", "caller:dana"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := tc.setup(httptest.NewRequest("POST", "/api/inspections", nil))
			assert.Equal(t, tc.expected, rateLimitKeys(req))
		})
	}
}

func TestGetClientIP_NoPort(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.168.1.7"
	assert.Equal(t, "192.168.1.7", getClientIP(req))
}
