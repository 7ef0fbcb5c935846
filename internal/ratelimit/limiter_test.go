package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dalfonso89/currency-converter/internal/testutils"
)

func TestNewLimiter(t *testing.T) {
	cfg := testutils.MockConfig()
	logger := testutils.MockLogger()

	limiter := NewLimiter(cfg, logger)
	defer limiter.Stop()

	if limiter.Configuration != cfg {
		t.Errorf("NewLimiter() configuration = %v, want %v", limiter.Configuration, cfg)
	}
	if limiter.clientBuckets == nil {
		t.Errorf("NewLimiter() clientBuckets is nil")
	}
	if limiter.cleanupTicker == nil {
		t.Errorf("NewLimiter() cleanupTicker is nil")
	}
}

func TestLimiter_Allow(t *testing.T) {
	tests := []struct {
		name             string
		rateLimitEnabled bool
		requests         int
		expected         []bool
	}{
		{
			name:             "rate limiting disabled",
			rateLimitEnabled: false,
			requests:         5,
			expected:         []bool{true, true, true, true, true},
		},
		{
			name:             "rate limiting enabled - within limit",
			rateLimitEnabled: true,
			requests:         3,
			expected:         []bool{true, true, true},
		},
		{
			name:             "rate limiting enabled - exceed limit",
			rateLimitEnabled: true,
			requests:         12,
			expected:         []bool{true, true, true, true, true, true, true, true, true, true, false, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testutils.MockConfig()
			cfg.RateLimitEnabled = tt.rateLimitEnabled
			cfg.RateLimitBurst = 10
			cfg.RateLimitRequests = 100
			cfg.RateLimitWindow = 60 * time.Second

			limiter := NewLimiter(cfg, testutils.MockLogger())
			defer limiter.Stop()

			for i := 0; i < tt.requests; i++ {
				if result := limiter.Allow("192.168.1.1"); result != tt.expected[i] {
					t.Errorf("Allow() request %d = %v, want %v", i, result, tt.expected[i])
				}
			}
		})
	}
}

func TestLimiter_Allow_DifferentIPs(t *testing.T) {
	cfg := testutils.MockConfig()
	cfg.RateLimitBurst = 5

	limiter := NewLimiter(cfg, testutils.MockLogger())
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		if !limiter.Allow("192.168.1.1") {
			t.Errorf("Allow() IP1 request %d = false, want true", i)
		}
		if !limiter.Allow("192.168.1.2") {
			t.Errorf("Allow() IP2 request %d = false, want true", i)
		}
	}

	if limiter.Allow("192.168.1.1") {
		t.Errorf("Allow() IP1 after burst = true, want false")
	}
	if limiter.Allow("192.168.1.2") {
		t.Errorf("Allow() IP2 after burst = true, want false")
	}
}

func TestLimiter_GetClientIP(t *testing.T) {
	limiter := NewLimiter(testutils.MockConfig(), testutils.MockLogger())
	defer limiter.Stop()

	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expected   string
	}{
		{"X-Forwarded-For header", map[string]string{"X-Forwarded-For": "203.0.113.195"}, "192.168.1.1:12345", "203.0.113.195"},
		{"X-Forwarded-For list", map[string]string{"X-Forwarded-For": "203.0.113.195, 10.0.0.1"}, "192.168.1.1:12345", "203.0.113.195"},
		{"X-Forwarded-For with port", map[string]string{"X-Forwarded-For": "203.0.113.195:8080"}, "192.168.1.1:12345", "203.0.113.195"},
		{"X-Real-IP header", map[string]string{"X-Real-IP": "203.0.113.195"}, "192.168.1.1:12345", "203.0.113.195"},
		{"RemoteAddr fallback", map[string]string{}, "192.168.1.1:12345", "192.168.1.1"},
		{"invalid X-Forwarded-For falls back", map[string]string{"X-Forwarded-For": "invalid-ip"}, "192.168.1.1:12345", "192.168.1.1"},
		{"RemoteAddr without port", map[string]string{}, "192.168.1.1", "192.168.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			req.RemoteAddr = tt.remoteAddr
			for header, value := range tt.headers {
				req.Header.Set(header, value)
			}

			if result := limiter.GetClientIP(req); result != tt.expected {
				t.Errorf("GetClientIP() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestLimiter_GinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := testutils.MockConfig()
	cfg.RateLimitBurst = 2

	limiter := NewLimiter(cfg, testutils.MockLogger())
	defer limiter.Stop()

	router := gin.New()
	router.Use(limiter.GinMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)

		if w.Code == http.StatusTooManyRequests && w.Header().Get("X-RateLimit-Remaining") != "0" {
			t.Errorf("limited response missing X-RateLimit-Remaining header")
		}
	}

	expected := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}
	for i := range expected {
		if codes[i] != expected[i] {
			t.Errorf("request %d status = %d, want %d", i, codes[i], expected[i])
		}
	}
}

func TestTokenBucket_Allow(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		tokens   int
		requests int
		expected []bool
	}{
		{"sufficient tokens", 5, 5, 3, []bool{true, true, true}},
		{"insufficient tokens", 5, 2, 5, []bool{true, true, false, false, false}},
		{"no tokens", 5, 0, 3, []bool{false, false, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket := &TokenBucket{
				capacity:     tt.capacity,
				tokens:       tt.tokens,
				lastRefill:   time.Now(),
				refillRate:   10,
				refillPeriod: time.Hour,
			}

			for i := 0; i < tt.requests; i++ {
				if result := bucket.Allow(); result != tt.expected[i] {
					t.Errorf("TokenBucket.Allow() request %d = %v, want %v", i, result, tt.expected[i])
				}
			}
		})
	}
}

func TestTokenBucket_Refill(t *testing.T) {
	bucket := &TokenBucket{
		capacity:     3,
		tokens:       0,
		lastRefill:   time.Now().Add(-time.Minute),
		refillRate:   100,
		refillPeriod: time.Second,
	}

	for i := 0; i < 3; i++ {
		if !bucket.Allow() {
			t.Fatalf("Allow() after refill request %d = false, want true", i)
		}
	}
	if bucket.Allow() {
		t.Errorf("Allow() beyond capacity = true, want false")
	}
}

func TestLimiter_evictIdle(t *testing.T) {
	limiter := NewLimiter(testutils.MockConfig(), testutils.MockLogger())
	defer limiter.Stop()

	limiter.Allow("10.0.0.1")
	limiter.Allow("10.0.0.2")
	limiter.clientBuckets["10.0.0.1"].lastRefill = time.Now().Add(-48 * time.Hour)

	limiter.evictIdle(time.Now())

	if _, ok := limiter.clientBuckets["10.0.0.1"]; ok {
		t.Errorf("idle bucket was not evicted")
	}
	if _, ok := limiter.clientBuckets["10.0.0.2"]; !ok {
		t.Errorf("active bucket was evicted")
	}
}

func TestLimiter_StopTwice(t *testing.T) {
	limiter := NewLimiter(testutils.MockConfig(), testutils.MockLogger())

	limiter.Stop()
	limiter.Stop()
}
