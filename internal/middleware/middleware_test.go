package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/rheddev/rhed-v2/internal/logging"
	"github.com/rheddev/rhed-v2/internal/metrics"
)

func TestRateLimiterBurstAndRefill(t *testing.T) {
	now := time.Date(2025, time.March, 4, 12, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(RateLimitConfig{PerMinute: 60, Burst: 2, IdleTTL: time.Minute})
	limiter.now = func() time.Time { return now }

	if !limiter.Allow("1.2.3.4") || !limiter.Allow("1.2.3.4") {
		t.Fatal("expected burst to be allowed")
	}
	if limiter.Allow("1.2.3.4") {
		t.Fatal("expected third request to be limited")
	}
	if !limiter.Allow("5.6.7.8") {
		t.Fatal("expected other clients to have their own budget")
	}

	now = now.Add(time.Second)
	if !limiter.Allow("1.2.3.4") {
		t.Fatal("expected a token after one second")
	}
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	now := time.Date(2025, time.March, 4, 12, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(RateLimitConfig{IdleTTL: time.Minute})
	limiter.now = func() time.Time { return now }

	limiter.Allow("a")
	limiter.Allow("b")
	if limiter.Len() != 2 {
		t.Fatalf("expected 2 tracked clients got %d", limiter.Len())
	}

	now = now.Add(2 * time.Minute)
	limiter.Allow("c")
	if limiter.Len() != 1 {
		t.Fatalf("expected idle clients to be evicted got %d", limiter.Len())
	}
}

func TestRequestLoggerPropagatesRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	var seen string
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.RequestID(r.Context())
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	const id = "7c1f3a2e-9d4b-4c1e-8a55-0f6c2d9b1e42"
	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos", nil)
	req.Header.Set(RequestIDHeader, id)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != id || rec.Header().Get(RequestIDHeader) != id {
		t.Fatalf("expected request id %s to propagate got ctx=%q header=%q", id, seen, rec.Header().Get(RequestIDHeader))
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log: %v", err)
	}
	if entry["level"] != "WARN" || entry["status"] != float64(http.StatusServiceUnavailable) || entry["request_id"] != id {
		t.Fatalf("unexpected log entry: %v", entry)
	}
}

func TestRequestLoggerReplacesInvalidRequestID(t *testing.T) {
	handler := RequestLogger(slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil)))(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not a uuid\nforged")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	got := rec.Header().Get(RequestIDHeader)
	if got == "" || got == "not a uuid\nforged" {
		t.Fatalf("expected a generated request id got %q", got)
	}
}

func TestRequestLoggerRecoversPanics(t *testing.T) {
	handler := RequestLogger(slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil)))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
}

func TestMetricsNormalizesUnknownPaths(t *testing.T) {
	handler := Metrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	before := testutil.ToFloat64(metrics.RequestTotal.WithLabelValues(http.MethodGet, "other", "418"))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/wp-login.php", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/.env", nil))

	if got := testutil.ToFloat64(metrics.RequestTotal.WithLabelValues(http.MethodGet, "other", "418")); got != before+2 {
		t.Fatalf("expected unknown paths to share one label got %v", got-before)
	}
}
