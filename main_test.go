package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	apierrors "github.com/olgasafonova/opensprinkler-mcp-server/internal/errors"
	"github.com/olgasafonova/opensprinkler-mcp-server/internal/opensprinkler"
	"github.com/olgasafonova/opensprinkler-mcp-server/tools"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewRateLimiter(t *testing.T) {
	rl := NewRateLimiter(10, time.Minute)
	defer rl.Close()

	if rl == nil {
		t.Fatal("NewRateLimiter returned nil")
	}
	if rl.rate != 10 {
		t.Errorf("rate = %d, want 10", rl.rate)
	}
	if rl.interval != time.Minute {
		t.Errorf("interval = %v, want %v", rl.interval, time.Minute)
	}
	if rl.stopCh == nil {
		t.Error("stopCh should be initialized")
	}
}

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(3, time.Second)
	defer rl.Close()

	ip := "192.168.1.1"

	// First 3 requests should be allowed
	for i := 0; i < 3; i++ {
		if !rl.Allow(ip) {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	// 4th request should be denied
	if rl.Allow(ip) {
		t.Error("4th request should be denied")
	}
}

func TestRateLimiterMultipleIPs(t *testing.T) {
	rl := NewRateLimiter(2, time.Second)
	defer rl.Close()

	ip1 := "192.168.1.1"
	ip2 := "192.168.1.2"

	// Each IP should have its own bucket
	for i := 0; i < 2; i++ {
		if !rl.Allow(ip1) {
			t.Errorf("Request %d for ip1 should be allowed", i+1)
		}
		if !rl.Allow(ip2) {
			t.Errorf("Request %d for ip2 should be allowed", i+1)
		}
	}

	// Both should now be rate limited
	if rl.Allow(ip1) {
		t.Error("ip1 should be rate limited")
	}
	if rl.Allow(ip2) {
		t.Error("ip2 should be rate limited")
	}
}

func TestRateLimiterClose(t *testing.T) {
	rl := NewRateLimiter(10, time.Minute)

	// Close should not panic
	rl.Close()

	// Multiple closes should be safe
	rl.Close()
	rl.Close()
}

func TestRateLimiterRefill(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)
	defer rl.Close()

	ip := "192.168.1.1"

	// First request allowed
	if !rl.Allow(ip) {
		t.Error("First request should be allowed")
	}

	// Immediate second should be denied
	if rl.Allow(ip) {
		t.Error("Immediate second request should be denied")
	}

	// Wait for refill
	time.Sleep(15 * time.Millisecond)

	// Should be allowed again
	if !rl.Allow(ip) {
		t.Error("Request after refill should be allowed")
	}
}

func TestRateLimiterForgetIdle(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	defer rl.Close()

	if !rl.Allow("10.0.0.1") {
		t.Fatal("first request should be allowed")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("second request should be denied")
	}

	rl.forgetIdle(time.Now(), time.Hour)
	if len(rl.visitors) != 1 {
		t.Fatalf("visitors = %d, want 1 after sweeping a recent visitor", len(rl.visitors))
	}

	rl.forgetIdle(time.Now().Add(2*time.Hour), time.Hour)
	if len(rl.visitors) != 0 {
		t.Fatalf("visitors = %d, want 0 after sweeping an idle visitor", len(rl.visitors))
	}
	if !rl.Allow("10.0.0.1") {
		t.Error("a forgotten visitor should start with a full bucket")
	}
}

func TestRecoverPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError}))

	func() {
		defer recoverPanic(logger, "test operation")
		panic("test panic")
	}()

	if !strings.Contains(buf.String(), "operation=\"test operation\"") {
		t.Errorf("panic not logged: %s", buf.String())
	}
}

// Mock handler for testing
type mockHandler struct {
	called bool
	body   []byte
	err    error
}

func (m *mockHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.called = true
	if r.Body != nil {
		m.body, m.err = io.ReadAll(r.Body)
	}
	w.WriteHeader(http.StatusOK)
}

func TestSecurityMiddlewareBasic(t *testing.T) {
	handler := &mockHandler{}
	sm := NewSecurityMiddleware(handler, quietLogger(), SecurityConfig{MaxBodySize: 1000})
	defer sm.Close()

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	w := httptest.NewRecorder()

	sm.ServeHTTP(w, req)

	if !handler.called {
		t.Error("Handler should have been called")
	}
	if sm.limiter != nil {
		t.Error("rate limit 0 should disable the limiter")
	}
}

func TestSecurityMiddlewareWithRateLimit(t *testing.T) {
	handler := &mockHandler{}
	sm := NewSecurityMiddleware(handler, quietLogger(), SecurityConfig{
		RateLimit:   2, // 2 requests per minute
		MaxBodySize: 1000,
	})
	defer sm.Close()

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"

	// First two requests should succeed
	for i := 0; i < 2; i++ {
		handler.called = false
		w := httptest.NewRecorder()
		sm.ServeHTTP(w, req)
		if !handler.called {
			t.Errorf("Request %d should have been allowed", i+1)
		}
	}

	// Third request should be rate limited
	handler.called = false
	w := httptest.NewRecorder()
	sm.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", w.Code)
	}
	if handler.called {
		t.Error("rate limited request reached the handler")
	}
}

func TestSecurityMiddlewareBodyLimit(t *testing.T) {
	handler := &mockHandler{}
	sm := NewSecurityMiddleware(handler, quietLogger(), SecurityConfig{MaxBodySize: 8})
	defer sm.Close()

	req := httptest.NewRequest("POST", "/mcp", strings.NewReader(`{"jsonrpc":"2.0"}`))
	sm.ServeHTTP(httptest.NewRecorder(), req)

	if handler.err == nil {
		t.Errorf("oversized body read without error: %q", handler.body)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{"192.168.1.1:12345", "192.168.1.1"},
		{"[::1]:8080", "::1"},
		{"unix", "unix"},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = tt.remote
		if got := clientIP(r); got != tt.want {
			t.Errorf("clientIP(%q) = %q, want %q", tt.remote, got, tt.want)
		}
	}
}

func newTestServer(t *testing.T) *mcp.Server {
	t.Helper()
	client, err := opensprinkler.NewClient(opensprinkler.Config{Password: "admin"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	t.Cleanup(client.Close)
	return newServer(client, quietLogger())
}

func TestHTTPMux_HealthAndMetrics(t *testing.T) {
	mux, secured := newHTTPMux(newTestServer(t), quietLogger(), 2)
	defer secured.Close()
	ts := httptest.NewServer(mux)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), ServerName) {
		t.Errorf("/health = %d %s", resp.StatusCode, body)
	}

	// Exhaust the /mcp budget; the third request is rejected
	var last int
	for i := 0; i < 3; i++ {
		resp, err := http.Get(ts.URL + "/mcp")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		last = resp.StatusCode
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("third /mcp request = %d, want 429", last)
	}

	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "opensprinkler_mcp_http_requests_total") {
		t.Error("/metrics does not expose HTTP transport counters")
	}
	if !strings.Contains(string(body), "opensprinkler_mcp_rate_limit_rejections_total") {
		t.Error("/metrics does not expose rate limit rejections")
	}
}

func TestHTTPMux_StreamableSession(t *testing.T) {
	mux, secured := newHTTPMux(newTestServer(t), quietLogger(), 0)
	defer secured.Close()
	ts := httptest.NewServer(mux)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	cs, err := client.Connect(ctx, &mcp.StreamableClientTransport{
		Endpoint:             ts.URL + "/mcp",
		DisableStandaloneSSE: true,
	}, nil)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer cs.Close()

	res, err := cs.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools() error = %v", err)
	}
	if len(res.Tools) != len(tools.AllTools) {
		t.Errorf("listed %d tools, want %d", len(res.Tools), len(tools.AllTools))
	}

	read, err := cs.ReadResource(ctx, &mcp.ReadResourceParams{URI: tools.APIOverviewURI})
	if err != nil {
		t.Fatalf("ReadResource() error = %v", err)
	}
	if len(read.Contents) != 1 || read.Contents[0].Text == "" {
		t.Errorf("api overview contents = %+v", read.Contents)
	}
}

func TestListToolSchemas(t *testing.T) {
	schemas, err := listToolSchemas(context.Background())
	if err != nil {
		t.Fatalf("listToolSchemas() error = %v", err)
	}
	if len(schemas) != len(tools.AllTools) {
		t.Errorf("got %d schemas, want %d", len(schemas), len(tools.AllTools))
	}
	if _, ok := schemas["manual_station_run"]; !ok {
		t.Error("manual_station_run missing")
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestHashCommand(t *testing.T) {
	out, err := execute(t, "hash", "opendoor")
	if err != nil {
		t.Fatalf("hash error = %v", err)
	}
	if strings.TrimSpace(out) != opensprinkler.HashPassword("opendoor") {
		t.Errorf("hash output = %q", out)
	}

	if _, err := execute(t, "hash"); err == nil {
		t.Error("hash without a password should fail")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if out != ServerName+" v"+ServerVersion+"\n" {
		t.Errorf("version output = %q", out)
	}
}

func TestToolsCommand(t *testing.T) {
	out, err := execute(t, "tools")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"status:", "radio:", "manual_station_run", "/cm", "40 tools"} {
		if !strings.Contains(out, want) {
			t.Errorf("tools output missing %q", want)
		}
	}
	if strings.Index(out, "status:") > strings.Index(out, "control:") {
		t.Error("categories out of order")
	}
}

func TestEvalsCommand(t *testing.T) {
	out, err := execute(t, "evals", "--dir", "evals")
	if err != nil {
		t.Fatalf("evals error = %v\n%s", err, out)
	}
	for _, want := range []string{
		"All eval cases reference registered tools",
		"=== Tool Selection (keyword baseline) ===",
		"=== Confusion Pairs (keyword baseline) ===",
		"=== Arguments (keyword baseline) ===",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("evals output missing %q:\n%s", want, out)
		}
	}

	if _, err := execute(t, "evals", "--dir", t.TempDir()); err == nil {
		t.Error("evals on an empty directory should fail")
	}
}

func TestEvalsCommand_ReportsProblems(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"tool_selection.yaml":       "name: x\ntests:\n  - id: bad\n    input: water\n    expected_tool: water_lawn\n",
		"confusion_pairs.yaml":      "name: x\npairs: []\n",
		"argument_correctness.yaml": "name: x\ntests: []\n",
	}
	for name, content := range files {
		if err := os.WriteFile(dir+"/"+name, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	out, err := execute(t, "evals", "--dir", dir)
	if err == nil {
		t.Fatal("expected an error for an unknown tool")
	}
	if !strings.Contains(out, `unknown tool "water_lawn"`) {
		t.Errorf("evals output = %s", out)
	}
}

func TestServe_ConfigError(t *testing.T) {
	for _, k := range []string{"OS_CONFIG", "OS_PASSWORD", "OS_PASSWORD_HASH", "OS_TIMEOUT",
		"OS_MAX_CONCURRENT", "OS_HTTP_RATE_LIMIT", "OS_LOG_LEVEL", "OS_LOG_FORMAT"} {
		t.Setenv(k, "")
	}

	err := runServer(context.Background(), "", "")
	if !apierrors.IsConfig(err) {
		t.Fatalf("runServer() = %v, want ConfigError", err)
	}
	if !strings.Contains(err.Error(), "OS_PASSWORD") {
		t.Errorf("error %q does not name OS_PASSWORD", err)
	}

	if _, err := execute(t, "serve"); !apierrors.IsConfig(err) {
		t.Errorf("serve = %v, want ConfigError", err)
	}
}

func TestServe_HTTPShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serveHTTP(ctx, newTestServer(t), quietLogger(), "127.0.0.1:0", 0)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serveHTTP() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serveHTTP did not stop after cancel")
	}
}
