package opensprinkler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	apierrors "github.com/olgasafonova/opensprinkler-mcp-server/internal/errors"
	"github.com/olgasafonova/opensprinkler-mcp-server/metrics"
	dto "github.com/prometheus/client_model/go"
)

// adminDigest is the MD5 hex digest of "admin".
const adminDigest = "21232f297a57a5a743894a0e4a801fc3"

// fakeController records requests and answers with a fixed body.
type fakeController struct {
	*httptest.Server

	mu       sync.Mutex
	requests []*http.Request
	status   int
	body     string
}

func newFakeController(t *testing.T, body string) *fakeController {
	t.Helper()
	fc := &fakeController{status: http.StatusOK, body: body}
	fc.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fc.mu.Lock()
		fc.requests = append(fc.requests, r)
		status, body := fc.status, fc.body
		fc.mu.Unlock()

		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(fc.Close)
	return fc
}

func (fc *fakeController) last(t *testing.T) *http.Request {
	t.Helper()
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if len(fc.requests) == 0 {
		t.Fatal("no request reached the controller")
	}
	return fc.requests[len(fc.requests)-1]
}

func (fc *fakeController) setStatus(status int) {
	fc.mu.Lock()
	fc.status = status
	fc.mu.Unlock()
}

func (fc *fakeController) count() int {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return len(fc.requests)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, baseURL string, opts ...ClientOption) *Client {
	t.Helper()
	opts = append([]ClientOption{WithLogger(quietLogger())}, opts...)
	c, err := NewClient(Config{BaseURL: baseURL, Password: "admin"}, opts...)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestHashPassword(t *testing.T) {
	tests := []struct {
		plain string
		want  string
	}{
		{"admin", adminDigest},
		{"opendoor", "a6d82bced638de3def1e9bbb4983225c"},
		{"", "d41d8cd98f00b204e9800998ecf8427e"},
	}

	for _, tt := range tests {
		if got := HashPassword(tt.plain); got != tt.want {
			t.Errorf("HashPassword(%q) = %q, want %q", tt.plain, got, tt.want)
		}
		if HashPassword(tt.plain) != HashPassword(tt.plain) {
			t.Errorf("HashPassword(%q) is not deterministic", tt.plain)
		}
	}
}

func TestNewClient_MissingCredential(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "http://host"})
	if err == nil {
		t.Fatal("expected error without credential")
	}
	if !apierrors.IsConfig(err) {
		t.Errorf("error = %T, want *ConfigError", err)
	}
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	c, err := NewClient(Config{Password: "admin"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	defer c.Close()

	if c.BaseURL() != DefaultBaseURL {
		t.Errorf("BaseURL() = %q, want %q", c.BaseURL(), DefaultBaseURL)
	}
}

func TestNewClient_TrimsTrailingSlashes(t *testing.T) {
	c, err := NewClient(Config{BaseURL: "http://host///", Password: "admin"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	defer c.Close()

	if c.BaseURL() != "http://host" {
		t.Errorf("BaseURL() = %q, want %q", c.BaseURL(), "http://host")
	}
}

func TestRequestURL_AdminScenario(t *testing.T) {
	c, err := NewClient(Config{BaseURL: "http://host", Password: "admin"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	defer c.Close()

	want := "http://host/ja?pw=" + adminDigest
	if got := c.requestURL("/ja", nil); got != want {
		t.Errorf("requestURL() = %q, want %q", got, want)
	}
}

func TestRequestURL_PasswordFirst(t *testing.T) {
	c, err := NewClient(Config{BaseURL: "http://host/os/", PasswordHash: "abc"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	defer c.Close()

	p := Params{{Key: "sid", Value: "0"}, {Key: "en", Value: "1"}}
	want := "http://host/os/cm?pw=abc&sid=0&en=1"
	if got := c.requestURL("/cm", p); got != want {
		t.Errorf("requestURL() = %q, want %q", got, want)
	}
}

func TestGet_AdminScenario(t *testing.T) {
	fc := newFakeController(t, `{"settings":{}}`)
	c := newTestClient(t, fc.URL+"/")

	if _, err := c.Get(context.Background(), "/ja", nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	r := fc.last(t)
	if r.Method != http.MethodGet {
		t.Errorf("method = %s, want GET", r.Method)
	}
	if r.URL.Path != "/ja" {
		t.Errorf("path = %q, want /ja", r.URL.Path)
	}
	if r.URL.RawQuery != "pw="+adminDigest {
		t.Errorf("query = %q, want %q", r.URL.RawQuery, "pw="+adminDigest)
	}
}

func TestGet_PreHashedVerbatim(t *testing.T) {
	fc := newFakeController(t, `{}`)
	hash := "0123456789ABCDEF0123456789abcdef"
	c, err := NewClient(Config{BaseURL: fc.URL, PasswordHash: hash, Password: "ignored"}, WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	defer c.Close()

	if _, err := c.Get(context.Background(), "/jc", nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got := fc.last(t).URL.Query().Get("pw"); got != hash {
		t.Errorf("pw = %q, want %q (verbatim)", got, hash)
	}
}

func TestGet_ReturnsBodyUnmodified(t *testing.T) {
	body := `{"z":1,"a":[1,2,{"nested":true}],"fwv":219}`
	fc := newFakeController(t, body)
	c := newTestClient(t, fc.URL)

	got, err := c.Get(context.Background(), "/jo", nil)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != body {
		t.Errorf("payload = %s, want %s", got, body)
	}
}

func TestGet_ReservedPassword(t *testing.T) {
	fc := newFakeController(t, `{}`)
	c := newTestClient(t, fc.URL)

	_, err := c.Get(context.Background(), "/jo", Params{{Key: "pw", Value: "x"}})
	if !apierrors.IsValidation(err) {
		t.Fatalf("error = %v, want validation error", err)
	}
	if fc.count() != 0 {
		t.Error("request was sent despite validation failure")
	}
}

func TestGet_ServerError(t *testing.T) {
	fc := newFakeController(t, "boom")
	fc.setStatus(http.StatusInternalServerError)
	c := newTestClient(t, fc.URL)

	_, err := c.Get(context.Background(), "/js", nil)
	if err == nil {
		t.Fatal("expected error for HTTP 500")
	}

	var te *apierrors.TransportError
	if !asTransportError(err, &te) {
		t.Fatalf("error = %T, want *TransportError", err)
	}
	if te.StatusCode != 500 {
		t.Errorf("StatusCode = %d, want 500", te.StatusCode)
	}
	if te.Path != "/js" {
		t.Errorf("Path = %q, want /js", te.Path)
	}
	if strings.Contains(err.Error(), adminDigest) {
		t.Errorf("error leaks credential digest: %v", err)
	}
	if fc.count() != 1 {
		t.Errorf("requests = %d, want 1 (no retries)", fc.count())
	}
}

func TestGet_ProtocolError(t *testing.T) {
	body := "<html>" + strings.Repeat("x", 500) + "</html>"
	fc := newFakeController(t, body)
	c := newTestClient(t, fc.URL)

	_, err := c.Get(context.Background(), "/jo", nil)
	if !apierrors.IsProtocol(err) {
		t.Fatalf("error = %v, want protocol error", err)
	}

	pe := err.(*apierrors.ProtocolError)
	if n := len([]rune(pe.Snippet)); n > 200 {
		t.Errorf("snippet length = %d, want <= 200", n)
	}
	if !strings.HasPrefix(body, pe.Snippet) {
		t.Error("snippet should be a prefix of the body")
	}
}

func TestGet_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	c := newTestClient(t, server.URL, WithTimeout(50*time.Millisecond))

	start := time.Now()
	_, err := c.Get(context.Background(), "/ja", nil)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !apierrors.IsTimeout(err) {
		t.Errorf("IsTimeout(%v) = false, want true", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("request took %v, want it bounded by the timeout", elapsed)
	}
}

func TestCommand_DoesNotCheckResult(t *testing.T) {
	fc := newFakeController(t, `{"result":2}`)
	c := newTestClient(t, fc.URL)

	got, err := c.Command(context.Background(), "/cv", Params{{Key: "en", Value: "1"}})
	if err != nil {
		t.Fatalf("Command() error = %v", err)
	}
	if string(got) != `{"result":2}` {
		t.Errorf("payload = %s, want result passed through", got)
	}
}

func TestCommand_AuthResultsCountAsAuthFailures(t *testing.T) {
	tests := []struct {
		code   int
		reason string
	}{
		{ResultUnauthorized, "unauthorized"},
		{ResultMismatch, "mismatch"},
	}
	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			fc := newFakeController(t, fmt.Sprintf(`{"result":%d}`, tt.code))
			c := newTestClient(t, fc.URL)

			before := authFailures(t, tt.reason)
			if _, err := c.Command(context.Background(), "/cv", nil); err != nil {
				t.Fatalf("Command() error = %v", err)
			}
			if got := authFailures(t, tt.reason); got != before+1 {
				t.Errorf("auth failures[%s] = %v, want %v", tt.reason, got, before+1)
			}
		})
	}
}

func authFailures(t *testing.T, reason string) float64 {
	t.Helper()
	var m dto.Metric
	if err := metrics.AuthFailures.WithLabelValues(reason).Write(&m); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return m.Counter.GetValue()
}

func TestGetText(t *testing.T) {
	csv := "nr;time;value\n1;1700000000;21.5\n"
	fc := newFakeController(t, csv)
	c := newTestClient(t, fc.URL)

	got, err := c.GetText(context.Background(), "/so", Params{{Key: "format", Value: "csv"}})
	if err != nil {
		t.Fatalf("GetText() error = %v", err)
	}
	if got != csv {
		t.Errorf("GetText() = %q, want %q", got, csv)
	}
}

func asTransportError(err error, target **apierrors.TransportError) bool {
	te, ok := err.(*apierrors.TransportError)
	if ok {
		*target = te
	}
	return ok
}
