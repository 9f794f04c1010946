// Package base provides the shared HTTP client infrastructure used to talk to
// the irrigation controller.
package base

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	apierrors "github.com/olgasafonova/opensprinkler-mcp-server/internal/errors"
	"github.com/olgasafonova/opensprinkler-mcp-server/metrics"
	"github.com/olgasafonova/opensprinkler-mcp-server/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	// DefaultTimeout for controller requests
	DefaultTimeout = 15 * time.Second

	// MaxConcurrentRequests limits parallel requests to the controller.
	// The controller is a microcontroller with very few sockets.
	MaxConcurrentRequests = 4

	// MaxResponseSize caps the response body read from the controller
	MaxResponseSize = 4 << 20

	// DefaultUserAgent identifies the server to the controller
	DefaultUserAgent = "opensprinkler-mcp-server/1.0"
)

// Client provides common HTTP client infrastructure: a fixed per-request
// timeout, bounded concurrency, typed errors and request instrumentation.
// It never retries.
type Client struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
	Timeout    time.Duration
	UserAgent  string
	Semaphore  chan struct{}
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.HTTPClient = c
	}
}

// WithLogger sets a custom logger
func WithLogger(l *slog.Logger) ClientOption {
	return func(client *Client) {
		client.Logger = l
	}
}

// WithTimeout sets the per-request timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) ClientOption {
	return func(client *Client) {
		if d > 0 {
			client.Timeout = d
		}
	}
}

// WithMaxConcurrent sets how many requests may be in flight at once.
func WithMaxConcurrent(n int) ClientOption {
	return func(client *Client) {
		if n > 0 {
			client.Semaphore = make(chan struct{}, n)
		}
	}
}

// WithUserAgent sets the User-Agent header sent to the controller
func WithUserAgent(ua string) ClientOption {
	return func(client *Client) {
		if ua != "" {
			client.UserAgent = ua
		}
	}
}

// NewClient creates a new base client with default settings
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		HTTPClient: newHTTPClient(),
		Logger:     slog.Default(),
		Timeout:    DefaultTimeout,
		UserAgent:  DefaultUserAgent,
		Semaphore:  make(chan struct{}, MaxConcurrentRequests),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Close releases idle connections held by the client
func (c *Client) Close() {
	if c.HTTPClient != nil {
		c.HTTPClient.CloseIdleConnections()
	}
}

// AcquireSlot blocks until a request slot is available or context is canceled
func (c *Client) AcquireSlot(ctx context.Context) error {
	select {
	case c.Semaphore <- struct{}{}:
		return nil
	default:
	}

	metrics.ControllerSlotWaits.Inc()
	select {
	case c.Semaphore <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context canceled while waiting for request slot: %w", ctx.Err())
	}
}

// ReleaseSlot releases a request slot
func (c *Client) ReleaseSlot() {
	<-c.Semaphore
}

// RequestConfig configures a single HTTP request
type RequestConfig struct {
	// URL is the full request URL, credentials included
	URL string

	// Path identifies the endpoint in errors, logs, metrics and spans.
	// It must never carry credentials.
	Path string

	UserAgent string
}

// DoRequest performs exactly one GET request. It returns the body of a 2xx
// response. Any other outcome is a *errors.TransportError.
func (c *Client) DoRequest(ctx context.Context, cfg RequestConfig) ([]byte, int, error) {
	ctx, span := tracing.StartSpan(ctx, "opensprinkler.request")
	defer span.End()
	span.SetAttributes(attribute.String("opensprinkler.path", cfg.Path))

	start := time.Now()
	body, status, err := c.do(ctx, cfg)
	duration := time.Since(start)

	span.SetAttributes(attribute.Int("http.status_code", status))
	metrics.RecordAPICall(cfg.Path, duration.Seconds(), err == nil, apierrors.Kind(err))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.Logger.Warn("Controller request failed",
			"path", cfg.Path,
			"status", status,
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return nil, status, err
	}

	metrics.ResponseSize.WithLabelValues(cfg.Path).Observe(float64(len(body)))
	span.SetStatus(codes.Ok, "")
	c.Logger.Debug("Controller request",
		"path", cfg.Path,
		"status", status,
		"bytes", len(body),
		"duration_ms", duration.Milliseconds())
	return body, status, nil
}

func (c *Client) do(ctx context.Context, cfg RequestConfig) ([]byte, int, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	// The deadline covers the wait for a slot as well as the request.
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := c.AcquireSlot(ctx); err != nil {
		return nil, 0, &apierrors.TransportError{
			Path:    cfg.Path,
			Timeout: isTimeout(ctx, err),
			Err:     err,
		}
	}
	defer c.ReleaseSlot()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.URL, nil)
	if err != nil {
		return nil, 0, &apierrors.TransportError{Path: cfg.Path, Err: fmt.Errorf("failed to create request: %w", scrubURL(err))}
	}

	req.Header.Set("Accept", "application/json")
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	} else {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, &apierrors.TransportError{
			Path:    cfg.Path,
			Timeout: isTimeout(ctx, err),
			Err:     scrubURL(err),
		}
	}

	body, err := readAndClose(resp)
	if err != nil {
		return nil, resp.StatusCode, &apierrors.TransportError{
			Path:       cfg.Path,
			StatusCode: resp.StatusCode,
			Timeout:    isTimeout(ctx, err),
			Err:        fmt.Errorf("failed to read response: %w", err),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, &apierrors.TransportError{
			Path:       cfg.Path,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s: %s", resp.Status, truncate(string(body), 200)),
		}
	}

	return body, resp.StatusCode, nil
}

// isTimeout reports whether err came from the request deadline rather than
// a caller cancellation or a connection failure.
func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// scrubURL drops the request URL from *url.Error so the credential digest in
// the query string never reaches logs or tool output.
func scrubURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}

// readAndClose reads the response body and closes it
func readAndClose(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, err
	}
	if len(body) > MaxResponseSize {
		return nil, fmt.Errorf("response body exceeds %d bytes", MaxResponseSize)
	}
	return body, nil
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// newHTTPClient creates an HTTP client tuned for a single LAN device.
// Deadlines come from the per-request context.
func newHTTPClient() *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        4,
		MaxIdleConnsPerHost: MaxConcurrentRequests,
		MaxConnsPerHost:     MaxConcurrentRequests,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &http.Client{Transport: transport}
}
