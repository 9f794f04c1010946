// Package opensprinkler is a client for the OpenSprinkler controller HTTP API.
//
// Every endpoint is a GET with a two-letter path and an injected pw
// parameter carrying the MD5 digest of the device password.
package opensprinkler

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/olgasafonova/opensprinkler-mcp-server/internal/base"
	apierrors "github.com/olgasafonova/opensprinkler-mcp-server/internal/errors"
	"github.com/olgasafonova/opensprinkler-mcp-server/metrics"
)

const (
	// DefaultBaseURL is used when no controller address is configured
	DefaultBaseURL = "http://localhost:8080"

	// passwordParam is injected into every request and reserved for callers
	passwordParam = "pw"
)

// Config identifies the controller and its credential. PasswordHash wins
// when both credentials are set.
type Config struct {
	BaseURL      string
	Password     string
	PasswordHash string
}

// Client provides access to an OpenSprinkler controller. It is immutable
// after construction and safe for concurrent use.
type Client struct {
	*base.Client
	baseURL string
	digest  string
}

// ClientOption configures the Client (re-export base.ClientOption)
type ClientOption = base.ClientOption

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) ClientOption {
	return base.WithHTTPClient(c)
}

// WithLogger sets a custom logger
func WithLogger(l *slog.Logger) ClientOption {
	return base.WithLogger(l)
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) ClientOption {
	return base.WithTimeout(d)
}

// WithUserAgent sets the User-Agent header sent to the controller
func WithUserAgent(ua string) ClientOption {
	return base.WithUserAgent(ua)
}

// WithMaxConcurrent bounds parallel requests to the controller
func WithMaxConcurrent(n int) ClientOption {
	return base.WithMaxConcurrent(n)
}

// NewClient creates a controller client. The credential digest is derived
// once here; a missing credential is a configuration error.
func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	var digest string
	switch {
	case cfg.PasswordHash != "":
		digest = cfg.PasswordHash
	case cfg.Password != "":
		digest = HashPassword(cfg.Password)
	default:
		return nil, apierrors.NewConfigError("OS_PASSWORD", "set OS_PASSWORD (plaintext) or OS_PASSWORD_HASH (MD5)")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		Client:  base.NewClient(opts...),
		baseURL: strings.TrimRight(baseURL, "/"),
		digest:  digest,
	}, nil
}

// HashPassword returns the lowercase hex MD5 digest of a plaintext password,
// the form the controller expects in pw.
func HashPassword(plain string) string {
	sum := md5.Sum([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// BaseURL returns the normalized controller address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues a read request and returns the JSON body.
func (c *Client) Get(ctx context.Context, path string, params Params) (Payload, error) {
	body, err := c.fetch(ctx, path, params)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, apierrors.NewProtocolError(path, body)
	}
	return Payload(body), nil
}

// Command issues a state-changing request. It behaves exactly like Get;
// the result code is recorded but never checked.
func (c *Client) Command(ctx context.Context, path string, params Params) (Payload, error) {
	payload, err := c.Get(ctx, path, params)
	if err != nil {
		return nil, err
	}

	if code, ok := payload.ResultCode(); ok {
		metrics.RecordResultCode(path, code)
		level := slog.LevelDebug
		if code != ResultSuccess {
			level = slog.LevelWarn
		}
		c.Logger.Log(ctx, level, "Controller command result",
			"path", path,
			"result", code,
			"meaning", ResultName(code))
	}
	return payload, nil
}

// GetText issues a read request whose body is not JSON, such as a CSV export.
func (c *Client) GetText(ctx context.Context, path string, params Params) (string, error) {
	body, err := c.fetch(ctx, path, params)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) fetch(ctx context.Context, path string, params Params) ([]byte, error) {
	if _, ok := params.Get(passwordParam); ok {
		return nil, apierrors.NewValidationError(passwordParam, "", "is reserved for the controller credential")
	}

	body, _, err := c.DoRequest(ctx, base.RequestConfig{
		URL:  c.requestURL(path, params),
		Path: path,
	})
	return body, err
}

// requestURL concatenates the base address and path so a base path prefix
// (reverse proxy) is preserved. pw is always the first query parameter.
func (c *Client) requestURL(path string, params Params) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	query := append(Params{{Key: passwordParam, Value: c.digest}}, params...)
	return c.baseURL + path + "?" + query.Encode()
}
