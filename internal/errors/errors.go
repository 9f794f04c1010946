// Package errors provides the error kinds shared by the controller client,
// the tool handlers and startup configuration.
package errors

import (
	"errors"
	"fmt"
)

// Error kinds used as metric labels and in log records.
const (
	KindConfig     = "config"
	KindValidation = "validation"
	KindTransport  = "transport"
	KindProtocol   = "protocol"
	KindInternal   = "internal"
)

// ConfigError indicates a missing or malformed startup setting. It is fatal.
type ConfigError struct {
	Setting string // e.g. "OS_PASSWORD"
	Message string
}

func (e *ConfigError) Error() string {
	if e.Setting != "" {
		return fmt.Sprintf("configuration error (%s): %s", e.Setting, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// NewConfigError creates a ConfigError.
func NewConfigError(setting, message string) *ConfigError {
	return &ConfigError{Setting: setting, Message: message}
}

// ValidationError indicates invalid tool arguments. No request is sent.
type ValidationError struct {
	Field   string // field name that failed validation
	Value   string // the invalid value (empty for sensitive data)
	Message string // human-readable error message
}

func (e *ValidationError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("validation failed for %s=%q: %s", e.Field, e.Value, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// TransportError covers non-2xx statuses, connection failures and timeouts.
type TransportError struct {
	Path       string // controller path, e.g. "/js"
	StatusCode int    // 0 when no response was received
	Timeout    bool
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("request to %s timed out: %v", e.Path, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.Path)
	default:
		return fmt.Sprintf("request to %s failed: %v", e.Path, e.Err)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError indicates a response body that is not valid JSON.
type ProtocolError struct {
	Path    string
	Snippet string // at most MaxSnippetLength characters of the body
}

// MaxSnippetLength bounds the body excerpt carried by ProtocolError.
const MaxSnippetLength = 200

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("non-JSON response from %s: %s", e.Path, e.Snippet)
}

// NewProtocolError creates a ProtocolError, truncating body to MaxSnippetLength runes.
func NewProtocolError(path string, body []byte) *ProtocolError {
	return &ProtocolError{Path: path, Snippet: Snippet(string(body))}
}

// Snippet returns the first MaxSnippetLength characters of s.
func Snippet(s string) string {
	r := []rune(s)
	if len(r) <= MaxSnippetLength {
		return s
	}
	return string(r[:MaxSnippetLength])
}

// IsValidation returns true if err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsTransport returns true if err is or wraps a TransportError.
func IsTransport(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}

// IsTimeout returns true if err is a TransportError caused by a timeout.
func IsTimeout(err error) bool {
	var target *TransportError
	return errors.As(err, &target) && target.Timeout
}

// IsProtocol returns true if err is or wraps a ProtocolError.
func IsProtocol(err error) bool {
	var target *ProtocolError
	return errors.As(err, &target)
}

// IsConfig returns true if err is or wraps a ConfigError.
func IsConfig(err error) bool {
	var target *ConfigError
	return errors.As(err, &target)
}

// Kind classifies err for metrics and logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsValidation(err):
		return KindValidation
	case IsTransport(err):
		return KindTransport
	case IsProtocol(err):
		return KindProtocol
	case IsConfig(err):
		return KindConfig
	default:
		return KindInternal
	}
}
