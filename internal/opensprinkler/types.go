package opensprinkler

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Payload is a controller response body as received. Its shape is owned by
// the firmware and is passed through unmodified. Bodies fetched with GetText
// (CSV exports) are not JSON and render as-is.
type Payload json.RawMessage

// MarshalJSON returns JSON payloads verbatim and text payloads as a string.
func (p Payload) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	if !json.Valid(p) {
		return json.Marshal(string(p))
	}
	return p, nil
}

// String returns the body as received.
func (p Payload) String() string {
	return string(p)
}

// Indented renders the payload with two-space indentation.
func (p Payload) Indented() string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, p, "", "  "); err != nil {
		return string(p)
	}
	return buf.String()
}

// Compact renders the payload without insignificant whitespace.
func (p Payload) Compact() string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, p); err != nil {
		return string(p)
	}
	return buf.String()
}

// ResultCode reads the top-level "result" number of a command reply.
func (p Payload) ResultCode() (int, bool) {
	var r struct {
		Result *int `json:"result"`
	}
	if err := json.Unmarshal(p, &r); err != nil || r.Result == nil {
		return 0, false
	}
	return *r.Result, true
}

// Result codes returned by command endpoints.
const (
	ResultSuccess         = 1
	ResultUnauthorized    = 2
	ResultMismatch        = 3
	ResultDataMissing     = 16
	ResultOutOfRange      = 17
	ResultDataFormatError = 18
	ResultPageNotFound    = 32
	ResultNotPermitted    = 48
	ResultUploadFailed    = 64
)

var resultNames = map[int]string{
	ResultSuccess:         "Success",
	ResultUnauthorized:    "Unauthorized",
	ResultMismatch:        "Mismatch",
	ResultDataMissing:     "Data Missing",
	ResultOutOfRange:      "Out of Range",
	ResultDataFormatError: "Data Format Error",
	ResultPageNotFound:    "Page Not Found",
	ResultNotPermitted:    "Not Permitted",
	ResultUploadFailed:    "Upload Failed",
}

// ResultName returns the documented meaning of a result code.
func ResultName(code int) string {
	if name, ok := resultNames[code]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (%d)", code)
}

// NoArgs is the argument type of parameterless tools.
type NoArgs struct{}
