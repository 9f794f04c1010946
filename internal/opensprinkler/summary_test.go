package opensprinkler

import (
	"context"
	"strings"
	"testing"
	"time"
)

var fetchedAt = time.Date(2026, 5, 4, 7, 30, 0, 123_000_000, time.UTC)

func TestFormatSummary(t *testing.T) {
	payload := Payload(`{
		"options": {"fwv": 221, "fwm": 4, "hwv": 33, "hwt": 172, "wl": 85},
		"settings": {"en": 1, "rd": 1, "rdst": 1746400000, "RSSI": -61, "dname": "Garden"},
		"status": {"nstations": 8},
		"stations": {"snames": ["Front", "Back"]},
		"programs": {"nprogs": 3}
	}`)

	got, err := FormatSummary(payload, fetchedAt)
	if err != nil {
		t.Fatalf("FormatSummary() error = %v", err)
	}

	want := strings.Join([]string{
		"# OpenSprinkler Controller Summary",
		"",
		"- **Firmware**: 221.4",
		"- **Hardware**: v33  type=0xAC",
		"- **Stations**: 8",
		"- **Programs**: 3",
		"- **Operation**: Enabled",
		"- **Rain Delay**: Active (until 1746400000)",
		"- **Water Level**: 85%",
		"- **WiFi RSSI**: -61 dBm",
		"- **Device Name**: Garden",
		`- **Station Names**: ["Front","Back"]`,
		"",
		"_Fetched at 2026-05-04T07:30:00.123Z_",
	}, "\n")
	if got != want {
		t.Errorf("FormatSummary() =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatSummary_MissingFields(t *testing.T) {
	got, err := FormatSummary(Payload(`{"settings":{"en":0,"rd":0}}`), fetchedAt)
	if err != nil {
		t.Fatalf("FormatSummary() error = %v", err)
	}

	for _, line := range []string{
		"- **Firmware**: ?.?",
		"- **Hardware**: v?  type=0x0",
		"- **Operation**: Disabled",
		"- **Rain Delay**: Inactive",
		"- **WiFi RSSI**: N/A dBm",
		"- **Device Name**: (not set)",
		"- **Station Names**: []",
	} {
		if !strings.Contains(got, line) {
			t.Errorf("summary missing %q:\n%s", line, got)
		}
	}
}

func TestFormatSummary_InvalidPayload(t *testing.T) {
	if _, err := FormatSummary(Payload(`[1,2]`), fetchedAt); err == nil {
		t.Error("expected error for a non-object payload")
	}
}

func TestControllerSummary(t *testing.T) {
	fc := newFakeController(t, `{"options":{"fwv":219},"settings":{"en":1},"status":{"nstations":16}}`)
	c := newTestClient(t, fc.URL)

	got, err := c.ControllerSummary(context.Background())
	if err != nil {
		t.Fatalf("ControllerSummary() error = %v", err)
	}
	if fc.last(t).URL.Path != "/ja" {
		t.Errorf("path = %q, want /ja", fc.last(t).URL.Path)
	}
	if !strings.Contains(got, "- **Stations**: 16") {
		t.Errorf("summary missing station count:\n%s", got)
	}
	if !strings.Contains(got, "_Fetched at ") {
		t.Errorf("summary missing fetch time:\n%s", got)
	}
}

func TestResultName(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{ResultSuccess, "Success"},
		{ResultMismatch, "Mismatch"},
		{ResultUploadFailed, "Upload Failed"},
		{99, "Unknown (99)"},
	}

	for _, tt := range tests {
		if got := ResultName(tt.code); got != tt.want {
			t.Errorf("ResultName(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
