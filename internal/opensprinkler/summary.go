package opensprinkler

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// allData is the subset of the /ja body projected into the summary. Fields
// stay raw so missing or null values can fall back to placeholders.
type allData struct {
	Options  map[string]json.RawMessage `json:"options"`
	Settings map[string]json.RawMessage `json:"settings"`
	Status   map[string]json.RawMessage `json:"status"`
	Stations map[string]json.RawMessage `json:"stations"`
	Programs map[string]json.RawMessage `json:"programs"`
}

// ControllerSummary fetches /ja and renders a short markdown overview.
func (c *Client) ControllerSummary(ctx context.Context) (string, error) {
	payload, err := c.Get(ctx, "/ja", nil)
	if err != nil {
		return "", err
	}
	return FormatSummary(payload, time.Now())
}

// FormatSummary renders the markdown overview of a /ja payload.
func FormatSummary(payload Payload, fetched time.Time) (string, error) {
	var d allData
	if err := json.Unmarshal(payload, &d); err != nil {
		return "", fmt.Errorf("failed to decode controller data: %w", err)
	}

	rainDelay := "Inactive"
	if isOne(d.Settings["rd"]) {
		rainDelay = fmt.Sprintf("Active (until %s)", scalar(d.Settings["rdst"], "undefined"))
	}
	operation := "Disabled"
	if isOne(d.Settings["en"]) {
		operation = "Enabled"
	}
	stationNames := "[]"
	if raw, ok := d.Stations["snames"]; ok && !isNull(raw) {
		stationNames = compact(raw)
	}

	lines := []string{
		"# OpenSprinkler Controller Summary",
		"",
		fmt.Sprintf("- **Firmware**: %s.%s", scalar(d.Options["fwv"], "?"), scalar(d.Options["fwm"], "?")),
		fmt.Sprintf("- **Hardware**: v%s  type=0x%s", scalar(d.Options["hwv"], "?"), hardwareType(d.Options["hwt"])),
		fmt.Sprintf("- **Stations**: %s", scalar(d.Status["nstations"], "?")),
		fmt.Sprintf("- **Programs**: %s", scalar(d.Programs["nprogs"], "?")),
		fmt.Sprintf("- **Operation**: %s", operation),
		fmt.Sprintf("- **Rain Delay**: %s", rainDelay),
		fmt.Sprintf("- **Water Level**: %s%%", scalar(d.Options["wl"], "?")),
		fmt.Sprintf("- **WiFi RSSI**: %s dBm", scalar(d.Settings["RSSI"], "N/A")),
		fmt.Sprintf("- **Device Name**: %s", scalar(d.Settings["dname"], "(not set)")),
		fmt.Sprintf("- **Station Names**: %s", stationNames),
		"",
		fmt.Sprintf("_Fetched at %s_", fetched.UTC().Format("2006-01-02T15:04:05.000Z07:00")),
	}
	return strings.Join(lines, "\n"), nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func isOne(raw json.RawMessage) bool {
	var n float64
	return json.Unmarshal(raw, &n) == nil && n == 1
}

// scalar renders a JSON value for display: strings unquoted, other values
// as compact JSON, missing or null as fallback.
func scalar(raw json.RawMessage, fallback string) string {
	if isNull(raw) {
		return fallback
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return compact(raw)
}

func compact(raw json.RawMessage) string {
	return Payload(raw).Compact()
}

// hardwareType renders hwt as upper-case hex, 0 when absent.
func hardwareType(raw json.RawMessage) string {
	if isNull(raw) {
		return "0"
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return "?"
	}
	return strings.ToUpper(strconv.FormatInt(int64(n), 16))
}
