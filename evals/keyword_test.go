package evals

import (
	"errors"
	"testing"
)

func testDescriptions() map[string]string {
	return map[string]string{
		"get_log":            "Get watering log records for a time range.",
		"delete_log":         "Delete log records for a day.",
		"get_stations":       "Get station names and attribute bits.",
		"get_station_status": "Get the current on/off status of every station.",
	}
}

func TestKeywordSelector_SelectTool(t *testing.T) {
	s := NewKeywordSelector(testDescriptions())

	tests := []struct {
		input string
		want  string
	}{
		{"Show the watering log for yesterday", "get_log"},
		{"Delete the log for today", "delete_log"},
		{"What is the status of each station?", "get_station_status"},
		{"List the station names", "get_stations"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, args, err := s.SelectTool(tt.input)
			if err != nil {
				t.Fatalf("SelectTool() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("SelectTool() = %q, want %q", got, tt.want)
			}
			if args == nil || len(args) != 0 {
				t.Errorf("args = %v, want empty map", args)
			}
		})
	}
}

func TestKeywordSelector_NoMatch(t *testing.T) {
	s := NewKeywordSelector(testDescriptions())

	for _, input := range []string{"", "xyzzy", "the and for"} {
		if _, _, err := s.SelectTool(input); !errors.Is(err, ErrNoMatch) {
			t.Errorf("SelectTool(%q) error = %v, want ErrNoMatch", input, err)
		}
	}
}

func TestKeywordSelector_TieGoesToFirstName(t *testing.T) {
	s := NewKeywordSelector(map[string]string{
		"zone_b": "Water the garden.",
		"zone_a": "Water the garden.",
	})
	got, _, err := s.SelectTool("water garden")
	if err != nil {
		t.Fatalf("SelectTool() error = %v", err)
	}
	if got != "zone_a" {
		t.Errorf("SelectTool() = %q, want zone_a", got)
	}
}

func TestWordSet(t *testing.T) {
	got := wordSet("Show the Stations' status, and 2 programs!")
	for _, want := range []string{"station", "statu", "program"} {
		if !got[want] {
			t.Errorf("wordSet missing %q: %v", want, got)
		}
	}
	for _, unwanted := range []string{"show", "the", "and", "2"} {
		if got[unwanted] {
			t.Errorf("wordSet kept %q", unwanted)
		}
	}
}

func TestEvaluateToolSelection_KeywordBaseline(t *testing.T) {
	suite := &ToolSelectionSuite{Tests: []ToolSelectionTest{
		{ID: "a", Category: "logs", Input: "Show the watering log", ExpectedTool: "get_log"},
		{ID: "b", Category: "logs", Input: "Delete the log for day 3", ExpectedTool: "delete_log",
			ExpectedArgs: map[string]any{"day": 3}},
	}}

	m, results := EvaluateToolSelection(suite, NewKeywordSelector(testDescriptions()))
	if m.TotalTests != 2 || m.PassedTests != 1 {
		t.Fatalf("passed %d of %d, want 1 of 2", m.PassedTests, m.TotalTests)
	}
	if !results[0].Passed {
		t.Errorf("result a failed: %v", results[0].Errors)
	}
	if results[1].Passed || results[1].ActualTool != "delete_log" {
		t.Errorf("result b = %+v, want delete_log chosen but missing args", results[1])
	}
}
