// Package evals provides evaluation framework for testing MCP tool selection accuracy.
// It validates that LLMs select the correct irrigation tool and extract proper
// arguments from natural language requests such as "water the lawn for ten minutes".
package evals

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Suite file names inside an evals directory.
const (
	ToolSelectionFile  = "tool_selection.yaml"
	ConfusionPairsFile = "confusion_pairs.yaml"
	ArgumentsFile      = "argument_correctness.yaml"
)

// ToolSelectionTest represents a single tool selection evaluation case
type ToolSelectionTest struct {
	ID           string         `yaml:"id"`
	Category     string         `yaml:"category"`
	Input        string         `yaml:"input"`
	ExpectedTool string         `yaml:"expected_tool"`
	ExpectedArgs map[string]any `yaml:"expected_args"`
	NotTools     []string       `yaml:"not_tools"`
}

// ToolSelectionSuite contains all tool selection tests
type ToolSelectionSuite struct {
	Name        string              `yaml:"name"`
	Version     string              `yaml:"version"`
	Description string              `yaml:"description"`
	Tests       []ToolSelectionTest `yaml:"tests"`
}

// ConfusionPairTest represents a single disambiguation test
type ConfusionPairTest struct {
	Input    string `yaml:"input"`
	Expected string `yaml:"expected"`
	Reason   string `yaml:"reason"`
}

// ConfusionPair represents tools that are commonly confused, such as
// run_once and manual_program_start
type ConfusionPair struct {
	ID             string              `yaml:"id"`
	Tools          []string            `yaml:"tools"`
	Disambiguation string              `yaml:"disambiguation"`
	Tests          []ConfusionPairTest `yaml:"tests"`
}

// ConfusionPairSuite contains all confusion pair tests
type ConfusionPairSuite struct {
	Name        string          `yaml:"name"`
	Version     string          `yaml:"version"`
	Description string          `yaml:"description"`
	Pairs       []ConfusionPair `yaml:"pairs"`
}

// ArgumentTest represents a single argument correctness test
type ArgumentTest struct {
	ID            string         `yaml:"id"`
	Tool          string         `yaml:"tool"`
	Input         string         `yaml:"input"`
	RequiredArgs  []string       `yaml:"required_args"`
	ExpectedArgs  map[string]any `yaml:"expected_args"`
	ForbiddenArgs []string       `yaml:"forbidden_args"`
	ArgNotes      string         `yaml:"arg_notes,omitempty"`
}

// ValidationRules documents argument conventions the model must follow
type ValidationRules struct {
	StationIndexing string `yaml:"station_indexing"`
	DurationUnits   string `yaml:"duration_units"`
	BooleanHandling string `yaml:"boolean_handling"`
	ArrayHandling   string `yaml:"array_handling"`
}

// ArgumentSuite contains all argument correctness tests
type ArgumentSuite struct {
	Name            string          `yaml:"name"`
	Version         string          `yaml:"version"`
	Description     string          `yaml:"description"`
	Tests           []ArgumentTest  `yaml:"tests"`
	ValidationRules ValidationRules `yaml:"validation_rules"`
}

// ToolSelectionResult represents the result of a single tool selection evaluation
type ToolSelectionResult struct {
	TestID       string
	Input        string
	ExpectedTool string
	ActualTool   string
	Passed       bool
	Errors       []string
}

// ConfusionPairResult represents the result of a confusion pair evaluation
type ConfusionPairResult struct {
	PairID       string
	TestInput    string
	ExpectedTool string
	ActualTool   string
	Reason       string
	Passed       bool
}

// ArgumentResult represents the result of an argument correctness evaluation
type ArgumentResult struct {
	TestID       string
	Tool         string
	Input        string
	Passed       bool
	Errors       []string
	MissingArgs  []string
	WrongArgs    map[string]string // arg -> "expected X, got Y"
	ForbiddenHit []string          // forbidden args that were used
}

// EvalMetrics contains aggregate metrics for an evaluation run
type EvalMetrics struct {
	TotalTests    int
	PassedTests   int
	FailedTests   int
	Accuracy      float64 // PassedTests / TotalTests
	ByCategory    map[string]*CategoryMetrics
	ByTool        map[string]*ToolMetrics
	FailedDetails []string
}

// CategoryMetrics contains metrics per category
type CategoryMetrics struct {
	Total  int
	Passed int
	Failed int
}

// ToolMetrics contains metrics per tool
type ToolMetrics struct {
	ExpectedCount  int // times tool was expected
	SelectedCount  int // times tool was actually selected
	CorrectCount   int // times tool was correctly selected
	FalsePositives int // times wrong tool was selected instead
	FalseNegatives int // times this tool should have been selected but wasn't
}

func newEvalMetrics() *EvalMetrics {
	return &EvalMetrics{
		ByCategory: make(map[string]*CategoryMetrics),
		ByTool:     make(map[string]*ToolMetrics),
	}
}

func (m *EvalMetrics) category(name string) *CategoryMetrics {
	if m.ByCategory[name] == nil {
		m.ByCategory[name] = &CategoryMetrics{}
	}
	return m.ByCategory[name]
}

func (m *EvalMetrics) tool(name string) *ToolMetrics {
	if m.ByTool[name] == nil {
		m.ByTool[name] = &ToolMetrics{}
	}
	return m.ByTool[name]
}

func (m *EvalMetrics) record(category string, passed bool, detail string) {
	m.TotalTests++
	c := m.category(category)
	c.Total++
	if passed {
		m.PassedTests++
		c.Passed++
		return
	}
	m.FailedTests++
	c.Failed++
	m.FailedDetails = append(m.FailedDetails, detail)
}

func (m *EvalMetrics) finish() {
	if m.TotalTests > 0 {
		m.Accuracy = float64(m.PassedTests) / float64(m.TotalTests)
	}
}

func loadYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}
	return nil
}

// LoadToolSelectionSuite loads tool selection tests from a YAML file
func LoadToolSelectionSuite(path string) (*ToolSelectionSuite, error) {
	var suite ToolSelectionSuite
	if err := loadYAML(path, &suite); err != nil {
		return nil, err
	}
	return &suite, nil
}

// LoadConfusionPairSuite loads confusion pair tests from a YAML file
func LoadConfusionPairSuite(path string) (*ConfusionPairSuite, error) {
	var suite ConfusionPairSuite
	if err := loadYAML(path, &suite); err != nil {
		return nil, err
	}
	return &suite, nil
}

// LoadArgumentSuite loads argument correctness tests from a YAML file
func LoadArgumentSuite(path string) (*ArgumentSuite, error) {
	var suite ArgumentSuite
	if err := loadYAML(path, &suite); err != nil {
		return nil, err
	}
	return &suite, nil
}

// Suites bundles the three evaluation suites of one directory.
type Suites struct {
	ToolSelection  *ToolSelectionSuite
	ConfusionPairs *ConfusionPairSuite
	Arguments      *ArgumentSuite
}

// TotalTests counts test cases across all suites.
func (s *Suites) TotalTests() int {
	total := len(s.ToolSelection.Tests) + len(s.Arguments.Tests)
	for _, pair := range s.ConfusionPairs.Pairs {
		total += len(pair.Tests)
	}
	return total
}

// CoveredTools returns the sorted names of every tool a suite mentions.
func (s *Suites) CoveredTools() []string {
	seen := make(map[string]bool)
	for _, test := range s.ToolSelection.Tests {
		seen[test.ExpectedTool] = true
	}
	for _, pair := range s.ConfusionPairs.Pairs {
		for _, tool := range pair.Tools {
			seen[tool] = true
		}
	}
	for _, test := range s.Arguments.Tests {
		seen[test.Tool] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadAll loads all evaluation suites from a directory
func LoadAll(dir string) (*Suites, error) {
	toolSelection, err := LoadToolSelectionSuite(filepath.Join(dir, ToolSelectionFile))
	if err != nil {
		return nil, fmt.Errorf("loading tool selection: %w", err)
	}

	confusionPairs, err := LoadConfusionPairSuite(filepath.Join(dir, ConfusionPairsFile))
	if err != nil {
		return nil, fmt.Errorf("loading confusion pairs: %w", err)
	}

	arguments, err := LoadArgumentSuite(filepath.Join(dir, ArgumentsFile))
	if err != nil {
		return nil, fmt.Errorf("loading arguments: %w", err)
	}

	return &Suites{
		ToolSelection:  toolSelection,
		ConfusionPairs: confusionPairs,
		Arguments:      arguments,
	}, nil
}

// Catalog maps each registered tool name to its argument names.
type Catalog map[string]map[string]bool

// CatalogFromSchemas builds a Catalog from tool input schemas. A schema may
// be any value that marshals to a JSON Schema object, as returned by
// tools/list.
func CatalogFromSchemas(schemas map[string]any) (Catalog, error) {
	catalog := make(Catalog, len(schemas))
	for name, schema := range schemas {
		data, err := json.Marshal(schema)
		if err != nil {
			return nil, fmt.Errorf("schema for %s: %w", name, err)
		}
		var s struct {
			Properties map[string]json.RawMessage `json:"properties"`
		}
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("schema for %s: %w", name, err)
		}
		args := make(map[string]bool, len(s.Properties))
		for arg := range s.Properties {
			args[arg] = true
		}
		catalog[name] = args
	}
	return catalog, nil
}

// Validate checks that every suite names registered tools and, where
// arguments are listed, only arguments those tools accept. It returns one
// message per problem.
func (s *Suites) Validate(catalog Catalog) []string {
	var problems []string

	checkTool := func(where, tool string) bool {
		if _, ok := catalog[tool]; !ok {
			problems = append(problems, fmt.Sprintf("%s: unknown tool %q", where, tool))
			return false
		}
		return true
	}
	checkArgs := func(where, tool string, names []string) {
		for _, name := range names {
			if !catalog[tool][name] {
				problems = append(problems, fmt.Sprintf("%s: %s has no argument %q", where, tool, name))
			}
		}
	}

	for _, test := range s.ToolSelection.Tests {
		where := "tool_selection[" + test.ID + "]"
		if checkTool(where, test.ExpectedTool) {
			checkArgs(where, test.ExpectedTool, sortedKeys(test.ExpectedArgs))
		}
		for _, tool := range test.NotTools {
			checkTool(where, tool)
		}
	}

	for _, pair := range s.ConfusionPairs.Pairs {
		where := "confusion_pairs[" + pair.ID + "]"
		members := make(map[string]bool, len(pair.Tools))
		for _, tool := range pair.Tools {
			checkTool(where, tool)
			members[tool] = true
		}
		for _, test := range pair.Tests {
			if !members[test.Expected] {
				problems = append(problems, fmt.Sprintf("%s: expected tool %q is not in the pair", where, test.Expected))
			}
		}
	}

	for _, test := range s.Arguments.Tests {
		where := "argument_correctness[" + test.ID + "]"
		if !checkTool(where, test.Tool) {
			continue
		}
		checkArgs(where, test.Tool, test.RequiredArgs)
		checkArgs(where, test.Tool, sortedKeys(test.ExpectedArgs))
		checkArgs(where, test.Tool, test.ForbiddenArgs)
	}

	return problems
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ToolSelector is an interface that an LLM or mock can implement for testing
type ToolSelector interface {
	// SelectTool returns the tool name and arguments for a given natural language input
	SelectTool(input string) (toolName string, args map[string]any, err error)
}

// EvaluateToolSelection runs tool selection tests against a selector
func EvaluateToolSelection(suite *ToolSelectionSuite, selector ToolSelector) (*EvalMetrics, []ToolSelectionResult) {
	m := newEvalMetrics()
	var results []ToolSelectionResult

	for _, test := range suite.Tests {
		m.tool(test.ExpectedTool).ExpectedCount++

		actualTool, actualArgs, err := selector.SelectTool(test.Input)

		result := ToolSelectionResult{
			TestID:       test.ID,
			Input:        test.Input,
			ExpectedTool: test.ExpectedTool,
			ActualTool:   actualTool,
			Passed:       true,
		}

		if err != nil {
			result.Passed = false
			result.Errors = append(result.Errors, fmt.Sprintf("selector error: %v", err))
		}

		m.tool(actualTool).SelectedCount++
		if actualTool != test.ExpectedTool {
			result.Passed = false
			result.Errors = append(result.Errors,
				fmt.Sprintf("wrong tool: expected %s, got %s", test.ExpectedTool, actualTool))
			m.tool(test.ExpectedTool).FalseNegatives++
			m.tool(actualTool).FalsePositives++
		} else {
			m.tool(test.ExpectedTool).CorrectCount++
		}

		for _, forbidden := range test.NotTools {
			if actualTool == forbidden {
				result.Passed = false
				result.Errors = append(result.Errors,
					fmt.Sprintf("selected forbidden tool: %s", forbidden))
			}
		}

		for _, key := range sortedKeys(test.ExpectedArgs) {
			expectedValue := test.ExpectedArgs[key]
			actualValue, exists := actualArgs[key]
			if !exists {
				result.Passed = false
				result.Errors = append(result.Errors,
					fmt.Sprintf("missing arg %s (expected %v)", key, expectedValue))
			} else if !compareValues(expectedValue, actualValue) {
				result.Passed = false
				result.Errors = append(result.Errors,
					fmt.Sprintf("wrong arg %s: expected %v, got %v", key, expectedValue, actualValue))
			}
		}

		m.record(test.Category, result.Passed,
			fmt.Sprintf("[%s] %s: %s", test.ID, test.Input, strings.Join(result.Errors, "; ")))
		results = append(results, result)
	}

	m.finish()
	return m, results
}

// EvaluateConfusionPairs runs confusion pair tests against a selector
func EvaluateConfusionPairs(suite *ConfusionPairSuite, selector ToolSelector) (*EvalMetrics, []ConfusionPairResult) {
	m := newEvalMetrics()
	var results []ConfusionPairResult

	for _, pair := range suite.Pairs {
		for _, test := range pair.Tests {
			m.tool(test.Expected).ExpectedCount++

			actualTool, _, err := selector.SelectTool(test.Input)

			result := ConfusionPairResult{
				PairID:       pair.ID,
				TestInput:    test.Input,
				ExpectedTool: test.Expected,
				ActualTool:   actualTool,
				Reason:       test.Reason,
				Passed:       err == nil && actualTool == test.Expected,
			}

			m.tool(actualTool).SelectedCount++
			if result.Passed {
				m.tool(test.Expected).CorrectCount++
			} else {
				m.tool(test.Expected).FalseNegatives++
				m.tool(actualTool).FalsePositives++
			}

			// Pair ID doubles as the category
			m.record(pair.ID, result.Passed,
				fmt.Sprintf("[%s] %s: expected %s, got %s (%s)",
					pair.ID, test.Input, test.Expected, actualTool, test.Reason))
			results = append(results, result)
		}
	}

	m.finish()
	return m, results
}

// EvaluateArguments runs argument correctness tests against a selector
func EvaluateArguments(suite *ArgumentSuite, selector ToolSelector) (*EvalMetrics, []ArgumentResult) {
	m := newEvalMetrics()
	var results []ArgumentResult

	for _, test := range suite.Tests {
		actualTool, actualArgs, err := selector.SelectTool(test.Input)

		result := ArgumentResult{
			TestID:    test.ID,
			Tool:      test.Tool,
			Input:     test.Input,
			Passed:    true,
			WrongArgs: make(map[string]string),
		}

		switch {
		case err != nil:
			result.Passed = false
			result.Errors = append(result.Errors, fmt.Sprintf("selector error: %v", err))
		case actualTool != test.Tool:
			result.Passed = false
			result.Errors = append(result.Errors,
				fmt.Sprintf("wrong tool: expected %s, got %s", test.Tool, actualTool))
		default:
			checkArguments(&result, test, actualArgs)
		}

		// Tool name doubles as the category
		m.record(test.Tool, result.Passed,
			fmt.Sprintf("[%s] %s: %s", test.ID, test.Input, strings.Join(argumentErrors(result), "; ")))
		results = append(results, result)
	}

	m.finish()
	return m, results
}

func checkArguments(result *ArgumentResult, test ArgumentTest, actualArgs map[string]any) {
	for _, reqArg := range test.RequiredArgs {
		if _, exists := actualArgs[reqArg]; !exists {
			result.Passed = false
			result.MissingArgs = append(result.MissingArgs, reqArg)
		}
	}

	for _, key := range sortedKeys(test.ExpectedArgs) {
		expectedValue := test.ExpectedArgs[key]
		actualValue, exists := actualArgs[key]
		if !exists {
			result.Passed = false
			result.MissingArgs = append(result.MissingArgs, key)
		} else if !compareValues(expectedValue, actualValue) {
			result.Passed = false
			result.WrongArgs[key] = fmt.Sprintf("expected %v, got %v", expectedValue, actualValue)
		}
	}

	for _, forbidden := range test.ForbiddenArgs {
		if _, exists := actualArgs[forbidden]; exists {
			result.Passed = false
			result.ForbiddenHit = append(result.ForbiddenHit, forbidden)
		}
	}
}

func argumentErrors(result ArgumentResult) []string {
	details := append([]string(nil), result.Errors...)
	if len(result.MissingArgs) > 0 {
		details = append(details, fmt.Sprintf("missing: %v", result.MissingArgs))
	}
	wrong := make([]string, 0, len(result.WrongArgs))
	for k, v := range result.WrongArgs {
		wrong = append(wrong, fmt.Sprintf("%s: %s", k, v))
	}
	sort.Strings(wrong)
	details = append(details, wrong...)
	if len(result.ForbiddenHit) > 0 {
		details = append(details, fmt.Sprintf("forbidden: %v", result.ForbiddenHit))
	}
	return details
}

// compareValues compares expected and actual values, handling type differences
func compareValues(expected, actual any) bool {
	if expected == nil && actual == nil {
		return true
	}
	if expected == nil || actual == nil {
		return false
	}

	ev := reflect.ValueOf(expected)
	av := reflect.ValueOf(actual)

	// YAML decodes integers as int, JSON as float64
	if ef, ok := asFloat(ev); ok {
		if af, ok := asFloat(av); ok {
			return ef == af
		}
		return false
	}

	if ev.Kind() == reflect.Slice && av.Kind() == reflect.Slice {
		if ev.Len() != av.Len() {
			return false
		}
		for i := 0; i < ev.Len(); i++ {
			if !compareValues(ev.Index(i).Interface(), av.Index(i).Interface()) {
				return false
			}
		}
		return true
	}

	return reflect.DeepEqual(expected, actual)
}

func asFloat(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	}
	return 0, false
}

// FormatMetrics returns a human-readable summary of evaluation metrics
func FormatMetrics(m *EvalMetrics, suiteName string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n=== %s ===\n", suiteName)
	fmt.Fprintf(&b, "Total: %d tests\n", m.TotalTests)
	fmt.Fprintf(&b, "Passed: %d (%.1f%%)\n", m.PassedTests, m.Accuracy*100)
	fmt.Fprintf(&b, "Failed: %d\n", m.FailedTests)

	if len(m.ByCategory) > 0 {
		b.WriteString("\nBy Category:\n")
		categories := make([]string, 0, len(m.ByCategory))
		for cat := range m.ByCategory {
			categories = append(categories, cat)
		}
		sort.Strings(categories)
		for _, cat := range categories {
			c := m.ByCategory[cat]
			if c.Total > 0 {
				acc := float64(c.Passed) / float64(c.Total) * 100
				fmt.Fprintf(&b, "  %-25s: %d/%d (%.0f%%)\n", cat, c.Passed, c.Total, acc)
			}
		}
	}

	if n := len(m.FailedDetails); n > 0 {
		shown := m.FailedDetails
		if n > 10 {
			shown = shown[:10]
			fmt.Fprintf(&b, "\nFailed Tests (showing first 10 of %d):\n", n)
		} else {
			b.WriteString("\nFailed Tests:\n")
		}
		for _, detail := range shown {
			fmt.Fprintf(&b, "  - %s\n", detail)
		}
	}

	return b.String()
}
