// Package tools provides a metadata-driven registry for MCP tool definitions.
// It reduces boilerplate in main.go by defining tools declaratively and
// using type-safe handlers to register them.
package tools

// ToolSpec defines a tool's metadata for declarative registration.
// Each spec maps to an opensprinkler client method with a matching Args type.
type ToolSpec struct {
	// Name is the MCP tool name (e.g., "manual_station_run")
	Name string

	// Method is the client method name (e.g., "ManualStationRun")
	Method string

	// Path is the controller endpoint the tool calls (e.g., "/cm")
	Path string

	// Description is the tool description shown to LLMs
	Description string

	// Title is the human-readable tool title for annotations
	Title string

	// Category groups tools logically (status, control, sensors, etc.)
	Category string

	// ReadOnly indicates the tool doesn't modify controller state
	ReadOnly bool

	// Destructive indicates the tool can delete or overwrite data
	Destructive bool

	// Idempotent indicates repeated calls have the same effect
	Idempotent bool

	// OpenWorld indicates the tool accesses external resources
	OpenWorld bool
}

// kind reports whether the tool is a controller read or a command.
func (s ToolSpec) kind() string {
	if s.ReadOnly {
		return "read"
	}
	return "command"
}

// ptr is a helper to create a pointer to a value.
func ptr[T any](v T) *T {
	return &v
}
