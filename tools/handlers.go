package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	apierrors "github.com/olgasafonova/opensprinkler-mcp-server/internal/errors"
	"github.com/olgasafonova/opensprinkler-mcp-server/internal/opensprinkler"
	"github.com/olgasafonova/opensprinkler-mcp-server/metrics"
	"github.com/olgasafonova/opensprinkler-mcp-server/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// HandlerRegistry provides type-safe tool registration by mapping
// tool names to their concrete handler implementations.
type HandlerRegistry struct {
	client *opensprinkler.Client
	logger *slog.Logger
}

// NewHandlerRegistry creates a new handler registry.
func NewHandlerRegistry(client *opensprinkler.Client, logger *slog.Logger) *HandlerRegistry {
	return &HandlerRegistry{
		client: client,
		logger: logger,
	}
}

// RegisterAll registers all tools with the MCP server.
func (h *HandlerRegistry) RegisterAll(server *mcp.Server) {
	registered := 0
	for _, spec := range AllTools {
		if h.registerByName(server, spec) {
			registered++
		}
	}
	h.logger.Info("Registered all tools", "count", registered)
}

// registerByName dispatches to the correct typed registration function.
func (h *HandlerRegistry) registerByName(server *mcp.Server, spec ToolSpec) bool {
	tool := h.buildTool(spec)
	c := h.client

	switch spec.Method {
	// Parameterless reads
	case "GetAll", "GetControllerVariables", "GetOptions", "GetStations",
		"GetStationStatus", "GetPrograms", "GetSpecialStations", "GetDebug",
		"GetSensors", "GetSensorTypes", "ListAdjustments", "ListMonitors",
		"BackupSensorConfig", "GetIEEE802154Config", "GetZigbeeDevices",
		"GetZigbeeStatus", "GetBLEDevices", "GetSystemResources":
		register(h, server, tool, spec, c.Query(spec.Path))

	// Status and logs
	case "GetLog":
		register(h, server, tool, spec, c.GetLogMCP)
	case "DeleteLog":
		register(h, server, tool, spec, c.DeleteLogMCP)

	// Control
	case "ChangeControllerVariables":
		register(h, server, tool, spec, c.ChangeControllerVariablesMCP)
	case "ChangeOptions":
		register(h, server, tool, spec, c.ChangeOptionsMCP)
	case "ManualStationRun":
		register(h, server, tool, spec, c.ManualStationRunMCP)
	case "RunOnce":
		register(h, server, tool, spec, c.RunOnceMCP)
	case "ManualProgramStart":
		register(h, server, tool, spec, c.ManualProgramStartMCP)
	case "PauseQueue":
		register(h, server, tool, spec, c.PauseQueueMCP)

	// Programs and stations
	case "ChangeProgram":
		register(h, server, tool, spec, c.ChangeProgramMCP)
	case "DeleteProgram":
		register(h, server, tool, spec, c.DeleteProgramMCP)
	case "MoveProgramUp":
		register(h, server, tool, spec, c.MoveProgramUpMCP)
	case "ChangeStation":
		register(h, server, tool, spec, c.ChangeStationMCP)

	// System
	case "SetPassword":
		register(h, server, tool, spec, c.SetPasswordMCP)
	case "ChangeScriptURLs":
		register(h, server, tool, spec, c.ChangeScriptURLsMCP)

	// Sensors
	case "GetSensorValues":
		register(h, server, tool, spec, c.GetSensorValuesMCP)
	case "GetSensorLog":
		register(h, server, tool, spec, c.GetSensorLogMCP)
	case "ConfigureSensor":
		register(h, server, tool, spec, c.ConfigureSensorMCP)
	case "ReadSensorNow":
		register(h, server, tool, spec, c.ReadSensorNowMCP)
	case "ConfigureAdjustment":
		register(h, server, tool, spec, c.ConfigureAdjustmentMCP)
	case "ConfigureMonitor":
		register(h, server, tool, spec, c.ConfigureMonitorMCP)

	// Radio
	case "SetIEEE802154Config":
		register(h, server, tool, spec, c.SetIEEE802154ConfigMCP)
	case "ZigbeeJoinNetwork":
		register(h, server, tool, spec, c.ZigbeeJoinNetworkMCP)

	default:
		h.logger.Error("Unknown method, tool not registered", "method", spec.Method, "tool", spec.Name)
		return false
	}
	return true
}

// buildTool creates an mcp.Tool from a ToolSpec.
func (h *HandlerRegistry) buildTool(spec ToolSpec) *mcp.Tool {
	annotations := &mcp.ToolAnnotations{
		Title:          spec.Title,
		ReadOnlyHint:   spec.ReadOnly,
		IdempotentHint: spec.Idempotent,
	}
	// DestructiveHint defaults to true for non-read-only tools, so it is
	// always set explicitly.
	annotations.DestructiveHint = ptr(spec.Destructive)
	if spec.OpenWorld {
		annotations.OpenWorldHint = ptr(true)
	}

	return &mcp.Tool{
		Name:        spec.Name,
		Description: spec.Description,
		Annotations: annotations,
	}
}

// register is a generic helper that registers a tool with the MCP server.
// It wraps the client method with panic recovery, metrics, tracing, and logging.
// Read tools render the payload indented, commands render it compact.
func register[Args any](
	h *HandlerRegistry,
	server *mcp.Server,
	tool *mcp.Tool,
	spec ToolSpec,
	method func(context.Context, Args) (opensprinkler.Payload, error),
) {
	mcp.AddTool(server, tool, func(ctx context.Context, req *mcp.CallToolRequest, args Args) (res *mcp.CallToolResult, out any, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = h.recoverPanic(spec.Name, rec)
				res, out = nil, nil
			}
		}()

		callID := uuid.NewString()

		// Start trace span
		ctx, span := tracing.StartSpan(ctx, "mcp.tool."+spec.Name)
		defer span.End()

		tracing.AddToolAttributes(span, spec.Name, spec.Category)
		tracing.AddControllerAttributes(span, spec.Path, spec.kind())
		span.SetAttributes(
			attribute.String("mcp.tool.call_id", callID),
			attribute.Bool("mcp.tool.readonly", spec.ReadOnly),
		)

		// Track in-flight requests
		metrics.RequestInFlight.WithLabelValues(spec.Name).Inc()
		defer metrics.RequestInFlight.WithLabelValues(spec.Name).Dec()

		start := time.Now()
		payload, err := method(ctx, args)
		duration := time.Since(start).Seconds()

		span.SetAttributes(attribute.Float64("mcp.tool.duration_seconds", duration))

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			metrics.RecordRequest(spec.Name, duration, false)
			h.logger.Warn("Tool failed",
				"tool", spec.Name,
				"call_id", callID,
				"kind", apierrors.Kind(err),
				"error", err)
			return nil, nil, fmt.Errorf("%s failed: %w", spec.Name, err)
		}

		span.SetStatus(codes.Ok, "")
		metrics.RecordRequest(spec.Name, duration, true)
		h.logExecution(spec, callID, args, payload)

		text := payload.Compact()
		if spec.ReadOnly {
			text = payload.Indented()
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: text}},
		}, nil, nil
	})
}

// recoverPanic logs and counts a panic in a tool handler and converts it
// into a tool error.
func (h *HandlerRegistry) recoverPanic(toolName string, rec any) error {
	metrics.PanicsRecovered.WithLabelValues(toolName).Inc()
	h.logger.Error("Panic recovered",
		"tool", toolName,
		"panic", rec,
		"stack", string(debug.Stack()))
	return fmt.Errorf("%s failed: internal error", toolName)
}

// logExecution logs tool execution details. Password arguments are never
// logged.
func (h *HandlerRegistry) logExecution(spec ToolSpec, callID string, args any, payload opensprinkler.Payload) {
	attrs := []any{"tool", spec.Name, "category", spec.Category, "call_id", callID}

	// Add extractable fields from args using type assertions
	switch a := args.(type) {
	case opensprinkler.GetLogArgs:
		attrs = appendOpt(attrs, "hist", a.Hist)
		if a.Type != "" {
			attrs = append(attrs, "type", a.Type)
		}
	case opensprinkler.ChangeControllerVariablesArgs:
		attrs = appendOpt(attrs, "en", a.Enable)
		attrs = appendOpt(attrs, "rd", a.RainDelay)
	case opensprinkler.ChangeOptionsArgs:
		attrs = append(attrs, "keys", len(a.Options))
	case opensprinkler.ManualStationRunArgs:
		attrs = append(attrs, "sid", a.StationID, "en", a.Enable)
		attrs = appendOpt(attrs, "t", a.Duration)
	case opensprinkler.ManualProgramStartArgs:
		attrs = append(attrs, "pid", a.ProgramID)
	case opensprinkler.ChangeProgramArgs:
		attrs = append(attrs, "pid", a.ProgramID)
	case opensprinkler.ProgramIDArgs:
		attrs = append(attrs, "pid", a.ProgramID)
	case opensprinkler.MoveProgramUpArgs:
		attrs = append(attrs, "pid", a.ProgramID)
	case opensprinkler.ChangeStationArgs:
		attrs = append(attrs, "keys", len(a.Changes))
	case opensprinkler.DeleteLogArgs:
		attrs = append(attrs, "day", a.Day)
	case opensprinkler.SensorNumberArgs:
		attrs = appendOpt(attrs, "nr", a.Number)
	case opensprinkler.GetSensorLogArgs:
		attrs = appendOpt(attrs, "nr", a.Number)
	case opensprinkler.ConfigureArgs:
		attrs = append(attrs, "nr", a.Params["nr"], "keys", len(a.Params))
	case opensprinkler.ReadSensorNowArgs:
		attrs = append(attrs, "nr", a.Number)
	case opensprinkler.SetIEEE802154ConfigArgs:
		attrs = append(attrs, "active_mode", a.ActiveMode)
	case opensprinkler.ZigbeeJoinArgs:
		attrs = append(attrs, "action", a.Action)
	}

	if !spec.ReadOnly {
		if code, ok := payload.ResultCode(); ok {
			attrs = append(attrs, "result", code, "result_name", opensprinkler.ResultName(code))
		}
	}
	attrs = append(attrs, "bytes", len(payload))

	h.logger.Info("Tool executed", attrs...)
}

func appendOpt(attrs []any, key string, v *int) []any {
	if v == nil {
		return attrs
	}
	return append(attrs, key, *v)
}
