package tools

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/olgasafonova/opensprinkler-mcp-server/internal/opensprinkler"
	"github.com/olgasafonova/opensprinkler-mcp-server/metrics"
	"github.com/olgasafonova/opensprinkler-mcp-server/tracing"
	"go.opentelemetry.io/otel/attribute"
)

// Resource URIs.
const (
	APIOverviewURI       = "opensprinkler://api-overview"
	ControllerSummaryURI = "opensprinkler://controller-summary"
)

// SummaryErrorPrefix starts the text returned when the summary cannot be
// fetched.
const SummaryErrorPrefix = "Error fetching controller summary: "

// RegisterResources registers the static API reference and the live
// controller summary.
func (h *HandlerRegistry) RegisterResources(server *mcp.Server) {
	server.AddResource(&mcp.Resource{
		URI:         APIOverviewURI,
		Name:        "api-overview",
		Title:       "OpenSprinkler API Overview",
		Description: "Quick reference: result codes, program flag bits, start-time and date encodings, log events, reboot causes, sensor types",
		MIMEType:    "text/markdown",
	}, h.readAPIOverview)

	server.AddResource(&mcp.Resource{
		URI:         ControllerSummaryURI,
		Name:        "controller-summary",
		Title:       "Controller Summary",
		Description: "Live overview of firmware, stations, programs, rain delay and water level",
		MIMEType:    "text/markdown",
	}, h.readControllerSummary)

	h.logger.Info("Registered resources", "count", 2)
}

func (h *HandlerRegistry) readAPIOverview(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	metrics.RecordResourceRead(APIOverviewURI, true)
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      APIOverviewURI,
			MIMEType: "text/markdown",
			Text:     opensprinkler.APIOverview,
		}},
	}, nil
}

// readControllerSummary never fails the read: controller errors are
// reported as text/plain content.
func (h *HandlerRegistry) readControllerSummary(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	ctx, span := tracing.StartSpan(ctx, "mcp.resource.controller-summary")
	defer span.End()
	span.SetAttributes(attribute.String("mcp.resource.uri", ControllerSummaryURI))

	start := time.Now()
	summary, err := h.client.ControllerSummary(ctx)
	if err != nil {
		tracing.RecordError(span, err)
		metrics.RecordResourceRead(ControllerSummaryURI, false)
		h.logger.Warn("Controller summary failed", "error", err, "duration", time.Since(start))
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      ControllerSummaryURI,
				MIMEType: "text/plain",
				Text:     SummaryErrorPrefix + err.Error(),
			}},
		}, nil
	}

	metrics.RecordResourceRead(ControllerSummaryURI, true)
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      ControllerSummaryURI,
			MIMEType: "text/markdown",
			Text:     summary,
		}},
	}, nil
}
