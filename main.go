// OpenSprinkler MCP Server - A Model Context Protocol server for OpenSprinkler irrigation controllers
// Provides tools for reading controller state, running stations and programs, and managing sensors
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/olgasafonova/opensprinkler-mcp-server/evals"
	"github.com/olgasafonova/opensprinkler-mcp-server/internal/config"
	"github.com/olgasafonova/opensprinkler-mcp-server/internal/opensprinkler"
	"github.com/olgasafonova/opensprinkler-mcp-server/tools"
	"github.com/olgasafonova/opensprinkler-mcp-server/tracing"
	"github.com/spf13/cobra"
)

// recoverPanic logs a panic in a long-running goroutine instead of crashing
func recoverPanic(logger *slog.Logger, operation string) {
	if r := recover(); r != nil {
		logger.Error("Panic recovered",
			"operation", operation,
			"panic", r,
			"stack", string(debug.Stack()))
	}
}

const (
	ServerName    = "opensprinkler-mcp-server"
	ServerVersion = "1.0.0"
)

const instructions = `OpenSprinkler MCP Server controls an OpenSprinkler irrigation controller over its HTTP API.

Tool categories:
- status: get_all, get_controller_variables, get_options
- control: change_controller_variables, change_options, manual_station_run, run_once, manual_program_start, pause_queue
- programs: get_programs, change_program, delete_program, move_program_up
- stations: get_stations, get_station_status, get_special_stations, change_station
- logs: get_log, delete_log
- system: get_debug, get_system_resources, set_password, change_script_urls
- sensors: get_sensors, get_sensor_values, get_sensor_log, configure_sensor, read_sensor_now, get_sensor_types, list_adjustments, configure_adjustment, list_monitors, configure_monitor, backup_sensor_config
- radio: get_ieee802154_config, set_ieee802154_config, get_zigbee_devices, zigbee_join_network, get_zigbee_status, get_ble_devices

Resources:
- opensprinkler://api-overview: result codes, program encodings, log and sensor reference
- opensprinkler://controller-summary: live overview of the controller

Station and program indexes are 0-based. Durations are seconds. Commands return {"result": n}; 1 is success.

Configure via environment variables:
- OS_BASE_URL: controller address (default http://localhost:8080)
- OS_PASSWORD: device password in plaintext, or
- OS_PASSWORD_HASH: MD5 digest of the device password`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		httpAddr   string
	)

	serve := func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServer(ctx, configPath, httpAddr)
	}

	rootCmd := &cobra.Command{
		Use:   ServerName,
		Short: "MCP server for OpenSprinkler irrigation controllers",
		Long: `Exposes the OpenSprinkler controller API as MCP tools and resources.

Runs on stdio by default; pass --http to serve streamable HTTP at /mcp.`,
		SilenceUsage: true,
		RunE:         serve,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default $OS_CONFIG)")
	rootCmd.Flags().StringVar(&httpAddr, "http", "", "serve streamable HTTP on this address instead of stdio, e.g. :8080")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server (default command)",
		Args:  cobra.NoArgs,
		RunE:  serve,
	}
	serveCmd.Flags().StringVar(&httpAddr, "http", "", "serve streamable HTTP on this address instead of stdio, e.g. :8080")

	hashCmd := &cobra.Command{
		Use:   "hash <password>",
		Short: "Print the MD5 digest to use as OS_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), opensprinkler.HashPassword(args[0]))
		},
	}

	toolsCmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tool catalogue by category",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printTools(cmd.OutOrStdout())
		},
	}

	var evalsDir string
	evalsCmd := &cobra.Command{
		Use:   "evals",
		Short: "Load the tool-selection eval suites and check them against the catalogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvals(cmd.Context(), cmd.OutOrStdout(), evalsDir)
		},
	}
	evalsCmd.Flags().StringVar(&evalsDir, "dir", "./evals", "directory containing the eval YAML files")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s v%s\n", ServerName, ServerVersion)
		},
	}

	rootCmd.AddCommand(serveCmd, hashCmd, toolsCmd, evalsCmd, versionCmd)
	return rootCmd
}

// newServer creates the MCP server with every tool and resource registered.
func newServer(client *opensprinkler.Client, logger *slog.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, &mcp.ServerOptions{
		Logger:       logger,
		Instructions: instructions,
	})

	registry := tools.NewHandlerRegistry(client, logger)
	registry.RegisterAll(server)
	registry.RegisterResources(server)
	return server
}

func runServer(ctx context.Context, configPath, httpAddr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if httpAddr == "" {
		httpAddr = cfg.HTTP.Addr
	}

	// Logging goes to stderr; stdout carries the stdio MCP stream
	logger := cfg.NewLogger(os.Stderr)

	opts := append(cfg.ClientOptions(logger), opensprinkler.WithUserAgent(ServerName+"/"+ServerVersion))
	client, err := opensprinkler.NewClient(cfg.Client(), opts...)
	if err != nil {
		return err
	}
	defer client.Close()

	tc := tracing.DefaultConfig()
	tc.ServiceVersion = ServerVersion
	tc.ControllerURL = client.BaseURL()
	tc.Transport = transportName(httpAddr)
	shutdown, err := tracing.Setup(ctx, tc)
	if err != nil {
		return fmt.Errorf("tracing setup: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			logger.Warn("Tracing shutdown failed", "error", err)
		}
	}()

	server := newServer(client, logger)

	logger.Info("Starting OpenSprinkler MCP Server",
		"name", ServerName,
		"version", ServerVersion,
		"controller", client.BaseURL(),
		"password_hash", cfg.HasPasswordHash(),
		"transport", transportName(httpAddr),
	)

	if httpAddr == "" {
		if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
	return serveHTTP(ctx, server, logger, httpAddr, cfg.HTTP.RateLimit)
}

func transportName(httpAddr string) string {
	if httpAddr == "" {
		return "stdio"
	}
	return "http"
}

func serveHTTP(ctx context.Context, server *mcp.Server, logger *slog.Logger, addr string, rateLimit int) error {
	mux, secured := newHTTPMux(server, logger, rateLimit)
	defer secured.Close()

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		defer recoverPanic(logger, "http server")
		logger.Info("HTTP server listening", "addr", addr, "endpoint", "/mcp", "rate_limit", rateLimit)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		logger.Info("Shutting down HTTP server")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(sctx)
	}
}

func printTools(w io.Writer) {
	for _, category := range tools.Categories() {
		fmt.Fprintf(w, "%s:\n", category)
		for _, spec := range tools.AllTools {
			if spec.Category != category {
				continue
			}
			mode := "command"
			if spec.ReadOnly {
				mode = "read"
			}
			fmt.Fprintf(w, "  %-30s %-4s %-8s %s\n", spec.Name, spec.Path, mode, spec.Title)
		}
	}
	fmt.Fprintf(w, "\n%d tools\n", len(tools.AllTools))
}

func runEvals(ctx context.Context, w io.Writer, dir string) error {
	suites, err := evals.LoadAll(dir)
	if err != nil {
		return err
	}

	schemas, err := listToolSchemas(ctx)
	if err != nil {
		return fmt.Errorf("listing tools: %w", err)
	}
	catalog, err := evals.CatalogFromSchemas(schemas)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Loaded evaluation suites from: %s\n\n", dir)
	fmt.Fprintf(w, "Tool Selection Tests:   %d\n", len(suites.ToolSelection.Tests))
	fmt.Fprintf(w, "Confusion Pair Tests:   %d (across %d pairs)\n",
		suites.TotalTests()-len(suites.ToolSelection.Tests)-len(suites.Arguments.Tests),
		len(suites.ConfusionPairs.Pairs))
	fmt.Fprintf(w, "Argument Tests:         %d\n", len(suites.Arguments.Tests))
	fmt.Fprintf(w, "Total Evaluation Tests: %d\n", suites.TotalTests())
	fmt.Fprintf(w, "Tool Coverage:          %d of %d tools\n", len(suites.CoveredTools()), len(catalog))

	problems := suites.Validate(catalog)
	if len(problems) > 0 {
		fmt.Fprintf(w, "\nProblems:\n  - %s\n", strings.Join(problems, "\n  - "))
		return fmt.Errorf("%d eval problems found", len(problems))
	}
	fmt.Fprintln(w, "\nAll eval cases reference registered tools and arguments.")

	printBaseline(w, suites)
	return nil
}

// printBaseline scores the suites against a keyword matcher over the tool
// descriptions, as a floor for model-backed runs.
func printBaseline(w io.Writer, suites *evals.Suites) {
	descriptions := make(map[string]string, len(tools.AllTools))
	for _, spec := range tools.AllTools {
		descriptions[spec.Name] = spec.Title + " " + spec.Description
	}
	selector := evals.NewKeywordSelector(descriptions)

	selection, _ := evals.EvaluateToolSelection(suites.ToolSelection, selector)
	pairs, _ := evals.EvaluateConfusionPairs(suites.ConfusionPairs, selector)
	arguments, _ := evals.EvaluateArguments(suites.Arguments, selector)

	fmt.Fprint(w, evals.FormatMetrics(selection, "Tool Selection (keyword baseline)"))
	fmt.Fprint(w, evals.FormatMetrics(pairs, "Confusion Pairs (keyword baseline)"))
	fmt.Fprint(w, evals.FormatMetrics(arguments, "Arguments (keyword baseline)"))
}

// listToolSchemas lists the registered tools over an in-memory session and
// returns their input schemas by name. The controller is never contacted.
func listToolSchemas(ctx context.Context) (map[string]any, error) {
	client, err := opensprinkler.NewClient(opensprinkler.Config{PasswordHash: "unused"})
	if err != nil {
		return nil, err
	}
	defer client.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := newServer(client, logger)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		return nil, err
	}
	defer ss.Close()

	mcpClient := mcp.NewClient(&mcp.Implementation{Name: ServerName + "-evals", Version: ServerVersion}, nil)
	cs, err := mcpClient.Connect(ctx, clientTransport, nil)
	if err != nil {
		return nil, err
	}
	defer cs.Close()

	res, err := cs.ListTools(ctx, nil)
	if err != nil {
		return nil, err
	}
	schemas := make(map[string]any, len(res.Tools))
	for _, tool := range res.Tools {
		schemas[tool.Name] = tool.InputSchema
	}
	return schemas, nil
}
