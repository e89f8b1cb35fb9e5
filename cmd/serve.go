package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/zjrosen/droidctl/internal/config"
	"github.com/zjrosen/droidctl/internal/logging"
	"github.com/zjrosen/droidctl/internal/mcp"
	"github.com/zjrosen/droidctl/internal/tracing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdio",
	Long: `Serve the droid collection over the Model Context Protocol on
stdin/stdout until SIGINT or SIGTERM.

Tools: list_droids, get_droid, suggest_droids, create_droid,
delete_droid, reload_droids. Resource: droids://catalog.

Logs go to stderr; enable tracing in the config to record a span per
tool call.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	// Stdio carries the protocol, so everything the server says goes to
	// stderr under its own component.
	serveLogger := logging.Init(logging.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Component: "mcp",
	})

	reg, err := newRegistry()
	if err != nil {
		return err
	}

	provider, err := tracing.NewProvider(serveTracingConfig(cfg.Tracing))
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}

	srv := mcp.NewServer(mcp.Deps{
		Registry: reg,
		Version:  version,
		Logger:   serveLogger,
		Tracer:   provider.Tracer(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.NewStdioServer(srv).Listen(ctx, os.Stdin, os.Stdout)
	}()

	serveLogger.Info().
		Int("droids", reg.Count()).
		Bool("tracing", provider.Enabled()).
		Msg("mcp server listening on stdio")

	select {
	case <-ctx.Done():
		serveLogger.Info().Msg("signal received, shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("mcp server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := provider.Shutdown(shutdownCtx); err != nil {
		serveLogger.Warn().Err(err).Msg("tracing shutdown failed")
	}
	return nil
}

// serveTracingConfig merges the tracing config block over the tracing
// defaults, so a sparse block still yields a usable exporter setup. The
// file exporter falls back to the standard traces path when no file_path
// is configured.
func serveTracingConfig(tc config.TracingConfig) tracing.Config {
	out := tracing.DefaultConfig()
	out.Enabled = tc.Enabled
	out.FilePath = tc.FilePath
	if tc.Exporter != "" {
		out.Exporter = tc.Exporter
	}
	if tc.OTLPEndpoint != "" {
		out.OTLPEndpoint = tc.OTLPEndpoint
	}
	if tc.SampleRate > 0 {
		out.SampleRate = tc.SampleRate
	}
	if out.Enabled && out.Exporter == "file" && out.FilePath == "" {
		out.FilePath = config.DefaultTracesFilePath()
	}
	return out
}
