// Package mcp exposes the droid registry as an MCP stdio server.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/droidctl/internal/droid"
	"github.com/zjrosen/droidctl/internal/registry"
	"github.com/zjrosen/droidctl/internal/tracing"
)

// CatalogURI is the resource URI for the droid catalog.
const CatalogURI = "droids://catalog"

// Deps holds dependencies for the MCP server.
type Deps struct {
	Registry *registry.Registry
	Version  string
	Logger   zerolog.Logger
	Tracer   trace.Tracer // optional; nil disables span creation
}

// NewServer creates an MCP server with all droidctl tools and resources
// registered. Mutating tools (create_droid, delete_droid) do not refresh
// the loaded collection; clients call reload_droids to observe changes.
func NewServer(deps Deps) *server.MCPServer {
	if deps.Tracer == nil {
		deps.Tracer = noop.NewTracerProvider().Tracer("droidctl")
	}

	s := server.NewMCPServer(
		"droidctl",
		deps.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("droidctl: local registry of droid profiles (specialized assistant definitions) with keyword-based suggestions."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("list_droids",
			mcp.WithDescription("List all loaded droids. Project-scope droids override same-named user-scope droids."),
			mcp.WithBoolean("verbose", mcp.Description("Return full droid definitions instead of summaries")),
		),
		instrument(deps, "list_droids", mcpListDroids(deps)),
	)

	s.AddTool(
		mcp.NewTool("get_droid",
			mcp.WithDescription("Fetch one droid by exact name, including its system prompt."),
			mcp.WithString("name", mcp.Description("Droid name"), mcp.Required()),
		),
		instrument(deps, "get_droid", mcpGetDroid(deps)),
	)

	s.AddTool(
		mcp.NewTool("suggest_droids",
			mcp.WithDescription("Return names of proactive droids whose description or triggers match the given context text."),
			mcp.WithString("context", mcp.Description("Free-text context to match against"), mcp.Required()),
		),
		instrument(deps, "suggest_droids", mcpSuggestDroids(deps)),
	)

	s.AddTool(
		mcp.NewTool("create_droid",
			mcp.WithDescription("Write a starter droid file. The registry is not reloaded; call reload_droids to pick it up."),
			mcp.WithString("name", mcp.Description("Droid name (lowercase letters, digits, hyphens, underscores)"), mcp.Required()),
			mcp.WithString("scope", mcp.Description("Target scope: \"user\" (default) or \"project\"")),
		),
		instrument(deps, "create_droid", mcpCreateDroid(deps)),
	)

	s.AddTool(
		mcp.NewTool("delete_droid",
			mcp.WithDescription("Delete a droid's backing file. The registry keeps the stale entry until reload_droids."),
			mcp.WithString("name", mcp.Description("Droid name"), mcp.Required()),
		),
		instrument(deps, "delete_droid", mcpDeleteDroid(deps)),
	)

	s.AddTool(
		mcp.NewTool("reload_droids",
			mcp.WithDescription("Rescan the droid directories and rebuild the collection."),
		),
		instrument(deps, "reload_droids", mcpReloadDroids(deps)),
	)

	s.AddResource(
		mcp.NewResource(
			CatalogURI,
			"Droid Catalog",
			mcp.WithResourceDescription("Summary of all loaded droids as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceCatalog(deps),
	)

	return s
}

// instrument wraps a tool handler with a per-call request ID, a span, and
// outcome logging.
func instrument(deps Deps, tool string, h server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		requestID := uuid.New().String()

		ctx, span := deps.Tracer.Start(ctx, tracing.SpanPrefixMCP+tool,
			trace.WithSpanKind(trace.SpanKindServer),
		)
		defer span.End()
		span.SetAttributes(
			attribute.String(tracing.AttrMCPToolName, tool),
			attribute.String(tracing.AttrMCPRequestID, requestID),
		)

		logger := deps.Logger.With().Str("tool", tool).Str("request_id", requestID).Logger()

		result, err := h(ctx, req)
		switch {
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.SetAttributes(attribute.String(tracing.AttrErrorMessage, err.Error()))
			logger.Error().Err(err).Msg("mcp tool failed")
		case result != nil && result.IsError:
			span.SetStatus(codes.Error, "tool error")
			span.SetAttributes(attribute.String(tracing.AttrErrorMessage, resultText(result)))
			logger.Warn().Msg("mcp tool returned error result")
		default:
			span.SetStatus(codes.Ok, "")
			logger.Debug().Msg("mcp tool handled")
		}
		return result, err
	}
}

func mcpListDroids(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		verbose := req.GetBool("verbose", false)

		droids := deps.Registry.List()
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.Int(tracing.AttrDroidCount, len(droids)),
		)
		var payload any
		if verbose {
			payload = droids
		} else {
			summaries := make([]droid.Summary, len(droids))
			for i, d := range droids {
				summaries[i] = d.Summary()
			}
			payload = summaries
		}

		b, err := json.Marshal(payload)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal droids: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpGetDroid(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("name")
		if err != nil {
			return mcpError("name is required"), nil
		}
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.String(tracing.AttrDroidName, name),
		)

		d, ok := deps.Registry.Get(name)
		if !ok {
			return mcpError(fmt.Sprintf("droid not found: %s", name)), nil
		}

		b, err := json.Marshal(d)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal droid: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpSuggestDroids(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		contextText, err := req.RequireString("context")
		if err != nil {
			return mcpError("context is required"), nil
		}

		names := deps.Registry.Suggest(contextText)
		if names == nil {
			names = []string{}
		}
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.Int(tracing.AttrSuggestionHit, len(names)),
		)

		b, err := json.Marshal(names)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal suggestions: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpCreateDroid(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("name")
		if err != nil {
			return mcpError("name is required"), nil
		}

		scope := droid.Scope(req.GetString("scope", string(droid.ScopeUser)))
		if !scope.Valid() {
			return mcpError(fmt.Sprintf("invalid scope: %s", scope)), nil
		}
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.String(tracing.AttrDroidName, name),
			attribute.String(tracing.AttrDroidScope, string(scope)),
		)

		path, err := deps.Registry.CreateTemplate(name, scope)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to create droid: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Created droid template at %s", path)), nil
	}
}

func mcpDeleteDroid(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("name")
		if err != nil {
			return mcpError("name is required"), nil
		}
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.String(tracing.AttrDroidName, name),
		)

		if err := deps.Registry.Delete(name); err != nil {
			return mcpError(fmt.Sprintf("failed to delete droid: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Deleted droid %s; call reload_droids to refresh the collection", name)), nil
	}
}

func mcpReloadDroids(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := deps.Registry.Load(); err != nil {
			return mcpError(fmt.Sprintf("reload failed: %v", err)), nil
		}
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.Int(tracing.AttrDroidCount, deps.Registry.Count()),
		)
		return mcpText(fmt.Sprintf("Reloaded %d droids (%d files skipped)",
			deps.Registry.Count(), len(deps.Registry.Skipped()))), nil
	}
}

func mcpResourceCatalog(deps Deps) server.ResourceHandlerFunc {
	return func(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		droids := deps.Registry.List()
		summaries := make([]droid.Summary, len(droids))
		for i, d := range droids {
			summaries[i] = d.Summary()
		}

		b, err := json.Marshal(summaries)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal catalog: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// resultText extracts the first text content of a tool result, for
// stamping error results onto spans.
func resultText(result *mcp.CallToolResult) string {
	for _, content := range result.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
