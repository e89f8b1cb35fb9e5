package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/droidctl/internal/droid"
	"github.com/zjrosen/droidctl/internal/registry"
	"github.com/zjrosen/droidctl/internal/tracing"
)

func newTestDeps(t *testing.T) (Deps, string) {
	t.Helper()

	userDir := filepath.Join(t.TempDir(), "user")
	require.NoError(t, os.MkdirAll(userDir, 0o755))

	files := map[string]string{
		"reviewer.md": "---\nname: reviewer\ndescription: Reviews code\nproactive: true\ntriggers: [review]\n---\nYou review code.\n",
		"scribe.md":   "---\nname: scribe\ndescription: Writes docs\n---\nYou write docs.\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(userDir, name), []byte(content), 0o644))
	}

	reg := registry.New(registry.Config{
		UserDir:    userDir,
		ProjectDir: filepath.Join(t.TempDir(), "project"),
	})
	require.NoError(t, reg.Load())

	return Deps{
		Registry: reg,
		Version:  "test",
		Logger:   zerolog.Nop(),
		Tracer:   noop.NewTracerProvider().Tracer("test"),
	}, userDir
}

func makeCallToolRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return tc.Text
}

func TestNewServer(t *testing.T) {
	deps, _ := newTestDeps(t)
	s := NewServer(deps)
	require.NotNil(t, s)
}

func TestMCPTool_ListDroids(t *testing.T) {
	deps, _ := newTestDeps(t)
	handler := instrument(deps, "list_droids", mcpListDroids(deps))

	t.Run("summaries by default", func(t *testing.T) {
		result, err := handler(context.Background(), makeCallToolRequest("list_droids", nil))
		require.NoError(t, err)
		require.False(t, result.IsError)

		var summaries []droid.Summary
		require.NoError(t, json.Unmarshal([]byte(toolText(t, result)), &summaries))
		require.Len(t, summaries, 2)
		assert.Equal(t, "reviewer", summaries[0].Name)
		assert.Equal(t, droid.ScopeUser, summaries[0].Scope)
	})

	t.Run("verbose returns full droids", func(t *testing.T) {
		result, err := handler(context.Background(), makeCallToolRequest("list_droids", map[string]any{"verbose": true}))
		require.NoError(t, err)

		var droids []droid.Droid
		require.NoError(t, json.Unmarshal([]byte(toolText(t, result)), &droids))
		require.Len(t, droids, 2)
		assert.Equal(t, "You review code.", droids[0].SystemPrompt)
	})
}

func TestMCPTool_GetDroid(t *testing.T) {
	deps, _ := newTestDeps(t)
	handler := mcpGetDroid(deps)

	t.Run("found", func(t *testing.T) {
		result, err := handler(context.Background(), makeCallToolRequest("get_droid", map[string]any{"name": "reviewer"}))
		require.NoError(t, err)
		require.False(t, result.IsError)

		var d droid.Droid
		require.NoError(t, json.Unmarshal([]byte(toolText(t, result)), &d))
		assert.Equal(t, "reviewer", d.Name)
		assert.Equal(t, []string{"review"}, d.Triggers)
	})

	t.Run("not found", func(t *testing.T) {
		result, err := handler(context.Background(), makeCallToolRequest("get_droid", map[string]any{"name": "ghost"}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, toolText(t, result), "not found")
	})

	t.Run("missing name", func(t *testing.T) {
		result, err := handler(context.Background(), makeCallToolRequest("get_droid", nil))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, toolText(t, result), "name is required")
	})
}

func TestMCPTool_SuggestDroids(t *testing.T) {
	deps, _ := newTestDeps(t)
	handler := mcpSuggestDroids(deps)

	t.Run("match", func(t *testing.T) {
		result, err := handler(context.Background(), makeCallToolRequest("suggest_droids", map[string]any{"context": "please review this change"}))
		require.NoError(t, err)

		var names []string
		require.NoError(t, json.Unmarshal([]byte(toolText(t, result)), &names))
		assert.Equal(t, []string{"reviewer"}, names)
	})

	t.Run("no match returns empty array", func(t *testing.T) {
		result, err := handler(context.Background(), makeCallToolRequest("suggest_droids", map[string]any{"context": "nothing relevant"}))
		require.NoError(t, err)
		assert.JSONEq(t, "[]", toolText(t, result))
	})
}

func TestMCPTool_CreateDroid(t *testing.T) {
	deps, userDir := newTestDeps(t)
	handler := mcpCreateDroid(deps)

	t.Run("creates template", func(t *testing.T) {
		result, err := handler(context.Background(), makeCallToolRequest("create_droid", map[string]any{"name": "fresh"}))
		require.NoError(t, err)
		require.False(t, result.IsError)
		assert.Contains(t, toolText(t, result), filepath.Join(userDir, "fresh.md"))
		assert.FileExists(t, filepath.Join(userDir, "fresh.md"))
	})

	t.Run("duplicate rejected", func(t *testing.T) {
		result, err := handler(context.Background(), makeCallToolRequest("create_droid", map[string]any{"name": "fresh"}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, toolText(t, result), "already exists")
	})

	t.Run("invalid scope rejected", func(t *testing.T) {
		result, err := handler(context.Background(), makeCallToolRequest("create_droid", map[string]any{"name": "x", "scope": "global"}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, toolText(t, result), "invalid scope")
	})
}

func TestMCPTool_DeleteDroid(t *testing.T) {
	deps, userDir := newTestDeps(t)
	handler := mcpDeleteDroid(deps)

	t.Run("removes file and keeps stale entry", func(t *testing.T) {
		result, err := handler(context.Background(), makeCallToolRequest("delete_droid", map[string]any{"name": "scribe"}))
		require.NoError(t, err)
		require.False(t, result.IsError)

		_, statErr := os.Stat(filepath.Join(userDir, "scribe.md"))
		assert.True(t, os.IsNotExist(statErr))

		_, ok := deps.Registry.Get("scribe")
		assert.True(t, ok, "entry stays until reload")
	})

	t.Run("unknown name", func(t *testing.T) {
		result, err := handler(context.Background(), makeCallToolRequest("delete_droid", map[string]any{"name": "ghost"}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})
}

func TestMCPTool_ReloadDroids(t *testing.T) {
	deps, userDir := newTestDeps(t)
	reload := mcpReloadDroids(deps)

	content := "---\nname: latecomer\n---\nBody.\n"
	require.NoError(t, os.WriteFile(filepath.Join(userDir, "latecomer.md"), []byte(content), 0o644))

	result, err := reload(context.Background(), makeCallToolRequest("reload_droids", nil))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, toolText(t, result), "Reloaded 3 droids")

	_, ok := deps.Registry.Get("latecomer")
	assert.True(t, ok)
}

func TestMCPResource_Catalog(t *testing.T) {
	deps, _ := newTestDeps(t)
	handler := mcpResourceCatalog(deps)

	req := mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: CatalogURI},
	}

	contents, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, CatalogURI, text.URI)
	assert.Equal(t, "application/json", text.MIMEType)

	var summaries []droid.Summary
	require.NoError(t, json.Unmarshal([]byte(text.Text), &summaries))
	assert.Len(t, summaries, 2)
}

// newRecordingDeps swaps the noop tracer for one backed by a span
// recorder so tests can inspect the attributes handlers stamp.
func newRecordingDeps(t *testing.T) (Deps, *tracetest.SpanRecorder) {
	t.Helper()

	deps, _ := newTestDeps(t)
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	deps.Tracer = provider.Tracer("test")
	return deps, recorder
}

func spanAttr(t *testing.T, span sdktrace.ReadOnlySpan, key string) attribute.Value {
	t.Helper()
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value
		}
	}
	t.Fatalf("span %q has no attribute %q", span.Name(), key)
	return attribute.Value{}
}

func TestInstrument_SpanAttributes(t *testing.T) {
	t.Run("get_droid stamps the droid name", func(t *testing.T) {
		deps, recorder := newRecordingDeps(t)
		handler := instrument(deps, "get_droid", mcpGetDroid(deps))

		_, err := handler(context.Background(), makeCallToolRequest("get_droid", map[string]any{"name": "reviewer"}))
		require.NoError(t, err)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, tracing.SpanPrefixMCP+"get_droid", spans[0].Name())
		assert.Equal(t, "reviewer", spanAttr(t, spans[0], tracing.AttrDroidName).AsString())
		assert.Equal(t, "get_droid", spanAttr(t, spans[0], tracing.AttrMCPToolName).AsString())
		assert.Equal(t, codes.Ok, spans[0].Status().Code)
	})

	t.Run("list_droids stamps the collection size", func(t *testing.T) {
		deps, recorder := newRecordingDeps(t)
		handler := instrument(deps, "list_droids", mcpListDroids(deps))

		_, err := handler(context.Background(), makeCallToolRequest("list_droids", nil))
		require.NoError(t, err)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.EqualValues(t, 2, spanAttr(t, spans[0], tracing.AttrDroidCount).AsInt64())
	})

	t.Run("suggest_droids stamps the match count", func(t *testing.T) {
		deps, recorder := newRecordingDeps(t)
		handler := instrument(deps, "suggest_droids", mcpSuggestDroids(deps))

		_, err := handler(context.Background(), makeCallToolRequest("suggest_droids", map[string]any{"context": "please review this change"}))
		require.NoError(t, err)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.EqualValues(t, 1, spanAttr(t, spans[0], tracing.AttrSuggestionHit).AsInt64())
	})

	t.Run("create_droid stamps name and scope", func(t *testing.T) {
		deps, recorder := newRecordingDeps(t)
		handler := instrument(deps, "create_droid", mcpCreateDroid(deps))

		_, err := handler(context.Background(), makeCallToolRequest("create_droid", map[string]any{"name": "fresh", "scope": "project"}))
		require.NoError(t, err)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, "fresh", spanAttr(t, spans[0], tracing.AttrDroidName).AsString())
		assert.Equal(t, "project", spanAttr(t, spans[0], tracing.AttrDroidScope).AsString())
	})

	t.Run("error results stamp the error message", func(t *testing.T) {
		deps, recorder := newRecordingDeps(t)
		handler := instrument(deps, "get_droid", mcpGetDroid(deps))

		result, err := handler(context.Background(), makeCallToolRequest("get_droid", map[string]any{"name": "missing"}))
		require.NoError(t, err)
		require.True(t, result.IsError)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)
		assert.Contains(t, spanAttr(t, spans[0], tracing.AttrErrorMessage).AsString(), "droid not found")
	})
}
