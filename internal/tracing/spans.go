package tracing

// Span attribute keys used across droidctl's MCP tool handlers.
const (
	AttrMCPToolName  = "mcp.tool.name"
	AttrMCPRequestID = "mcp.request.id"

	AttrDroidName     = "droid.name"
	AttrDroidScope    = "droid.scope"
	AttrDroidCount    = "droid.count"
	AttrSuggestionHit = "suggest.matches"

	AttrErrorMessage = "error.message"
)

// SpanPrefixMCP prefixes spans created per MCP tool call.
const SpanPrefixMCP = "mcp.tool."
