package mcp

import "github.com/mark3labs/mcp-go/mcp"

// chatCompletionTool defines the chat_completion MCP tool.
var chatCompletionTool = mcp.NewTool("chat_completion",
	mcp.WithDescription("Send a prompt to the configured OpenAI-compatible model and return its reply."),
	mcp.WithString("prompt",
		mcp.Required(),
		mcp.Description("User message to send"),
	),
	mcp.WithString("system",
		mcp.Description("Optional system message placed before the prompt"),
	),
	mcp.WithString("model",
		mcp.Description("Model override; defaults to the configured model"),
	),
	mcp.WithNumber("temperature",
		mcp.Description("Sampling temperature between 0 and 2 (default 0.7)"),
	),
	mcp.WithNumber("max_tokens",
		mcp.Description("Maximum tokens to generate (default 2000)"),
	),
	mcp.WithBoolean("stream",
		mcp.Description("Use a streaming completion and join the fragments"),
	),
)

// testConnectionTool defines the test_connection MCP tool.
var testConnectionTool = mcp.NewTool("test_connection",
	mcp.WithDescription("Check whether the configured model API is reachable with the configured key."),
)

// recentCommandsTool defines the recent_commands MCP tool.
var recentCommandsTool = mcp.NewTool("recent_commands",
	mcp.WithDescription("List recent sidecar commands from the journal, newest first."),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of entries to return (default 20)"),
	),
	mcp.WithBoolean("failed_only",
		mcp.Description("Only list failed commands"),
	),
)
