package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/llm-sidecar/internal/journal"
	"github.com/ziadkadry99/llm-sidecar/internal/llm"
)

// handleChatCompletion sends one prompt through the facade.
func (s *Server) handleChatCompletion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := request.RequireString("prompt")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: prompt"), nil
	}

	req := llm.Request{Model: request.GetString("model", "")}
	if system := request.GetString("system", ""); system != "" {
		req.Messages = append(req.Messages, llm.Message{Role: llm.RoleSystem, Content: system})
	}
	req.Messages = append(req.Messages, llm.Message{Role: llm.RoleUser, Content: prompt})

	args := request.GetArguments()
	if _, ok := args["temperature"]; ok {
		t := request.GetFloat("temperature", llm.DefaultTemperature)
		req.Temperature = &t
	}
	if _, ok := args["max_tokens"]; ok {
		n := request.GetInt("max_tokens", llm.DefaultMaxTokens)
		req.MaxTokens = &n
	}
	if err := req.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if request.GetBool("stream", false) {
		stream, err := s.llm.ChatCompletionStream(ctx, req)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("completion failed: %v", err)), nil
		}
		fragments, err := llm.Collect(stream)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("completion failed: %v", err)), nil
		}
		return mcp.NewToolResultText(strings.Join(fragments, "")), nil
	}

	resp, err := s.llm.ChatCompletion(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("completion failed: %v", err)), nil
	}
	return mcp.NewToolResultText(resp.Choices[0].Message.Content), nil
}

// handleTestConnection reports the connection probe result.
func (s *Server) handleTestConnection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.llm.TestConnection(ctx) {
		return mcp.NewToolResultText("connected"), nil
	}
	return mcp.NewToolResultText("not connected: check the API key and base URL (details are in the server log)"), nil
}

// handleRecentCommands lists journal entries.
func (s *Server) handleRecentCommands(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 20)
	if limit <= 0 {
		limit = 20
	}

	entries, err := s.journal.Recent(ctx, journal.Filter{
		FailedOnly: request.GetBool("failed_only", false),
		Limit:      limit,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reading journal failed: %v", err)), nil
	}

	if len(entries) == 0 {
		return mcp.NewToolResultText("No commands recorded yet."), nil
	}

	return mcp.NewToolResultText(formatEntries(entries)), nil
}

// formatEntries renders journal entries one per line.
func formatEntries(entries []journal.Entry) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d command(s):\n", len(entries)))

	for _, e := range entries {
		fn := string(e.Func)
		if !e.Decoded {
			fn = "(undecodable)"
		}
		status := "ok"
		if !e.Success {
			status = "failed: " + e.Error
		}
		sb.WriteString(fmt.Sprintf("%s  %-16s %-36s %6s  %s\n",
			e.CreatedAt.Local().Format(time.DateTime),
			fn,
			e.CommandID,
			e.Duration.Round(time.Millisecond),
			status,
		))
	}
	return sb.String()
}
