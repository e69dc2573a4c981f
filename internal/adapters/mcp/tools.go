package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
)

func searchSchemesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_schemes",
		Description: "Search government welfare schemes by a Hindi, English or Hinglish question. Returns ranked schemes with scores.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"question": map[string]any{
					"type":        "string",
					"description": "Citizen question or keywords",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Results per page (1-20)",
					"default":     5,
					"minimum":     1,
					"maximum":     20,
				},
				"page": map[string]any{
					"type":    "integer",
					"default": 1,
					"minimum": 1,
				},
				"min_score": map[string]any{
					"type":        "number",
					"description": "Vector similarity threshold",
					"default":     domain.DefaultMinScore,
				},
				"category": map[string]any{
					"type": "string",
				},
				"department": map[string]any{
					"type": "string",
				},
			},
			Required: []string{"question"},
		},
	}
}

func askTool() mcp.Tool {
	return mcp.Tool{
		Name:        "ask",
		Description: "Answer a Gram Panchayat question from the scheme catalogue or policy documents, with sources.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"question": map[string]any{
					"type": "string",
				},
				"mode": map[string]any{
					"type":    "string",
					"enum":    []string{"auto", "schemes", "docs"},
					"default": "auto",
				},
				"ui_lang": map[string]any{
					"type":        "string",
					"description": "Interface language of the caller, e.g. hi or en",
				},
			},
			Required: []string{"question"},
		},
	}
}

func (s *Server) handleSearchSchemes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	question := stringArg(args, "question")
	if question == "" {
		return mcp.NewToolResultError("question parameter is required"), nil
	}

	req := domain.SchemeSearchRequest{
		Question: question,
		Limit:    intArg(args, "limit", 5),
		Page:     intArg(args, "page", 1),
		MinScore: floatArg(args, "min_score", domain.DefaultMinScore),
		Filter: domain.SchemeFilter{
			Category:   stringArg(args, "category"),
			Department: stringArg(args, "department"),
		},
	}
	page, err := s.search.Search(ctx, req)
	if err != nil {
		s.logger.Warn("mcp_tool_failed", "tool", "search_schemes", "error", err)
		return toolError(err), nil
	}
	return jsonResult(page)
}

func (s *Server) handleAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	question := stringArg(args, "question")
	if question == "" {
		return mcp.NewToolResultError("question parameter is required"), nil
	}

	answer, err := s.ask.Ask(ctx, domain.AskRequest{
		Question: question,
		UILang:   stringArg(args, "ui_lang"),
		Mode:     domain.ParseAnswerMode(stringArg(args, "mode")),
	})
	if err != nil {
		s.logger.Warn("mcp_tool_failed", "tool", "ask", "error", err)
		return toolError(err), nil
	}
	return jsonResult(answer)
}

// toolError reports failures inside the tool result so the calling model can
// see them; protocol-level errors are reserved for malformed requests.
func toolError(err error) *mcp.CallToolResult {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return mcp.NewToolResultError(err.Error())
	case domain.IsKind(err, domain.ErrTemporary):
		return mcp.NewToolResultError("search backend is temporarily unavailable, try again shortly")
	default:
		return mcp.NewToolResultError("internal error")
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(raw)), nil
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return strings.TrimSpace(v)
}

// intArg accepts JSON numbers, which arrive as float64.
func intArg(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return fallback
	}
}

func floatArg(args map[string]any, key string, fallback float64) float64 {
	if v, ok := args[key].(float64); ok {
		return v
	}
	return fallback
}
