package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/paddock/internal/core/domain"
)

// defaultSearchLimit is used when the caller does not set a limit.
const defaultSearchLimit = 4

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"natural language description of the records to find"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of records to return (default 4)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single matching record.
type SearchResultOutput struct {
	Kind     string  `json:"kind"`
	EntityID string  `json:"entity_id"`
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"question about Formula 1 history"`
	ChatID   string `json:"chat_id,omitempty" jsonschema:"conversation to continue; empty starts a new one"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	ChatID string `json:"chat_id"`
	Answer string `json:"answer"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find Formula 1 circuits, drivers, constructors, races and results similar to a query",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Ask a question about Formula 1 history, answered from the synced records",
	}, s.handleAsk)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	if input.Query == "" {
		return nil, SearchOutput{}, errors.New("query is required")
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	hits, err := s.ports.Retrieval.Search(ctx, input.Query, limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(hits)),
		Count:   len(hits),
	}
	for i, h := range hits {
		output.Results[i] = SearchResultOutput{
			Kind:     string(h.Kind),
			EntityID: h.EntityID,
			Text:     h.Text,
			Score:    h.Score,
		}
	}

	return nil, output, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if s.ports.Chat == nil {
		return nil, AskOutput{}, domain.ErrLLMUnavailable
	}

	answer, err := s.ports.Chat.Ask(ctx, input.ChatID, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{ChatID: answer.ChatID, Answer: answer.Content}, nil
}
