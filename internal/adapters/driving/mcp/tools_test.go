package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paddock/internal/core/domain"
)

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns hits", func(t *testing.T) {
		retrieval := &mockRetrievalService{
			hits: []domain.SearchHit{
				{EntityID: "monaco", Kind: domain.KindCircuit, Text: "Circuit de Monaco is in Monte-Carlo.", Score: 0.91},
			},
		}
		server, err := NewServer(&Ports{Retrieval: retrieval})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "street circuit", Limit: 2})

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		assert.Equal(t, "circuit", output.Results[0].Kind)
		assert.Equal(t, "monaco", output.Results[0].EntityID)
		assert.Equal(t, 0.91, output.Results[0].Score)
		assert.Equal(t, "street circuit", retrieval.lastQuery)
		assert.Equal(t, 2, retrieval.lastK)
	})

	t.Run("default limit", func(t *testing.T) {
		retrieval := &mockRetrievalService{}
		server, err := NewServer(&Ports{Retrieval: retrieval})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "monza"})

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.Equal(t, defaultSearchLimit, retrieval.lastK)
	})

	t.Run("empty query", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{})
		assert.Error(t, err)
	})

	t.Run("propagates errors", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{err: errors.New("index offline")}})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "senna"})
		assert.EqualError(t, err, "index offline")
	})
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("answers and reports the chat", func(t *testing.T) {
		chat := &mockChatService{answer: "Ayrton Senna won the 1988 title."}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Chat: chat})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "Who won in 1988?"})

		require.NoError(t, err)
		assert.Equal(t, "new-chat", output.ChatID)
		assert.Equal(t, "Ayrton Senna won the 1988 title.", output.Answer)
	})

	t.Run("continues an existing chat", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Chat: &mockChatService{answer: "Yes."}})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "Really?", ChatID: "c-1"})

		require.NoError(t, err)
		assert.Equal(t, "c-1", output.ChatID)
	})

	t.Run("without chat service", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "Who won in 1988?"})
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	})
}
