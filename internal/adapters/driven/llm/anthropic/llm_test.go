package anthropic

import (
	"errors"
	"testing"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paddock/internal/core/domain"
	"github.com/custodia-labs/paddock/internal/core/ports/driven"
)

func TestNewLLMService_RequiresKey(t *testing.T) {
	_, err := NewLLMService(Config{})
	require.Error(t, err)

	svc, err := NewLLMService(Config{APIKey: "sk-ant"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())
}

func TestConvertMessages(t *testing.T) {
	system, msgs := convertMessages([]driven.ChatMessage{
		{Role: "system", Content: "You are an assistant for Formula 1 history"},
		{Role: "user", Content: "context"},
		{Role: "user", Content: "Who won Monza 2020?"},
		{Role: "assistant", Content: "Pierre Gasly."},
	})

	assert.Equal(t, "You are an assistant for Formula 1 history", system)
	require.Len(t, msgs, 2)
	assert.Equal(t, anthropic.RoleUser, msgs[0].Role)
	require.Len(t, msgs[0].Content, 2)
	assert.Equal(t, "Who won Monza 2020?", *msgs[0].Content[1].Text)
	assert.Equal(t, anthropic.RoleAssistant, msgs[1].Role)
}

func TestExtractText(t *testing.T) {
	a, b := "Pierre ", "Gasly."
	resp := anthropic.MessagesResponse{Content: []anthropic.MessageContent{
		{Type: "text", Text: &a},
		{Type: "tool_use"},
		{Type: "text", Text: &b},
	}}
	assert.Equal(t, "Pierre Gasly.", extractText(resp))
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"rate limit", &anthropic.APIError{Type: "rate_limit_error"}, domain.ErrRateLimited},
		{"overloaded", &anthropic.APIError{Type: "overloaded_error"}, domain.ErrRateLimited},
		{"bad key", &anthropic.APIError{Type: "authentication_error"}, domain.ErrProviderAuth},
		{"raw 429", &anthropic.RequestError{StatusCode: 429, Err: errors.New("busy")}, domain.ErrRateLimited},
		{"raw 403", &anthropic.RequestError{StatusCode: 403, Err: errors.New("denied")}, domain.ErrProviderAuth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := wrapError("create message", tt.err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	plain := wrapError("create message", &anthropic.APIError{Type: "invalid_request_error"})
	assert.NotErrorIs(t, plain, domain.ErrRateLimited)
	assert.NotErrorIs(t, plain, domain.ErrProviderAuth)
}
