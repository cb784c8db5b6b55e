package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paddock/internal/core/domain"
)

func fastConfig() *Config {
	return &Config{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}
}

type flagged struct{ retry bool }

func (f flagged) Error() string     { return "flagged" }
func (f flagged) IsRetryable() bool { return f.retry }

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		if calls < 3 {
			return errors.New("status 503: service unavailable")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnPermanentError(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		return errors.New("invalid api key")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		return domain.ErrRateLimited
	})
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, 4, calls)
}

func TestDoWithResult_ReturnsValue(t *testing.T) {
	calls := 0
	v, err := DoWithResult(context.Background(), fastConfig(), func() ([]float32, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("connection reset by peer")
		}
		return []float32{1, 2}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, v)
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := &Config{MaxRetries: 5, InitialDelay: time.Hour, Multiplier: 2}
	err := Do(ctx, cfg, func() error { return errors.New("timeout") })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", fmt.Errorf("embed: %w", domain.ErrRateLimited), true},
		{"status 429", errors.New("error, status code: 429"), true},
		{"rejected credentials", fmt.Errorf("openai: %w: timeout reading body", domain.ErrProviderAuth), false},
		{"bad request", errors.New("status code: 400, invalid model"), false},
		{"declared retryable", flagged{retry: true}, true},
		{"declared permanent", flagged{retry: false}, false},
		{"cancelled", context.Canceled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}
