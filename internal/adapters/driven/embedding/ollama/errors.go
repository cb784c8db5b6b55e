package ollama

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ollama/ollama/api"

	"github.com/custodia-labs/paddock/internal/core/domain"
)

// wrapError prefixes err with op and marks throttling with the matching
// domain error.
func wrapError(op string, err error) error {
	var se api.StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("ollama: %s: %w: %w", op, domain.ErrRateLimited, err)
	}
	return fmt.Errorf("ollama: %s: %w", op, err)
}
