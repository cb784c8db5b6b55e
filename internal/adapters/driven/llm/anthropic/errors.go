package anthropic

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/custodia-labs/paddock/internal/core/domain"
)

// wrapError prefixes err with op and marks throttling, overload and
// rejected credentials with the matching domain error.
func wrapError(op string, err error) error {
	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.IsRateLimitErr(), apiErr.IsOverloadedErr():
			return fmt.Errorf("anthropic: %s: %w: %w", op, domain.ErrRateLimited, err)
		case apiErr.IsAuthenticationErr(), apiErr.IsPermissionErr():
			return fmt.Errorf("anthropic: %s: %w: %w", op, domain.ErrProviderAuth, err)
		}
	}
	var reqErr *anthropic.RequestError
	if errors.As(err, &reqErr) {
		switch reqErr.StatusCode {
		case http.StatusTooManyRequests:
			return fmt.Errorf("anthropic: %s: %w: %w", op, domain.ErrRateLimited, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("anthropic: %s: %w: %w", op, domain.ErrProviderAuth, err)
		}
	}
	return fmt.Errorf("anthropic: %s: %w", op, err)
}
