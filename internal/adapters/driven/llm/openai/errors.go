package openai

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/paddock/internal/core/domain"
)

// wrapError prefixes err with op and marks throttling and rejected
// credentials with the matching domain error.
func wrapError(op string, err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch status {
	case http.StatusTooManyRequests:
		return fmt.Errorf("openai: %s: %w: %w", op, domain.ErrRateLimited, err)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("openai: %s: %w: %w", op, domain.ErrProviderAuth, err)
	}
	return fmt.Errorf("openai: %s: %w", op, err)
}
