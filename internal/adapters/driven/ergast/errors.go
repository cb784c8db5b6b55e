package ergast

import (
	"fmt"

	"github.com/custodia-labs/paddock/internal/core/domain"
)

// StatusError reports a non-200 response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ergast: status %d for %s", e.StatusCode, e.URL)
}

// Unwrap lets callers match domain.ErrSourceUnavailable, and
// domain.ErrRateLimited for 429 responses.
func (e *StatusError) Unwrap() []error {
	if e.StatusCode == 429 {
		return []error{domain.ErrSourceUnavailable, domain.ErrRateLimited}
	}
	return []error{domain.ErrSourceUnavailable}
}
