package driven

import (
	"context"

	"github.com/custodia-labs/paddock/internal/core/domain"
)

// RaceDataSource reads records from the external racing statistics API.
// Records are validated while parsing; malformed entries are skipped by the
// adapter and never reach the core.
//
// A non-success HTTP status is reported as domain.ErrSourceUnavailable.
type RaceDataSource interface {
	// Circuits returns the complete circuit catalog.
	Circuits(ctx context.Context) ([]domain.Circuit, error)

	// Constructors returns the constructors entered in a season.
	Constructors(ctx context.Context, season int) ([]domain.Constructor, error)

	// Races returns the calendar of a season.
	Races(ctx context.Context, season int) ([]domain.Race, error)

	// Drivers returns the drivers entered in a season.
	Drivers(ctx context.Context, season int) ([]domain.Driver, error)

	// Results returns one page of a season's race results.
	Results(ctx context.Context, season, limit, offset int) (*ResultsPage, error)
}

// ResultsPage is one paginated slice of a season's results.
type ResultsPage struct {
	// Results holds the parsed rows, each carrying its race round.
	Results []domain.Result

	// Races is how many race objects the page contained. Zero ends pagination.
	Races int

	// Total is the upstream row count for the whole season.
	Total int

	// Limit and Offset echo the page window reported by the API.
	Limit  int
	Offset int
}
