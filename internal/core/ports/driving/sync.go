package driving

import (
	"context"

	"github.com/custodia-labs/paddock/internal/core/domain"
)

// SyncService mirrors the racing statistics API into the backing store.
type SyncService interface {
	// Run executes a full sync plan: circuits, then each season-partitioned
	// kind for its missing seasons (or every season with ForceUpdate).
	Run(ctx context.Context, opts domain.SyncOptions) (*domain.SyncReport, error)

	// YearsMissing returns the seasons in range with no rows for kind.
	// For results, only seasons that already have races and drivers count.
	YearsMissing(ctx context.Context, kind domain.EntityKind, seasons domain.SeasonRange) ([]int, error)

	// SyncCircuits fetches and upserts the full circuit catalog.
	SyncCircuits(ctx context.Context) (*domain.KindReport, error)

	// SyncEntity fetches and upserts one kind for the given seasons.
	SyncEntity(ctx context.Context, kind domain.EntityKind, years []int) (*domain.KindReport, error)

	// Status returns the progress of the running sync, if any.
	Status(ctx context.Context) (*SyncStatus, error)
}

// SyncStatus represents the current state of a sync operation.
type SyncStatus struct {
	// Running indicates if sync is currently in progress.
	Running bool

	// Kind is the entity kind being synced.
	Kind domain.EntityKind

	// Season is the season being fetched, zero for the circuit catalog.
	Season int

	// RowsWritten is the count of rows written so far.
	RowsWritten int

	// ErrorCount is the number of failed fetches and batches.
	ErrorCount int
}
