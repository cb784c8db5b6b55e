package driving

import (
	"context"

	"github.com/custodia-labs/paddock/internal/core/domain"
)

// Scheduler runs recurring background tasks such as the chat poll.
type Scheduler interface {
	// Start begins running scheduled tasks.
	// Blocks until the context is cancelled, Stop is called, or every task has ended.
	Start(ctx context.Context) error

	// Stop gracefully stops all running tasks.
	Stop() error
}

// TaskLog reports the state and recent runs of scheduled tasks.
type TaskLog interface {
	// Tasks returns every task the scheduler has run, ordered by ID.
	Tasks(ctx context.Context) ([]domain.ScheduledTask, error)

	// History returns up to limit recent results for a task, newest first.
	History(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error)
}
