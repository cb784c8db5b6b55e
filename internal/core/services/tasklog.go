package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/paddock/internal/core/domain"
	"github.com/custodia-labs/paddock/internal/core/ports/driven"
	"github.com/custodia-labs/paddock/internal/core/ports/driving"
)

// Ensure TaskLog implements the interface.
var _ driving.TaskLog = (*TaskLog)(nil)

// DefaultHistoryLimit is how many runs History returns for a zero limit.
const DefaultHistoryLimit = 10

// TaskLog reads what the scheduler persisted.
type TaskLog struct {
	store driven.SchedulerStore
}

// NewTaskLog creates a task log over store. A nil store reports
// domain.ErrNoTaskHistory.
func NewTaskLog(store driven.SchedulerStore) *TaskLog {
	return &TaskLog{store: store}
}

// Tasks returns every persisted task ordered by ID.
func (l *TaskLog) Tasks(ctx context.Context) ([]domain.ScheduledTask, error) {
	if l.store == nil {
		return nil, domain.ErrNoTaskHistory
	}
	tasks, err := l.store.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

// History returns the most recent runs of a task, newest first.
func (l *TaskLog) History(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	if l.store == nil {
		return nil, domain.ErrNoTaskHistory
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > historyRetention {
		limit = historyRetention
	}
	results, err := l.store.GetTaskHistory(ctx, taskID, limit)
	if err != nil {
		return nil, fmt.Errorf("task history %s: %w", taskID, err)
	}
	return results, nil
}
