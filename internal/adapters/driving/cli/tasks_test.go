package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paddock/internal/core/domain"
)

// mockTaskLog implements driving.TaskLog for testing.
type mockTaskLog struct {
	tasks   []domain.ScheduledTask
	results map[string][]domain.TaskResult
	limits  []int
	err     error
}

func (m *mockTaskLog) Tasks(_ context.Context) ([]domain.ScheduledTask, error) {
	return m.tasks, m.err
}

func (m *mockTaskLog) History(_ context.Context, id string, limit int) ([]domain.TaskResult, error) {
	m.limits = append(m.limits, limit)
	return m.results[id], nil
}

func TestTasksCmd_ShowsTasksAndHistory(t *testing.T) {
	start := time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)
	log := &mockTaskLog{
		tasks: []domain.ScheduledTask{
			{ID: domain.TaskIDChatPoll, Name: "Chat poll", Interval: 2 * time.Second, LastRun: start},
			{ID: domain.TaskIDSeasonSync, Interval: 24 * time.Hour, LastError: "ergast unavailable"},
		},
		results: map[string][]domain.TaskResult{
			domain.TaskIDChatPoll: {
				{TaskID: domain.TaskIDChatPoll, StartedAt: start, EndedAt: start.Add(time.Second), Success: true, ItemsProcessed: 3},
			},
			domain.TaskIDSeasonSync: {
				{TaskID: domain.TaskIDSeasonSync, StartedAt: start, EndedAt: start, Error: "ergast unavailable"},
			},
		},
	}
	setupServices(t, &Services{Tasks: log})

	out, _, err := execute(t, "tasks", "--history", "2")

	require.NoError(t, err)
	assert.Contains(t, out, "Chat poll (chat-poll)")
	assert.Contains(t, out, "every 2s")
	assert.Contains(t, out, "3 items in 1s")
	assert.Contains(t, out, "next never")
	assert.Contains(t, out, "last error: ergast unavailable")
	assert.Contains(t, out, "failed: ergast unavailable")
	assert.Equal(t, []int{2, 2}, log.limits)
}

func TestTasksCmd_NoHistory(t *testing.T) {
	log := &mockTaskLog{tasks: []domain.ScheduledTask{{ID: domain.TaskIDChatPoll}}}
	setupServices(t, &Services{Tasks: log})

	_, _, err := execute(t, "tasks", "--history", "0")

	require.NoError(t, err)
	assert.Empty(t, log.limits)
}

func TestTasksCmd_Empty(t *testing.T) {
	setupServices(t, &Services{Tasks: &mockTaskLog{}})

	out, _, err := execute(t, "tasks")

	require.NoError(t, err)
	assert.Contains(t, out, "No tasks have run yet.")
}

func TestTasksCmd_StoreWithoutHistory(t *testing.T) {
	setupServices(t, &Services{Tasks: &mockTaskLog{err: domain.ErrNoTaskHistory}})

	out, _, err := execute(t, "tasks")

	require.NoError(t, err)
	assert.Contains(t, out, "not kept by this store")
}

func TestTasksCmd_NotConfigured(t *testing.T) {
	setupServices(t, nil)

	_, _, err := execute(t, "tasks")

	assert.ErrorIs(t, err, errNotConfigured)
}
