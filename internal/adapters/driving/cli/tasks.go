package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paddock/internal/core/domain"
)

var tasksHistory int

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Show background task status and recent runs",
	Long: `Lists the tasks the scheduler has run with their last outcome and next
due time, followed by each task's most recent runs.

Task history is kept in the SQLite store only.`,
	Args: cobra.NoArgs,
	RunE: runTasks,
}

func init() {
	tasksCmd.Flags().IntVar(&tasksHistory, "history", 5, "recent runs to show per task")
	rootCmd.AddCommand(tasksCmd)
}

func runTasks(cmd *cobra.Command, _ []string) error {
	if taskLog == nil {
		return fmt.Errorf("tasks: %w", errNotConfigured)
	}
	ctx := cmd.Context()
	tasks, err := taskLog.Tasks(ctx)
	if errors.Is(err, domain.ErrNoTaskHistory) {
		cmd.Println(style.Muted.Render("Task history is not kept by this store."))
		return nil
	}
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		cmd.Println("No tasks have run yet.")
		return nil
	}

	for i := range tasks {
		t := &tasks[i]
		cmd.Println(style.Title.Render(taskTitle(t)))
		cmd.Printf("  every %s, last run %s, next %s\n", t.Interval, formatWhen(t.LastRun), formatWhen(t.NextRun))
		if t.LastError != "" {
			cmd.Println(style.Error.Render("  last error: " + t.LastError))
		}
		if tasksHistory <= 0 {
			continue
		}
		results, err := taskLog.History(ctx, t.ID, tasksHistory)
		if err != nil {
			return err
		}
		for _, r := range results {
			cmd.Println(formatResult(r))
		}
	}
	return nil
}

func taskTitle(t *domain.ScheduledTask) string {
	if t.Name == "" || t.Name == t.ID {
		return t.ID
	}
	return fmt.Sprintf("%s (%s)", t.Name, t.ID)
}

func formatWhen(at time.Time) string {
	if at.IsZero() {
		return "never"
	}
	return at.Local().Format("2006-01-02 15:04:05")
}

func formatResult(r domain.TaskResult) string {
	took := r.EndedAt.Sub(r.StartedAt).Round(time.Millisecond)
	line := fmt.Sprintf("    %s  %d items in %s", formatWhen(r.StartedAt), r.ItemsProcessed, took)
	if !r.Success {
		return style.Warning.Render(line + "  failed: " + r.Error)
	}
	return style.Muted.Render(line)
}
