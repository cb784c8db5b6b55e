package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paddock/internal/config"
	"github.com/custodia-labs/paddock/internal/core/domain"
	"github.com/custodia-labs/paddock/internal/core/ports/driving"
)

var (
	syncForce      bool
	syncEmbeddings bool
	syncFrom       int
	syncTo         int
	syncKinds      []string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror Formula 1 data from the Ergast API",
	Long: `Fetches the circuit catalog, then constructors, races, drivers and
results for every season in range that has no rows yet.

Use --force-update to refetch every season in range, and --embeddings to
embed each written batch as it is stored.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncForce, "force-update", false, "refetch every season in range")
	syncCmd.Flags().BoolVar(&syncEmbeddings, "embeddings", false, "embed rows as they are written")
	syncCmd.Flags().IntVar(&syncFrom, "from", 0, "first season (default from config or 1950)")
	syncCmd.Flags().IntVar(&syncTo, "to", 0, "last season (default from config or current year)")
	syncCmd.Flags().StringSliceVar(&syncKinds, "kind", nil, "entity kinds to sync (default all)")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	kinds, err := parseKinds(syncKinds)
	if err != nil {
		return err
	}
	opts := domain.SyncOptions{
		Seasons:     seasonRange(syncFrom, syncTo),
		Kinds:       kinds,
		ForceUpdate: syncForce,
	}
	if err := opts.Seasons.Validate(time.Now()); err != nil {
		return err
	}

	svc := syncService
	if syncEmbeddings {
		if err := need(config.NeedEmbedding); err != nil {
			return err
		}
		if embedSync == nil {
			return fmt.Errorf("embedding sync: %w", errNotConfigured)
		}
		if svc, err = embedSync(); err != nil {
			return err
		}
	}
	if svc == nil {
		return fmt.Errorf("sync: %w", errNotConfigured)
	}

	cmd.Printf("Syncing seasons %d-%d...\n", opts.Seasons.From, opts.Seasons.To)
	report, err := syncWithProgress(cmd.Context(), cmd, svc, opts)
	if report != nil {
		printSyncReport(cmd, report)
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	return nil
}

// syncWithProgress runs the sync while displaying progress updates.
func syncWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	svc driving.SyncService,
	opts domain.SyncOptions,
) (*domain.SyncReport, error) {
	type result struct {
		report *domain.SyncReport
		err    error
	}
	done := make(chan result, 1)
	go func() {
		report, err := svc.Run(ctx, opts)
		done <- result{report, err}
	}()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	last := -1
	for {
		select {
		case r := <-done:
			if last >= 0 {
				cmd.Println()
			}
			return r.report, r.err
		case <-ticker.C:
			// Best effort.
			status, err := svc.Status(ctx)
			if err != nil || status == nil || !status.Running || status.RowsWritten == last {
				continue
			}
			last = status.RowsWritten
			where := string(status.Kind)
			if status.Season > 0 {
				where = fmt.Sprintf("%s %d", status.Kind, status.Season)
			}
			cmd.Printf("\rSyncing %s... %d rows", where, status.RowsWritten)
		}
	}
}

func printSyncReport(cmd *cobra.Command, report *domain.SyncReport) {
	cmd.Println(style.Title.Render("Sync report"))
	for _, k := range report.Kinds {
		line := fmt.Sprintf("  %-13s %6d rows", k.Kind, k.RowsWritten)
		if n := len(k.YearsRequested); n > 0 {
			line += fmt.Sprintf(", %d seasons", n)
		}
		if k.Placeholders > 0 {
			line += fmt.Sprintf(", %d placeholders", k.Placeholders)
		}
		cmd.Println(line)
		if len(k.YearsAbandoned) > 0 {
			cmd.Println(style.Warning.Render(fmt.Sprintf("    abandoned seasons: %v", k.YearsAbandoned)))
		}
		if k.BatchesFailed > 0 {
			cmd.Println(style.Warning.Render(fmt.Sprintf("    failed batches: %d", k.BatchesFailed)))
		}
		if k.Dropped > 0 {
			cmd.Println(style.Warning.Render(fmt.Sprintf("    dropped results: %d", k.Dropped)))
		}
	}
	elapsed := report.EndedAt.Sub(report.StartedAt).Round(time.Millisecond)
	cmd.Println(style.Muted.Render(fmt.Sprintf("%d rows in %s", report.RowsWritten(), elapsed)))
}

// parseKinds converts kind names, accepting singular or plural.
func parseKinds(names []string) ([]domain.EntityKind, error) {
	kinds := make([]domain.EntityKind, 0, len(names))
	for _, name := range names {
		k, err := domain.ParseEntityKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// seasonRange fills unset flag values from configuration, then defaults.
func seasonRange(from, to int) domain.SeasonRange {
	r := domain.DefaultSeasonRange(time.Now())
	if cfg != nil {
		r = cfg.Seasons()
	}
	if from > 0 {
		r.From = from
	}
	if to > 0 {
		r.To = to
	}
	return r
}
