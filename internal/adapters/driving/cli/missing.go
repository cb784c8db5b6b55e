package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paddock/internal/core/domain"
)

var (
	missingFrom int
	missingTo   int
)

var missingCmd = &cobra.Command{
	Use:   "missing [kind]",
	Short: "List seasons with no rows",
	Long: `Lists the seasons in range that have no rows for a season-partitioned
kind (constructors, races, drivers, results). Without a kind every
partitioned kind is reported.

For results, only seasons that already have races and drivers are listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMissing,
}

func init() {
	missingCmd.Flags().IntVar(&missingFrom, "from", 0, "first season")
	missingCmd.Flags().IntVar(&missingTo, "to", 0, "last season")
	rootCmd.AddCommand(missingCmd)
}

func runMissing(cmd *cobra.Command, args []string) error {
	if syncService == nil {
		return fmt.Errorf("sync: %w", errNotConfigured)
	}

	kinds := domain.SeasonKinds()
	if len(args) == 1 {
		k, err := domain.ParseEntityKind(args[0])
		if err != nil {
			return err
		}
		if !k.Partitioned() {
			return fmt.Errorf("%w: %s", domain.ErrNotPartitioned, k)
		}
		kinds = []domain.EntityKind{k}
	}

	seasons := seasonRange(missingFrom, missingTo)
	for _, k := range kinds {
		years, err := syncService.YearsMissing(cmd.Context(), k, seasons)
		if err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
		cmd.Printf("%s %s\n", style.Subtitle.Render(fmt.Sprintf("%-13s", k)), formatYears(years))
	}
	return nil
}

// formatYears collapses consecutive seasons into ranges, e.g. 1950-1953, 1960.
func formatYears(years []int) string {
	if len(years) == 0 {
		return "none"
	}
	var parts []string
	start := years[0]
	prev := years[0]
	flush := func() {
		if start == prev {
			parts = append(parts, fmt.Sprint(start))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", start, prev))
		}
	}
	for _, y := range years[1:] {
		if y == prev+1 {
			prev = y
			continue
		}
		flush()
		start, prev = y, y
	}
	flush()
	return strings.Join(parts, ", ")
}
