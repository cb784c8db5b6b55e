package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paddock/internal/config"
	"github.com/custodia-labs/paddock/internal/core/domain"
	"github.com/custodia-labs/paddock/internal/logger"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find records similar to a query",
	Long: `Embeds the query and returns the closest circuits, constructors, races,
drivers and results from the vector index.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 4, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if err := need(config.NeedStore | config.NeedEmbedding); err != nil {
		return err
	}
	if retrievalService == nil {
		return fmt.Errorf("search: %w", errNotConfigured)
	}
	if _, err := retrievalService.Load(cmd.Context(), false); err != nil {
		return fmt.Errorf("loading index: %w", err)
	}

	hits, err := retrievalService.Search(cmd.Context(), query, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, hits)
	}
	outputSearchTable(cmd, hits)
	return nil
}

type searchHitJSON struct {
	Kind     string  `json:"kind"`
	EntityID string  `json:"entity_id"`
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
}

func outputSearchJSON(cmd *cobra.Command, hits []domain.SearchHit) error {
	out := make([]searchHitJSON, len(hits))
	for i, h := range hits {
		out[i] = searchHitJSON{Kind: string(h.Kind), EntityID: h.EntityID, Text: h.Text, Score: h.Score}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, hits []domain.SearchHit) {
	if len(hits) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, h := range hits {
		cmd.Printf("  [%d] %s %s (%.2f)\n", i+1, style.Subtitle.Render(string(h.Kind)), h.EntityID, h.Score)
		cmd.Printf("      %s\n", h.Text)
		cmd.Println()
	}
}

// loadIndex hydrates the index for commands that answer questions. Without
// an embedding provider the chat runs without context, so this is best effort.
func loadIndex(cmd *cobra.Command) {
	if retrievalService == nil || need(config.NeedEmbedding) != nil {
		cmd.PrintErrln(style.Warning.Render("No embedding provider: answers will not use stored records."))
		return
	}
	report, err := retrievalService.Load(cmd.Context(), false)
	if err != nil {
		logger.Warn("index not loaded: %v", err)
		return
	}
	logger.Debug("index ready: %d entries", report.Loaded)
}
