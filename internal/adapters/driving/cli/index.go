package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paddock/internal/config"
)

var indexReload bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Load stored embeddings into the vector index",
	Long: `Hydrates the vector index from the embeddings table.

A pgvector index that already holds entries is reused; pass --reload to
clear and rebuild it.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexReload, "reload", false, "clear the index before loading")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	if err := need(config.NeedStore); err != nil {
		return err
	}
	if retrievalService == nil {
		return fmt.Errorf("retrieval: %w", errNotConfigured)
	}

	report, err := retrievalService.Load(cmd.Context(), indexReload)
	if err != nil {
		return fmt.Errorf("loading index: %w", err)
	}

	if report.Reused {
		cmd.Println("Index already populated; pass --reload to rebuild.")
		return nil
	}
	cmd.Println(style.Success.Render(fmt.Sprintf("Loaded %d embeddings.", report.Loaded)))
	if report.Skipped > 0 {
		cmd.Println(style.Warning.Render(fmt.Sprintf("Skipped %d malformed embeddings.", report.Skipped)))
	}
	return nil
}
