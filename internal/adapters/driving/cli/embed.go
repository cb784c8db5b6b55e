package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paddock/internal/config"
)

var embedCmd = &cobra.Command{
	Use:   "embed [kind...]",
	Short: "Regenerate embeddings for stored records",
	Long: `Re-reads every stored row of the given kinds (all kinds by default),
renders each as a sentence and embeds it with the configured provider.

Run "paddock index --reload" afterwards to rebuild an in-memory index.`,
	RunE: runEmbed,
}

func init() {
	rootCmd.AddCommand(embedCmd)
}

func runEmbed(cmd *cobra.Command, args []string) error {
	if err := need(config.NeedEmbedding); err != nil {
		return err
	}
	if embeddingService == nil {
		return fmt.Errorf("embeddings: %w", errNotConfigured)
	}
	kinds, err := parseKinds(args)
	if err != nil {
		return err
	}

	cmd.Println("Embedding records...")
	report, err := embeddingService.Regenerate(cmd.Context(), kinds)
	if err != nil {
		return fmt.Errorf("embedding failed: %w", err)
	}

	cmd.Println(style.Success.Render(fmt.Sprintf("Embedded %d records.", report.Embedded)))
	if report.Failed > 0 {
		cmd.Println(style.Warning.Render(fmt.Sprintf("%d records failed.", report.Failed)))
	}
	return nil
}
