package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paddock/internal/config"
	"github.com/custodia-labs/paddock/internal/core/domain"
)

// ProviderValidator checks that AI providers are reachable.
type ProviderValidator interface {
	ValidateEmbedding(ctx context.Context, settings *domain.EmbeddingSettings) error
	ValidateLLM(ctx context.Context, settings *domain.LLMSettings) error
}

var providerValidator ProviderValidator

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check configuration and provider connectivity",
	Long: `Prints the resolved configuration and pings the embedding and LLM
providers with their configured credentials.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	if cfg == nil {
		return fmt.Errorf("configuration: %w", errNotConfigured)
	}

	source := cfg.File
	if source == "" {
		source = "environment only"
	}
	cmd.Println(style.Title.Render("Configuration"))
	cmd.Printf("  %-11s %s\n", "file", source)
	cmd.Printf("  %-11s %s\n", "store", cfg.Store.Backend)
	cmd.Printf("  %-11s %s\n", "index", cfg.Index.Backend)
	seasons := cfg.Seasons()
	cmd.Printf("  %-11s %d-%d\n", "seasons", seasons.From, seasons.To)
	cmd.Println()

	cmd.Println(style.Title.Render("Providers"))
	failed := false
	embedding := cfg.EmbeddingSettings()
	if !reportCheck(cmd, "embedding", embedding.Provider, embedding.Model, config.NeedEmbedding, func(ctx context.Context) error {
		return providerValidator.ValidateEmbedding(ctx, embedding)
	}) {
		failed = true
	}
	llm := cfg.LLMSettings()
	if !reportCheck(cmd, "llm", llm.Provider, llm.Model, config.NeedLLM, func(ctx context.Context) error {
		return providerValidator.ValidateLLM(ctx, llm)
	}) {
		failed = true
	}

	if failed {
		return errors.New("provider check failed")
	}
	return nil
}

// reportCheck prints one provider line and reports whether it passed.
func reportCheck(
	cmd *cobra.Command,
	label string,
	provider domain.AIProvider,
	model string,
	n config.Need,
	ping func(context.Context) error,
) bool {
	name := fmt.Sprintf("  %-11s %s", label, provider)
	if model != "" {
		name += " (" + model + ")"
	}

	if provider == config.ProviderNone {
		cmd.Println(name + " " + style.Muted.Render("disabled"))
		return true
	}
	if err := need(n); err != nil {
		cmd.Println(name + " " + style.Error.Render(err.Error()))
		return false
	}
	if providerValidator == nil {
		cmd.Println(name + " " + style.Muted.Render("not checked"))
		return true
	}
	if err := ping(cmd.Context()); err != nil {
		cmd.Println(name + " " + style.Error.Render(err.Error()))
		return false
	}
	cmd.Println(name + " " + style.Success.Render("ok"))
	return true
}
