package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paddock/internal/adapters/driving/tui"
	"github.com/custodia-labs/paddock/internal/config"
)

var tuiChatID string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive terminal interface",
	Long: `Opens a full-screen interface with a chat view and a record search
view. Press tab to switch views and ctrl+c to quit.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&tuiChatID, "chat", "", "conversation to resume")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	if err := need(config.NeedStore | config.NeedLLM); err != nil {
		return err
	}
	if chatService == nil {
		return fmt.Errorf("chat: %w", errNotConfigured)
	}
	loadIndex(cmd)

	app, err := tui.NewApp(&tui.Ports{Chat: chatService, Retrieval: retrievalService}, tuiChatID)
	if err != nil {
		return err
	}
	return app.WithContext(cmd.Context()).Run()
}
