package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paddock/internal/config"
	"github.com/custodia-labs/paddock/internal/logger"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Answer queued chat messages until stopped",
	Long: `Runs the conversational polling loop: the newest user message across
all chats is answered from the stored records, then the loop waits and
polls again, backing off while there is nothing new.

Messages are queued through the HTTP API or another process sharing the
store. A message reading exit, quit or bye stops the loop, as does Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if err := need(config.NeedStore | config.NeedLLM); err != nil {
		return err
	}
	if newScheduler == nil {
		return fmt.Errorf("scheduler: %w", errNotConfigured)
	}
	loadIndex(cmd)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	startPromptWatch(ctx)

	cmd.Println("Waiting for messages...")
	err := newScheduler(true).Start(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	cmd.Println("Chat loop stopped.")
	return nil
}

// startPromptWatch reloads edited prompts in the background until ctx ends.
func startPromptWatch(ctx context.Context) {
	if watchPrompts == nil {
		return
	}
	go func() {
		if err := watchPrompts(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("prompt watcher stopped: %v", err)
		}
	}()
}
