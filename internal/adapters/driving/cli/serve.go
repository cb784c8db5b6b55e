package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paddock/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/paddock/internal/config"
	"github.com/custodia-labs/paddock/internal/logger"
)

var (
	serveAddr   string
	serveNoPoll bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP chat API",
	Long: `Serves the chat API over HTTP and runs the background scheduler.

Endpoints:
  POST /chat/                  answer user_input in chat_id
  POST /chats                  start a chat, optionally queueing a message
  GET  /chats                  list chats
  GET  /chats/{id}/messages    chat history
  POST /messages               queue a message for the polling loop

The chat polling loop answers queued messages unless --no-poll is set.
Season sync runs on the interval in scheduler.sync_interval.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, 127.0.0.1:8000)")
	serveCmd.Flags().BoolVar(&serveNoPoll, "no-poll", false, "do not answer queued messages")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := need(config.NeedStore | config.NeedLLM); err != nil {
		return err
	}
	if chatService == nil {
		return fmt.Errorf("chat: %w", errNotConfigured)
	}
	loadIndex(cmd)

	server, err := httpapi.NewServer(chatService, logger.Named("http"))
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" && cfg != nil {
		addr = cfg.HTTP.Addr
	}
	if addr == "" {
		addr = "127.0.0.1:8000"
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	startPromptWatch(ctx)

	if newScheduler != nil {
		scheduler := newScheduler(!serveNoPoll)
		go func() {
			if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("scheduler stopped: %v", err)
			}
		}()
		defer func() { _ = scheduler.Stop() }()
	}

	cmd.Printf("Paddock API listening on http://%s\n", addr)
	return server.Run(ctx, addr)
}
