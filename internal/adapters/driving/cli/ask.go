package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paddock/internal/config"
	"github.com/custodia-labs/paddock/internal/core/domain"
)

var askChatID string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about Formula 1 history",
	Long: `Answers a question from the stored records using the configured
language model.

With no question an interactive session starts; type exit, quit or bye to
leave. Pass --chat to continue an earlier conversation.`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askChatID, "chat", "", "conversation to continue")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := need(config.NeedStore | config.NeedLLM); err != nil {
		return err
	}
	if chatService == nil {
		return fmt.Errorf("chat: %w", errNotConfigured)
	}
	loadIndex(cmd)

	if len(args) > 0 {
		_, err := askOnce(cmd, askChatID, strings.Join(args, " "))
		return err
	}
	return askLoop(cmd, askChatID)
}

func askOnce(cmd *cobra.Command, chatID, question string) (string, error) {
	answer, err := chatService.Ask(cmd.Context(), chatID, question)
	if err != nil {
		return chatID, fmt.Errorf("ask failed: %w", err)
	}
	cmd.Println(style.Answer.Render(answer.Content))
	return answer.ChatID, nil
}

// askLoop reads one question per line until a stop word or end of input.
func askLoop(cmd *cobra.Command, chatID string) error {
	prompt := interactive()
	if prompt {
		cmd.Println(style.Title.Render("Paddock") + style.Muted.Render(" - ask about Formula 1 history, exit to leave"))
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		if prompt {
			cmd.Print(style.Title.Render("> "))
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if domain.IsStopMessage(line) {
			return nil
		}

		next, err := askOnce(cmd, chatID, line)
		if err != nil {
			cmd.PrintErrln(style.Error.Render(err.Error()))
			continue
		}
		chatID = next
	}
}
