package cli

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/openaudit/govquery/internal/adapters/driving/tui"
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Launch the interactive question REPL",
	Long: `Opens an interactive chat over the ledger and operational records.
Every question and trust-scored answer is kept in a persistent
session, so earlier turns remain visible.

Controls:
  Enter  - Ask
  ↑/↓    - Scroll history
  Esc    - Quit`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	model := tui.New(chatService)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui failed: %w", err)
	}
	return nil
}
