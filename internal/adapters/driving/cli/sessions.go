package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/openaudit/govquery/internal/core/domain"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions [session-id]",
	Short: "List chat sessions or show one session's history",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSessions,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	ctx := context.Background()

	if len(args) == 0 {
		sessions, err := chatService.Sessions(ctx)
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}
		if len(sessions) == 0 {
			cmd.Println("No sessions yet.")
			return nil
		}
		for _, s := range sessions {
			cmd.Printf("  %s  %s  %s\n", s.ID, s.UpdatedAt.Format(time.RFC3339), s.Title)
		}
		return nil
	}

	messages, err := chatService.History(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	for _, m := range messages {
		if m.Role == domain.RoleAssistant {
			cmd.Printf("assistant (%.2f, %s):\n%s\n\n", m.Confidence, m.AuditID, m.Content)
			continue
		}
		cmd.Printf("user:\n%s\n\n", m.Content)
	}
	return nil
}
