package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/openaudit/govquery/internal/core/domain"
)

var (
	queryMethod string
	queryJSON   bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Answer a question about the ledger and records",
	Long: `Submits one natural-language question. The question is classified
and routed to the aggregation engine (grouped numeric answers), the
retrieval engine (record lookups), or both.

The answer carries a confidence score and an audit ID that links it
to its evidence package.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryMethod, "method", "m", "", "force routing method (SQL, RAG or HYBRID)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the full response as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	q := domain.Query{Text: args[0]}
	if queryMethod != "" {
		method := domain.QueryMethod(strings.ToUpper(queryMethod))
		if !method.Valid() {
			return fmt.Errorf("unknown method %q: %w", queryMethod, domain.ErrInvalidInput)
		}
		q.MethodPreference = method
	}

	resp, err := queryService.Submit(context.Background(), q)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal response: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	outputResponse(cmd, resp)
	return nil
}

var (
	answerStyle    = lipgloss.NewStyle().Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	highConfStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	midConfStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	lowConfStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	breakdownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

func confidenceBadge(score float64) string {
	label := fmt.Sprintf("confidence %.2f", score)
	switch {
	case score >= 0.8:
		return highConfStyle.Render(label)
	case score >= 0.5:
		return midConfStyle.Render(label)
	default:
		return lowConfStyle.Render(label)
	}
}

func outputResponse(cmd *cobra.Command, resp *domain.Response) {
	cmd.Println(answerStyle.Render(resp.Result.Answer))
	cmd.Println()

	if len(resp.Result.Breakdown) > 0 {
		for _, row := range resp.Result.Breakdown {
			cmd.Println(breakdownStyle.Render(
				fmt.Sprintf("  %-40s %14.1f  %5.1f%%  (%d rows)",
					row.Group, row.Amount, row.Percentage, row.Rows)))
		}
		cmd.Println()
	}

	for i, hit := range resp.Result.Hits {
		line := hit.Record
		if line == "" {
			line = hit.Content
		}
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, line, hit.Score)
	}
	if len(resp.Result.Hits) > 0 {
		cmd.Println()
	}

	if resp.Result.Err != "" {
		cmd.Println(lowConfStyle.Render("Degraded: " + resp.Result.Err))
		cmd.Println()
	}

	cmd.Printf("%s  %s\n", confidenceBadge(resp.Confidence),
		dimStyle.Render(fmt.Sprintf("%s  audit %s  %s",
			resp.Method, resp.Evidence.AuditID, resp.ProcessingTime.Round(time.Millisecond))))
}
