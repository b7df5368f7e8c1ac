package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/openaudit/govquery/internal/core/domain"
)

var (
	auditLimit int
	auditJSON  bool
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit trail of answered queries",
	Long: `Lists recent audited responses: what was asked, how it was routed,
the confidence awarded and which stores were consulted.`,
	RunE: runAuditList,
}

var auditMetricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show trust metrics over the audit trail",
	RunE:  runAuditMetrics,
}

func init() {
	auditCmd.Flags().IntVarP(&auditLimit, "limit", "n", 20, "maximum number of entries")
	auditCmd.Flags().BoolVar(&auditJSON, "json", false, "output as JSON")
	auditCmd.AddCommand(auditMetricsCmd)
	rootCmd.AddCommand(auditCmd)
}

func runAuditList(cmd *cobra.Command, args []string) error {
	if auditStore == nil {
		return errors.New("audit store not configured")
	}

	entries, err := auditStore.List(context.Background(), auditLimit)
	if err != nil {
		return fmt.Errorf("failed to list audit entries: %w", err)
	}

	if auditJSON {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal entries: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(entries) == 0 {
		cmd.Println("No audited queries yet.")
		return nil
	}

	for _, e := range entries {
		cmd.Printf("%s  %-6s  %.2f  %s\n",
			e.CreatedAt.Format(time.RFC3339), e.Method, e.Confidence, e.AuditID)
		cmd.Printf("    %s\n", e.Query)
	}
	return nil
}

func runAuditMetrics(cmd *cobra.Command, args []string) error {
	if auditStore == nil {
		return errors.New("audit store not configured")
	}

	metrics, err := auditStore.Metrics(context.Background())
	if err != nil {
		return fmt.Errorf("failed to compute metrics: %w", err)
	}

	cmd.Printf("Total queries:         %d\n", metrics.TotalQueries)
	cmd.Printf("Average confidence:    %.2f\n", metrics.AverageConfidence)
	cmd.Printf("High confidence share: %.0f%%\n", metrics.HighConfidenceShare*100)
	methods := make([]string, 0, len(metrics.ByMethod))
	for method := range metrics.ByMethod {
		methods = append(methods, string(method))
	}
	sort.Strings(methods)
	for _, method := range methods {
		cmd.Printf("  %-6s %d\n", method, metrics.ByMethod[domain.QueryMethod(method)])
	}
	return nil
}
