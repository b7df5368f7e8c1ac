// Package cli implements the command-line interface for govquery.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/openaudit/govquery/internal/core/ports/driven"
	"github.com/openaudit/govquery/internal/core/ports/driving"
	"github.com/openaudit/govquery/internal/logger"
)

// Services the commands depend on. Wired by main before Execute;
// commands guard against nil so tests can run unwired.
var (
	queryService  driving.QueryService
	chatService   driving.ChatService
	ingestService driving.IngestService
	auditStore    driven.AuditStore
	configStore   driven.ConfigStore
)

// version is the build version, set via SetVersion.
var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "govquery",
	Short: "Query government budget and operational records",
	Long: `govquery answers natural-language questions about a government
budget ledger and operational records (finance, HR, procurement).

Questions are routed to a numeric aggregation engine, a lexical
retrieval engine, or both, and every answer carries a confidence
score and an audit-traceable evidence package.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Services bundles everything the commands need.
type Services struct {
	Query  driving.QueryService
	Chat   driving.ChatService
	Ingest driving.IngestService
	Audit  driven.AuditStore
	Config driven.ConfigStore
}

// SetServices wires the core services into the command tree.
func SetServices(s Services) {
	queryService = s.Query
	chatService = s.Chat
	ingestService = s.Ingest
	auditStore = s.Audit
	configStore = s.Config
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
