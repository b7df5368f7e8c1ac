package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/openaudit/govquery/internal/adapters/driving/api"
	"github.com/openaudit/govquery/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Serves the query engine over HTTP:

  POST /api/v1/query         submit one question
  POST /api/v1/chat          ask within a persistent session
  GET  /api/v1/audit/logs    recent audit entries
  GET  /api/v1/trust/metrics trust metrics over the audit trail
  GET  /api/v1/health        liveness check`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost:8090", "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if queryService == nil || chatService == nil {
		return errors.New("query service not configured")
	}

	if !cmd.Flags().Changed("addr") && configStore != nil {
		if addr := configStore.GetString("server.addr"); addr != "" {
			serveAddr = addr
		}
	}

	server := api.NewServer(serveAddr, api.Services{
		Query: queryService,
		Chat:  chatService,
		Audit: auditStore,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	cmd.Printf("Listening on http://%s\n", serveAddr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
