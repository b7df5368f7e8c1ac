package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/openaudit/govquery/internal/core/ports/driving"
	"github.com/openaudit/govquery/internal/logger"
)

var (
	indexRebuild  bool
	indexWatchDir string
)

// watchDebounce coalesces the burst of write events a single CSV drop
// produces into one import run.
const watchDebounce = 2 * time.Second

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the document index from operational records",
	Long: `Flattens every operational record (finance, HR, procurement) into
the lexical document index. Unchanged records are skipped by content
hash, so repeated runs are cheap.

With --watch, a directory is monitored for budget CSV drops; each
new or modified CSV is imported and the index refreshed.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexRebuild, "rebuild", false, "drop existing entries and re-index everything")
	indexCmd.Flags().StringVar(&indexWatchDir, "watch", "", "watch a directory for budget CSV drops")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx := context.Background()

	stats, err := ingestService.Reindex(ctx, indexRebuild)
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}
	outputIndexStats(cmd, stats)

	if indexWatchDir == "" {
		return nil
	}
	return watchCSVDir(ctx, cmd, indexWatchDir)
}

func outputIndexStats(cmd *cobra.Command, stats *driving.IndexStats) {
	tables := make([]string, 0, len(stats.Indexed))
	for table := range stats.Indexed {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	for _, table := range tables {
		cmd.Printf("  %s: %d indexed\n", table, stats.Indexed[table])
	}
	cmd.Printf("Index holds %d entries (%d unchanged, %d errors).\n",
		stats.Total, stats.Skipped, len(stats.Errors))
	for _, e := range stats.Errors {
		cmd.Printf("  error: %s\n", e)
	}
}

// watchCSVDir blocks watching dir for budget CSV drops until
// interrupted. Each drop is imported and followed by a reindex.
func watchCSVDir(ctx context.Context, cmd *cobra.Command, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd.Printf("Watching %s for CSV drops (Ctrl+C to stop)...\n", dir)

	var (
		timer   *time.Timer
		pending = make(map[string]struct{})
		fire    = make(chan struct{}, 1)
	)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".csv") {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			pending[event.Name] = struct{}{}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case <-fire:
			for path := range pending {
				delete(pending, path)
				cmd.Printf("Importing %s...\n", path)
				rows, err := ingestService.ImportBudgetCSV(ctx, path)
				if err != nil {
					logger.Warn("Import of %s failed: %v", path, err)
					continue
				}
				cmd.Printf("Imported %d ledger rows.\n", rows)
			}
			stats, err := ingestService.Reindex(ctx, false)
			if err != nil {
				logger.Warn("Reindex failed: %v", err)
				continue
			}
			outputIndexStats(cmd, stats)
		}
	}
}
