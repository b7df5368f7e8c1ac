package main

import (
	"fmt"
	"os"
	"time"

	"github.com/openaudit/govquery/internal/adapters/driven/config/file"
	"github.com/openaudit/govquery/internal/adapters/driven/llm/gemini"
	"github.com/openaudit/govquery/internal/adapters/driven/llm/ollama"
	"github.com/openaudit/govquery/internal/adapters/driven/storage/sqlite"
	"github.com/openaudit/govquery/internal/adapters/driving/cli"
	"github.com/openaudit/govquery/internal/core/ports/driven"
	"github.com/openaudit/govquery/internal/core/services"
	"github.com/openaudit/govquery/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

const defaultTopK = 5

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("config store: %w", err)
	}

	store, err := sqlite.NewStore(configStore.GetString("data.dir"))
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer store.Close()

	topK := configStore.GetInt("retrieval.top_k")
	if topK <= 0 {
		topK = defaultTopK
	}

	retriever := services.NewRetriever(store.DocumentIndex(), store.RecordStore(), topK)
	aggregator := services.NewAggregator(store.LedgerStore())
	classifier := services.NewClassifier(intentModel(configStore), 0)

	queries := services.NewQueryService(
		classifier,
		aggregator,
		retriever,
		services.NewComposer(aggregator, retriever),
		store.AuditStore(),
	)

	cli.SetServices(cli.Services{
		Query:  queries,
		Chat:   services.NewChatService(queries, store.SessionStore()),
		Ingest: services.NewIngestService(store.LedgerStore(), store.RecordStore(), store.DocumentIndex(), retriever),
		Audit:  store.AuditStore(),
		Config: configStore,
	})
	cli.SetRecordStore(store.RecordStore())
	cli.SetVersion(version)

	return cli.Execute()
}

// intentModel builds the configured external classifier, or nil when
// none is configured so the rule-based fallback handles every query.
func intentModel(cfg driven.ConfigStore) driven.IntentModel {
	timeout := time.Duration(cfg.GetInt("model.timeout_seconds")) * time.Second

	switch cfg.GetString("model.provider") {
	case "gemini":
		return gemini.NewIntentModel(gemini.Config{
			APIKey:            cfg.GetString("model.api_key"),
			BaseURL:           cfg.GetString("model.base_url"),
			Model:             cfg.GetString("model.name"),
			Timeout:           timeout,
			RequestsPerMinute: cfg.GetInt("model.requests_per_minute"),
		})
	case "ollama":
		return ollama.NewIntentModel(ollama.Config{
			BaseURL: cfg.GetString("model.base_url"),
			Model:   cfg.GetString("model.name"),
			Timeout: timeout,
		})
	case "", "none":
		logger.Debug("No intent model configured, using rule-based classification")
		return nil
	default:
		logger.Warn("Unknown model provider %q, using rule-based classification", cfg.GetString("model.provider"))
		return nil
	}
}
