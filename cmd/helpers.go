package cmd

import (
	"context"
	"fmt"

	"github.com/ziadkadry99/llm-sidecar/internal/config"
	"github.com/ziadkadry99/llm-sidecar/internal/db"
	"github.com/ziadkadry99/llm-sidecar/internal/journal"
	"github.com/ziadkadry99/llm-sidecar/internal/llm"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `llm-sidecar init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newClient builds the LLM facade over the config file and initializes it.
func newClient(ctx context.Context) (*llm.Client, error) {
	client := llm.NewClient(config.NewSource(cfgFile)).WithLogger(logger)
	if err := client.InitClient(ctx); err != nil {
		return nil, fmt.Errorf("initializing LLM client: %w", err)
	}
	return client, nil
}

// openJournal opens the command journal configured in cfg. The returned
// close function is never nil.
func openJournal(cfg *config.Config) (*journal.Store, func(), error) {
	database, err := db.Open(cfg.Journal.Path)
	if err != nil {
		return nil, func() {}, fmt.Errorf("opening journal: %w", err)
	}
	return journal.NewStore(database), func() { database.Close() }, nil
}
