// Package backend selects the expense store implementation the CLI talks
// to: the local JSON file or the remote API.
package backend

import (
	"fmt"
	"log/slog"

	"spendwise/internal/config"
	"spendwise/internal/log"
	"spendwise/internal/store"
	"spendwise/internal/store/local"
	"spendwise/internal/store/remote"
)

// Result holds the opened store and an optional cleanup function.
type Result struct {
	Store   store.Store
	Cleanup func() error
}

// Open builds the store named by cfg.DataBackend.
func Open(cfg *config.Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.DataBackend {
	case config.BackendLocal:
		st, err := local.Open(cfg.DataFilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open local store: %w", err)
		}
		logger.Info("Opened local store",
			log.FieldComponent, log.ComponentStore,
			"path", cfg.DataFilePath)
		return &Result{Store: st}, nil

	case config.BackendRemote:
		client := remote.New(cfg.APIBaseURL, cfg.APIToken, cfg.RequestTimeout)
		logger.Info("Using remote store",
			log.FieldComponent, log.ComponentStore,
			"base_url", cfg.APIBaseURL)
		return &Result{Store: client}, nil

	default:
		return nil, fmt.Errorf("unsupported data backend: %s", cfg.DataBackend)
	}
}
