package main

import (
	"errors"
	"fmt"

	"ecoroot/internal/repository"
	"ecoroot/pkg/logger"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return err
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFormat); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	if !cfg.Database.Enabled {
		return errors.New("database is disabled in config")
	}

	repo, err := repository.New(cmd.Context(), cfg.Database)
	if err != nil {
		return err
	}
	defer repo.Close()

	return repo.Migrate(cmd.Context())
}
