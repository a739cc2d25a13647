// Package commands holds the cobra subcommands of the billing binary.
package commands

import (
	"fmt"

	"github.com/Homesapp/HomesappNew-sub000/internal/config"
	"github.com/Homesapp/HomesappNew-sub000/internal/database"
	"github.com/Homesapp/HomesappNew-sub000/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ConfigFlag is the persistent flag holding the config file path.
const ConfigFlag = "config"

type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString(ConfigFlag)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// bootstrap loads config, builds the logger and opens the database.
func bootstrap(cmd *cobra.Command) (*runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	db, err := database.Init(cfg.Database)
	if err != nil {
		return nil, err
	}
	return &runtime{cfg: cfg, logger: logger, db: db}, nil
}

func (r *runtime) close() {
	_ = r.logger.Sync()
	if sqlDB, err := r.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
