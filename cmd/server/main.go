package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shiftplan/internal/config"
	"shiftplan/internal/database"
	"shiftplan/internal/logging"
	"shiftplan/internal/store"
	"shiftplan/internal/store/jsonstore"
)

// rootCmd runs the HTTP server when no subcommand is given.
var rootCmd = &cobra.Command{
	Use:           "shiftplan",
	Short:         "Shift scheduling and payroll backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, seedCmd, userCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// deps bundles what every command needs.
type deps struct {
	cfg   *config.Config
	log   *zap.Logger
	store store.Store
}

func setup() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	for _, w := range cfg.Warnings {
		log.Warn(w)
	}

	st, err := openStore(cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	return &deps{cfg: cfg, log: log, store: st}, nil
}

func openStore(cfg *config.Config, log *zap.Logger) (store.Store, error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres, config.StorageSQLite:
		return database.Open(cfg.StorageDriver, cfg.DatabaseDSN, log)
	default:
		st, err := jsonstore.Open(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		log.Info("json store ready", zap.String("dir", cfg.DataDir))
		return st, nil
	}
}

func (r *deps) close() {
	if err := r.store.Close(); err != nil {
		r.log.Warn("store close failed", zap.Error(err))
	}
	_ = r.log.Sync()
}
