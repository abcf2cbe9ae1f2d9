package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ruangbelajar/internal/app"
	"ruangbelajar/internal/curriculum"
	"ruangbelajar/internal/db"
	"ruangbelajar/internal/platform/cache"
	"ruangbelajar/internal/platform/logger"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "seed",
	Short:         "Provision ruangbelajar curriculum content",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("dsn", "", "Postgres DSN (overrides DB_DSN)")
	rootCmd.PersistentFlags().Bool("migrate", false, "apply migrations before importing")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(yamlCmd)
	rootCmd.AddCommand(xlsxCmd)
	rootCmd.AddCommand(exportLibraryCmd)
}

// env bundles what every subcommand needs. close releases the db and the
// optional cache.
type env struct {
	cfg   app.Config
	log   *logger.Logger
	db    *sql.DB
	cache *cache.Cache
}

func (e *env) close() {
	if e.cache != nil {
		_ = e.cache.Close()
	}
	if e.db != nil {
		_ = e.db.Close()
	}
	e.log.Sync()
}

func openEnv(cmd *cobra.Command) (*env, error) {
	cfg := app.LoadConfig()
	if dsn, _ := cmd.Flags().GetString("dsn"); dsn != "" {
		cfg.DBDSN = dsn
	}

	log, err := logger.New(cfg.LogMode, app.IsProduction(cfg.AppEnv))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()
	conn, err := db.Open(ctx, cfg.DBDSN, db.PoolConfig{MaxOpenConns: 4})
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, log: log, db: conn}

	if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
		applied, err := db.Migrate(cmd.Context(), conn)
		if err != nil {
			e.close()
			return nil, err
		}
		log.Info("migrations applied", "files", applied)
	}

	if cfg.CacheURL != "" {
		c, err := cache.New(ctx, cfg.CacheURL)
		if err != nil {
			log.Warn("cache unavailable, skipping invalidation", "error", err)
		} else {
			e.cache = c
		}
	}
	return e, nil
}

// invalidate drops cached curriculum lists after an import.
func (e *env) invalidate(ctx context.Context) {
	if e.cache == nil {
		return
	}
	if err := e.cache.Delete(ctx, curriculum.CacheKeys()...); err != nil {
		e.log.Warn("cache invalidation failed", "error", err)
	}
}
