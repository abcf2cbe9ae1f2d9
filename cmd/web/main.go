package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ruangbelajar/internal/app"
	"ruangbelajar/internal/db"
	"ruangbelajar/internal/platform/cache"
	"ruangbelajar/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ruangbelajar: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := app.LoadConfig()

	log, err := logger.New(cfg.LogMode, app.IsProduction(cfg.AppEnv))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	conn, err := db.Open(ctx, cfg.DBDSN, db.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.DBConnMaxLifeMins) * time.Minute,
	})
	if err != nil {
		return err
	}
	defer conn.Close()

	if cfg.DBAutoMigrate {
		applied, err := db.Migrate(ctx, conn)
		if err != nil {
			return err
		}
		log.Info("migrations applied", "files", applied)
	}

	var c *cache.Cache
	if cfg.CacheURL != "" {
		c, err = cache.New(ctx, cfg.CacheURL)
		if err != nil {
			log.Warn("cache unavailable, serving uncached", "error", err)
			c = nil
		} else {
			defer c.Close()
		}
	}

	gw, err := app.NewGateway(cfg, conn)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: app.NewRouter(cfg, app.Deps{
			DB:      conn,
			Cache:   c,
			Gateway: gw,
			Log:     log,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", srv.Addr, "env", cfg.AppEnv, "auth_provider", cfg.AuthProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	return nil
}
