package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"

	"github.com/rowanvale/questlog/internal/config"
	"github.com/rowanvale/questlog/internal/database"
	"github.com/rowanvale/questlog/internal/engine"
	"github.com/rowanvale/questlog/internal/logging"
	"github.com/rowanvale/questlog/internal/remote"
	"github.com/rowanvale/questlog/internal/server"
	"github.com/rowanvale/questlog/internal/store"
	questsync "github.com/rowanvale/questlog/internal/sync"
	"github.com/rowanvale/questlog/internal/websocket"
)

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	logger := logging.Setup(env("QUESTLOG_LOG_LEVEL", "info"), os.Getenv("QUESTLOG_LOG_JSON") == "true")

	port := env("QUESTLOG_PORT", "8080")
	dbPath := env("QUESTLOG_DB_PATH", "questlog.db")

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("failed to open database", "path", dbPath, "error", err)
		os.Exit(1)
	}
	settings := store.NewSettingsStore(db)
	installID, err := settings.GetOrCreateInstallID()
	if err != nil {
		logger.Error("failed to resolve install id", "error", err)
		os.Exit(1)
	}

	rewards, err := config.LoadRewards(os.Getenv("QUESTLOG_REWARDS_PATH"))
	if err != nil {
		// Falls back to the built-in table; a broken override file should
		// not keep the tracker from starting.
		logger.Warn("reward table load failed, using defaults", "error", err)
	}

	eng := engine.New(engine.SystemClock(), rewards, logger.With("component", "engine"))

	mirror := remote.New(remote.Config{
		Endpoint:  os.Getenv("QUESTLOG_S3_ENDPOINT"),
		Bucket:    os.Getenv("QUESTLOG_S3_BUCKET"),
		Region:    os.Getenv("QUESTLOG_S3_REGION"),
		AccessKey: os.Getenv("QUESTLOG_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("QUESTLOG_S3_SECRET_KEY"),
	}, installID, logger.With("component", "remote"))

	snapshots := store.NewSnapshotStore(db)
	syncer := questsync.New(eng, snapshots, mirror, installID, logger.With("component", "sync"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(eng, logger)

	// A snapshot written on another device must reach open views the same
	// way local mutations do.
	syncer.OnApply(func(rev uint64) {
		srv.Hub().Broadcast(websocket.StateChanged(rev))
	})
	syncer.Start(ctx)

	// Catch calendar boundaries the moment they pass, even with no client
	// attached: on start and every minute after.
	go func() {
		runResets := func() {
			if eng.ResetAll() {
				srv.Hub().Broadcast(websocket.StateChanged(eng.Revision()))
			}
		}
		runResets()
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runResets()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Questlog running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs error
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	syncer.Stop()
	if err := db.Close(); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("close database: %w", err))
	}
	if errs != nil {
		logger.Error("shutdown finished with errors", "error", errs)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
