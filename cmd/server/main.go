package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ghosh9691/mmelParser/internal/api"
	"github.com/ghosh9691/mmelParser/internal/config"
	"github.com/ghosh9691/mmelParser/internal/pipeline"
	"github.com/ghosh9691/mmelParser/internal/scanner"
	"github.com/ghosh9691/mmelParser/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("load configuration", "error", err)
		os.Exit(1)
	}
	log := cfg.Logger(os.Stdout)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Family table.
	registry := scanner.DefaultRegistry()
	if cfg.FamiliesFile != "" {
		registry, err = scanner.LoadRegistry(cfg.FamiliesFile)
		if err != nil {
			log.Error("load families", "path", cfg.FamiliesFile, "error", err)
			os.Exit(1)
		}
	}
	parser := scanner.New(registry, log)

	// Storage.
	st, err := store.Open(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("open database", "error", err)
		os.Exit(1)
	}
	if err := st.MigrateUp(); err != nil {
		log.Error("run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, parser, st, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, parser, st, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", "error", err)
		}

		orch.Stop()
		if err := st.Close(); err != nil {
			log.Warn("close database", "error", err)
		}
	}()

	log.Info("starting mmelParser", "port", cfg.Port, "database", st.Driver(), "workers", cfg.WorkerCount)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
