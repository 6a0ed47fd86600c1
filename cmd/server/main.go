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

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/yukikurage/taskdesk/internal/config"
	"github.com/yukikurage/taskdesk/internal/database"
	"github.com/yukikurage/taskdesk/internal/logger"
	"github.com/yukikurage/taskdesk/internal/repository"
	"github.com/yukikurage/taskdesk/internal/router"
	"github.com/yukikurage/taskdesk/internal/seed"
	"github.com/yukikurage/taskdesk/internal/services"
)

const (
	appName         = "taskdesk"
	Version         = "0.1.0"
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Task management API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	})

	return cmd
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := logger.New(cfg.LogLevel, !cfg.IsProduction())
	gin.SetMode(cfg.GinMode)

	repos, cleanup, err := openRepositories(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	if cfg.SeedData {
		fixtures, err := seed.Default()
		if err != nil {
			return err
		}
		if _, err := seed.Load(repos, fixtures, log); err != nil {
			return err
		}
	}

	store, err := router.NewSessionStore(cfg)
	if err != nil {
		return err
	}

	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	} else {
		log.Warn().Msg("OPENAI_API_KEY not set; task generation disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: router.New(router.Options{
			Repos:        repos,
			AIService:    aiService,
			SessionStore: store,
			Logger:       log,
			Registry:     registry,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("storage", cfg.StorageDriver).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// openRepositories returns the store selected by cfg and a func releasing it.
func openRepositories(cfg *config.Config, log zerolog.Logger) (repository.Repositories, func(), error) {
	if cfg.StorageDriver == config.StorageMemory {
		return repository.NewMemoryRepositories(), func() {}, nil
	}

	db, err := database.Connect(cfg, log)
	if err != nil {
		return repository.Repositories{}, nil, err
	}
	if err := database.Migrate(db, log); err != nil {
		_ = database.Close(db)
		return repository.Repositories{}, nil, err
	}

	cleanup := func() {
		if err := database.Close(db); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}
	return repository.NewGormRepositories(db), cleanup, nil
}
