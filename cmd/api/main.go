package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docrepo/internal/config"
	"docrepo/internal/database"
	"docrepo/internal/database/migration"
	"docrepo/internal/logging"
)

// @title docrepo API
// @version 1.0
// @description Multi-tenant versioned document repository.
// @BasePath /
func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "docrepo",
		Short:         "Versioned document repository for client apps",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd.Context())
		},
	})

	return root
}

// bootstrap loads the configuration and builds the process logger.
func bootstrap() (*config.AppConfig, *time.Location, *zap.Logger, error) {
	cfg := config.Load()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	log, err := logging.New(cfg.LogLevel, loc)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, loc, log, nil
}

func runMigrate(ctx context.Context) error {
	cfg, _, log, err := bootstrap()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		log.Error("failed to connect to database", zap.Error(err))
		return err
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		log.Error("migration failed", zap.Error(err))
		return err
	}
	return nil
}

func runServe(parent context.Context) error {
	cfg, loc, log, err := bootstrap()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := newServer(ctx, cfg, loc, log)
	if err != nil {
		log.Error("startup failed", zap.Error(err))
		return err
	}
	defer srv.Close()

	return srv.Run(ctx)
}
