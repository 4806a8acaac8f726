package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"docarchive/internal/cli"
	"docarchive/internal/config"
	"docarchive/internal/filestore"
	"docarchive/internal/preview"
	"docarchive/internal/repository/postgres"
	postgresArchive "docarchive/internal/repository/postgres/archive"
	serviceArchive "docarchive/internal/service/archive"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load .env file (silently ignore if it doesn't exist)
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "error: invalid configuration:", err)
		return cli.ExitUsage
	}

	// Logs go to stderr so command output stays clean
	logger, closeLog, err := config.NewLogger(cfg, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: setup logging:", err)
		return cli.ExitError
	}
	defer func() { _ = closeLog() }()
	slog.SetDefault(logger)

	logger.Debug("archive starting",
		"environment", cfg.Environment,
		"table_prefix", cfg.TablePrefix,
		"file_store", cfg.FileStore,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{MaxConns: 4, MinConns: 1})
	if err != nil {
		logger.Error("database unavailable", "error", err)
		fmt.Fprintln(os.Stderr, "error: database unavailable:", err)
		return cli.ExitError
	}
	defer pool.Close()

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}
	folderRepo := postgresArchive.NewFolderRepository(repoConfig)
	docRepo := postgresArchive.NewDocumentRepository(repoConfig)
	userRepo := postgresArchive.NewUserRepository(repoConfig)
	schema := postgres.NewSchemaManager(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	files, err := filestore.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("file store unavailable", "error", err)
		fmt.Fprintln(os.Stderr, "error: file store unavailable:", err)
		return cli.ExitError
	}

	// Preview pipeline writes derived fields straight to the repository
	processor := preview.NewProcessor(preview.Options{
		PreviewDir:     cfg.PreviewDir,
		PlaceholderDir: cfg.PlaceholderDir,
		Size:           config.PreviewSize,
		MaxTextBytes:   config.MaxExtractedTextBytes,
	}, logger)
	pipeline := preview.NewPipeline(ctx, processor, docRepo, files, preview.PipelineOptions{
		Workers:   cfg.PreviewWorkers,
		QueueSize: cfg.PreviewQueue,
	}, logger)
	// Drain queued previews before the pool closes
	defer pipeline.Close()

	// Create services
	userService := serviceArchive.NewUserService(userRepo, cfg.AdminPassword, logger)
	bootstrapper := serviceArchive.NewBootstrapper(schema, userService, logger)

	app := &cli.App{
		Folders:    serviceArchive.NewFolderService(folderRepo, docRepo, txManager, logger),
		Documents:  serviceArchive.NewDocumentService(docRepo, folderRepo, txManager, pipeline, files, logger),
		Users:      userService,
		Stats:      serviceArchive.NewStatsService(docRepo, folderRepo, userRepo),
		Export:     serviceArchive.NewExportService(docRepo, folderRepo, logger),
		Initialize: bootstrapper.Initialize,
		Out:        os.Stdout,
		ErrOut:     os.Stderr,
		Getenv:     os.Getenv,
	}

	// Tables and the default admin are created on first use
	if err := bootstrapper.Initialize(ctx); err != nil {
		logger.Error("initialize archive", "error", err)
		fmt.Fprintln(os.Stderr, "error:", err)
		return cli.ExitError
	}

	return cli.Run(ctx, app, os.Args[1:])
}
