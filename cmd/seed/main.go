package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"docarchive/internal/access"
	"docarchive/internal/config"
	"docarchive/internal/domain"
	models "docarchive/internal/domain/models/archive"
	archiveSvc "docarchive/internal/domain/services/archive"
	"docarchive/internal/repository/postgres"
	postgresArchive "docarchive/internal/repository/postgres/archive"
	serviceArchive "docarchive/internal/service/archive"
)

type seedFolder struct {
	parent string // "" = root level
	name   string
}

type seedDocument struct {
	folder string
	title  string
	status string
	author string
	tags   []string
	shelf  string
}

var sampleFolders = []seedFolder{
	{"", "Legal"},
	{"/Legal", "Contracts"},
	{"/Legal", "2024"},
	{"", "Finance"},
	{"/Finance", "Invoices"},
	{"", "HR"},
}

var sampleDocuments = []seedDocument{
	{"/Legal/Contracts", "Office lease", "signed", "J. Park", []string{"lease", "contract"}, "A1"},
	{"/Legal/Contracts", "Supplier agreement", "draft", "J. Park", []string{"contract"}, "A1"},
	{"/Legal/2024", "Annual compliance report", "final", "M. Ortiz", []string{"compliance", "2024"}, "A2"},
	{"/Finance/Invoices", "Invoice 0042", "paid", "Accounts", []string{"invoice"}, "B3"},
	{"/Finance/Invoices", "Invoice 0043", "open", "Accounts", []string{"invoice"}, "B3"},
	{"/HR", "Employee handbook", "published", "People team", nil, ""},
}

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema and the default admin, don't seed documents")
	clearData := flag.Bool("clear-data", false, "Clear all documents and folders (keep schema and users)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("BLOCKED: cannot run destructive operations (--drop-tables or --clear-data) in production")
	}

	logger, closeLog, err := config.NewLogger(cfg, os.Stdout)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer func() { _ = closeLog() }()

	switch {
	case *clearData:
		log.Printf("Clearing data only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	case *schemaOnly:
		log.Printf("Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	default:
		log.Printf("Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}
	schema := postgres.NewSchemaManager(repoConfig)

	if *dropTables {
		log.Println("Dropping all tables...")
		if err := schema.DropAll(ctx); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
	}

	folderRepo := postgresArchive.NewFolderRepository(repoConfig)
	docRepo := postgresArchive.NewDocumentRepository(repoConfig)
	userRepo := postgresArchive.NewUserRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	userService := serviceArchive.NewUserService(userRepo, cfg.AdminPassword, logger)
	if err := serviceArchive.NewBootstrapper(schema, userService, logger).Initialize(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	log.Println("Schema ready")

	if *schemaOnly {
		return
	}

	if *clearData {
		if err := schema.ClearData(ctx); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("Data cleared")
		return
	}

	// Seeding goes through the services so paths are validated the same
	// way as CLI edits. No preview pipeline: sample documents have no file.
	admin := access.Actor{Username: models.DefaultAdminUsername, Role: models.RoleAdmin}
	folders := serviceArchive.NewFolderService(folderRepo, docRepo, txManager, logger)
	documents := serviceArchive.NewDocumentService(docRepo, folderRepo, txManager, nil, nil, logger)

	if err := seedFolders(ctx, folders, admin); err != nil {
		log.Fatalf("Failed to seed folders: %v", err)
	}
	count, err := seedDocuments(ctx, documents, admin)
	if err != nil {
		log.Fatalf("Failed to seed documents: %v", err)
	}

	log.Printf("Seeded %d folders and %d documents", len(sampleFolders), count)
}

// seedFolders creates the sample tree, skipping folders that already exist
func seedFolders(ctx context.Context, folders archiveSvc.FolderService, admin access.Actor) error {
	for _, f := range sampleFolders {
		req := &archiveSvc.CreateFolderRequest{Name: f.name}
		if f.parent != "" {
			parent := f.parent
			req.ParentPath = &parent
		}
		if _, err := folders.CreateFolder(ctx, admin, req); err != nil && !errors.Is(err, domain.ErrConflict) {
			return err
		}
	}
	return nil
}

func seedDocuments(ctx context.Context, documents archiveSvc.DocumentService, admin access.Actor) (int, error) {
	for _, d := range sampleDocuments {
		req := &archiveSvc.CreateDocumentRequest{
			Title:      d.title,
			FolderPath: d.folder,
			Status:     d.status,
			Author:     d.author,
			Tags:       d.tags,
		}
		if d.shelf != "" {
			shelf := d.shelf
			req.Shelf = &shelf
		}
		if _, err := documents.AddDocument(ctx, admin, req); err != nil {
			return 0, err
		}
	}
	return len(sampleDocuments), nil
}
