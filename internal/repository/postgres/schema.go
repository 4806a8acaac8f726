package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"docarchive/internal/domain/repositories"
)

// SchemaManager creates and tears down the archive tables
type SchemaManager struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewSchemaManager creates a new schema manager
func NewSchemaManager(config *RepositoryConfig) repositories.SchemaManager {
	return &SchemaManager{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// statements returns the DDL in dependency order. Every statement is
// idempotent so Migrate can run on each process start.
//
// Folder and document references to folders(path) are DEFERRABLE INITIALLY
// DEFERRED: a cascading rename rewrites the folder row and everything that
// points at it inside one transaction, and the references only have to
// line up again at commit.
func (m *SchemaManager) statements() []string {
	t := m.tables
	return []string{
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

		`CREATE TABLE IF NOT EXISTS ` + t.Users + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL CHECK (role IN ('admin', 'editor', 'viewer')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS ` + t.Folders + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name TEXT NOT NULL,
			path TEXT NOT NULL UNIQUE CHECK (path LIKE '/_%'),
			parent_path TEXT REFERENCES ` + t.Folders + `(path) DEFERRABLE INITIALLY DEFERRED,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS ` + t.Documents + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			file_path TEXT NOT NULL DEFAULT '',
			folder_path TEXT NOT NULL REFERENCES ` + t.Folders + `(path) DEFERRABLE INITIALLY DEFERRED,
			status TEXT NOT NULL,
			created_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			author TEXT NOT NULL,
			tags TEXT,
			cabinet TEXT,
			shelf TEXT,
			box TEXT,
			preview_path TEXT,
			extracted_text TEXT,
			file_size BIGINT,
			file_type TEXT,
			file_created_at TIMESTAMPTZ,
			file_modified_at TIMESTAMPTZ,
			seq BIGINT GENERATED ALWAYS AS IDENTITY
		)`,

		`CREATE INDEX IF NOT EXISTS ` + t.Index("folders_path") + ` ON ` + t.Folders + `(path)`,
		`CREATE INDEX IF NOT EXISTS ` + t.Index("folders_parent_path") + ` ON ` + t.Folders + `(parent_path)`,
		`CREATE INDEX IF NOT EXISTS ` + t.Index("documents_folder_path") + ` ON ` + t.Documents + `(folder_path)`,
	}
}

// Migrate creates tables and indexes if they don't exist
func (m *SchemaManager) Migrate(ctx context.Context) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return StorageError("begin migration", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // no-op after commit

	for _, stmt := range m.statements() {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return StorageError("migrate schema", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return StorageError("commit migration", err)
	}

	m.logger.Debug("schema ready", "table_prefix", m.tables.Prefix)
	return nil
}

// DropAll removes every archive table
func (m *SchemaManager) DropAll(ctx context.Context) error {
	query := fmt.Sprintf(`DROP TABLE IF EXISTS %s, %s, %s CASCADE`,
		m.tables.Documents, m.tables.Folders, m.tables.Users)

	if _, err := m.pool.Exec(ctx, query); err != nil {
		return StorageError("drop tables", err)
	}

	m.logger.Info("tables dropped", "table_prefix", m.tables.Prefix)
	return nil
}

// ClearData deletes all documents and folders but keeps users and schema
func (m *SchemaManager) ClearData(ctx context.Context) error {
	query := fmt.Sprintf(`TRUNCATE %s, %s`, m.tables.Documents, m.tables.Folders)

	if _, err := m.pool.Exec(ctx, query); err != nil {
		return StorageError("clear data", err)
	}

	m.logger.Info("documents and folders cleared", "table_prefix", m.tables.Prefix)
	return nil
}
