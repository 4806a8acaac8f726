package repositories

import "context"

// SchemaManager owns the table layout of the archive
type SchemaManager interface {
	// Migrate creates tables and indexes if they don't exist (idempotent)
	Migrate(ctx context.Context) error

	// DropAll removes every archive table
	DropAll(ctx context.Context) error

	// ClearData deletes all documents and folders, keeping users and schema
	ClearData(ctx context.Context) error
}
