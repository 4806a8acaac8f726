package archive

import (
	"context"
	"fmt"
	"log/slog"

	"docarchive/internal/domain/repositories"
	archiveSvc "docarchive/internal/domain/services/archive"
)

// Bootstrapper prepares storage on process start
type Bootstrapper struct {
	schema repositories.SchemaManager
	users  archiveSvc.UserService
	logger *slog.Logger
}

// NewBootstrapper creates a new bootstrapper
func NewBootstrapper(schema repositories.SchemaManager, users archiveSvc.UserService, logger *slog.Logger) *Bootstrapper {
	return &Bootstrapper{schema: schema, users: users, logger: logger}
}

// Initialize creates missing tables and indexes, then seeds the default
// admin if there are no users. Safe to call on every start.
func (b *Bootstrapper) Initialize(ctx context.Context) error {
	if err := b.schema.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	seeded, err := b.users.EnsureDefaultAdmin(ctx)
	if err != nil {
		return fmt.Errorf("seed default admin: %w", err)
	}

	b.logger.Debug("archive initialized", "admin_seeded", seeded)
	return nil
}
