package archive

import (
	"context"

	"docarchive/internal/domain/models/archive"
)

// UserRepository defines data access operations for users
type UserRepository interface {
	// Create inserts a user. Duplicate username → domain.ErrConflict.
	Create(ctx context.Context, user *archive.User) error

	// CreateIfEmpty inserts user only when the users table has no rows.
	// Returns whether the user was inserted.
	CreateIfEmpty(ctx context.Context, user *archive.User) (bool, error)

	// GetByUsername retrieves a user by username
	GetByUsername(ctx context.Context, username string) (*archive.User, error)

	// List returns all users ordered by username
	List(ctx context.Context) ([]archive.User, error)

	// Delete removes a user by username
	Delete(ctx context.Context, username string) error

	// Count returns the total number of users
	Count(ctx context.Context) (int, error)
}
