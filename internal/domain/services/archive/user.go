package archive

import (
	"context"

	"docarchive/internal/access"
	"docarchive/internal/domain/models/archive"
)

// UserService manages archive accounts
type UserService interface {
	// Authenticate resolves a user from credentials
	Authenticate(ctx context.Context, username, password string) (*archive.User, error)

	// CreateUser adds an account (requires manage_users)
	CreateUser(ctx context.Context, actor access.Actor, req *CreateUserRequest) (*archive.User, error)

	// ListUsers returns all accounts without credentials
	ListUsers(ctx context.Context) ([]archive.User, error)

	// DeleteUser removes an account; the seeded admin is protected
	DeleteUser(ctx context.Context, actor access.Actor, username string) error

	// EnsureDefaultAdmin seeds the admin account when no user exists
	EnsureDefaultAdmin(ctx context.Context) (bool, error)
}

// CreateUserRequest represents an account creation request
type CreateUserRequest struct {
	Username string       `json:"username"`
	Password string       `json:"password"`
	Role     archive.Role `json:"role"`
}

// StatsService reports archive totals
type StatsService interface {
	Stats(ctx context.Context) (*archive.Stats, error)
}

// ExportService writes folder listings to files
type ExportService interface {
	// ExportFolder writes a plain-text listing of folderPath's documents to dest
	ExportFolder(ctx context.Context, folderPath, dest string) (int, error)
}
