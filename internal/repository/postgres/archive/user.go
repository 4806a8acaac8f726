package archive

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"docarchive/internal/domain"
	models "docarchive/internal/domain/models/archive"
	archiveRepo "docarchive/internal/domain/repositories/archive"
	"docarchive/internal/repository/postgres"
)

// PostgresUserRepository implements the UserRepository interface
type PostgresUserRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(config *postgres.RepositoryConfig) archiveRepo.UserRepository {
	return &PostgresUserRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func userConflict(username string) error {
	return &domain.ConflictError{
		Message:      fmt.Sprintf("user %s already exists", username),
		ResourceType: "user",
		ResourceID:   username,
	}
}

// Create inserts a new user
func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, r.tables.Users)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, user.Username, user.PasswordHash, string(user.Role)).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return userConflict(user.Username)
		}
		if postgres.IsPgCheckError(err) {
			return &domain.ValidationError{Message: fmt.Sprintf("invalid role %q", user.Role)}
		}
		return postgres.StorageError("create user", err)
	}

	return nil
}

// CreateIfEmpty inserts user only when no user exists yet. Two processes
// bootstrapping at once both try the insert; the loser sees a unique
// violation and reports false.
func (r *PostgresUserRepository) CreateIfEmpty(ctx context.Context, user *models.User) (bool, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (username, password_hash, role)
		SELECT $1, $2, $3
		WHERE NOT EXISTS (SELECT 1 FROM %s)
		RETURNING id, created_at
	`, r.tables.Users, r.tables.Users)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, user.Username, user.PasswordHash, string(user.Role)).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgDuplicateError(err) {
			return false, nil
		}
		return false, postgres.StorageError("seed user", err)
	}

	return true, nil
}

// GetByUsername retrieves a user by username
func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, username, password_hash, role, created_at
		FROM %s
		WHERE username = $1
	`, r.tables.Users)

	var user models.User
	var role string
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&role,
		&user.CreatedAt,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("user %s not found", username)}
		}
		return nil, postgres.StorageError("get user", err)
	}
	user.Role = models.Role(role)

	return &user, nil
}

// List returns all users ordered by username. Password hashes are not loaded.
func (r *PostgresUserRepository) List(ctx context.Context) ([]models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, username, role, created_at
		FROM %s
		ORDER BY username ASC
	`, r.tables.Users)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, postgres.StorageError("list users", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		var role string
		if err := rows.Scan(&user.ID, &user.Username, &role, &user.CreatedAt); err != nil {
			return nil, postgres.StorageError("scan user", err)
		}
		user.Role = models.Role(role)
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, postgres.StorageError("iterate users", err)
	}

	return users, nil
}

// Delete removes a user by username
func (r *PostgresUserRepository) Delete(ctx context.Context, username string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE username = $1`, r.tables.Users)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, username)
	if err != nil {
		return postgres.StorageError("delete user", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("user %s not found", username)}
	}

	return nil
}

// Count returns the total number of users
func (r *PostgresUserRepository) Count(ctx context.Context) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.tables.Users)

	var count int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, postgres.StorageError("count users", err)
	}
	return count, nil
}
