package archive

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"docarchive/internal/domain"
	models "docarchive/internal/domain/models/archive"
	"docarchive/internal/domain/repositories"
	archiveRepo "docarchive/internal/domain/repositories/archive"
	"docarchive/internal/repository/postgres"
)

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *postgres.RepositoryConfig) archiveRepo.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const folderColumns = `id, name, path, parent_path, created_at`

func scanFolder(row pgx.Row, folder *models.Folder) error {
	return row.Scan(
		&folder.ID,
		&folder.Name,
		&folder.Path,
		&folder.ParentPath,
		&folder.CreatedAt,
	)
}

// Create inserts a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, path, parent_path)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		folder.Name,
		folder.Path,
		folder.ParentPath,
	).Scan(&folder.ID, &folder.CreatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("folder %s already exists", folder.Path),
				ResourceType: "folder",
				ResourceID:   folder.Path,
			}
		}
		if postgres.IsPgForeignKeyError(err) {
			return &domain.NotFoundError{Message: fmt.Sprintf("parent folder %s not found", deref(folder.ParentPath))}
		}
		return postgres.StorageError("create folder", err)
	}

	return nil
}

// GetByPath retrieves a folder by its path
func (r *PostgresFolderRepository) GetByPath(ctx context.Context, path string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE path = $1
	`, folderColumns, r.tables.Folders)

	var folder models.Folder
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := scanFolder(executor.QueryRow(ctx, query, path), &folder); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("folder %s not found", path)}
		}
		return nil, postgres.StorageError("get folder", err)
	}

	return &folder, nil
}

// Exists reports whether a folder with this path is stored
func (r *PostgresFolderRepository) Exists(ctx context.Context, path string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE path = $1)`, r.tables.Folders)

	var exists bool
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, path).Scan(&exists); err != nil {
		return false, postgres.StorageError("check folder exists", err)
	}
	return exists, nil
}

// ListChildren lists direct child folders
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, parentPath *string) ([]models.Folder, error) {
	var query string
	var args []any

	if parentPath == nil {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE parent_path IS NULL
			ORDER BY path ASC
		`, folderColumns, r.tables.Folders)
	} else {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE parent_path = $1
			ORDER BY path ASC
		`, folderColumns, r.tables.Folders)
		args = append(args, *parentPath)
	}

	return r.queryFolders(ctx, "list folder children", query, args...)
}

// GetAll retrieves every folder (flat list)
func (r *PostgresFolderRepository) GetAll(ctx context.Context) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		ORDER BY path ASC
	`, folderColumns, r.tables.Folders)

	return r.queryFolders(ctx, "get all folders", query)
}

func (r *PostgresFolderRepository) queryFolders(ctx context.Context, op, query string, args ...any) ([]models.Folder, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.StorageError(op, err)
	}
	defer rows.Close()

	folders := []models.Folder{}
	for rows.Next() {
		var folder models.Folder
		if err := scanFolder(rows, &folder); err != nil {
			return nil, postgres.StorageError("scan folder", err)
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, postgres.StorageError("iterate folders", err)
	}

	return folders, nil
}

// CountChildren counts folders whose parent is path
func (r *PostgresFolderRepository) CountChildren(ctx context.Context, path string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE parent_path = $1`, r.tables.Folders)

	var count int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, path).Scan(&count); err != nil {
		return 0, postgres.StorageError("count child folders", err)
	}
	return count, nil
}

// Relocate changes one folder's name, path and parent
func (r *PostgresFolderRepository) Relocate(ctx context.Context, oldPath, newName, newPath string, newParentPath *string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, path = $2, parent_path = $3
		WHERE path = $4
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, newName, newPath, newParentPath, oldPath)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("folder %s already exists", newPath),
				ResourceType: "folder",
				ResourceID:   newPath,
			}
		}
		return postgres.StorageError("relocate folder", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("folder %s not found", oldPath)}
	}

	return nil
}

// RewriteDescendants swaps the oldPath prefix for newPath on every folder
// strictly below oldPath.
//
// Matching compares the leading len(oldPath)+1 characters against
// oldPath || '/', so a sibling such as "/ab" never matches "/a". LIKE is
// avoided because folder names may contain '%' and '_'.
func (r *PostgresFolderRepository) RewriteDescendants(ctx context.Context, oldPath, newPath string) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET path = $2::text || substr(path, length($1::text) + 1),
		    parent_path = $2::text || substr(parent_path, length($1::text) + 1)
		WHERE left(path, length($1::text) + 1) = $1::text || '/'
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, oldPath, newPath)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return 0, &domain.ConflictError{
				Message:      fmt.Sprintf("a folder under %s already exists", newPath),
				ResourceType: "folder",
				ResourceID:   newPath,
			}
		}
		return 0, postgres.StorageError("rewrite descendant folders", err)
	}

	return result.RowsAffected(), nil
}

// Delete removes an empty folder. The emptiness check and the delete run
// against the same executor; callers wrap both in one transaction.
func (r *PostgresFolderRepository) Delete(ctx context.Context, path string) (bool, error) {
	executor := postgres.GetExecutor(ctx, r.pool)

	var documents, folders int
	countQuery := fmt.Sprintf(`
		SELECT
			(SELECT COUNT(*) FROM %s WHERE folder_path = $1),
			(SELECT COUNT(*) FROM %s WHERE parent_path = $1)
	`, r.tables.Documents, r.tables.Folders)
	if err := executor.QueryRow(ctx, countQuery, path).Scan(&documents, &folders); err != nil {
		return false, postgres.StorageError("count folder dependents", err)
	}
	if documents > 0 || folders > 0 {
		r.logger.Debug("folder delete refused", "path", path, "documents", documents, "folders", folders)
		return false, nil
	}

	// Check references at statement time so a row inserted by a concurrent
	// transaction surfaces as a refused delete instead of a commit failure.
	if _, err := executor.Exec(ctx, `SET CONSTRAINTS ALL IMMEDIATE`); err != nil {
		return false, postgres.StorageError("set constraints", err)
	}

	var deleted int64
	err := postgres.WithSavepoint(ctx, r.pool, func(exec repositories.DBTX) error {
		query := fmt.Sprintf(`DELETE FROM %s WHERE path = $1`, r.tables.Folders)
		result, err := exec.Exec(ctx, query, path)
		if err != nil {
			return err
		}
		deleted = result.RowsAffected()
		return nil
	})
	if err != nil {
		// The savepoint was rolled back, so the caller's transaction can
		// still count what is blocking the delete.
		if postgres.IsPgForeignKeyError(err) {
			r.logger.Debug("folder delete refused by reference", "path", path)
			return false, nil
		}
		return false, postgres.StorageError("delete folder", err)
	}

	if deleted == 0 {
		return false, &domain.NotFoundError{Message: fmt.Sprintf("folder %s not found", path)}
	}

	return true, nil
}

// Count returns the total number of folders
func (r *PostgresFolderRepository) Count(ctx context.Context) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.tables.Folders)

	var count int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, postgres.StorageError("count folders", err)
	}
	return count, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
