package archive

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"docarchive/internal/domain"
	models "docarchive/internal/domain/models/archive"
	archiveRepo "docarchive/internal/domain/repositories/archive"
	"docarchive/internal/repository/postgres"
)

// PostgresDocumentRepository implements the DocumentRepository interface
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *postgres.RepositoryConfig) archiveRepo.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const documentColumns = `id, title, description, file_path, folder_path, status, created_date,
	author, tags, cabinet, shelf, box,
	preview_path, extracted_text, file_size, file_type, file_created_at, file_modified_at`

// searchColumns are matched by Search. extracted_text is appended on request.
var searchColumns = []string{"title", "description", "status", "author", "tags", "cabinet", "shelf", "box"}

func scanDocument(row pgx.Row, doc *models.Document) error {
	var tags *string
	err := row.Scan(
		&doc.ID,
		&doc.Title,
		&doc.Description,
		&doc.FilePath,
		&doc.FolderPath,
		&doc.Status,
		&doc.CreatedDate,
		&doc.Author,
		&tags,
		&doc.Cabinet,
		&doc.Shelf,
		&doc.Box,
		&doc.Derived.PreviewPath,
		&doc.Derived.ExtractedText,
		&doc.Derived.FileSize,
		&doc.Derived.FileType,
		&doc.Derived.FileCreatedAt,
		&doc.Derived.FileModifiedAt,
	)
	if err != nil {
		return err
	}
	doc.Tags = models.SplitTags(tags)
	return nil
}

// documentNotFound reports a missing document. Malformed ids are treated the same
// way since they can never match a row.
func documentNotFound(id string) error {
	return &domain.NotFoundError{Message: fmt.Sprintf("document %s not found", id)}
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Create inserts a new document
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (title, description, file_path, folder_path, status, author, tags, cabinet, shelf, box)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_date
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		doc.Title,
		doc.Description,
		doc.FilePath,
		doc.FolderPath,
		doc.Status,
		doc.Author,
		models.JoinTags(doc.Tags),
		doc.Cabinet,
		doc.Shelf,
		doc.Box,
	).Scan(&doc.ID, &doc.CreatedDate)

	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return &domain.NotFoundError{Message: fmt.Sprintf("folder %s not found", doc.FolderPath)}
		}
		return postgres.StorageError("create document", err)
	}

	doc.Tags = models.CleanTags(doc.Tags)
	return nil
}

// GetByID retrieves a document by ID
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	if !validID(id) {
		return nil, documentNotFound(id)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, documentColumns, r.tables.Documents)

	var doc models.Document
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := scanDocument(executor.QueryRow(ctx, query, id), &doc); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, documentNotFound(id)
		}
		return nil, postgres.StorageError("get document", err)
	}

	return &doc, nil
}

// ListByFolder lists documents directly inside a folder
func (r *PostgresDocumentRepository) ListByFolder(ctx context.Context, folderPath string, opts *models.ListOptions) ([]models.Document, error) {
	if opts == nil {
		opts = &models.ListOptions{}
	}
	opts.ApplyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	args := []any{folderPath}
	where := "folder_path = $1"
	if opts.Status != "" {
		args = append(args, opts.Status)
		where += " AND status = $2"
	}

	var orderBy string
	switch opts.Sort {
	case models.SortByTitle:
		orderBy = "lower(title) ASC, seq ASC"
	case models.SortByStatus:
		orderBy = "status ASC, created_date DESC, seq DESC"
	default:
		orderBy = "created_date DESC, seq DESC"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s
		ORDER BY %s
	`, documentColumns, r.tables.Documents, where, orderBy)

	return r.queryDocuments(ctx, "list documents in folder", query, args...)
}

func (r *PostgresDocumentRepository) queryDocuments(ctx context.Context, op, query string, args ...any) ([]models.Document, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.StorageError(op, err)
	}
	defer rows.Close()

	// Return empty slice instead of nil
	documents := []models.Document{}
	for rows.Next() {
		var doc models.Document
		if err := scanDocument(rows, &doc); err != nil {
			return nil, postgres.StorageError("scan document", err)
		}
		documents = append(documents, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, postgres.StorageError("iterate documents", err)
	}

	return documents, nil
}

// Update applies a partial update. Column names come from the fixed patch
// struct, never from caller-supplied strings.
func (r *PostgresDocumentRepository) Update(ctx context.Context, id string, patch *models.DocumentPatch) error {
	if patch == nil || patch.IsEmpty() {
		return &domain.ValidationError{Message: "no fields to update"}
	}
	if !validID(id) {
		return documentNotFound(id)
	}

	var sets []string
	var args []any
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.FilePath != nil {
		set("file_path", *patch.FilePath)
	}
	if patch.FolderPath != nil {
		set("folder_path", *patch.FolderPath)
	}
	if patch.Status != nil {
		set("status", *patch.Status)
	}
	if patch.Author != nil {
		set("author", *patch.Author)
	}
	if patch.Tags != nil {
		set("tags", models.JoinTags(*patch.Tags))
	}
	if patch.Cabinet != nil {
		set("cabinet", *patch.Cabinet)
	}
	if patch.Shelf != nil {
		set("shelf", *patch.Shelf)
	}
	if patch.Box != nil {
		set("box", *patch.Box)
	}

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s
		WHERE id = $%d
	`, r.tables.Documents, strings.Join(sets, ", "), len(args))

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, args...)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return &domain.NotFoundError{Message: fmt.Sprintf("folder %s not found", deref(patch.FolderPath))}
		}
		return postgres.StorageError("update document", err)
	}

	if result.RowsAffected() == 0 {
		return documentNotFound(id)
	}

	return nil
}

// Delete removes a document row and returns its file reference
func (r *PostgresDocumentRepository) Delete(ctx context.Context, id string) (string, error) {
	if !validID(id) {
		return "", documentNotFound(id)
	}

	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1
		RETURNING file_path
	`, r.tables.Documents)

	var filePath string
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id).Scan(&filePath); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return "", documentNotFound(id)
		}
		return "", postgres.StorageError("delete document", err)
	}

	return filePath, nil
}

// Search performs a case-insensitive substring match over metadata fields.
// An empty query skips the match and returns every document in scope.
func (r *PostgresDocumentRepository) Search(ctx context.Context, opts *models.SearchOptions) ([]models.Document, error) {
	var conditions []string
	var args []any

	if !opts.MatchesAll() {
		columns := searchColumns
		if opts.IncludeText {
			columns = append(append([]string{}, searchColumns...), "extracted_text")
		}

		args = append(args, "%"+escapeLike(opts.Query)+"%")
		matches := make([]string, len(columns))
		for i, column := range columns {
			matches[i] = fmt.Sprintf(`%s ILIKE $%d ESCAPE '\'`, column, len(args))
		}
		conditions = append(conditions, "("+strings.Join(matches, " OR ")+")")
	}

	if opts.FolderPath != nil {
		args = append(args, *opts.FolderPath)
		conditions = append(conditions, fmt.Sprintf("folder_path = $%d", len(args)))
	}

	where := "TRUE"
	if len(conditions) > 0 {
		where = strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s
		ORDER BY seq ASC
	`, documentColumns, r.tables.Documents, where)

	return r.queryDocuments(ctx, "search documents", query, args...)
}

// escapeLike makes every character of s match literally in an ILIKE pattern
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// CountByFolder counts documents directly inside folderPath
func (r *PostgresDocumentRepository) CountByFolder(ctx context.Context, folderPath string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE folder_path = $1`, r.tables.Documents)

	var count int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, folderPath).Scan(&count); err != nil {
		return 0, postgres.StorageError("count documents in folder", err)
	}
	return count, nil
}

// RewriteFolderPaths moves documents in oldPath, or anywhere below it, under newPath.
// Same segment-boundary matching as the folder rewrite.
func (r *PostgresDocumentRepository) RewriteFolderPaths(ctx context.Context, oldPath, newPath string) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_path = $2::text || substr(folder_path, length($1::text) + 1)
		WHERE folder_path = $1::text
		   OR left(folder_path, length($1::text) + 1) = $1::text || '/'
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, oldPath, newPath)
	if err != nil {
		return 0, postgres.StorageError("rewrite document folder paths", err)
	}

	return result.RowsAffected(), nil
}

// StoreDerived records preview pipeline output
func (r *PostgresDocumentRepository) StoreDerived(ctx context.Context, id string, derived *models.DerivedFields) error {
	if !validID(id) {
		return documentNotFound(id)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET preview_path = $1, extracted_text = $2, file_size = $3,
		    file_type = $4, file_created_at = $5, file_modified_at = $6
		WHERE id = $7
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		derived.PreviewPath,
		derived.ExtractedText,
		derived.FileSize,
		derived.FileType,
		derived.FileCreatedAt,
		derived.FileModifiedAt,
		id,
	)
	if err != nil {
		return postgres.StorageError("store derived fields", err)
	}

	if result.RowsAffected() == 0 {
		return documentNotFound(id)
	}

	return nil
}

// Count returns the total number of documents
func (r *PostgresDocumentRepository) Count(ctx context.Context) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.tables.Documents)

	var count int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, postgres.StorageError("count documents", err)
	}
	return count, nil
}
