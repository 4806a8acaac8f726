package archive

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"docarchive/internal/access"
	"docarchive/internal/config"
	"docarchive/internal/domain"
	models "docarchive/internal/domain/models/archive"
	"docarchive/internal/domain/repositories"
	archiveRepo "docarchive/internal/domain/repositories/archive"
	archiveSvc "docarchive/internal/domain/services/archive"
	"docarchive/internal/pathutil"
)

type documentService struct {
	docRepo    archiveRepo.DocumentRepository
	folderRepo archiveRepo.FolderRepository
	txManager  repositories.TransactionManager
	previews   archiveSvc.PreviewQueue // nil = no preview processing
	files      archiveSvc.FileStore    // nil = files are left in place
	logger     *slog.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	docRepo archiveRepo.DocumentRepository,
	folderRepo archiveRepo.FolderRepository,
	txManager repositories.TransactionManager,
	previews archiveSvc.PreviewQueue,
	files archiveSvc.FileStore,
	logger *slog.Logger,
) archiveSvc.DocumentService {
	return &documentService{
		docRepo:    docRepo,
		folderRepo: folderRepo,
		txManager:  txManager,
		previews:   previews,
		files:      files,
		logger:     logger,
	}
}

// AddDocument validates req, stores the document in an existing folder and
// queues its file for preview processing once committed
func (s *documentService) AddDocument(ctx context.Context, actor access.Actor, req *archiveSvc.CreateDocumentRequest) (*models.Document, error) {
	if err := access.Require(actor, access.CapCreate); err != nil {
		return nil, err
	}

	req = trimCreateRequest(req)
	if err := s.validateCreateRequest(req); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	doc := &models.Document{
		Title:       req.Title,
		Description: req.Description,
		FilePath:    req.FilePath,
		FolderPath:  pathutil.Normalize(req.FolderPath),
		Status:      req.Status,
		CreatedDate: time.Now(),
		Author:      req.Author,
		Tags:        models.CleanTags(req.Tags),
		Cabinet:     req.Cabinet,
		Shelf:       req.Shelf,
		Box:         req.Box,
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.requireFolder(txCtx, doc.FolderPath); err != nil {
			return err
		}
		return s.docRepo.Create(txCtx, doc)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document created",
		"id", doc.ID,
		"title", doc.Title,
		"folder_path", doc.FolderPath,
		"user", actor.Username,
	)

	s.queuePreview(doc.ID, doc.FilePath)
	return doc, nil
}

// trimCreateRequest returns a copy of req with surrounding whitespace removed
// from the required fields, so whitespace-only values fail validation
func trimCreateRequest(req *archiveSvc.CreateDocumentRequest) *archiveSvc.CreateDocumentRequest {
	trimmed := *req
	trimmed.Title = strings.TrimSpace(req.Title)
	trimmed.FolderPath = strings.TrimSpace(req.FolderPath)
	trimmed.Status = strings.TrimSpace(req.Status)
	trimmed.Author = strings.TrimSpace(req.Author)
	return &trimmed
}

func (s *documentService) validateCreateRequest(req *archiveSvc.CreateDocumentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.Required,
			validation.RuneLength(1, config.MaxTitleLength),
		),
		validation.Field(&req.FolderPath, validation.Required),
		validation.Field(&req.Status, validation.Required),
		validation.Field(&req.Author, validation.Required),
		validation.Field(&req.Tags, validation.By(tagsRule)),
	)
}

func tagsRule(value interface{}) error {
	tags, _ := value.([]string)
	return models.ValidateTags(tags)
}

// requireFolder fails unless path names a stored folder. The implicit root
// holds folders only.
func (s *documentService) requireFolder(ctx context.Context, path string) error {
	if pathutil.IsRoot(path) {
		return &domain.ValidationError{Message: "documents must be placed in a folder, not the root"}
	}
	exists, err := s.folderRepo.Exists(ctx, path)
	if err != nil {
		return err
	}
	if !exists {
		return &domain.NotFoundError{Message: fmt.Sprintf("folder %s not found", path)}
	}
	return nil
}

// queuePreview hands the file to the preview pipeline without waiting
func (s *documentService) queuePreview(id, filePath string) {
	if s.previews == nil || filePath == "" {
		return
	}
	if err := s.previews.Submit(id, filePath); err != nil {
		s.logger.Warn("preview not queued", "document_id", id, "error", err)
	}
}

// GetDocument retrieves a document by ID
func (s *documentService) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	return s.docRepo.GetByID(ctx, id)
}

// ListByFolder lists the documents stored directly in folderPath
func (s *documentService) ListByFolder(ctx context.Context, folderPath string, opts *models.ListOptions) ([]models.Document, error) {
	return s.docRepo.ListByFolder(ctx, pathutil.Normalize(folderPath), opts)
}

// UpdateDocument applies the non-nil fields of patch
func (s *documentService) UpdateDocument(ctx context.Context, actor access.Actor, id string, patch *models.DocumentPatch) (*models.Document, error) {
	if err := access.Require(actor, access.CapEdit); err != nil {
		return nil, err
	}

	if patch == nil || patch.IsEmpty() {
		return nil, &domain.ValidationError{Message: "no fields to update"}
	}
	if err := validatePatch(patch); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	var doc *models.Document
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if patch.FolderPath != nil {
			normalized := pathutil.Normalize(*patch.FolderPath)
			patch.FolderPath = &normalized
			if err := s.requireFolder(txCtx, normalized); err != nil {
				return err
			}
		}
		if err := s.docRepo.Update(txCtx, id, patch); err != nil {
			return err
		}

		updated, err := s.docRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		doc = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document updated",
		"id", id,
		"folder_path", doc.FolderPath,
		"user", actor.Username,
	)

	if patch.FilePath != nil {
		s.queuePreview(doc.ID, doc.FilePath)
	}
	return doc, nil
}

// validatePatch checks only the fields the patch sets. Required columns may
// be changed but not blanked.
func validatePatch(patch *models.DocumentPatch) error {
	required := []struct {
		field string
		value *string
	}{
		{"title", patch.Title},
		{"status", patch.Status},
		{"author", patch.Author},
		{"folder_path", patch.FolderPath},
	}
	for _, r := range required {
		if r.value != nil && strings.TrimSpace(*r.value) == "" {
			return fmt.Errorf("%s: cannot be blank", r.field)
		}
	}

	if patch.Title != nil {
		if err := validation.Validate(*patch.Title, validation.RuneLength(1, config.MaxTitleLength)); err != nil {
			return fmt.Errorf("title: %w", err)
		}
	}
	if patch.Tags != nil {
		cleaned := models.CleanTags(*patch.Tags)
		if err := models.ValidateTags(cleaned); err != nil {
			return err
		}
		patch.Tags = &cleaned
	}
	return nil
}

// DeleteDocument removes the row, then the file it referenced. File removal
// failures are logged and do not fail the delete.
func (s *documentService) DeleteDocument(ctx context.Context, actor access.Actor, id string) error {
	if err := access.Require(actor, access.CapDelete); err != nil {
		return err
	}

	var filePath string
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		var err error
		filePath, err = s.docRepo.Delete(txCtx, id)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("document deleted", "id", id, "user", actor.Username)

	if s.files != nil && filePath != "" {
		if err := s.files.Remove(ctx, filePath); err != nil {
			s.logger.Warn("failed to remove document file",
				"id", id,
				"file_path", filePath,
				"error", err,
			)
		}
	}
	return nil
}

// Search runs a case-insensitive metadata search. A blank query returns
// every document in scope.
func (s *documentService) Search(ctx context.Context, opts *models.SearchOptions) ([]models.Document, error) {
	if opts == nil {
		opts = &models.SearchOptions{}
	}
	opts.Query = strings.TrimSpace(opts.Query)
	if opts.FolderPath != nil {
		normalized := pathutil.Normalize(*opts.FolderPath)
		opts.FolderPath = &normalized
	}
	return s.docRepo.Search(ctx, opts)
}

// Count returns the total number of documents
func (s *documentService) Count(ctx context.Context) (int, error) {
	return s.docRepo.Count(ctx)
}

// StoreDerived records preview output. Concurrent edits are not ordered
// against it; the last write wins.
func (s *documentService) StoreDerived(ctx context.Context, id string, derived *models.DerivedFields) error {
	if derived == nil {
		return &domain.ValidationError{Message: "derived fields are required"}
	}
	if err := s.docRepo.StoreDerived(ctx, id, derived); err != nil {
		return err
	}
	s.logger.Debug("derived fields stored", "document_id", id)
	return nil
}
