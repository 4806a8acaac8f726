package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/natefinch/atomic"

	models "docarchive/internal/domain/models/archive"
	archiveRepo "docarchive/internal/domain/repositories/archive"
	archiveSvc "docarchive/internal/domain/services/archive"
	"docarchive/internal/pathutil"
)

const exportRule = "--------------------------------------------------"

type exportService struct {
	docRepo    archiveRepo.DocumentRepository
	folderRepo archiveRepo.FolderRepository
	logger     *slog.Logger
}

// NewExportService creates a new export service
func NewExportService(
	docRepo archiveRepo.DocumentRepository,
	folderRepo archiveRepo.FolderRepository,
	logger *slog.Logger,
) archiveSvc.ExportService {
	return &exportService{docRepo: docRepo, folderRepo: folderRepo, logger: logger}
}

// ExportFolder writes a plain-text listing of the documents stored directly
// in folderPath. dest is replaced atomically, so readers never see a partial
// file. Returns the number of documents written.
func (s *exportService) ExportFolder(ctx context.Context, folderPath, dest string) (int, error) {
	folderPath = pathutil.Normalize(folderPath)
	if _, err := s.folderRepo.GetByPath(ctx, folderPath); err != nil {
		return 0, err
	}

	docs, err := s.docRepo.ListByFolder(ctx, folderPath, nil)
	if err != nil {
		return 0, err
	}

	var buf bytes.Buffer
	writeListing(&buf, folderPath, docs)

	if err := atomic.WriteFile(dest, &buf); err != nil {
		return 0, fmt.Errorf("write export %s: %w", dest, err)
	}

	s.logger.Info("folder exported", "folder_path", folderPath, "dest", dest, "documents", len(docs))
	return len(docs), nil
}

func writeListing(w io.Writer, folderPath string, docs []models.Document) {
	fmt.Fprintf(w, "Documents in %s:\n\n", folderPath)
	for _, doc := range docs {
		tags := "none"
		if len(doc.Tags) > 0 {
			tags = strings.Join(doc.Tags, ", ")
		}
		fmt.Fprintf(w, "Title: %s\n", doc.Title)
		fmt.Fprintf(w, "Description: %s\n", doc.Description)
		fmt.Fprintf(w, "Status: %s\n", doc.Status)
		fmt.Fprintf(w, "Date: %s\n", doc.CreatedDate.Format("2006-01-02 15:04"))
		fmt.Fprintf(w, "Tags: %s\n", tags)
		fmt.Fprintln(w, exportRule)
	}
}
