package archive

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docarchive/internal/domain"
	models "docarchive/internal/domain/models/archive"
)

func TestExportFolder(t *testing.T) {
	ctx := context.Background()
	docs, folders := &MockDocumentRepository{}, &MockFolderRepository{}
	folders.On("GetByPath", ctx, "/Legal").Return(&models.Folder{Name: "Legal", Path: "/Legal"}, nil)
	docs.On("ListByFolder", ctx, "/Legal", (*models.ListOptions)(nil)).Return([]models.Document{
		{Title: "NDA", Status: "Active", Tags: []string{"a", "b"}, CreatedDate: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)},
		{Title: "Lease", Status: "Draft", Tags: []string{}},
	}, nil)

	dest := filepath.Join(t.TempDir(), "export.txt")
	n, err := NewExportService(docs, folders, discardLogger()).ExportFolder(ctx, "/Legal", dest)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasPrefix(text, "Documents in /Legal:"))
	assert.Contains(t, text, "Title: NDA\n")
	assert.Contains(t, text, "Tags: a, b\n")
	assert.Contains(t, text, "Date: 2024-03-01 09:30\n")
	assert.Contains(t, text, "Tags: none\n")
	assert.Equal(t, 2, strings.Count(text, exportRule))
}

func TestExportFolderUnknown(t *testing.T) {
	ctx := context.Background()
	docs, folders := &MockDocumentRepository{}, &MockFolderRepository{}
	folders.On("GetByPath", ctx, "/Nope").Return(nil, &domain.NotFoundError{Message: "folder /Nope not found"})

	dest := filepath.Join(t.TempDir(), "export.txt")
	_, err := NewExportService(docs, folders, discardLogger()).ExportFolder(ctx, "/Nope", dest)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	docs.AssertNotCalled(t, "ListByFolder", mock.Anything, mock.Anything, mock.Anything)
	assert.NoFileExists(t, dest)
}
