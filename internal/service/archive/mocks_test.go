package archive

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	models "docarchive/internal/domain/models/archive"
	"docarchive/internal/domain/repositories"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// passthroughTx runs fn directly; the mocked repositories don't need a real transaction
type passthroughTx struct{ calls int }

func (tx *passthroughTx) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	tx.calls++
	return fn(ctx)
}

type MockFolderRepository struct{ mock.Mock }

func (m *MockFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	args := m.Called(ctx, folder)
	if args.Error(0) == nil && folder.ID == "" {
		folder.ID = "11111111-1111-1111-1111-111111111111"
	}
	return args.Error(0)
}

func (m *MockFolderRepository) GetByPath(ctx context.Context, path string) (*models.Folder, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Folder), args.Error(1)
}

func (m *MockFolderRepository) Exists(ctx context.Context, path string) (bool, error) {
	args := m.Called(ctx, path)
	return args.Bool(0), args.Error(1)
}

func (m *MockFolderRepository) ListChildren(ctx context.Context, parentPath *string) ([]models.Folder, error) {
	args := m.Called(ctx, parentPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Folder), args.Error(1)
}

func (m *MockFolderRepository) GetAll(ctx context.Context) ([]models.Folder, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Folder), args.Error(1)
}

func (m *MockFolderRepository) CountChildren(ctx context.Context, path string) (int, error) {
	args := m.Called(ctx, path)
	return args.Int(0), args.Error(1)
}

func (m *MockFolderRepository) Relocate(ctx context.Context, oldPath, newName, newPath string, newParentPath *string) error {
	return m.Called(ctx, oldPath, newName, newPath, newParentPath).Error(0)
}

func (m *MockFolderRepository) RewriteDescendants(ctx context.Context, oldPath, newPath string) (int64, error) {
	args := m.Called(ctx, oldPath, newPath)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFolderRepository) Delete(ctx context.Context, path string) (bool, error) {
	args := m.Called(ctx, path)
	return args.Bool(0), args.Error(1)
}

func (m *MockFolderRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockDocumentRepository struct{ mock.Mock }

func (m *MockDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	args := m.Called(ctx, doc)
	if args.Error(0) == nil && doc.ID == "" {
		doc.ID = "22222222-2222-2222-2222-222222222222"
	}
	return args.Error(0)
}

func (m *MockDocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListByFolder(ctx context.Context, folderPath string, opts *models.ListOptions) ([]models.Document, error) {
	args := m.Called(ctx, folderPath, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Document), args.Error(1)
}

func (m *MockDocumentRepository) Update(ctx context.Context, id string, patch *models.DocumentPatch) error {
	return m.Called(ctx, id, patch).Error(0)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentRepository) Search(ctx context.Context, opts *models.SearchOptions) ([]models.Document, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Document), args.Error(1)
}

func (m *MockDocumentRepository) CountByFolder(ctx context.Context, folderPath string) (int, error) {
	args := m.Called(ctx, folderPath)
	return args.Int(0), args.Error(1)
}

func (m *MockDocumentRepository) RewriteFolderPaths(ctx context.Context, oldPath, newPath string) (int64, error) {
	args := m.Called(ctx, oldPath, newPath)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDocumentRepository) StoreDerived(ctx context.Context, id string, derived *models.DerivedFields) error {
	return m.Called(ctx, id, derived).Error(0)
}

func (m *MockDocumentRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) CreateIfEmpty(ctx context.Context, user *models.User) (bool, error) {
	args := m.Called(ctx, user)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, username string) error {
	return m.Called(ctx, username).Error(0)
}

func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockPreviewQueue struct{ mock.Mock }

func (m *MockPreviewQueue) Submit(documentID, filePath string) error {
	return m.Called(documentID, filePath).Error(0)
}

type MockFileStore struct{ mock.Mock }

func (m *MockFileStore) Remove(ctx context.Context, ref string) error {
	return m.Called(ctx, ref).Error(0)
}

type MockSchemaManager struct{ mock.Mock }

func (m *MockSchemaManager) Migrate(ctx context.Context) error   { return m.Called(ctx).Error(0) }
func (m *MockSchemaManager) DropAll(ctx context.Context) error   { return m.Called(ctx).Error(0) }
func (m *MockSchemaManager) ClearData(ctx context.Context) error { return m.Called(ctx).Error(0) }
