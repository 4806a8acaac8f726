package archive

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
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

// RootFolderName is the display name of the implicit root
const RootFolderName = "Root folder"

type folderService struct {
	folderRepo archiveRepo.FolderRepository
	docRepo    archiveRepo.DocumentRepository
	txManager  repositories.TransactionManager
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo archiveRepo.FolderRepository,
	docRepo archiveRepo.DocumentRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) archiveSvc.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		docRepo:    docRepo,
		txManager:  txManager,
		logger:     logger,
	}
}

// rootLevel maps "" and "/" to nil so both spellings mean "directly under root"
func rootLevel(parentPath *string) *string {
	if parentPath == nil || pathutil.IsRoot(*parentPath) {
		return nil
	}
	normalized := pathutil.Normalize(*parentPath)
	return &normalized
}

func validateFolderName(name string) error {
	err := validation.Validate(name,
		validation.Required,
		validation.RuneLength(1, config.MaxFolderNameLength),
		validation.By(func(value interface{}) error {
			return pathutil.ValidateName(value.(string))
		}),
	)
	if err != nil {
		return &domain.ValidationError{Message: fmt.Sprintf("invalid folder name: %v", err)}
	}
	return nil
}

func validateFolderPath(path string) error {
	if len(path) > config.MaxFolderPathLength {
		return &domain.ValidationError{
			Message: fmt.Sprintf("folder path exceeds %d characters", config.MaxFolderPathLength),
		}
	}
	return nil
}

// CreateFolder creates a folder directly under root (admin only) or under an
// existing parent
func (s *folderService) CreateFolder(ctx context.Context, actor access.Actor, req *archiveSvc.CreateFolderRequest) (*models.Folder, error) {
	parent := rootLevel(req.ParentPath)

	capability := access.CapEdit
	if parent == nil {
		capability = access.CapCreateRootFolder
	}
	if err := access.Require(actor, capability); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if err := validateFolderName(name); err != nil {
		return nil, err
	}

	folder := &models.Folder{
		Name:       name,
		Path:       pathutil.Join(parent, name),
		ParentPath: parent,
		CreatedAt:  time.Now(),
	}
	if err := validateFolderPath(folder.Path); err != nil {
		return nil, err
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if parent != nil {
			exists, err := s.folderRepo.Exists(txCtx, *parent)
			if err != nil {
				return err
			}
			if !exists {
				return &domain.NotFoundError{Message: fmt.Sprintf("parent folder %s not found", *parent)}
			}
		}
		return s.folderRepo.Create(txCtx, folder)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"path", folder.Path,
		"parent_path", folder.ParentPath,
		"user", actor.Username,
	)

	return folder, nil
}

// RenameFolder replaces the final segment of path and rewrites every
// descendant folder and document in the same transaction
func (s *folderService) RenameFolder(ctx context.Context, actor access.Actor, path, newName string) (*models.Folder, error) {
	if err := access.Require(actor, access.CapEdit); err != nil {
		return nil, err
	}

	newName = strings.TrimSpace(newName)
	if err := validateFolderName(newName); err != nil {
		return nil, err
	}

	path = pathutil.Normalize(path)
	parent := pathutil.Parent(path)
	return s.relocate(ctx, actor, path, newName, parent)
}

// MoveFolder re-parents path, keeping its name, and rewrites every
// descendant folder and document in the same transaction
func (s *folderService) MoveFolder(ctx context.Context, actor access.Actor, path string, newParentPath *string) (*models.Folder, error) {
	parent := rootLevel(newParentPath)

	capability := access.CapEdit
	if parent == nil {
		capability = access.CapCreateRootFolder
	}
	if err := access.Require(actor, capability); err != nil {
		return nil, err
	}

	path = pathutil.Normalize(path)
	if parent != nil && pathutil.IsWithin(*parent, path) {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("cannot move folder %s into itself or one of its subfolders", path),
		}
	}

	return s.relocate(ctx, actor, path, pathutil.Base(path), parent)
}

// relocate gives the folder at oldPath a new name and parent. The folder's
// own row, its descendants and their documents change together or not at all.
func (s *folderService) relocate(ctx context.Context, actor access.Actor, oldPath, newName string, newParent *string) (*models.Folder, error) {
	if pathutil.IsRoot(oldPath) {
		return nil, &domain.ValidationError{Message: "the root folder cannot be renamed or moved"}
	}

	newPath := pathutil.Join(newParent, newName)
	if err := validateFolderPath(newPath); err != nil {
		return nil, err
	}

	var folder *models.Folder
	var folders, documents int64
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		current, err := s.folderRepo.GetByPath(txCtx, oldPath)
		if err != nil {
			return err
		}
		folder = current

		if newPath == oldPath {
			return nil
		}

		if newParent != nil {
			exists, err := s.folderRepo.Exists(txCtx, *newParent)
			if err != nil {
				return err
			}
			if !exists {
				return &domain.NotFoundError{Message: fmt.Sprintf("folder %s not found", *newParent)}
			}
		}

		taken, err := s.folderRepo.Exists(txCtx, newPath)
		if err != nil {
			return err
		}
		if taken {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("folder %s already exists", newPath),
				ResourceType: "folder",
				ResourceID:   newPath,
			}
		}

		if err := s.folderRepo.Relocate(txCtx, oldPath, newName, newPath, newParent); err != nil {
			return err
		}
		if folders, err = s.folderRepo.RewriteDescendants(txCtx, oldPath, newPath); err != nil {
			return err
		}
		if documents, err = s.docRepo.RewriteFolderPaths(txCtx, oldPath, newPath); err != nil {
			return err
		}

		folder.Name = newName
		folder.Path = newPath
		folder.ParentPath = newParent
		return nil
	})
	if err != nil {
		return nil, err
	}

	if oldPath != newPath {
		s.logger.Info("folder relocated",
			"old_path", oldPath,
			"new_path", newPath,
			"descendant_folders", folders,
			"documents", documents,
			"user", actor.Username,
		)
	}

	return folder, nil
}

// DeleteFolder removes an empty folder. A folder that still holds documents
// or subfolders is left alone and a *domain.GuardedError is returned.
func (s *folderService) DeleteFolder(ctx context.Context, actor access.Actor, path string) error {
	if err := access.Require(actor, access.CapDelete); err != nil {
		return err
	}

	path = pathutil.Normalize(path)
	if pathutil.IsRoot(path) {
		return &domain.ValidationError{Message: "the root folder cannot be deleted"}
	}

	var guarded *domain.GuardedError
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		deleted, err := s.folderRepo.Delete(txCtx, path)
		if err != nil {
			return err
		}
		if deleted {
			return nil
		}

		// Report what is blocking the delete
		docs, err := s.docRepo.CountByFolder(txCtx, path)
		if err != nil {
			return err
		}
		children, err := s.folderRepo.CountChildren(txCtx, path)
		if err != nil {
			return err
		}
		guarded = &domain.GuardedError{Path: path, Documents: docs, Folders: children}
		return nil
	})
	if err != nil {
		return err
	}

	if guarded != nil {
		s.logger.Info("folder delete refused",
			"path", path,
			"documents", guarded.Documents,
			"subfolders", guarded.Folders,
		)
		return guarded
	}

	s.logger.Info("folder deleted", "path", path, "user", actor.Username)
	return nil
}

// GetFolder retrieves a folder by path
func (s *folderService) GetFolder(ctx context.Context, path string) (*models.Folder, error) {
	path = pathutil.Normalize(path)
	if pathutil.IsRoot(path) {
		return nil, &domain.NotFoundError{Message: "the root folder is not stored"}
	}
	return s.folderRepo.GetByPath(ctx, path)
}

// FolderName returns the display name of path
func (s *folderService) FolderName(ctx context.Context, path string) (string, error) {
	if pathutil.IsRoot(path) {
		return RootFolderName, nil
	}
	folder, err := s.GetFolder(ctx, path)
	if err != nil {
		return "", err
	}
	return folder.Name, nil
}

// ListChildren returns the paths of folders one segment below parentPath
func (s *folderService) ListChildren(ctx context.Context, parentPath string) ([]string, error) {
	children, err := s.folderRepo.ListChildren(ctx, rootLevel(&parentPath))
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(children))
	for _, child := range children {
		paths = append(paths, child.Path)
	}
	return paths, nil
}

// GetAll returns every folder keyed by path. Subfolders are grouped from
// parent_path on each call.
func (s *folderService) GetAll(ctx context.Context) (map[string]models.FolderNode, error) {
	folders, err := s.folderRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return buildSnapshot(folders), nil
}

func buildSnapshot(folders []models.Folder) map[string]models.FolderNode {
	snapshot := make(map[string]models.FolderNode, len(folders))
	for _, f := range folders {
		snapshot[f.Path] = models.FolderNode{
			Name:       f.Name,
			ParentPath: f.ParentPath,
			Subfolders: []string{},
		}
	}

	for _, f := range folders {
		if f.ParentPath == nil {
			continue
		}
		parent, ok := snapshot[*f.ParentPath]
		if !ok {
			continue
		}
		parent.Subfolders = append(parent.Subfolders, f.Path)
		snapshot[*f.ParentPath] = parent
	}

	for path, node := range snapshot {
		sort.Strings(node.Subfolders)
		snapshot[path] = node
	}
	return snapshot
}

// Tree returns the hierarchy as nested nodes under the implicit root
func (s *folderService) Tree(ctx context.Context) (*models.FolderTree, error) {
	folders, err := s.folderRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return buildTree(folders), nil
}

func buildTree(folders []models.Folder) *models.FolderTree {
	root := &models.FolderTree{Name: RootFolderName, Path: pathutil.Root, Folders: []*models.FolderTree{}}

	nodes := make(map[string]*models.FolderTree, len(folders))
	for _, f := range folders {
		nodes[f.Path] = &models.FolderTree{Name: f.Name, Path: f.Path, Folders: []*models.FolderTree{}}
	}

	// GetAll is ordered by path, so children are appended in order
	for _, f := range folders {
		parent := root
		if f.ParentPath != nil {
			p, ok := nodes[*f.ParentPath]
			if !ok {
				continue
			}
			parent = p
		}
		parent.Folders = append(parent.Folders, nodes[f.Path])
	}
	return root
}
