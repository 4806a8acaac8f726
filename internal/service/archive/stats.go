package archive

import (
	"context"

	models "docarchive/internal/domain/models/archive"
	archiveRepo "docarchive/internal/domain/repositories/archive"
	archiveSvc "docarchive/internal/domain/services/archive"
)

type statsService struct {
	docRepo    archiveRepo.DocumentRepository
	folderRepo archiveRepo.FolderRepository
	userRepo   archiveRepo.UserRepository
}

// NewStatsService creates a new stats service
func NewStatsService(
	docRepo archiveRepo.DocumentRepository,
	folderRepo archiveRepo.FolderRepository,
	userRepo archiveRepo.UserRepository,
) archiveSvc.StatsService {
	return &statsService{docRepo: docRepo, folderRepo: folderRepo, userRepo: userRepo}
}

func (s *statsService) Stats(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats
	var err error

	if stats.Documents, err = s.docRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Folders, err = s.folderRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Users, err = s.userRepo.Count(ctx); err != nil {
		return nil, err
	}
	return &stats, nil
}
