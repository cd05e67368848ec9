package repository

import (
	"context"

	"gorm.io/gorm"

	"ctfboard/internal/model"
)

// ChallengeFileRepository defines read access to uploaded challenge files.
// Rows are only written by CustomChallengeRepository.CreateWithFiles.
type ChallengeFileRepository interface {
	FindByStoredName(ctx context.Context, challengeID, storedFilename string) (*model.ChallengeFile, error)
}

type challengeFileRepository struct {
	db *gorm.DB
}

// NewChallengeFileRepository creates a new challenge file repository.
func NewChallengeFileRepository(db *gorm.DB) ChallengeFileRepository {
	return &challengeFileRepository{db: db}
}

func (r *challengeFileRepository) FindByStoredName(ctx context.Context, challengeID, storedFilename string) (*model.ChallengeFile, error) {
	var file model.ChallengeFile
	err := r.db.WithContext(ctx).
		Where("challenge_id = ? AND stored_filename = ?", challengeID, storedFilename).
		First(&file).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}
