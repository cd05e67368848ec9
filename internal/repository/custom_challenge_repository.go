package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ctfboard/internal/model"
)

// CustomChallengeRepository defines custom challenge persistence operations.
type CustomChallengeRepository interface {
	// CreateWithFiles inserts the challenge and its files in one transaction.
	CreateWithFiles(ctx context.Context, challenge *model.CustomChallenge, files []model.ChallengeFile) error
	FindByID(ctx context.Context, id string) (*model.CustomChallenge, error)
	FindByIDWithFiles(ctx context.Context, id string) (*model.CustomChallenge, error)
	// List returns challenges newest first, optionally restricted to one status.
	List(ctx context.Context, status *model.ChallengeStatus) ([]model.CustomChallenge, error)
	// UpdateReview records a review decision. Returns gorm.ErrRecordNotFound for unknown ids.
	UpdateReview(ctx context.Context, id string, status model.ChallengeStatus, reviewer, notes string, at time.Time) error
}

type customChallengeRepository struct {
	db *gorm.DB
}

// NewCustomChallengeRepository creates a new custom challenge repository.
func NewCustomChallengeRepository(db *gorm.DB) CustomChallengeRepository {
	return &customChallengeRepository{db: db}
}

func (r *customChallengeRepository) CreateWithFiles(ctx context.Context, challenge *model.CustomChallenge, files []model.ChallengeFile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Files").Create(challenge).Error; err != nil {
			return err
		}
		if len(files) == 0 {
			return nil
		}
		for i := range files {
			files[i].ChallengeID = challenge.ID
		}
		if err := tx.Create(&files).Error; err != nil {
			return err
		}
		challenge.Files = files
		return nil
	})
}

func (r *customChallengeRepository) FindByID(ctx context.Context, id string) (*model.CustomChallenge, error) {
	var challenge model.CustomChallenge
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&challenge).Error; err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (r *customChallengeRepository) FindByIDWithFiles(ctx context.Context, id string) (*model.CustomChallenge, error) {
	var challenge model.CustomChallenge
	err := r.db.WithContext(ctx).
		Preload("Files", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("id = ?", id).
		First(&challenge).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (r *customChallengeRepository) List(ctx context.Context, status *model.ChallengeStatus) ([]model.CustomChallenge, error) {
	var challenges []model.CustomChallenge
	db := r.db.WithContext(ctx).Model(&model.CustomChallenge{})
	if status != nil {
		db = db.Where("status = ?", *status)
	}
	if err := db.Order("created_at DESC").Order("id ASC").Find(&challenges).Error; err != nil {
		return nil, err
	}
	return challenges, nil
}

func (r *customChallengeRepository) UpdateReview(ctx context.Context, id string, status model.ChallengeStatus, reviewer, notes string, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var challenge model.CustomChallenge
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").Where("id = ?", id).First(&challenge).Error; err != nil {
			return err
		}
		return tx.Model(&model.CustomChallenge{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":       status,
				"reviewed_by":  reviewer,
				"reviewed_at":  at,
				"review_notes": notes,
			}).Error
	})
}
