package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ctfboard/internal/model"
)

// UserRoleRepository defines user_roles persistence operations.
type UserRoleRepository interface {
	// Upsert records the role a username logged in with.
	Upsert(ctx context.Context, username string, role model.Role) error
}

type userRoleRepository struct {
	db *gorm.DB
}

// NewUserRoleRepository builds a GORM-backed repository.
func NewUserRoleRepository(db *gorm.DB) UserRoleRepository {
	return &userRoleRepository{db: db}
}

func (r *userRoleRepository) Upsert(ctx context.Context, username string, role model.Role) error {
	row := model.UserRole{Username: username, Role: role}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "updated_at"}),
	}).Create(&row).Error
}
