package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/trackora/trackora-api/internal/models"
)

// GoalRepository defines persistence operations for goal definitions.
type GoalRepository interface {
	GetByID(ctx context.Context, id uint) (models.Goal, error)
	ListByCollege(ctx context.Context, collegeID uint) ([]models.Goal, error)
	ListActiveByCollege(ctx context.Context, collegeID uint) ([]models.Goal, error)
	Create(ctx context.Context, goal *models.Goal) error
	Update(ctx context.Context, goal *models.Goal) error
	Delete(ctx context.Context, id uint) error
}

type goalRepository struct {
	db *gorm.DB
}

// NewGoalRepository instantiates a GORM-backed goal repository.
func NewGoalRepository(db *gorm.DB) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) GetByID(ctx context.Context, id uint) (models.Goal, error) {
	var goal models.Goal
	if err := r.db.WithContext(ctx).First(&goal, id).Error; err != nil {
		return models.Goal{}, err
	}
	return goal, nil
}

func (r *goalRepository) ListByCollege(ctx context.Context, collegeID uint) ([]models.Goal, error) {
	var goals []models.Goal
	err := r.db.WithContext(ctx).
		Where("college_id = ?", collegeID).
		Order("created_at DESC").
		Find(&goals).Error
	if err != nil {
		return nil, err
	}
	return goals, nil
}

func (r *goalRepository) ListActiveByCollege(ctx context.Context, collegeID uint) ([]models.Goal, error) {
	var goals []models.Goal
	err := r.db.WithContext(ctx).
		Where("college_id = ? AND is_active = ?", collegeID, true).
		Find(&goals).Error
	if err != nil {
		return nil, err
	}
	return goals, nil
}

func (r *goalRepository) Create(ctx context.Context, goal *models.Goal) error {
	return r.db.WithContext(ctx).Create(goal).Error
}

func (r *goalRepository) Update(ctx context.Context, goal *models.Goal) error {
	return r.db.WithContext(ctx).Save(goal).Error
}

func (r *goalRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Goal{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
