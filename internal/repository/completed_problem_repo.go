package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/trackora/trackora-api/internal/models"
)

// CompletedProblemRepository persists the per-student done-problem set.
type CompletedProblemRepository interface {
	Exists(ctx context.Context, studentID uint, category models.Category, problemID string) (bool, error)
	Create(ctx context.Context, completed *models.CompletedProblem) error
	Delete(ctx context.Context, studentID uint, category models.Category, problemID string) error
	ListByStudent(ctx context.Context, studentID uint) ([]models.CompletedProblem, error)
}

type completedProblemRepository struct {
	db *gorm.DB
}

// NewCompletedProblemRepository instantiates a GORM-backed repository.
func NewCompletedProblemRepository(db *gorm.DB) CompletedProblemRepository {
	return &completedProblemRepository{db: db}
}

func (r *completedProblemRepository) Exists(ctx context.Context, studentID uint, category models.Category, problemID string) (bool, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.CompletedProblem{}).
		Where("student_id = ? AND category = ? AND problem_id = ?", studentID, category, problemID).
		Count(&total).Error
	if err != nil {
		return false, err
	}
	return total > 0, nil
}

func (r *completedProblemRepository) Create(ctx context.Context, completed *models.CompletedProblem) error {
	return r.db.WithContext(ctx).Create(completed).Error
}

func (r *completedProblemRepository) Delete(ctx context.Context, studentID uint, category models.Category, problemID string) error {
	result := r.db.WithContext(ctx).
		Where("student_id = ? AND category = ? AND problem_id = ?", studentID, category, problemID).
		Delete(&models.CompletedProblem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *completedProblemRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.CompletedProblem, error) {
	var completed []models.CompletedProblem
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at ASC").
		Find(&completed).Error
	if err != nil {
		return nil, err
	}
	return completed, nil
}
