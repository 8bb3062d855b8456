package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/trackora/trackora-api/internal/models"
)

// AssignmentRepository defines persistence operations for goal assignments.
type AssignmentRepository interface {
	ListByStudent(ctx context.Context, studentID uint) ([]models.GoalAssignment, error)
	ListByStudentCategory(ctx context.Context, studentID uint, category models.Category) ([]models.GoalAssignment, error)
	ListByGoal(ctx context.Context, goalID uint) ([]models.GoalAssignment, error)
	Create(ctx context.Context, assignment *models.GoalAssignment) error
	CreateBatch(ctx context.Context, assignments []models.GoalAssignment) error
	Update(ctx context.Context, assignment *models.GoalAssignment) error
	DeleteByGoal(ctx context.Context, goalID uint) error
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed assignment repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.GoalAssignment, error) {
	var assignments []models.GoalAssignment
	err := r.db.WithContext(ctx).
		Preload("Goal").
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *assignmentRepository) ListByStudentCategory(ctx context.Context, studentID uint, category models.Category) ([]models.GoalAssignment, error) {
	var assignments []models.GoalAssignment
	err := r.db.WithContext(ctx).
		Preload("Goal").
		Joins("JOIN goals ON goals.id = goal_assignments.goal_id").
		Where("goal_assignments.student_id = ? AND goals.category = ?", studentID, category).
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *assignmentRepository) ListByGoal(ctx context.Context, goalID uint) ([]models.GoalAssignment, error) {
	var assignments []models.GoalAssignment
	err := r.db.WithContext(ctx).
		Where("goal_id = ?", goalID).
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.GoalAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepository) CreateBatch(ctx context.Context, assignments []models.GoalAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&assignments).Error
}

func (r *assignmentRepository) Update(ctx context.Context, assignment *models.GoalAssignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

func (r *assignmentRepository) DeleteByGoal(ctx context.Context, goalID uint) error {
	return r.db.WithContext(ctx).
		Where("goal_id = ?", goalID).
		Delete(&models.GoalAssignment{}).Error
}
