package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/trackora/trackora-api/internal/models"
)

// StudentRepository defines persistence operations for students.
type StudentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Student, error)
	ListByCollege(ctx context.Context, collegeID uint, role string) ([]models.Student, error)
	CountByCollege(ctx context.Context, collegeID uint, role string, activeOnly bool) (int64, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository instantiates a GORM-backed student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *studentRepository) ListByCollege(ctx context.Context, collegeID uint, role string) ([]models.Student, error) {
	var students []models.Student
	query := r.db.WithContext(ctx).Where("college_id = ?", collegeID)
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if err := query.Order("name ASC").Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepository) CountByCollege(ctx context.Context, collegeID uint, role string, activeOnly bool) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Student{}).Where("college_id = ?", collegeID)
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepository) Update(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}
