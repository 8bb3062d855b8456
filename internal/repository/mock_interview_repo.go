package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/trackora/trackora-api/internal/models"
)

// MockInterviewRepository persists mock interview requests.
type MockInterviewRepository interface {
	Create(ctx context.Context, interview *models.MockInterview) error
	ListByStudent(ctx context.Context, studentID uint) ([]models.MockInterview, error)
}

type mockInterviewRepository struct {
	db *gorm.DB
}

// NewMockInterviewRepository instantiates a GORM-backed repository.
func NewMockInterviewRepository(db *gorm.DB) MockInterviewRepository {
	return &mockInterviewRepository{db: db}
}

func (r *mockInterviewRepository) Create(ctx context.Context, interview *models.MockInterview) error {
	return r.db.WithContext(ctx).Create(interview).Error
}

func (r *mockInterviewRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.MockInterview, error) {
	var interviews []models.MockInterview
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&interviews).Error
	if err != nil {
		return nil, err
	}
	return interviews, nil
}
