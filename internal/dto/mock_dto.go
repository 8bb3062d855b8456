package dto

import (
	"time"

	"github.com/trackora/trackora-api/internal/models"
)

// EligibilityResponse reports whether the student qualifies for a mock interview.
type EligibilityResponse struct {
	IsEligible   bool  `json:"is_eligible"`
	CurrentScore int64 `json:"current_score"`
	Threshold    int64 `json:"threshold"`
}

// ScheduleMockRequest asks for a mock interview slot.
type ScheduleMockRequest struct {
	ScheduledDate string `json:"scheduled_date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

// MockInterviewResponse is the serialized interview request.
type MockInterviewResponse struct {
	ID          uint      `json:"id"`
	StudentID   uint      `json:"student_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewMockInterviewResponse converts a model into a DTO.
func NewMockInterviewResponse(model models.MockInterview) MockInterviewResponse {
	return MockInterviewResponse{
		ID:          model.ID,
		StudentID:   model.StudentID,
		ScheduledAt: model.ScheduledAt,
		Status:      model.Status,
		CreatedAt:   model.CreatedAt,
	}
}
