package models

import "time"

const (
	// MockStatusRequested indicates the student asked for a slot.
	MockStatusRequested = "requested"
	// MockStatusApproved indicates a trainer accepted the request.
	MockStatusApproved = "approved"
	// MockStatusCompleted indicates the interview took place.
	MockStatusCompleted = "completed"
)

// MockInterview is a practice interview slot requested by a student.
type MockInterview struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	StudentID   uint      `gorm:"not null;index" json:"student_id"`
	TrainerID   *uint     `json:"trainer_id"`
	CollegeID   uint      `gorm:"index" json:"college_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Status      string    `gorm:"size:32;not null;default:requested" json:"status"`
	Feedback    string    `gorm:"type:text" json:"feedback"`
	Score       *int      `json:"score"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
