package models

import "time"

// CompletedProblem marks a single practice item as done for a student.
// It exists only to make the done/undone toggle idempotent; counts live in
// the activity ledger, not here.
type CompletedProblem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StudentID uint      `gorm:"not null;uniqueIndex:idx_student_category_problem" json:"student_id"`
	Category  Category  `gorm:"size:32;not null;uniqueIndex:idx_student_category_problem" json:"category"`
	ProblemID string    `gorm:"size:128;not null;uniqueIndex:idx_student_category_problem" json:"problem_id"`
	Label     string    `gorm:"size:255" json:"label"`
	CreatedAt time.Time `json:"created_at"`
}
