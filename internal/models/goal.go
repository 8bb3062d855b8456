package models

import "time"

// Goal is an admin-authored target for a category, fanned out to every
// student of the college as a GoalAssignment.
type Goal struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CollegeID   uint      `gorm:"index;not null" json:"college_id"`
	CreatedBy   uint      `gorm:"not null" json:"created_by"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Category    Category  `gorm:"size:32;not null" json:"category"`
	TargetCount int       `gorm:"not null" json:"target_count"`
	StartDate   time.Time `gorm:"not null" json:"start_date"`
	Deadline    time.Time `gorm:"not null" json:"deadline"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

const (
	// AssignmentStatusPending indicates progress is still below the goal target.
	AssignmentStatusPending = "pending"
	// AssignmentStatusCompleted indicates progress reached the goal target.
	AssignmentStatusCompleted = "completed"
)

// GoalAssignment pairs one student with one goal and carries its own
// progress counter, maintained incrementally from the activity ledger.
type GoalAssignment struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	GoalID      uint       `gorm:"not null;uniqueIndex:idx_goal_student" json:"goal_id"`
	StudentID   uint       `gorm:"not null;uniqueIndex:idx_goal_student;index" json:"student_id"`
	Progress    int        `gorm:"not null;default:0" json:"progress"`
	Status      string     `gorm:"size:32;not null;default:pending;index" json:"status"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Goal        Goal       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"goal"`
}

// ApplyDelta shifts progress by delta (clamped at zero) and recomputes status
// against the target. Completion time is set whenever the threshold is
// re-crossed and cleared whenever progress falls back below it.
func (a *GoalAssignment) ApplyDelta(delta, target int, now time.Time) {
	a.Progress += delta
	if a.Progress < 0 {
		a.Progress = 0
	}
	a.Recompute(target, now)
}

// Recompute realigns status and completion time with the given target.
func (a *GoalAssignment) Recompute(target int, now time.Time) {
	if a.Progress >= target {
		if a.Status != AssignmentStatusCompleted {
			a.Status = AssignmentStatusCompleted
			completed := now
			a.CompletedAt = &completed
		}
		return
	}
	a.Status = AssignmentStatusPending
	a.CompletedAt = nil
}
