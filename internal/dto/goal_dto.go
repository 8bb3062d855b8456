package dto

import (
	"time"

	"github.com/trackora/trackora-api/internal/models"
)

// GoalCreateRequest is the payload for publishing a goal.
type GoalCreateRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=255"`
	Category    string `json:"category" validate:"omitempty,oneof=coding aptitude core softskills"`
	TargetCount int    `json:"target_count" validate:"omitempty,min=1"`
	StartDate   string `json:"start_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Deadline    string `json:"deadline" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	IsActive    *bool  `json:"is_active"`
}

// GoalUpdateRequest is the payload for editing a goal.
type GoalUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=255"`
	TargetCount *int    `json:"target_count" validate:"omitempty,min=1"`
	Deadline    *string `json:"deadline" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	IsActive    *bool   `json:"is_active"`
}

// GoalResponse is the serialized goal definition.
type GoalResponse struct {
	ID          uint      `json:"id"`
	CollegeID   uint      `json:"college_id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	TargetCount int       `json:"target_count"`
	StartDate   time.Time `json:"start_date"`
	Deadline    time.Time `json:"deadline"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewGoalResponse converts a model into a DTO.
func NewGoalResponse(model models.Goal) GoalResponse {
	return GoalResponse{
		ID:          model.ID,
		CollegeID:   model.CollegeID,
		Title:       model.Title,
		Category:    model.Category.String(),
		TargetCount: model.TargetCount,
		StartDate:   model.StartDate,
		Deadline:    model.Deadline,
		IsActive:    model.IsActive,
		CreatedAt:   model.CreatedAt,
	}
}

// NewGoalResponseSlice converts a slice of models into DTOs.
func NewGoalResponseSlice(goals []models.Goal) []GoalResponse {
	responses := make([]GoalResponse, 0, len(goals))
	for _, goal := range goals {
		responses = append(responses, NewGoalResponse(goal))
	}
	return responses
}

// AssignmentResponse is the serialized pairing of a student with a goal.
type AssignmentResponse struct {
	ID          uint          `json:"id"`
	GoalID      uint          `json:"goal_id"`
	StudentID   uint          `json:"student_id"`
	Progress    int           `json:"progress"`
	Status      string        `json:"status"`
	CompletedAt *time.Time    `json:"completed_at"`
	Goal        *GoalResponse `json:"goal,omitempty"`
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.GoalAssignment) AssignmentResponse {
	response := AssignmentResponse{
		ID:          model.ID,
		GoalID:      model.GoalID,
		StudentID:   model.StudentID,
		Progress:    model.Progress,
		Status:      model.Status,
		CompletedAt: model.CompletedAt,
	}
	if model.Goal.ID != 0 {
		goal := NewGoalResponse(model.Goal)
		response.Goal = &goal
	}
	return response
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.GoalAssignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}
	return responses
}
