package dto

import (
	"time"

	"github.com/trackora/trackora-api/internal/models"
)

// RecordActivityRequest is the payload for logging a day's activity.
type RecordActivityRequest struct {
	Category        string `json:"category" validate:"required,oneof=coding aptitude core softskills"`
	SubCategory     string `json:"sub_category" validate:"omitempty,max=255"`
	Count           int    `json:"count" validate:"omitempty,min=1"`
	DurationMinutes int    `json:"duration_minutes" validate:"omitempty,min=0"`
	Source          string `json:"source" validate:"omitempty,max=64"`
}

// UpdateActivityRequest overwrites fields on one specific activity record.
type UpdateActivityRequest struct {
	Category        *string `json:"category" validate:"omitempty,oneof=coding aptitude core softskills"`
	SubCategory     *string `json:"sub_category" validate:"omitempty,max=255"`
	Count           *int    `json:"count" validate:"omitempty,min=0"`
	DurationMinutes *int    `json:"duration_minutes" validate:"omitempty,min=0"`
}

// ActivityResponse is the serialized day-card returned to API clients.
type ActivityResponse struct {
	ID              uint      `json:"id"`
	UserID          uint      `json:"user_id"`
	Category        string    `json:"category"`
	SubCategory     string    `json:"sub_category"`
	Count           int       `json:"count"`
	DurationMinutes int       `json:"duration_minutes"`
	Source          string    `json:"source"`
	LoggedDate      time.Time `json:"logged_date"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewActivityResponse converts a model into a DTO.
func NewActivityResponse(model models.Activity) ActivityResponse {
	return ActivityResponse{
		ID:              model.ID,
		UserID:          model.UserID,
		Category:        model.Category.String(),
		SubCategory:     model.SubCategory,
		Count:           model.Count,
		DurationMinutes: model.DurationMinutes,
		Source:          model.Source,
		LoggedDate:      model.LoggedDate,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

// NewActivityResponseSlice converts a slice of models into DTOs.
func NewActivityResponseSlice(activities []models.Activity) []ActivityResponse {
	responses := make([]ActivityResponse, 0, len(activities))
	for _, activity := range activities {
		responses = append(responses, NewActivityResponse(activity))
	}
	return responses
}

// CategorySummaryEntry is one category's aggregated totals.
type CategorySummaryEntry struct {
	Category      string `json:"category"`
	TotalCount    int    `json:"total_count"`
	TotalDuration int    `json:"total_duration"`
}
