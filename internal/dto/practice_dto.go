package dto

// MarkDoneRequest marks one practice problem as done.
type MarkDoneRequest struct {
	ProblemID    string `json:"problem_id" validate:"required,max=128"`
	ProblemTitle string `json:"problem_title" validate:"omitempty,max=128"`
	TopicTitle   string `json:"topic_title" validate:"omitempty,max=128"`
	Category     string `json:"category" validate:"omitempty,oneof=coding aptitude core softskills"`
}

// MarkUndoneRequest reverses a previous done mark.
type MarkUndoneRequest struct {
	ProblemID string `json:"problem_id" validate:"required,max=128"`
	Category  string `json:"category" validate:"omitempty,oneof=coding aptitude core softskills"`
}

// MarkDoneResponse reports the toggle result and the merged day-card.
type MarkDoneResponse struct {
	CompletedCount int               `json:"completed_count"`
	Activity       *ActivityResponse `json:"activity,omitempty"`
}
