package dto

// MentorChatRequest carries a student question for the AI mentor.
type MentorChatRequest struct {
	Question string `json:"question" validate:"required,min=2,max=2000"`
}

// MentorReplyResponse wraps a generated mentor answer.
type MentorReplyResponse struct {
	Answer   string `json:"answer"`
	Fallback bool   `json:"fallback,omitempty"`
}

// RoadmapResponse wraps a generated preparation roadmap.
type RoadmapResponse struct {
	Roadmap  string `json:"roadmap"`
	Fallback bool   `json:"fallback,omitempty"`
}
