package ai

import "context"

// MentorInput carries a student question plus the context the model needs
// to tailor its answer.
type MentorInput struct {
	StudentName    string
	Question       string
	CategoryTotals map[string]int
	WeakAreas      []string
}

// RoadmapInput describes the progress snapshot a roadmap is generated from.
type RoadmapInput struct {
	StudentName    string
	CategoryTotals map[string]int
	WeakAreas      []string
	DaysActive     int
}

// Mentor describes an AI model capable of coaching placement preparation.
type Mentor interface {
	Answer(ctx context.Context, input MentorInput) (string, error)
	Roadmap(ctx context.Context, input RoadmapInput) (string, error)
}
