package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/trackora/trackora-api/internal/dto"
	"github.com/trackora/trackora-api/internal/models"
	"github.com/trackora/trackora-api/internal/repository"
)

// mockEligibilityThreshold is the ledger total a student must exceed before
// requesting a mock interview slot.
const mockEligibilityThreshold int64 = 100

// ErrNotEligible indicates the student has not crossed the eligibility threshold.
var ErrNotEligible = errors.New("not yet eligible for a mock interview")

// MockInterviewService gates and records mock interview requests.
type MockInterviewService interface {
	Eligibility(ctx context.Context, studentID uint) (dto.EligibilityResponse, error)
	Schedule(ctx context.Context, actor Actor, req dto.ScheduleMockRequest) (dto.MockInterviewResponse, error)
	ListMine(ctx context.Context, studentID uint) ([]dto.MockInterviewResponse, error)
}

type mockInterviewService struct {
	interviews repository.MockInterviewRepository
	activities repository.ActivityRepository
	validate   *validator.Validate
	logger     zerolog.Logger
}

// NewMockInterviewService constructs the mock interview service.
func NewMockInterviewService(interviews repository.MockInterviewRepository, activities repository.ActivityRepository, validate *validator.Validate, logger zerolog.Logger) MockInterviewService {
	return &mockInterviewService{
		interviews: interviews,
		activities: activities,
		validate:   validate,
		logger:     logger.With().Str("component", "mock_interview_service").Logger(),
	}
}

func (s *mockInterviewService) Eligibility(ctx context.Context, studentID uint) (dto.EligibilityResponse, error) {
	total, err := s.activities.TotalCount(ctx, studentID)
	if err != nil {
		return dto.EligibilityResponse{}, err
	}
	return dto.EligibilityResponse{
		IsEligible:   total > mockEligibilityThreshold,
		CurrentScore: total,
		Threshold:    mockEligibilityThreshold,
	}, nil
}

func (s *mockInterviewService) Schedule(ctx context.Context, actor Actor, req dto.ScheduleMockRequest) (dto.MockInterviewResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.MockInterviewResponse{}, err
	}

	eligibility, err := s.Eligibility(ctx, actor.ID)
	if err != nil {
		return dto.MockInterviewResponse{}, err
	}
	if !eligibility.IsEligible {
		return dto.MockInterviewResponse{}, ErrNotEligible
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledDate)
	if err != nil {
		return dto.MockInterviewResponse{}, err
	}

	interview := models.MockInterview{
		StudentID:   actor.ID,
		CollegeID:   actor.CollegeID,
		ScheduledAt: scheduledAt,
		Status:      models.MockStatusRequested,
	}
	if err := s.interviews.Create(ctx, &interview); err != nil {
		return dto.MockInterviewResponse{}, err
	}

	s.logger.Info().
		Uint("student_id", actor.ID).
		Time("scheduled_at", scheduledAt).
		Msg("mock interview requested")

	return dto.NewMockInterviewResponse(interview), nil
}

func (s *mockInterviewService) ListMine(ctx context.Context, studentID uint) ([]dto.MockInterviewResponse, error) {
	interviews, err := s.interviews.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.MockInterviewResponse, 0, len(interviews))
	for _, interview := range interviews {
		responses = append(responses, dto.NewMockInterviewResponse(interview))
	}
	return responses, nil
}
