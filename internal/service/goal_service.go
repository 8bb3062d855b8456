package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/trackora/trackora-api/internal/dto"
	"github.com/trackora/trackora-api/internal/models"
	"github.com/trackora/trackora-api/internal/repository"
)

var (
	// ErrGoalNotFound indicates the requested goal does not exist.
	ErrGoalNotFound = errors.New("goal not found")
	// ErrGoalForbidden indicates the goal belongs to another college.
	ErrGoalForbidden = errors.New("goal belongs to another college")
)

const (
	defaultTargetCount  = 10
	defaultGoalDuration = 7 * 24 * time.Hour
)

// GoalService consumes the goal-authoring workflow: admin CRUD plus the
// student-facing assignment listing with lazy enrollment backfill.
type GoalService interface {
	Create(ctx context.Context, actor Actor, payload dto.GoalCreateRequest) (dto.GoalResponse, error)
	List(ctx context.Context, actor Actor) ([]dto.GoalResponse, error)
	Update(ctx context.Context, actor Actor, id uint, payload dto.GoalUpdateRequest) (dto.GoalResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
	ListMine(ctx context.Context, actor Actor) ([]dto.AssignmentResponse, error)
}

type goalService struct {
	goals       repository.GoalRepository
	assignments repository.AssignmentRepository
	enrollment  EnrollmentService
	propagator  PropagationService
	audit       AuditRecorder
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewGoalService builds the goal authoring consumer.
func NewGoalService(goals repository.GoalRepository, assignments repository.AssignmentRepository, enrollment EnrollmentService, propagator PropagationService, audit AuditRecorder, validate *validator.Validate, logger zerolog.Logger) GoalService {
	return &goalService{
		goals:       goals,
		assignments: assignments,
		enrollment:  enrollment,
		propagator:  propagator,
		audit:       audit,
		validator:   validate,
		logger:      logger.With().Str("component", "goal_service").Logger(),
		now:         time.Now,
	}
}

func (s *goalService) Create(ctx context.Context, actor Actor, payload dto.GoalCreateRequest) (dto.GoalResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GoalResponse{}, err
	}

	category := resolveCategory(payload.Category)

	targetCount := payload.TargetCount
	if targetCount <= 0 {
		targetCount = defaultTargetCount
	}

	now := s.now()
	startDate := now
	if payload.StartDate != "" {
		parsed, err := time.Parse(time.RFC3339, payload.StartDate)
		if err != nil {
			return dto.GoalResponse{}, fmt.Errorf("invalid start date: %w", err)
		}
		startDate = parsed
	}

	deadline := now.Add(defaultGoalDuration)
	if payload.Deadline != "" {
		parsed, err := time.Parse(time.RFC3339, payload.Deadline)
		if err != nil {
			return dto.GoalResponse{}, fmt.Errorf("invalid deadline: %w", err)
		}
		deadline = parsed
	}

	isActive := true
	if payload.IsActive != nil {
		isActive = *payload.IsActive
	}

	goal := models.Goal{
		CollegeID:   actor.CollegeID,
		CreatedBy:   actor.ID,
		Title:       payload.Title,
		Category:    category,
		TargetCount: targetCount,
		StartDate:   startDate,
		Deadline:    deadline,
		IsActive:    isActive,
	}

	if err := s.goals.Create(ctx, &goal); err != nil {
		return dto.GoalResponse{}, err
	}

	assigned, err := s.enrollment.FanOut(ctx, goal)
	if err != nil {
		// The goal row exists; missing assignments backfill lazily on
		// the next student read, so report and carry on.
		s.logger.Error().Err(err).Uint("goal_id", goal.ID).Msg("goal fan-out failed")
	}

	s.recordAudit(ctx, actor, "goal.created", goal.ID, map[string]interface{}{
		"title":        goal.Title,
		"category":     goal.Category.String(),
		"target_count": goal.TargetCount,
		"assigned":     assigned,
	})

	s.logger.Info().Uint("goal_id", goal.ID).Int("assigned", assigned).Msg("goal published")

	return dto.NewGoalResponse(goal), nil
}

func (s *goalService) List(ctx context.Context, actor Actor) ([]dto.GoalResponse, error) {
	goals, err := s.goals.ListByCollege(ctx, actor.CollegeID)
	if err != nil {
		return nil, err
	}
	return dto.NewGoalResponseSlice(goals), nil
}

func (s *goalService) Update(ctx context.Context, actor Actor, id uint, payload dto.GoalUpdateRequest) (dto.GoalResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GoalResponse{}, err
	}

	goal, err := s.goals.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GoalResponse{}, ErrGoalNotFound
		}
		return dto.GoalResponse{}, err
	}

	if goal.CollegeID != actor.CollegeID {
		return dto.GoalResponse{}, ErrGoalForbidden
	}

	retarget := false
	if payload.Title != nil {
		goal.Title = *payload.Title
	}
	if payload.TargetCount != nil && *payload.TargetCount != goal.TargetCount {
		goal.TargetCount = *payload.TargetCount
		retarget = true
	}
	if payload.Deadline != nil {
		parsed, err := time.Parse(time.RFC3339, *payload.Deadline)
		if err != nil {
			return dto.GoalResponse{}, fmt.Errorf("invalid deadline: %w", err)
		}
		goal.Deadline = parsed
	}
	if payload.IsActive != nil {
		goal.IsActive = *payload.IsActive
	}

	if err := s.goals.Update(ctx, &goal); err != nil {
		return dto.GoalResponse{}, err
	}

	if retarget {
		// Target moved: every assignment is re-evaluated from its
		// current progress against the new threshold, both directions.
		s.propagator.Retarget(ctx, goal)
	}

	s.recordAudit(ctx, actor, "goal.updated", goal.ID, map[string]interface{}{
		"target_count": goal.TargetCount,
		"is_active":    goal.IsActive,
		"retargeted":   retarget,
	})

	s.logger.Info().Uint("goal_id", goal.ID).Bool("retargeted", retarget).Msg("goal updated")

	return dto.NewGoalResponse(goal), nil
}

func (s *goalService) Delete(ctx context.Context, actor Actor, id uint) error {
	goal, err := s.goals.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGoalNotFound
		}
		return err
	}

	if goal.CollegeID != actor.CollegeID {
		return ErrGoalForbidden
	}

	if err := s.assignments.DeleteByGoal(ctx, id); err != nil {
		return err
	}
	if err := s.goals.Delete(ctx, id); err != nil {
		return err
	}

	s.recordAudit(ctx, actor, "goal.deleted", goal.ID, map[string]interface{}{
		"title": goal.Title,
	})

	s.logger.Info().Uint("goal_id", id).Msg("goal removed")
	return nil
}

// ListMine returns the student's assignments joined with their goals,
// backfilling missing rows for active goals first.
func (s *goalService) ListMine(ctx context.Context, actor Actor) ([]dto.AssignmentResponse, error) {
	if err := s.enrollment.EnsureAssignments(ctx, actor.ID, actor.CollegeID); err != nil {
		return nil, err
	}

	assignments, err := s.assignments.ListByStudent(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *goalService) recordAudit(ctx context.Context, actor Actor, action string, goalID uint, metadata map[string]interface{}) {
	if s.audit == nil {
		return
	}
	entry := AuditEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: "goal",
		EntityID:   &goalID,
		Metadata:   metadata,
	}
	if _, err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record audit entry")
	}
}
