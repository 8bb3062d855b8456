package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/trackora/trackora-api/internal/models"
	"github.com/trackora/trackora-api/internal/repository"
)

// EnrollmentService keeps every student assigned to every active goal of
// their college, both eagerly (goal fan-out) and lazily (backfill on read).
type EnrollmentService interface {
	EnsureAssignments(ctx context.Context, studentID, collegeID uint) error
	FanOut(ctx context.Context, goal models.Goal) (int, error)
}

type enrollmentService struct {
	goals       repository.GoalRepository
	assignments repository.AssignmentRepository
	students    repository.StudentRepository
	logger      zerolog.Logger
}

// NewEnrollmentService builds the auto-enroller.
func NewEnrollmentService(goals repository.GoalRepository, assignments repository.AssignmentRepository, students repository.StudentRepository, logger zerolog.Logger) EnrollmentService {
	return &enrollmentService{
		goals:       goals,
		assignments: assignments,
		students:    students,
		logger:      logger.With().Str("component", "enrollment_service").Logger(),
	}
}

// EnsureAssignments backfills a pending assignment for every active college
// goal the student has no row for. Idempotent; a concurrent call racing the
// same insert loses to the unique (goal, student) index and the duplicate is
// swallowed.
func (s *enrollmentService) EnsureAssignments(ctx context.Context, studentID, collegeID uint) error {
	goals, err := s.goals.ListActiveByCollege(ctx, collegeID)
	if err != nil {
		return err
	}
	if len(goals) == 0 {
		return nil
	}

	existing, err := s.assignments.ListByStudent(ctx, studentID)
	if err != nil {
		return err
	}

	assigned := make(map[uint]struct{}, len(existing))
	for _, assignment := range existing {
		assigned[assignment.GoalID] = struct{}{}
	}

	created := 0
	for _, goal := range goals {
		if _, ok := assigned[goal.ID]; ok {
			continue
		}

		assignment := models.GoalAssignment{
			GoalID:    goal.ID,
			StudentID: studentID,
			Status:    models.AssignmentStatusPending,
		}
		if err := s.assignments.Create(ctx, &assignment); err != nil {
			if isDuplicateKey(err) {
				continue
			}
			return err
		}
		created++
	}

	if created > 0 {
		s.logger.Info().
			Uint("student_id", studentID).
			Int("created", created).
			Msg("backfilled goal assignments")
	}
	return nil
}

// FanOut creates a pending assignment for every current student of the goal's
// college. Invoked once at goal creation.
func (s *enrollmentService) FanOut(ctx context.Context, goal models.Goal) (int, error) {
	students, err := s.students.ListByCollege(ctx, goal.CollegeID, models.RoleStudent)
	if err != nil {
		return 0, err
	}
	if len(students) == 0 {
		return 0, nil
	}

	assignments := make([]models.GoalAssignment, 0, len(students))
	for _, student := range students {
		assignments = append(assignments, models.GoalAssignment{
			GoalID:    goal.ID,
			StudentID: student.ID,
			Status:    models.AssignmentStatusPending,
		})
	}

	if err := s.assignments.CreateBatch(ctx, assignments); err != nil {
		return 0, err
	}

	s.logger.Info().
		Uint("goal_id", goal.ID).
		Int("students", len(assignments)).
		Msg("goal fanned out to students")
	return len(assignments), nil
}

// isDuplicateKey matches both GORM's translated error and the raw unique
// constraint message sqlite/postgres surface without translation.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "duplicate key") || strings.Contains(message, "unique constraint")
}
