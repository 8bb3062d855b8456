package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/trackora/trackora-api/internal/models"
	"github.com/trackora/trackora-api/internal/observability"
	"github.com/trackora/trackora-api/internal/repository"
)

// AssignmentOutcome is the per-row result of one propagation pass. The loop
// never aborts on a single row failure; callers inspect the outcomes instead.
type AssignmentOutcome struct {
	AssignmentID uint
	GoalID       uint
	Progress     int
	Status       string
	Applied      bool
	Completed    bool
	Err          error
}

// AssignmentCompletedEvent is published when an assignment crosses its target.
type AssignmentCompletedEvent struct {
	AssignmentID uint      `json:"assignment_id"`
	GoalID       uint      `json:"goal_id"`
	StudentID    uint      `json:"student_id"`
	CompletedAt  time.Time `json:"completed_at"`
}

// PropagationService applies signed ledger deltas to goal assignments.
type PropagationService interface {
	ApplyDelta(ctx context.Context, studentID uint, category models.Category, delta int) []AssignmentOutcome
	Retarget(ctx context.Context, goal models.Goal) []AssignmentOutcome
}

type propagationService struct {
	assignments repository.AssignmentRepository
	nats        *nats.Conn
	natsSubject string
	logger      zerolog.Logger
	now         func() time.Time
}

// NewPropagationService builds the propagator. The NATS connection is
// optional; completion events are skipped when it is nil.
func NewPropagationService(assignments repository.AssignmentRepository, natsConn *nats.Conn, natsSubject string, logger zerolog.Logger) PropagationService {
	if natsSubject == "" {
		natsSubject = "trackora.goal.assignment.completed"
	}
	return &propagationService{
		assignments: assignments,
		nats:        natsConn,
		natsSubject: natsSubject,
		logger:      logger.With().Str("component", "propagation_service").Logger(),
		now:         time.Now,
	}
}

// ApplyDelta shifts progress on every assignment of the student whose goal
// matches the category. Each row is persisted independently; a failure on one
// row is logged and the loop continues with the rest.
func (s *propagationService) ApplyDelta(ctx context.Context, studentID uint, category models.Category, delta int) []AssignmentOutcome {
	if delta == 0 {
		return nil
	}

	assignments, err := s.assignments.ListByStudentCategory(ctx, studentID, category)
	if err != nil {
		s.logger.Error().Err(err).
			Uint("student_id", studentID).
			Str("category", category.String()).
			Msg("failed to load assignments for propagation")
		return []AssignmentOutcome{{Err: err}}
	}

	outcomes := make([]AssignmentOutcome, 0, len(assignments))
	for i := range assignments {
		assignment := assignments[i]
		wasCompleted := assignment.Status == models.AssignmentStatusCompleted

		assignment.ApplyDelta(delta, assignment.Goal.TargetCount, s.now())

		outcome := AssignmentOutcome{
			AssignmentID: assignment.ID,
			GoalID:       assignment.GoalID,
			Progress:     assignment.Progress,
			Status:       assignment.Status,
		}

		if err := s.assignments.Update(ctx, &assignment); err != nil {
			// Best effort: the ledger write already committed, so a failed
			// counter update must not fail the whole operation.
			s.logger.Error().Err(err).
				Uint("assignment_id", assignment.ID).
				Int("delta", delta).
				Msg("failed to persist assignment progress")
			outcome.Err = err
			observability.PropagationUpdates().WithLabelValues("error").Inc()
			outcomes = append(outcomes, outcome)
			continue
		}

		outcome.Applied = true
		outcome.Completed = !wasCompleted && assignment.Status == models.AssignmentStatusCompleted
		observability.PropagationUpdates().WithLabelValues("applied").Inc()

		if outcome.Completed {
			observability.AssignmentsCompleted().Inc()
			s.publishCompleted(assignment)
		}

		outcomes = append(outcomes, outcome)
	}

	return outcomes
}

// Retarget re-evaluates every assignment of a goal against its current
// target count. Used when an admin changes the target; no delta is involved.
func (s *propagationService) Retarget(ctx context.Context, goal models.Goal) []AssignmentOutcome {
	assignments, err := s.assignments.ListByGoal(ctx, goal.ID)
	if err != nil {
		s.logger.Error().Err(err).Uint("goal_id", goal.ID).Msg("failed to load assignments for retarget")
		return []AssignmentOutcome{{Err: err}}
	}

	outcomes := make([]AssignmentOutcome, 0, len(assignments))
	for i := range assignments {
		assignment := assignments[i]
		wasCompleted := assignment.Status == models.AssignmentStatusCompleted

		assignment.Recompute(goal.TargetCount, s.now())

		outcome := AssignmentOutcome{
			AssignmentID: assignment.ID,
			GoalID:       assignment.GoalID,
			Progress:     assignment.Progress,
			Status:       assignment.Status,
		}

		if err := s.assignments.Update(ctx, &assignment); err != nil {
			s.logger.Error().Err(err).
				Uint("assignment_id", assignment.ID).
				Uint("goal_id", goal.ID).
				Msg("failed to persist retargeted assignment")
			outcome.Err = err
			observability.PropagationUpdates().WithLabelValues("error").Inc()
			outcomes = append(outcomes, outcome)
			continue
		}

		outcome.Applied = true
		outcome.Completed = !wasCompleted && assignment.Status == models.AssignmentStatusCompleted
		observability.PropagationUpdates().WithLabelValues("applied").Inc()

		if outcome.Completed {
			observability.AssignmentsCompleted().Inc()
			s.publishCompleted(assignment)
		}

		outcomes = append(outcomes, outcome)
	}

	return outcomes
}

func (s *propagationService) publishCompleted(assignment models.GoalAssignment) {
	if s.nats == nil {
		return
	}

	completedAt := s.now()
	if assignment.CompletedAt != nil {
		completedAt = *assignment.CompletedAt
	}

	payload, err := json.Marshal(AssignmentCompletedEvent{
		AssignmentID: assignment.ID,
		GoalID:       assignment.GoalID,
		StudentID:    assignment.StudentID,
		CompletedAt:  completedAt,
	})
	if err != nil {
		return
	}

	if err := s.nats.Publish(s.natsSubject, payload); err != nil {
		s.logger.Warn().Err(err).Uint("assignment_id", assignment.ID).Msg("failed to publish completion event")
	}
}
