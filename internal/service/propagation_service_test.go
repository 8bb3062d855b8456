package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/trackora/trackora-api/internal/models"
	"github.com/trackora/trackora-api/internal/repository"
)

// failingAssignmentRepo wraps a real repository and fails Update for one
// assignment, to exercise the best-effort row loop.
type failingAssignmentRepo struct {
	repository.AssignmentRepository
	failID uint
}

func (f *failingAssignmentRepo) Update(ctx context.Context, assignment *models.GoalAssignment) error {
	if assignment.ID == f.failID {
		return errors.New("simulated write failure")
	}
	return f.AssignmentRepository.Update(ctx, assignment)
}

func TestApplyDeltaAdvancesAndCompletes(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAssignmentRepository(db)
	svc := NewPropagationService(repo, nil, "", zerolog.Nop())

	goal := seedGoal(t, db, 1, models.CategoryCoding, 5)
	assignment := seedAssignment(t, db, goal.ID, 1, 3, models.AssignmentStatusPending)

	outcomes := svc.ApplyDelta(context.Background(), 1, models.CategoryCoding, 2)
	require.Len(t, outcomes, 1)
	require.True(t, outcomes[0].Applied)
	require.True(t, outcomes[0].Completed)
	require.Equal(t, 5, outcomes[0].Progress)
	require.Equal(t, models.AssignmentStatusCompleted, outcomes[0].Status)

	var stored models.GoalAssignment
	require.NoError(t, db.First(&stored, assignment.ID).Error)
	require.Equal(t, models.AssignmentStatusCompleted, stored.Status)
	require.NotNil(t, stored.CompletedAt)
}

func TestApplyDeltaOvershootStaysCompleted(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAssignmentRepository(db)
	svc := NewPropagationService(repo, nil, "", zerolog.Nop())

	goal := seedGoal(t, db, 1, models.CategoryCoding, 5)
	seedAssignment(t, db, goal.ID, 1, 5, models.AssignmentStatusCompleted)

	outcomes := svc.ApplyDelta(context.Background(), 1, models.CategoryCoding, 3)
	require.Len(t, outcomes, 1)
	require.True(t, outcomes[0].Applied)
	require.False(t, outcomes[0].Completed)
	require.Equal(t, 8, outcomes[0].Progress)
	require.Equal(t, models.AssignmentStatusCompleted, outcomes[0].Status)
}

func TestApplyDeltaNegativeClampsAtZero(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAssignmentRepository(db)
	svc := NewPropagationService(repo, nil, "", zerolog.Nop())

	goal := seedGoal(t, db, 1, models.CategoryCoding, 5)
	assignment := seedAssignment(t, db, goal.ID, 1, 2, models.AssignmentStatusPending)

	outcomes := svc.ApplyDelta(context.Background(), 1, models.CategoryCoding, -7)
	require.Len(t, outcomes, 1)
	require.Equal(t, 0, outcomes[0].Progress)

	var stored models.GoalAssignment
	require.NoError(t, db.First(&stored, assignment.ID).Error)
	require.Equal(t, 0, stored.Progress)
	require.Equal(t, models.AssignmentStatusPending, stored.Status)
}

func TestApplyDeltaReversalDemotesCompleted(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAssignmentRepository(db)
	svc := NewPropagationService(repo, nil, "", zerolog.Nop())

	goal := seedGoal(t, db, 1, models.CategoryCoding, 5)
	assignment := seedAssignment(t, db, goal.ID, 1, 6, models.AssignmentStatusCompleted)

	svc.ApplyDelta(context.Background(), 1, models.CategoryCoding, -3)

	var stored models.GoalAssignment
	require.NoError(t, db.First(&stored, assignment.ID).Error)
	require.Equal(t, 3, stored.Progress)
	require.Equal(t, models.AssignmentStatusPending, stored.Status)
	require.Nil(t, stored.CompletedAt)
}

func TestApplyDeltaZeroIsNoop(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAssignmentRepository(db)
	svc := NewPropagationService(repo, nil, "", zerolog.Nop())

	require.Nil(t, svc.ApplyDelta(context.Background(), 1, models.CategoryCoding, 0))
}

func TestApplyDeltaSkipsOtherCategoriesAndStudents(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAssignmentRepository(db)
	svc := NewPropagationService(repo, nil, "", zerolog.Nop())

	codingGoal := seedGoal(t, db, 1, models.CategoryCoding, 5)
	coreGoal := seedGoal(t, db, 1, models.CategoryCore, 5)
	mine := seedAssignment(t, db, codingGoal.ID, 1, 0, models.AssignmentStatusPending)
	otherCategory := seedAssignment(t, db, coreGoal.ID, 1, 0, models.AssignmentStatusPending)
	otherStudent := seedAssignment(t, db, codingGoal.ID, 2, 0, models.AssignmentStatusPending)

	outcomes := svc.ApplyDelta(context.Background(), 1, models.CategoryCoding, 4)
	require.Len(t, outcomes, 1)
	require.Equal(t, mine.ID, outcomes[0].AssignmentID)

	var stored models.GoalAssignment
	require.NoError(t, db.First(&stored, otherCategory.ID).Error)
	require.Equal(t, 0, stored.Progress)
	stored = models.GoalAssignment{}
	require.NoError(t, db.First(&stored, otherStudent.ID).Error)
	require.Equal(t, 0, stored.Progress)
}

func TestApplyDeltaContinuesPastRowFailure(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAssignmentRepository(db)

	goalA := seedGoal(t, db, 1, models.CategoryCoding, 5)
	goalB := seedGoal(t, db, 1, models.CategoryCoding, 10)
	failing := seedAssignment(t, db, goalA.ID, 1, 0, models.AssignmentStatusPending)
	healthy := seedAssignment(t, db, goalB.ID, 1, 0, models.AssignmentStatusPending)

	svc := NewPropagationService(&failingAssignmentRepo{AssignmentRepository: repo, failID: failing.ID}, nil, "", zerolog.Nop())

	outcomes := svc.ApplyDelta(context.Background(), 1, models.CategoryCoding, 2)
	require.Len(t, outcomes, 2)

	byID := make(map[uint]AssignmentOutcome, len(outcomes))
	for _, outcome := range outcomes {
		byID[outcome.AssignmentID] = outcome
	}

	require.False(t, byID[failing.ID].Applied)
	require.Error(t, byID[failing.ID].Err)
	require.True(t, byID[healthy.ID].Applied)
	require.NoError(t, byID[healthy.ID].Err)

	var stored models.GoalAssignment
	require.NoError(t, db.First(&stored, failing.ID).Error)
	require.Equal(t, 0, stored.Progress)
	stored = models.GoalAssignment{}
	require.NoError(t, db.First(&stored, healthy.ID).Error)
	require.Equal(t, 2, stored.Progress)
}

func TestRetargetFlipsStatusBothWays(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAssignmentRepository(db)
	svc := NewPropagationService(repo, nil, "", zerolog.Nop())

	goal := seedGoal(t, db, 1, models.CategoryCoding, 5)
	completed := seedAssignment(t, db, goal.ID, 1, 6, models.AssignmentStatusCompleted)
	pending := seedAssignment(t, db, goal.ID, 2, 4, models.AssignmentStatusPending)

	// Raising the target demotes the finished assignment.
	goal.TargetCount = 10
	svc.Retarget(context.Background(), goal)

	var stored models.GoalAssignment
	require.NoError(t, db.First(&stored, completed.ID).Error)
	require.Equal(t, models.AssignmentStatusPending, stored.Status)
	require.Nil(t, stored.CompletedAt)

	// Lowering it promotes the one that was short.
	goal.TargetCount = 3
	outcomes := svc.Retarget(context.Background(), goal)
	require.Len(t, outcomes, 2)

	stored = models.GoalAssignment{}
	require.NoError(t, db.First(&stored, pending.ID).Error)
	require.Equal(t, models.AssignmentStatusCompleted, stored.Status)
	require.NotNil(t, stored.CompletedAt)
}
