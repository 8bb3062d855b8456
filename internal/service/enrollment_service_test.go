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

// duplicateAssignmentRepo simulates losing an insert race to the unique
// (goal, student) index.
type duplicateAssignmentRepo struct {
	repository.AssignmentRepository
	calls int
}

func (d *duplicateAssignmentRepo) Create(ctx context.Context, assignment *models.GoalAssignment) error {
	d.calls++
	return errors.New(`duplicate key value violates unique constraint "idx_goal_student"`)
}

func TestEnsureAssignmentsBackfillsActiveGoals(t *testing.T) {
	db := newTestDB(t)
	assignments := repository.NewAssignmentRepository(db)
	svc := NewEnrollmentService(repository.NewGoalRepository(db), assignments, repository.NewStudentRepository(db), zerolog.Nop())
	ctx := context.Background()

	active := seedGoal(t, db, 1, models.CategoryCoding, 5)
	inactive := seedGoal(t, db, 1, models.CategoryAptitude, 5)
	require.NoError(t, db.Model(&models.Goal{}).Where("id = ?", inactive.ID).Update("is_active", false).Error)
	seedGoal(t, db, 2, models.CategoryCoding, 5)

	require.NoError(t, svc.EnsureAssignments(ctx, 1, 1))

	mine, err := assignments.ListByStudent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, active.ID, mine[0].GoalID)
	require.Equal(t, models.AssignmentStatusPending, mine[0].Status)
	require.Equal(t, 0, mine[0].Progress)
}

func TestEnsureAssignmentsIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	assignments := repository.NewAssignmentRepository(db)
	svc := NewEnrollmentService(repository.NewGoalRepository(db), assignments, repository.NewStudentRepository(db), zerolog.Nop())
	ctx := context.Background()

	goal := seedGoal(t, db, 1, models.CategoryCoding, 5)
	seedAssignment(t, db, goal.ID, 1, 3, models.AssignmentStatusPending)

	require.NoError(t, svc.EnsureAssignments(ctx, 1, 1))
	require.NoError(t, svc.EnsureAssignments(ctx, 1, 1))

	mine, err := assignments.ListByStudent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, 3, mine[0].Progress)
}

func TestEnsureAssignmentsSwallowsInsertRace(t *testing.T) {
	db := newTestDB(t)
	seedGoal(t, db, 1, models.CategoryCoding, 5)

	racing := &duplicateAssignmentRepo{AssignmentRepository: repository.NewAssignmentRepository(db)}
	svc := NewEnrollmentService(repository.NewGoalRepository(db), racing, repository.NewStudentRepository(db), zerolog.Nop())

	require.NoError(t, svc.EnsureAssignments(context.Background(), 1, 1))
	require.Equal(t, 1, racing.calls)
}

func TestFanOutAssignsEveryStudentOfCollege(t *testing.T) {
	db := newTestDB(t)
	assignments := repository.NewAssignmentRepository(db)
	svc := NewEnrollmentService(repository.NewGoalRepository(db), assignments, repository.NewStudentRepository(db), zerolog.Nop())
	ctx := context.Background()

	seedStudent(t, db, 1, 1, "Asha")
	seedStudent(t, db, 2, 1, "Ravi")
	seedStudent(t, db, 3, 2, "Meera")
	admin := seedStudent(t, db, 4, 1, "Admin User")
	require.NoError(t, db.Model(&models.Student{}).Where("id = ?", admin.ID).Update("role", models.RoleAdmin).Error)

	goal := seedGoal(t, db, 1, models.CategoryCoding, 5)

	created, err := svc.FanOut(ctx, goal)
	require.NoError(t, err)
	require.Equal(t, 2, created)

	rows, err := assignments.ListByGoal(ctx, goal.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		require.Equal(t, models.AssignmentStatusPending, row.Status)
	}
}

func TestFanOutWithNoStudents(t *testing.T) {
	db := newTestDB(t)
	svc := NewEnrollmentService(repository.NewGoalRepository(db), repository.NewAssignmentRepository(db), repository.NewStudentRepository(db), zerolog.Nop())

	goal := seedGoal(t, db, 1, models.CategoryCoding, 5)
	created, err := svc.FanOut(context.Background(), goal)
	require.NoError(t, err)
	require.Equal(t, 0, created)
}
