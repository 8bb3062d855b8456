package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/trackora/trackora-api/internal/dto"
	"github.com/trackora/trackora-api/internal/models"
	"github.com/trackora/trackora-api/internal/repository"
)

func newActivityFixture(t *testing.T) (*gorm.DB, ActivityService, repository.ActivityRepository) {
	t.Helper()

	db := newTestDB(t)
	activityRepo := repository.NewActivityRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	propagator := NewPropagationService(assignmentRepo, nil, "", zerolog.Nop())
	svc := NewActivityService(activityRepo, propagator, validator.New(), zerolog.Nop())
	return db, svc, activityRepo
}

func TestRecordMergesIntoSingleDayCard(t *testing.T) {
	db, svc, _ := newActivityFixture(t)
	actor := Actor{ID: 1, CollegeID: 1, Role: models.RoleStudent}
	ctx := context.Background()

	first, err := svc.Record(ctx, actor, dto.RecordActivityRequest{
		Category:        "coding",
		SubCategory:     "Arrays",
		Count:           3,
		DurationMinutes: 30,
	})
	require.NoError(t, err)
	require.Equal(t, 3, first.Count)

	second, err := svc.Record(ctx, actor, dto.RecordActivityRequest{
		Category:        "coding",
		SubCategory:     "Graphs",
		Count:           2,
		DurationMinutes: 15,
	})
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 5, second.Count)
	require.Equal(t, 45, second.DurationMinutes)
	require.Equal(t, "Arrays | Graphs", second.SubCategory)

	var total int64
	require.NoError(t, db.Model(&models.Activity{}).Count(&total).Error)
	require.EqualValues(t, 1, total)
}

func TestRecordCreatesSeparateCardsPerCategory(t *testing.T) {
	db, svc, _ := newActivityFixture(t)
	actor := Actor{ID: 1, CollegeID: 1}
	ctx := context.Background()

	_, err := svc.Record(ctx, actor, dto.RecordActivityRequest{Category: "coding"})
	require.NoError(t, err)
	_, err = svc.Record(ctx, actor, dto.RecordActivityRequest{Category: "aptitude"})
	require.NoError(t, err)

	var total int64
	require.NoError(t, db.Model(&models.Activity{}).Count(&total).Error)
	require.EqualValues(t, 2, total)
}

func TestRecordDefaultsCountToOne(t *testing.T) {
	_, svc, _ := newActivityFixture(t)

	activity, err := svc.Record(context.Background(), Actor{ID: 1}, dto.RecordActivityRequest{Category: "core"})
	require.NoError(t, err)
	require.Equal(t, 1, activity.Count)
}

func TestRecordRejectsUnknownCategory(t *testing.T) {
	_, svc, _ := newActivityFixture(t)

	_, err := svc.Record(context.Background(), Actor{ID: 1}, dto.RecordActivityRequest{Category: "chess"})
	require.Error(t, err)
}

func TestRecordPropagatesToMatchingAssignments(t *testing.T) {
	db, svc, _ := newActivityFixture(t)
	actor := Actor{ID: 7, CollegeID: 1}
	ctx := context.Background()

	codingGoal := seedGoal(t, db, 1, models.CategoryCoding, 5)
	aptitudeGoal := seedGoal(t, db, 1, models.CategoryAptitude, 5)
	codingAssignment := seedAssignment(t, db, codingGoal.ID, actor.ID, 0, models.AssignmentStatusPending)
	aptitudeAssignment := seedAssignment(t, db, aptitudeGoal.ID, actor.ID, 0, models.AssignmentStatusPending)

	_, err := svc.Record(ctx, actor, dto.RecordActivityRequest{Category: "coding", Count: 3})
	require.NoError(t, err)
	_, err = svc.Record(ctx, actor, dto.RecordActivityRequest{Category: "coding", Count: 2})
	require.NoError(t, err)

	var updated models.GoalAssignment
	require.NoError(t, db.First(&updated, codingAssignment.ID).Error)
	require.Equal(t, 5, updated.Progress)
	require.Equal(t, models.AssignmentStatusCompleted, updated.Status)
	require.NotNil(t, updated.CompletedAt)

	var untouched models.GoalAssignment
	require.NoError(t, db.First(&untouched, aptitudeAssignment.ID).Error)
	require.Equal(t, 0, untouched.Progress)
	require.Equal(t, models.AssignmentStatusPending, untouched.Status)
}

func TestUpdateReversesOldStateThenAppliesNew(t *testing.T) {
	db, svc, activityRepo := newActivityFixture(t)
	actor := Actor{ID: 3, CollegeID: 1}
	ctx := context.Background()

	codingGoal := seedGoal(t, db, 1, models.CategoryCoding, 5)
	aptitudeGoal := seedGoal(t, db, 1, models.CategoryAptitude, 5)
	codingAssignment := seedAssignment(t, db, codingGoal.ID, actor.ID, 0, models.AssignmentStatusPending)
	aptitudeAssignment := seedAssignment(t, db, aptitudeGoal.ID, actor.ID, 0, models.AssignmentStatusPending)

	recorded, err := svc.Record(ctx, actor, dto.RecordActivityRequest{Category: "coding", Count: 5})
	require.NoError(t, err)

	newCategory := "aptitude"
	newCount := 2
	_, err = svc.Update(ctx, actor, recorded.ID, dto.UpdateActivityRequest{
		Category: &newCategory,
		Count:    &newCount,
	})
	require.NoError(t, err)

	var coding models.GoalAssignment
	require.NoError(t, db.First(&coding, codingAssignment.ID).Error)
	require.Equal(t, 0, coding.Progress)
	require.Equal(t, models.AssignmentStatusPending, coding.Status)
	require.Nil(t, coding.CompletedAt)

	var aptitude models.GoalAssignment
	require.NoError(t, db.First(&aptitude, aptitudeAssignment.ID).Error)
	require.Equal(t, 2, aptitude.Progress)

	card, err := activityRepo.GetByID(ctx, recorded.ID)
	require.NoError(t, err)
	require.Equal(t, models.CategoryAptitude, card.Category)
	require.Equal(t, 2, card.Count)
}

func TestUpdateRejectsForeignRecord(t *testing.T) {
	_, svc, _ := newActivityFixture(t)
	ctx := context.Background()

	recorded, err := svc.Record(ctx, Actor{ID: 1}, dto.RecordActivityRequest{Category: "coding"})
	require.NoError(t, err)

	count := 4
	_, err = svc.Update(ctx, Actor{ID: 2}, recorded.ID, dto.UpdateActivityRequest{Count: &count})
	require.ErrorIs(t, err, ErrNotOwner)

	err = svc.Delete(ctx, Actor{ID: 2}, recorded.ID)
	require.ErrorIs(t, err, ErrNotOwner)
}

func TestDeleteReversesAssignmentProgress(t *testing.T) {
	db, svc, _ := newActivityFixture(t)
	actor := Actor{ID: 4, CollegeID: 1}
	ctx := context.Background()

	goal := seedGoal(t, db, 1, models.CategoryCoding, 5)
	assignment := seedAssignment(t, db, goal.ID, actor.ID, 0, models.AssignmentStatusPending)

	recorded, err := svc.Record(ctx, actor, dto.RecordActivityRequest{Category: "coding", Count: 6})
	require.NoError(t, err)

	var completed models.GoalAssignment
	require.NoError(t, db.First(&completed, assignment.ID).Error)
	require.Equal(t, models.AssignmentStatusCompleted, completed.Status)

	require.NoError(t, svc.Delete(ctx, actor, recorded.ID))

	var reverted models.GoalAssignment
	require.NoError(t, db.First(&reverted, assignment.ID).Error)
	require.Equal(t, 0, reverted.Progress)
	require.Equal(t, models.AssignmentStatusPending, reverted.Status)
	require.Nil(t, reverted.CompletedAt)
}

func TestReverseTodayDeletesDrainedCard(t *testing.T) {
	db, svc, _ := newActivityFixture(t)
	actor := Actor{ID: 5, CollegeID: 1}
	ctx := context.Background()

	_, err := svc.Record(ctx, actor, dto.RecordActivityRequest{Category: "coding", Count: 1})
	require.NoError(t, err)

	require.NoError(t, svc.ReverseToday(ctx, actor, models.CategoryCoding, 1))

	var total int64
	require.NoError(t, db.Model(&models.Activity{}).Count(&total).Error)
	require.EqualValues(t, 0, total)

	err = svc.ReverseToday(ctx, actor, models.CategoryCoding, 1)
	require.ErrorIs(t, err, ErrActivityNotFound)
}

func TestReverseTodayDecrementsLivingCard(t *testing.T) {
	_, svc, activityRepo := newActivityFixture(t)
	actor := Actor{ID: 6, CollegeID: 1}
	ctx := context.Background()

	recorded, err := svc.Record(ctx, actor, dto.RecordActivityRequest{Category: "coding", Count: 3})
	require.NoError(t, err)

	require.NoError(t, svc.ReverseToday(ctx, actor, models.CategoryCoding, 1))

	card, err := activityRepo.GetByID(ctx, recorded.ID)
	require.NoError(t, err)
	require.Equal(t, 2, card.Count)
}

func TestSummaryWindows(t *testing.T) {
	db, svc, _ := newActivityFixture(t)
	actor := Actor{ID: 8, CollegeID: 1}
	ctx := context.Background()

	_, err := svc.Record(ctx, actor, dto.RecordActivityRequest{Category: "coding", Count: 2})
	require.NoError(t, err)

	old := models.Activity{
		UserID:     actor.ID,
		CollegeID:  actor.CollegeID,
		Category:   models.CategoryCoding,
		Count:      9,
		LoggedDate: models.DayOf(time.Now().AddDate(0, 0, -20)),
	}
	require.NoError(t, db.Create(&old).Error)

	weekly, err := svc.Summary(ctx, actor, "weekly")
	require.NoError(t, err)
	require.Len(t, weekly, 1)
	require.Equal(t, 2, weekly[0].TotalCount)

	monthly, err := svc.Summary(ctx, actor, "monthly")
	require.NoError(t, err)
	require.Len(t, monthly, 1)
	require.Equal(t, 11, monthly[0].TotalCount)
}

func TestMergeLabel(t *testing.T) {
	cases := []struct {
		name     string
		existing string
		incoming string
		want     string
	}{
		{name: "first label", existing: "", incoming: "Arrays", want: "Arrays"},
		{name: "append", existing: "Arrays", incoming: "Graphs", want: "Arrays | Graphs"},
		{name: "duplicate skipped", existing: "Arrays | Graphs", incoming: "Graphs", want: "Arrays | Graphs"},
		{name: "empty incoming", existing: "Arrays", incoming: "  ", want: "Arrays"},
		{
			name:     "overflow collapses to ellipsis",
			existing: strings.Repeat("a", 55),
			incoming: "Dynamic Programming",
			want:     strings.Repeat("a", 55) + "...",
		},
		{
			name:     "ellipsis is terminal",
			existing: strings.Repeat("a", 55) + "...",
			incoming: "Graphs",
			want:     strings.Repeat("a", 55) + "...",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mergeLabel(tc.existing, tc.incoming)
			require.Equal(t, tc.want, got)
			require.LessOrEqual(t, len(got), labelCap+len(labelEllipsis))
			require.LessOrEqual(t, strings.Count(got, labelEllipsis), 1)
		})
	}
}

func TestTruncateLabelCapsAtCreation(t *testing.T) {
	long := strings.Repeat("x", 120)
	require.Len(t, truncateLabel(long), labelCap)
}
