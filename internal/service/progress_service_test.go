package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/trackora/trackora-api/internal/models"
	"github.com/trackora/trackora-api/internal/repository"
)

func TestReadinessTierBoundaries(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{score: 0, want: ReadinessLow},
		{score: 49, want: ReadinessLow},
		{score: 50, want: ReadinessModerate},
		{score: 99, want: ReadinessModerate},
		{score: 100, want: ReadinessHigh},
		{score: 199, want: ReadinessHigh},
		{score: 200, want: ReadinessReady},
		{score: 500, want: ReadinessReady},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, ReadinessTier(tc.score), "score %d", tc.score)
	}
}

func TestReadinessSumsAcrossCategories(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(repository.NewActivityRepository(db), zerolog.Nop())

	today := models.DayOf(time.Now())
	require.NoError(t, db.Create(&models.Activity{UserID: 1, Category: models.CategoryCoding, Count: 40, LoggedDate: today}).Error)
	require.NoError(t, db.Create(&models.Activity{UserID: 1, Category: models.CategoryAptitude, Count: 15, LoggedDate: today}).Error)

	readiness, err := svc.Readiness(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 55, readiness.TotalScore)
	require.Equal(t, ReadinessModerate, readiness.ReadinessLevel)
	require.Equal(t, 40, readiness.Details["coding"])
	require.Equal(t, 15, readiness.Details["aptitude"])
	require.Equal(t, 0, readiness.Details["core"])
	require.Equal(t, 0, readiness.Details["softskills"])
}

func TestStreakFrom(t *testing.T) {
	now := time.Date(2026, time.March, 10, 15, 30, 0, 0, time.UTC)
	day := func(offset int) time.Time {
		return models.DayOf(now.AddDate(0, 0, offset))
	}

	cases := []struct {
		name string
		days []time.Time
		want int
	}{
		{name: "no activity", days: nil, want: 0},
		{name: "today only", days: []time.Time{day(0)}, want: 1},
		{name: "yesterday keeps streak alive", days: []time.Time{day(-1)}, want: 1},
		{name: "two days ago is broken", days: []time.Time{day(-2), day(-3)}, want: 0},
		{name: "run from today", days: []time.Time{day(0), day(-1), day(-2)}, want: 3},
		{name: "run from yesterday", days: []time.Time{day(-1), day(-2), day(-3)}, want: 3},
		{name: "gap stops the walk", days: []time.Time{day(0), day(-1), day(-3), day(-4)}, want: 2},
		{name: "duplicate days collapse", days: []time.Time{day(0), day(0), day(-1)}, want: 2},
		{name: "unsorted input", days: []time.Time{day(-2), day(0), day(-1)}, want: 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, streakFrom(tc.days, now))
		})
	}
}

func TestStreakOverLedger(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(repository.NewActivityRepository(db), zerolog.Nop())

	today := models.DayOf(time.Now())
	for offset := 0; offset < 4; offset++ {
		require.NoError(t, db.Create(&models.Activity{
			UserID:     1,
			Category:   models.CategoryCoding,
			Count:      1,
			LoggedDate: today.AddDate(0, 0, -offset),
		}).Error)
	}

	streak, err := svc.Streak(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 4, streak.Streak)
}
