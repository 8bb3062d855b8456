package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/trackora/trackora-api/internal/dto"
	"github.com/trackora/trackora-api/internal/models"
	"github.com/trackora/trackora-api/internal/repository"
)

// Readiness tier labels, coarse buckets over the total logged count.
const (
	ReadinessLow      = "Low"
	ReadinessModerate = "Moderate"
	ReadinessHigh     = "High"
	ReadinessReady    = "Placement Ready"
)

// ProgressService derives read-side views from the activity ledger. Nothing
// here is cached or incrementally maintained; every call recomputes from the
// ledger, the single source of truth.
type ProgressService interface {
	CategorySummary(ctx context.Context, studentID uint) ([]dto.CategorySummaryEntry, error)
	Readiness(ctx context.Context, studentID uint) (dto.ReadinessResponse, error)
	Streak(ctx context.Context, studentID uint) (dto.StreakResponse, error)
}

type progressService struct {
	activities repository.ActivityRepository
	logger     zerolog.Logger
	now        func() time.Time
}

// NewProgressService builds the readiness and streak calculator.
func NewProgressService(activities repository.ActivityRepository, logger zerolog.Logger) ProgressService {
	return &progressService{
		activities: activities,
		logger:     logger.With().Str("component", "progress_service").Logger(),
		now:        time.Now,
	}
}

func (s *progressService) CategorySummary(ctx context.Context, studentID uint) ([]dto.CategorySummaryEntry, error) {
	totals, err := s.activities.SumByCategory(ctx, studentID, time.Time{})
	if err != nil {
		return nil, err
	}

	entries := make([]dto.CategorySummaryEntry, 0, len(totals))
	for _, total := range totals {
		entries = append(entries, dto.CategorySummaryEntry{
			Category:      total.Category.String(),
			TotalCount:    total.TotalCount,
			TotalDuration: total.TotalDuration,
		})
	}
	return entries, nil
}

func (s *progressService) Readiness(ctx context.Context, studentID uint) (dto.ReadinessResponse, error) {
	totals, err := s.activities.SumByCategory(ctx, studentID, time.Time{})
	if err != nil {
		return dto.ReadinessResponse{}, err
	}

	details := make(map[string]int, len(models.AllCategories()))
	for _, category := range models.AllCategories() {
		details[category.String()] = 0
	}

	totalScore := 0
	for _, total := range totals {
		details[total.Category.String()] = total.TotalCount
		totalScore += total.TotalCount
	}

	return dto.ReadinessResponse{
		ReadinessLevel: ReadinessTier(totalScore),
		TotalScore:     totalScore,
		Details:        details,
	}, nil
}

// ReadinessTier maps a total logged count onto its readiness bucket.
func ReadinessTier(totalScore int) string {
	switch {
	case totalScore >= 200:
		return ReadinessReady
	case totalScore >= 100:
		return ReadinessHigh
	case totalScore >= 50:
		return ReadinessModerate
	default:
		return ReadinessLow
	}
}

// Streak walks the student's distinct activity days backwards from today.
// The walk starts only if the newest day is today or yesterday, then counts
// while each day is exactly one calendar day before the previous one.
func (s *progressService) Streak(ctx context.Context, studentID uint) (dto.StreakResponse, error) {
	days, err := s.activities.DistinctDays(ctx, studentID)
	if err != nil {
		return dto.StreakResponse{}, err
	}

	return dto.StreakResponse{Streak: streakFrom(days, s.now())}, nil
}

func streakFrom(days []time.Time, now time.Time) int {
	if len(days) == 0 {
		return 0
	}

	// Records may predate day-merging or span categories; collapse
	// to distinct calendar days before walking.
	seen := make(map[time.Time]struct{}, len(days))
	distinct := make([]time.Time, 0, len(days))
	for _, day := range days {
		truncated := models.DayOf(day)
		if _, ok := seen[truncated]; ok {
			continue
		}
		seen[truncated] = struct{}{}
		distinct = append(distinct, truncated)
	}

	sort.Slice(distinct, func(i, j int) bool {
		return distinct[i].After(distinct[j])
	})

	streak := 0
	cursor := models.DayOf(now)
	for _, day := range distinct {
		gap := int(cursor.Sub(day).Hours() / 24)
		if streak == 0 {
			if gap > 1 {
				return 0
			}
		} else if gap != 1 {
			break
		}
		streak++
		cursor = day
	}
	return streak
}
