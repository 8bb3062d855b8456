package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/trackora/trackora-api/internal/dto"
	"github.com/trackora/trackora-api/internal/models"
	"github.com/trackora/trackora-api/internal/repository"
)

var (
	// ErrActivityNotFound indicates the requested activity record does not exist.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrNotOwner indicates the caller does not own the record being mutated.
	ErrNotOwner = errors.New("activity belongs to another user")
	// ErrInvalidCategory indicates a category outside the fixed enum.
	ErrInvalidCategory = errors.New("invalid category")
)

const (
	labelCap       = 60
	labelSeparator = " | "
	labelEllipsis  = "..."
)

// Actor is the authenticated identity attached to every engine operation.
type Actor struct {
	ID        uint
	CollegeID uint
	Role      string
}

// ActivityService is the day-card merger: every submission for a category is
// folded into that day's single record, and each mutation feeds the progress
// propagator with a signed count delta.
type ActivityService interface {
	Record(ctx context.Context, actor Actor, payload dto.RecordActivityRequest) (dto.ActivityResponse, error)
	Update(ctx context.Context, actor Actor, id uint, payload dto.UpdateActivityRequest) (dto.ActivityResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
	ListMine(ctx context.Context, actor Actor) ([]dto.ActivityResponse, error)
	Summary(ctx context.Context, actor Actor, window string) ([]dto.CategorySummaryEntry, error)
	ReverseToday(ctx context.Context, actor Actor, category models.Category, count int) error
}

type activityService struct {
	activities repository.ActivityRepository
	propagator PropagationService
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
	now        func() time.Time
}

// NewActivityService builds the day-card merger.
func NewActivityService(activities repository.ActivityRepository, propagator PropagationService, validate *validator.Validate, logger zerolog.Logger) ActivityService {
	return &activityService{
		activities: activities,
		propagator: propagator,
		validator:  validate,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger.With().Str("component", "activity_service").Logger(),
		now:        time.Now,
	}
}

func (s *activityService) Record(ctx context.Context, actor Actor, payload dto.RecordActivityRequest) (dto.ActivityResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ActivityResponse{}, err
	}

	category, err := models.ParseCategory(payload.Category)
	if err != nil {
		return dto.ActivityResponse{}, ErrInvalidCategory
	}

	count := payload.Count
	if count <= 0 {
		count = 1
	}
	duration := payload.DurationMinutes
	if duration < 0 {
		duration = 0
	}
	label := s.sanitizer.Sanitize(strings.TrimSpace(payload.SubCategory))

	activity, err := s.merge(ctx, actor, category, label, count, duration, payload.Source)
	if err != nil {
		return dto.ActivityResponse{}, err
	}

	s.propagator.ApplyDelta(ctx, actor.ID, category, count)

	s.logger.Info().
		Uint("user_id", actor.ID).
		Str("category", category.String()).
		Int("count", count).
		Msg("activity recorded")

	return dto.NewActivityResponse(activity), nil
}

// merge finds or creates today's card for the category and folds the
// submission into it.
func (s *activityService) merge(ctx context.Context, actor Actor, category models.Category, label string, count, duration int, source string) (models.Activity, error) {
	day := models.DayOf(s.now())

	existing, err := s.activities.FindDayCard(ctx, actor.ID, category, day)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Activity{}, err
		}

		activity := models.Activity{
			UserID:          actor.ID,
			CollegeID:       actor.CollegeID,
			Category:        category,
			SubCategory:     truncateLabel(label),
			Count:           count,
			DurationMinutes: duration,
			Source:          source,
			LoggedDate:      day,
		}
		if err := s.activities.Create(ctx, &activity); err != nil {
			return models.Activity{}, err
		}
		return activity, nil
	}

	existing.Count += count
	existing.DurationMinutes += duration
	existing.SubCategory = mergeLabel(existing.SubCategory, label)
	if source != "" {
		existing.Source = source
	}

	if err := s.activities.Update(ctx, &existing); err != nil {
		return models.Activity{}, err
	}
	return existing, nil
}

func (s *activityService) Update(ctx context.Context, actor Actor, id uint, payload dto.UpdateActivityRequest) (dto.ActivityResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ActivityResponse{}, err
	}

	activity, err := s.activities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ActivityResponse{}, ErrActivityNotFound
		}
		return dto.ActivityResponse{}, err
	}

	if activity.UserID != actor.ID {
		return dto.ActivityResponse{}, ErrNotOwner
	}

	oldCategory := activity.Category
	oldCount := activity.Count

	if payload.Category != nil {
		category, err := models.ParseCategory(*payload.Category)
		if err != nil {
			return dto.ActivityResponse{}, ErrInvalidCategory
		}
		activity.Category = category
	}
	if payload.SubCategory != nil {
		activity.SubCategory = truncateLabel(s.sanitizer.Sanitize(strings.TrimSpace(*payload.SubCategory)))
	}
	if payload.Count != nil {
		activity.Count = *payload.Count
	}
	if payload.DurationMinutes != nil {
		activity.DurationMinutes = *payload.DurationMinutes
	}

	if err := s.activities.Update(ctx, &activity); err != nil {
		return dto.ActivityResponse{}, err
	}

	// Reversal against the old state, then reapplication of the new one.
	// Two independent passes, matching how every other ledger event flows.
	s.propagator.ApplyDelta(ctx, actor.ID, oldCategory, -oldCount)
	s.propagator.ApplyDelta(ctx, actor.ID, activity.Category, activity.Count)

	s.logger.Info().Uint("activity_id", activity.ID).Msg("activity updated")

	return dto.NewActivityResponse(activity), nil
}

func (s *activityService) Delete(ctx context.Context, actor Actor, id uint) error {
	activity, err := s.activities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrActivityNotFound
		}
		return err
	}

	if activity.UserID != actor.ID {
		return ErrNotOwner
	}

	if err := s.activities.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrActivityNotFound
		}
		return err
	}

	s.propagator.ApplyDelta(ctx, actor.ID, activity.Category, -activity.Count)

	s.logger.Info().Uint("activity_id", id).Msg("activity deleted")
	return nil
}

func (s *activityService) ListMine(ctx context.Context, actor Actor) ([]dto.ActivityResponse, error) {
	activities, err := s.activities.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return dto.NewActivityResponseSlice(activities), nil
}

func (s *activityService) Summary(ctx context.Context, actor Actor, window string) ([]dto.CategorySummaryEntry, error) {
	now := s.now()
	var since time.Time
	switch strings.ToLower(strings.TrimSpace(window)) {
	case "monthly":
		since = now.AddDate(0, -1, 0)
	default:
		since = now.AddDate(0, 0, -7)
	}

	totals, err := s.activities.SumByCategory(ctx, actor.ID, since)
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

// ReverseToday subtracts count from today's card for the category, deleting
// the card outright when its count would drop to zero or below. Used by the
// practice facade's undo path; never touches older day-cards.
func (s *activityService) ReverseToday(ctx context.Context, actor Actor, category models.Category, count int) error {
	if count <= 0 {
		return nil
	}

	day := models.DayOf(s.now())
	activity, err := s.activities.FindDayCard(ctx, actor.ID, category, day)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrActivityNotFound
		}
		return err
	}

	if activity.Count-count <= 0 {
		if err := s.activities.Delete(ctx, activity.ID); err != nil {
			return err
		}
	} else {
		activity.Count -= count
		if err := s.activities.Update(ctx, &activity); err != nil {
			return err
		}
	}

	s.propagator.ApplyDelta(ctx, actor.ID, category, -count)
	return nil
}

// mergeLabel appends the incoming topic text to the accumulated label with a
// separator, skipping duplicates, and once the label reaches the cap replaces
// further appends with a single terminal ellipsis.
func mergeLabel(existing, incoming string) string {
	incoming = strings.TrimSpace(incoming)
	if existing == "" {
		return truncateLabel(incoming)
	}
	if incoming == "" || strings.Contains(existing, incoming) {
		return existing
	}
	if strings.HasSuffix(existing, labelEllipsis) {
		return existing
	}
	if len(existing) >= labelCap {
		return existing + labelEllipsis
	}
	merged := existing + labelSeparator + incoming
	if len(merged) > labelCap {
		return existing + labelEllipsis
	}
	return merged
}

func truncateLabel(label string) string {
	if len(label) > labelCap {
		return label[:labelCap]
	}
	return label
}
