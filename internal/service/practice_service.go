package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/trackora/trackora-api/internal/dto"
	"github.com/trackora/trackora-api/internal/models"
	"github.com/trackora/trackora-api/internal/repository"
)

var (
	// ErrAlreadyCompleted indicates the problem was already marked done.
	ErrAlreadyCompleted = errors.New("item already marked as done")
	// ErrNotCompleted indicates the problem was never marked done.
	ErrNotCompleted = errors.New("item is not marked as done")
)

// PracticeService is the idempotent done/undone toggle over the practice
// checklist. The completed set is a dedup guard only; counts live in the
// activity ledger, which this facade drives through the day-card merger.
// Activities edited through the generic activity API can drift from this
// set; that drift is accepted, not reconciled.
type PracticeService interface {
	MarkDone(ctx context.Context, actor Actor, payload dto.MarkDoneRequest) (dto.MarkDoneResponse, error)
	MarkUndone(ctx context.Context, actor Actor, payload dto.MarkUndoneRequest) (dto.MarkDoneResponse, error)
	Completed(ctx context.Context, actor Actor) (map[string][]string, error)
}

type practiceService struct {
	completed  repository.CompletedProblemRepository
	activities ActivityService
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
	now        func() time.Time
}

// NewPracticeService builds the completion-tracking facade.
func NewPracticeService(completed repository.CompletedProblemRepository, activities ActivityService, validate *validator.Validate, logger zerolog.Logger) PracticeService {
	return &practiceService{
		completed:  completed,
		activities: activities,
		validator:  validate,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger.With().Str("component", "practice_service").Logger(),
		now:        time.Now,
	}
}

func (s *practiceService) MarkDone(ctx context.Context, actor Actor, payload dto.MarkDoneRequest) (dto.MarkDoneResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.MarkDoneResponse{}, err
	}

	category := resolveCategory(payload.Category)

	exists, err := s.completed.Exists(ctx, actor.ID, category, payload.ProblemID)
	if err != nil {
		return dto.MarkDoneResponse{}, err
	}
	if exists {
		return dto.MarkDoneResponse{}, ErrAlreadyCompleted
	}

	label := s.buildLabel(payload.TopicTitle, payload.ProblemTitle)
	record := models.CompletedProblem{
		StudentID: actor.ID,
		Category:  category,
		ProblemID: payload.ProblemID,
		Label:     label,
	}
	if err := s.completed.Create(ctx, &record); err != nil {
		return dto.MarkDoneResponse{}, err
	}

	// The merger propagates the +1 to matching assignments itself.
	activity, err := s.activities.Record(ctx, actor, dto.RecordActivityRequest{
		Category:    category.String(),
		SubCategory: label,
		Count:       1,
		Source:      "Practice Page",
	})
	if err != nil {
		return dto.MarkDoneResponse{}, err
	}

	total, err := s.countCompleted(ctx, actor.ID)
	if err != nil {
		return dto.MarkDoneResponse{}, err
	}

	s.logger.Info().
		Uint("student_id", actor.ID).
		Str("problem_id", payload.ProblemID).
		Msg("problem marked done")

	return dto.MarkDoneResponse{CompletedCount: total, Activity: &activity}, nil
}

func (s *practiceService) MarkUndone(ctx context.Context, actor Actor, payload dto.MarkUndoneRequest) (dto.MarkDoneResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.MarkDoneResponse{}, err
	}

	category := resolveCategory(payload.Category)

	exists, err := s.completed.Exists(ctx, actor.ID, category, payload.ProblemID)
	if err != nil {
		return dto.MarkDoneResponse{}, err
	}
	if !exists {
		return dto.MarkDoneResponse{}, ErrNotCompleted
	}

	if err := s.completed.Delete(ctx, actor.ID, category, payload.ProblemID); err != nil {
		return dto.MarkDoneResponse{}, err
	}

	// Reverse only today's card; the undo of an older mark has no card
	// left to decrement and the missing record is not an error here.
	if err := s.activities.ReverseToday(ctx, actor, category, 1); err != nil && !errors.Is(err, ErrActivityNotFound) {
		return dto.MarkDoneResponse{}, err
	}

	total, err := s.countCompleted(ctx, actor.ID)
	if err != nil {
		return dto.MarkDoneResponse{}, err
	}

	s.logger.Info().
		Uint("student_id", actor.ID).
		Str("problem_id", payload.ProblemID).
		Msg("problem unmarked")

	return dto.MarkDoneResponse{CompletedCount: total}, nil
}

func (s *practiceService) Completed(ctx context.Context, actor Actor) (map[string][]string, error) {
	records, err := s.completed.ListByStudent(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	result := make(map[string][]string, len(models.AllCategories()))
	for _, category := range models.AllCategories() {
		result[category.String()] = []string{}
	}
	for _, record := range records {
		key := record.Category.String()
		result[key] = append(result[key], record.ProblemID)
	}
	return result, nil
}

func (s *practiceService) countCompleted(ctx context.Context, studentID uint) (int, error) {
	records, err := s.completed.ListByStudent(ctx, studentID)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// practiceLabelCap matches the sub_category bound on ledger requests; the
// combined "topic: problem" text can exceed it even when both titles pass
// their own length checks.
const practiceLabelCap = 255

func (s *practiceService) buildLabel(topic, problem string) string {
	topic = s.sanitizer.Sanitize(strings.TrimSpace(topic))
	problem = s.sanitizer.Sanitize(strings.TrimSpace(problem))

	var label string
	switch {
	case topic != "" && problem != "":
		label = fmt.Sprintf("%s: %s", topic, problem)
	case problem != "":
		label = problem
	default:
		label = topic
	}

	runes := []rune(label)
	if len(runes) > practiceLabelCap {
		label = string(runes[:practiceLabelCap])
	}
	return label
}

func resolveCategory(value string) models.Category {
	category, err := models.ParseCategory(value)
	if err != nil {
		return models.CategoryCoding
	}
	return category
}
