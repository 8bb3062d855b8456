package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/trackora/trackora-api/internal/dto"
	"github.com/trackora/trackora-api/internal/models"
	"github.com/trackora/trackora-api/internal/repository"
	"github.com/trackora/trackora-api/pkg/ai"
)

// MentorService answers preparation questions and generates roadmaps,
// falling back to locally built guidance when no AI backend is configured.
type MentorService interface {
	Chat(ctx context.Context, actor Actor, req dto.MentorChatRequest) (dto.MentorReplyResponse, error)
	Roadmap(ctx context.Context, actor Actor) (dto.RoadmapResponse, error)
}

type mentorService struct {
	mentor     ai.Mentor
	students   repository.StudentRepository
	activities repository.ActivityRepository
	validate   *validator.Validate
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
}

// NewMentorService constructs the mentor service. The AI backend may be nil.
func NewMentorService(mentor ai.Mentor, students repository.StudentRepository, activities repository.ActivityRepository, validate *validator.Validate, logger zerolog.Logger) MentorService {
	return &mentorService{
		mentor:     mentor,
		students:   students,
		activities: activities,
		validate:   validate,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger.With().Str("component", "mentor_service").Logger(),
	}
}

type progressSnapshot struct {
	name      string
	totals    map[string]int
	weakAreas []string
	days      int
}

func (s *mentorService) Chat(ctx context.Context, actor Actor, req dto.MentorChatRequest) (dto.MentorReplyResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.MentorReplyResponse{}, err
	}
	question := strings.TrimSpace(s.sanitizer.Sanitize(req.Question))
	if question == "" {
		return dto.MentorReplyResponse{}, fmt.Errorf("question is empty after sanitization")
	}

	snapshot, err := s.snapshot(ctx, actor.ID)
	if err != nil {
		return dto.MentorReplyResponse{}, err
	}

	if s.mentor != nil {
		answer, err := s.mentor.Answer(ctx, ai.MentorInput{
			StudentName:    snapshot.name,
			Question:       question,
			CategoryTotals: snapshot.totals,
			WeakAreas:      snapshot.weakAreas,
		})
		if err == nil {
			return dto.MentorReplyResponse{Answer: answer}, nil
		}
		s.logger.Warn().Err(err).Uint("student_id", actor.ID).Msg("mentor backend failed, using fallback")
	}

	return dto.MentorReplyResponse{Answer: fallbackAnswer(snapshot), Fallback: true}, nil
}

func (s *mentorService) Roadmap(ctx context.Context, actor Actor) (dto.RoadmapResponse, error) {
	snapshot, err := s.snapshot(ctx, actor.ID)
	if err != nil {
		return dto.RoadmapResponse{}, err
	}

	if s.mentor != nil {
		roadmap, err := s.mentor.Roadmap(ctx, ai.RoadmapInput{
			StudentName:    snapshot.name,
			CategoryTotals: snapshot.totals,
			WeakAreas:      snapshot.weakAreas,
			DaysActive:     snapshot.days,
		})
		if err == nil {
			return dto.RoadmapResponse{Roadmap: roadmap}, nil
		}
		s.logger.Warn().Err(err).Uint("student_id", actor.ID).Msg("mentor backend failed, using fallback")
	}

	return dto.RoadmapResponse{Roadmap: fallbackRoadmap(snapshot), Fallback: true}, nil
}

func (s *mentorService) snapshot(ctx context.Context, studentID uint) (progressSnapshot, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return progressSnapshot{}, err
	}

	categoryTotals, err := s.activities.SumByCategory(ctx, studentID, time.Time{})
	if err != nil {
		return progressSnapshot{}, err
	}
	days, err := s.activities.DistinctDays(ctx, studentID)
	if err != nil {
		return progressSnapshot{}, err
	}

	totals := make(map[string]int, len(models.AllCategories()))
	for _, category := range models.AllCategories() {
		totals[category.String()] = 0
	}
	for _, entry := range categoryTotals {
		totals[entry.Category.String()] = entry.TotalCount
	}

	return progressSnapshot{
		name:      student.Name,
		totals:    totals,
		weakAreas: weakAreas(totals),
		days:      len(days),
	}, nil
}

// weakAreas flags categories below their practice floor. Soft skills use a
// lower bar because sessions there are logged less often.
func weakAreas(totals map[string]int) []string {
	var weak []string
	for _, category := range models.AllCategories() {
		floor := 10
		if category == models.CategorySoftSkills {
			floor = 5
		}
		if totals[category.String()] < floor {
			weak = append(weak, category.String())
		}
	}
	return weak
}

func fallbackAnswer(snapshot progressSnapshot) string {
	builder := strings.Builder{}
	builder.WriteString("The AI mentor is unavailable right now, but here is guidance based on your tracked progress.\n\n")
	if len(snapshot.weakAreas) == 0 {
		builder.WriteString("Your activity is well balanced across all categories. Keep your daily streak going and start timing your practice sessions.")
		return builder.String()
	}
	builder.WriteString("Focus first on: ")
	builder.WriteString(strings.Join(snapshot.weakAreas, ", "))
	builder.WriteString(". Aim for at least one logged session in each of these every day this week.")
	return builder.String()
}

func fallbackRoadmap(snapshot progressSnapshot) string {
	focus := snapshot.weakAreas
	if len(focus) == 0 {
		focus = []string{models.CategoryCoding.String(), models.CategoryAptitude.String()}
	}

	builder := strings.Builder{}
	builder.WriteString("One-week preparation roadmap:\n")
	for day := 1; day <= 7; day++ {
		category := focus[(day-1)%len(focus)]
		builder.WriteString(fmt.Sprintf("Day %d: one focused %s session, then log it.\n", day, category))
	}
	builder.WriteString("Day 7 extra: review the week, retry anything you got wrong.")
	return builder.String()
}
