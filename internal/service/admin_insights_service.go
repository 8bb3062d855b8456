package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/trackora/trackora-api/internal/dto"
	"github.com/trackora/trackora-api/internal/models"
	"github.com/trackora/trackora-api/internal/repository"
)

// ErrStudentNotFound indicates the student is missing or outside the college.
var ErrStudentNotFound = errors.New("student not found in your college")

// AdminInsightsService aggregates college-wide views for admins and trainers.
type AdminInsightsService interface {
	Students(ctx context.Context, collegeID uint) ([]dto.StudentOverview, error)
	StudentProgress(ctx context.Context, collegeID, studentID uint) (dto.StudentProgressResponse, error)
	Analytics(ctx context.Context, collegeID uint, req dto.AnalyticsRequest) (dto.AnalyticsResponse, error)
	ExportActivitiesCSV(ctx context.Context, collegeID uint) ([]byte, error)
}

type adminInsightsService struct {
	students   repository.StudentRepository
	activities repository.ActivityRepository
	cache      *redis.Client
	cacheTTL   time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

// NewAdminInsightsService constructs the admin insights aggregator.
func NewAdminInsightsService(students repository.StudentRepository, activities repository.ActivityRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) AdminInsightsService {
	return &adminInsightsService{
		students:   students,
		activities: activities,
		cache:      cache,
		cacheTTL:   ttl,
		logger:     logger.With().Str("component", "admin_insights_service").Logger(),
		now:        time.Now,
	}
}

func (s *adminInsightsService) Students(ctx context.Context, collegeID uint) ([]dto.StudentOverview, error) {
	students, err := s.students.ListByCollege(ctx, collegeID, models.RoleStudent)
	if err != nil {
		return nil, err
	}

	overviews := make([]dto.StudentOverview, 0, len(students))
	for _, student := range students {
		total, err := s.activities.TotalCount(ctx, student.ID)
		if err != nil {
			return nil, err
		}
		overviews = append(overviews, dto.NewStudentOverview(student, int(total), ReadinessTier(int(total))))
	}
	return overviews, nil
}

func (s *adminInsightsService) StudentProgress(ctx context.Context, collegeID, studentID uint) (dto.StudentProgressResponse, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentProgressResponse{}, ErrStudentNotFound
		}
		return dto.StudentProgressResponse{}, err
	}
	if student.CollegeID != collegeID {
		return dto.StudentProgressResponse{}, ErrStudentNotFound
	}

	totals, err := s.activities.SumByCategory(ctx, studentID, time.Time{})
	if err != nil {
		return dto.StudentProgressResponse{}, err
	}

	total := 0
	progress := make([]dto.CategorySummaryEntry, 0, len(totals))
	for _, entry := range totals {
		total += entry.TotalCount
		progress = append(progress, dto.CategorySummaryEntry{
			Category:      entry.Category.String(),
			TotalCount:    entry.TotalCount,
			TotalDuration: entry.TotalDuration,
		})
	}

	return dto.StudentProgressResponse{
		Student:  dto.NewStudentOverview(student, total, ReadinessTier(total)),
		Progress: progress,
	}, nil
}

func (s *adminInsightsService) Analytics(ctx context.Context, collegeID uint, req dto.AnalyticsRequest) (dto.AnalyticsResponse, error) {
	timeFrame := req.TimeFrame
	if timeFrame == "" {
		timeFrame = "weekly"
	}

	cacheKey := fmt.Sprintf("analytics:%d:%s:%s:%s", collegeID, timeFrame, req.StartDate, req.EndDate)
	tracer := otel.Tracer("github.com/trackora/trackora-api/internal/service/admin_insights")
	ctx, span := tracer.Start(ctx, "analytics.aggregate")
	span.SetAttributes(attribute.String("analytics.cache_key", cacheKey))
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var response dto.AnalyticsResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				span.SetAttributes(attribute.Bool("analytics.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read analytics cache")
			span.RecordError(err)
		}
	}

	response, err := s.buildAnalytics(ctx, collegeID, timeFrame, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "analytics_aggregation_failed")
		return dto.AnalyticsResponse{}, err
	}

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store analytics cache")
				span.RecordError(err)
			}
		}
	}

	return response, nil
}

func (s *adminInsightsService) buildAnalytics(ctx context.Context, collegeID uint, timeFrame string, req dto.AnalyticsRequest) (dto.AnalyticsResponse, error) {
	totalStudents, err := s.students.CountByCollege(ctx, collegeID, models.RoleStudent, false)
	if err != nil {
		return dto.AnalyticsResponse{}, err
	}
	activeStudents, err := s.students.CountByCollege(ctx, collegeID, models.RoleStudent, true)
	if err != nil {
		return dto.AnalyticsResponse{}, err
	}
	totalActivities, err := s.activities.CountByCollege(ctx, collegeID)
	if err != nil {
		return dto.AnalyticsResponse{}, err
	}

	topTotals, err := s.activities.TopPerformers(ctx, collegeID, 5)
	if err != nil {
		return dto.AnalyticsResponse{}, err
	}
	topPerformers := make([]dto.TopPerformer, 0, len(topTotals))
	for _, entry := range topTotals {
		performer := dto.TopPerformer{StudentID: entry.UserID, Name: "Unknown"}
		if student, err := s.students.GetByID(ctx, entry.UserID); err == nil {
			performer.Name = student.Name
			performer.Branch = student.Branch
		}
		score := entry.TotalCount
		if score > 100 {
			score = 100
		}
		performer.Score = int(score)
		topPerformers = append(topPerformers, performer)
	}

	window, err := s.resolveWindow(timeFrame, req)
	if err != nil {
		return dto.AnalyticsResponse{}, err
	}

	activities, err := s.activities.ListByCollege(ctx, collegeID, window.from, window.to)
	if err != nil {
		return dto.AnalyticsResponse{}, err
	}

	response := dto.AnalyticsResponse{
		TotalStudents:    totalStudents,
		ActiveStudents:   activeStudents,
		InactiveStudents: totalStudents - activeStudents,
		TotalActivities:  totalActivities,
		TopPerformers:    topPerformers,
		BarChartData:     bucketActivities(activities, window),
		GeneratedAt:      s.now().UTC(),
	}
	if totalStudents > 0 {
		response.AvgPerStudent = float64(totalActivities) / float64(totalStudents)
	}
	return response, nil
}

type analyticsWindow struct {
	from    time.Time
	to      time.Time
	monthly bool
	keys    []string
	labels  map[string]string
}

func (s *adminInsightsService) resolveWindow(timeFrame string, req dto.AnalyticsRequest) (analyticsWindow, error) {
	now := s.now()
	today := models.DayOf(now)

	switch timeFrame {
	case "monthly":
		return dailyWindow(today, 30), nil
	case "yearly":
		return monthlyWindow(today, 12), nil
	case "custom":
		from := today.AddDate(0, 0, -6)
		to := today
		if req.StartDate != "" {
			parsed, err := time.Parse("2006-01-02", req.StartDate)
			if err != nil {
				return analyticsWindow{}, fmt.Errorf("invalid start date: %w", err)
			}
			from = models.DayOf(parsed)
		}
		if req.EndDate != "" {
			parsed, err := time.Parse("2006-01-02", req.EndDate)
			if err != nil {
				return analyticsWindow{}, fmt.Errorf("invalid end date: %w", err)
			}
			to = models.DayOf(parsed)
		}
		if to.Sub(from) > 90*24*time.Hour {
			return monthlySpan(from, to), nil
		}
		return dailySpan(from, to), nil
	default:
		return dailyWindow(today, 7), nil
	}
}

func dailyWindow(today time.Time, days int) analyticsWindow {
	return dailySpan(today.AddDate(0, 0, -(days-1)), today)
}

func dailySpan(from, to time.Time) analyticsWindow {
	window := analyticsWindow{from: from, to: to.Add(24*time.Hour - time.Nanosecond), labels: map[string]string{}}
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		window.keys = append(window.keys, key)
		window.labels[key] = day.Format("Jan 2")
	}
	return window
}

func monthlyWindow(today time.Time, months int) analyticsWindow {
	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	return monthlySpan(first.AddDate(0, -(months-1), 0), today)
}

func monthlySpan(from, to time.Time) analyticsWindow {
	window := analyticsWindow{
		from:    from,
		to:      to.Add(24*time.Hour - time.Nanosecond),
		monthly: true,
		labels:  map[string]string{},
	}
	month := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !month.After(to) {
		key := month.Format("2006-01")
		window.keys = append(window.keys, key)
		window.labels[key] = month.Format("Jan 2006")
		month = month.AddDate(0, 1, 0)
	}
	return window
}

func bucketActivities(activities []models.Activity, window analyticsWindow) []dto.ChartBucket {
	buckets := make(map[string]*dto.ChartBucket, len(window.keys))
	for _, key := range window.keys {
		buckets[key] = &dto.ChartBucket{Name: window.labels[key]}
	}

	for _, activity := range activities {
		key := activity.LoggedDate.UTC().Format("2006-01-02")
		if window.monthly {
			key = activity.LoggedDate.UTC().Format("2006-01")
		}
		bucket, ok := buckets[key]
		if !ok {
			continue
		}
		switch activity.Category {
		case models.CategoryCoding:
			bucket.Coding += activity.Count
		case models.CategoryAptitude:
			bucket.Aptitude += activity.Count
		case models.CategoryCore:
			bucket.Core += activity.Count
		case models.CategorySoftSkills:
			bucket.SoftSkills += activity.Count
		}
	}

	result := make([]dto.ChartBucket, 0, len(window.keys))
	for _, key := range window.keys {
		result = append(result, *buckets[key])
	}
	return result
}

// ExportActivitiesCSV renders the college ledger as CSV for offline review.
func (s *adminInsightsService) ExportActivitiesCSV(ctx context.Context, collegeID uint) ([]byte, error) {
	activities, err := s.activities.ListByCollege(ctx, collegeID, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write([]string{"id", "user_id", "category", "sub_category", "count", "duration_minutes", "source", "logged_date"}); err != nil {
		return nil, err
	}

	for _, activity := range activities {
		record := []string{
			strconv.FormatUint(uint64(activity.ID), 10),
			strconv.FormatUint(uint64(activity.UserID), 10),
			activity.Category.String(),
			activity.SubCategory,
			strconv.Itoa(activity.Count),
			strconv.Itoa(activity.DurationMinutes),
			activity.Source,
			activity.LoggedDate.UTC().Format("2006-01-02"),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
