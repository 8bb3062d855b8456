package dto

import (
	"time"

	"github.com/trackora/trackora-api/internal/models"
)

// StudentOverview is one roster row enriched with activity-derived metrics.
type StudentOverview struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Branch        string `json:"branch"`
	Year          int    `json:"year"`
	RollNo        string `json:"roll_no"`
	IsActive      bool   `json:"is_active"`
	Score         int    `json:"score"`
	TotalActivity int    `json:"total_activity"`
	Readiness     string `json:"readiness"`
}

// StudentProgressResponse combines a profile with its category summary.
type StudentProgressResponse struct {
	Student  StudentOverview        `json:"student"`
	Progress []CategorySummaryEntry `json:"progress"`
}

// TopPerformer is one leaderboard entry in the analytics summary.
type TopPerformer struct {
	StudentID uint   `json:"student_id"`
	Name      string `json:"name"`
	Branch    string `json:"branch"`
	Score     int    `json:"score"`
}

// ChartBucket is one stacked bar of per-category counts.
type ChartBucket struct {
	Name       string `json:"name"`
	Coding     int    `json:"coding"`
	Aptitude   int    `json:"aptitude"`
	Core       int    `json:"core"`
	SoftSkills int    `json:"softskills"`
}

// AnalyticsRequest selects the analytics window.
type AnalyticsRequest struct {
	TimeFrame string `query:"time_frame" validate:"omitempty,oneof=weekly monthly yearly custom"`
	StartDate string `query:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `query:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

// AnalyticsResponse is the aggregated college-wide view.
type AnalyticsResponse struct {
	TotalStudents    int64          `json:"total_students"`
	ActiveStudents   int64          `json:"active_students"`
	InactiveStudents int64          `json:"inactive_students"`
	TotalActivities  int64          `json:"total_activities_recorded"`
	AvgPerStudent    float64        `json:"average_activities_per_student"`
	TopPerformers    []TopPerformer `json:"top_performers"`
	BarChartData     []ChartBucket  `json:"bar_chart_data"`
	CacheHit         bool           `json:"cache_hit,omitempty"`
	GeneratedAt      time.Time      `json:"generated_at"`
}

// NewStudentOverview builds a roster row from a student and its ledger total.
func NewStudentOverview(student models.Student, totalActivity int, readiness string) StudentOverview {
	score := totalActivity
	if score > 100 {
		score = 100
	}
	return StudentOverview{
		ID:            student.ID,
		Name:          student.Name,
		Email:         student.Email,
		Branch:        student.Branch,
		Year:          student.Year,
		RollNo:        student.RollNo,
		IsActive:      student.IsActive,
		Score:         score,
		TotalActivity: totalActivity,
		Readiness:     readiness,
	}
}
