package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/trackora/trackora-api/internal/models"
)

// CategoryTotal is the aggregated count/duration for one category.
type CategoryTotal struct {
	Category      models.Category `json:"category"`
	TotalCount    int             `json:"total_count"`
	TotalDuration int             `json:"total_duration"`
}

// UserTotal is the aggregated count for one student.
type UserTotal struct {
	UserID     uint  `json:"user_id"`
	TotalCount int64 `json:"total_count"`
}

// ActivityRepository defines persistence operations for the activity ledger.
type ActivityRepository interface {
	GetByID(ctx context.Context, id uint) (models.Activity, error)
	FindDayCard(ctx context.Context, userID uint, category models.Category, day time.Time) (models.Activity, error)
	Create(ctx context.Context, activity *models.Activity) error
	Update(ctx context.Context, activity *models.Activity) error
	Delete(ctx context.Context, id uint) error
	ListByUser(ctx context.Context, userID uint) ([]models.Activity, error)
	ListByCollege(ctx context.Context, collegeID uint, from, to time.Time) ([]models.Activity, error)
	SumByCategory(ctx context.Context, userID uint, since time.Time) ([]CategoryTotal, error)
	DistinctDays(ctx context.Context, userID uint) ([]time.Time, error)
	TotalCount(ctx context.Context, userID uint) (int64, error)
	TopPerformers(ctx context.Context, collegeID uint, limit int) ([]UserTotal, error)
	CountByCollege(ctx context.Context, collegeID uint) (int64, error)
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository instantiates a GORM-backed activity repository.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) GetByID(ctx context.Context, id uint) (models.Activity, error) {
	var activity models.Activity
	if err := r.db.WithContext(ctx).First(&activity, id).Error; err != nil {
		return models.Activity{}, err
	}
	return activity, nil
}

func (r *activityRepository) FindDayCard(ctx context.Context, userID uint, category models.Category, day time.Time) (models.Activity, error) {
	var activity models.Activity
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND category = ? AND logged_date = ?", userID, category, models.DayOf(day)).
		First(&activity).Error
	if err != nil {
		return models.Activity{}, err
	}
	return activity, nil
}

func (r *activityRepository) Create(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *activityRepository) Update(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Save(activity).Error
}

func (r *activityRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Activity{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *activityRepository) ListByUser(ctx context.Context, userID uint) ([]models.Activity, error) {
	var activities []models.Activity
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("logged_date DESC").
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}

func (r *activityRepository) ListByCollege(ctx context.Context, collegeID uint, from, to time.Time) ([]models.Activity, error) {
	var activities []models.Activity
	query := r.db.WithContext(ctx).Where("college_id = ?", collegeID)
	if !from.IsZero() {
		query = query.Where("logged_date >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("logged_date <= ?", to)
	}
	if err := query.Order("logged_date ASC").Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

func (r *activityRepository) SumByCategory(ctx context.Context, userID uint, since time.Time) ([]CategoryTotal, error) {
	var totals []CategoryTotal
	query := r.db.WithContext(ctx).
		Model(&models.Activity{}).
		Select("category, SUM(count) AS total_count, SUM(duration_minutes) AS total_duration").
		Where("user_id = ?", userID)
	if !since.IsZero() {
		query = query.Where("logged_date >= ?", since)
	}
	if err := query.Group("category").Scan(&totals).Error; err != nil {
		return nil, err
	}
	return totals, nil
}

func (r *activityRepository) DistinctDays(ctx context.Context, userID uint) ([]time.Time, error) {
	var days []time.Time
	err := r.db.WithContext(ctx).
		Model(&models.Activity{}).
		Distinct("logged_date").
		Where("user_id = ?", userID).
		Order("logged_date DESC").
		Pluck("logged_date", &days).Error
	if err != nil {
		return nil, err
	}
	return days, nil
}

func (r *activityRepository) TotalCount(ctx context.Context, userID uint) (int64, error) {
	var total *int64
	err := r.db.WithContext(ctx).
		Model(&models.Activity{}).
		Select("SUM(count)").
		Where("user_id = ?", userID).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (r *activityRepository) TopPerformers(ctx context.Context, collegeID uint, limit int) ([]UserTotal, error) {
	var totals []UserTotal
	err := r.db.WithContext(ctx).
		Model(&models.Activity{}).
		Select("user_id, SUM(count) AS total_count").
		Where("college_id = ?", collegeID).
		Group("user_id").
		Order("total_count DESC").
		Limit(limit).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return totals, nil
}

func (r *activityRepository) CountByCollege(ctx context.Context, collegeID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Activity{}).
		Where("college_id = ?", collegeID).
		Count(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
