package models

import "time"

// Activity is a day-card: the single merged record of everything a student
// logged for one category on one calendar day.
type Activity struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;uniqueIndex:idx_user_category_day" json:"user_id"`
	CollegeID       uint      `gorm:"index" json:"college_id"`
	Category        Category  `gorm:"size:32;not null;uniqueIndex:idx_user_category_day;index" json:"category"`
	SubCategory     string    `gorm:"size:255" json:"sub_category"`
	Count           int       `gorm:"not null;default:1" json:"count"`
	DurationMinutes int       `gorm:"not null;default:0" json:"duration_minutes"`
	Source          string    `gorm:"size:64" json:"source"`
	LoggedDate      time.Time `gorm:"not null;uniqueIndex:idx_user_category_day;index" json:"logged_date"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DayOf truncates a timestamp to its calendar day in UTC.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether both timestamps fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return DayOf(a).Equal(DayOf(b))
}
