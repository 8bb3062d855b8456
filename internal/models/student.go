package models

import "time"

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
	RoleTrainer = "trainer"
)

// Student represents a learner preparing for placements.
type Student struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role      string    `gorm:"size:32;not null;default:student;index" json:"role"`
	CollegeID uint      `gorm:"index" json:"college_id"`
	Branch    string    `gorm:"size:128" json:"branch"`
	Year      int       `json:"year"`
	RollNo    string    `gorm:"size:64" json:"roll_no"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
