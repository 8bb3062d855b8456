package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/trackora/trackora-api/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Student{},
		&models.Activity{},
		&models.Goal{},
		&models.GoalAssignment{},
		&models.CompletedProblem{},
		&models.MockInterview{},
		&models.AuditLog{},
	))
	return db
}

func seedStudent(t *testing.T, db *gorm.DB, id, collegeID uint, name string) models.Student {
	t.Helper()

	student := models.Student{
		ID:        id,
		Name:      name,
		Email:     fmt.Sprintf("%s-%d@example.com", strings.ToLower(strings.ReplaceAll(name, " ", ".")), id),
		Role:      models.RoleStudent,
		CollegeID: collegeID,
		IsActive:  true,
	}
	require.NoError(t, db.Create(&student).Error)
	return student
}

func seedActivity(t *testing.T, db *gorm.DB, userID, collegeID uint, category models.Category, count int, day time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&models.Activity{
		UserID:     userID,
		CollegeID:  collegeID,
		Category:   category,
		Count:      count,
		LoggedDate: models.DayOf(day),
	}).Error)
}

func seedGoal(t *testing.T, db *gorm.DB, collegeID uint, category models.Category, target int) models.Goal {
	t.Helper()

	now := time.Now().UTC()
	goal := models.Goal{
		CollegeID:   collegeID,
		CreatedBy:   99,
		Title:       fmt.Sprintf("%s target", category),
		Category:    category,
		TargetCount: target,
		StartDate:   now,
		Deadline:    now.Add(7 * 24 * time.Hour),
		IsActive:    true,
	}
	require.NoError(t, db.Create(&goal).Error)
	return goal
}

func seedAssignment(t *testing.T, db *gorm.DB, goalID, studentID uint, progress int, status string) models.GoalAssignment {
	t.Helper()

	assignment := models.GoalAssignment{
		GoalID:    goalID,
		StudentID: studentID,
		Progress:  progress,
		Status:    status,
	}
	require.NoError(t, db.Create(&assignment).Error)
	return assignment
}
