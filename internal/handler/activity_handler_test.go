package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/trackora/trackora-api/internal/config"
	"github.com/trackora/trackora-api/internal/dto"
	"github.com/trackora/trackora-api/internal/handler"
	"github.com/trackora/trackora-api/internal/models"
	"github.com/trackora/trackora-api/internal/repository"
	"github.com/trackora/trackora-api/internal/router"
	"github.com/trackora/trackora-api/internal/service"
)

type testApp struct {
	app *fiber.App
	db  *gorm.DB
}

// fakeAuth injects the locals the JWT middleware would normally set.
func fakeAuth(userID, collegeID uint, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		c.Locals("college_id", collegeID)
		c.Locals("user_role", role)
		return c.Next()
	}
}

func setupApp(t *testing.T, auth fiber.Handler) testApp {
	t.Helper()
	db := newHandlerDB(t)
	return testApp{app: buildApp(t, db, auth), db: db}
}

func newHandlerDB(t *testing.T) *gorm.DB {
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

func buildApp(t *testing.T, db *gorm.DB, auth fiber.Handler) *fiber.App {
	t.Helper()

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	activityRepo := repository.NewActivityRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	completedRepo := repository.NewCompletedProblemRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	propagator := service.NewPropagationService(assignmentRepo, nil, "", logger)
	activityService := service.NewActivityService(activityRepo, propagator, validate, logger)
	progressService := service.NewProgressService(activityRepo, logger)
	practiceService := service.NewPracticeService(completedRepo, activityService, validate, logger)
	enrollmentService := service.NewEnrollmentService(goalRepo, assignmentRepo, studentRepo, logger)
	auditService := service.NewAuditService(auditRepo, logger)
	goalService := service.NewGoalService(goalRepo, assignmentRepo, enrollmentService, propagator, auditService, validate, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Trackora Test"}, router.Dependencies{
		ActivityHandler: handler.NewActivityHandler(activityService, logger),
		ProgressHandler: handler.NewProgressHandler(progressService, logger),
		PracticeHandler: handler.NewPracticeHandler(practiceService, logger),
		GoalHandler:     handler.NewGoalHandler(goalService, logger),
		AuditHandler:    handler.NewAuditHandler(auditService, validate, logger),
		JWTMiddleware:   auth,
	})

	return app
}

func seedTestStudent(t *testing.T, db *gorm.DB, id, collegeID uint, role string) {
	t.Helper()
	require.NoError(t, db.Create(&models.Student{
		ID:        id,
		Name:      fmt.Sprintf("Student %d", id),
		Email:     fmt.Sprintf("student-%d@example.com", id),
		Role:      role,
		CollegeID: collegeID,
		IsActive:  true,
	}).Error)
}

func jsonRequest(t *testing.T, method, target string, payload interface{}) *http.Request {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

func TestActivityHandlerRecordAndList(t *testing.T) {
	env := setupApp(t, fakeAuth(1, 1, "student"))
	seedTestStudent(t, env.db, 1, 1, models.RoleStudent)

	resp, err := env.app.Test(jsonRequest(t, "POST", "/api/v1/activities", dto.RecordActivityRequest{
		Category:    "coding",
		SubCategory: "Arrays",
		Count:       3,
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Success bool                 `json:"success"`
		Data    dto.ActivityResponse `json:"data"`
		Message string               `json:"message"`
	}
	decodeResponse(t, resp, &created)
	require.True(t, created.Success)
	require.Equal(t, "activity recorded", created.Message)
	require.Equal(t, 3, created.Data.Count)

	// Same category and day merges instead of creating a second card.
	resp, err = env.app.Test(jsonRequest(t, "POST", "/api/v1/activities", dto.RecordActivityRequest{
		Category: "coding",
		Count:    2,
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	listResp, err := env.app.Test(jsonRequest(t, "GET", "/api/v1/activities", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, listResp.StatusCode)

	var list struct {
		Success bool                   `json:"success"`
		Data    []dto.ActivityResponse `json:"data"`
	}
	decodeResponse(t, listResp, &list)
	require.Len(t, list.Data, 1)
	require.Equal(t, 5, list.Data[0].Count)
}

func TestActivityHandlerRejectsUnknownCategory(t *testing.T) {
	env := setupApp(t, fakeAuth(1, 1, "student"))
	seedTestStudent(t, env.db, 1, 1, models.RoleStudent)

	resp, err := env.app.Test(jsonRequest(t, "POST", "/api/v1/activities", fiber.Map{
		"category": "yoga",
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.False(t, body.Success)
}

func TestActivityHandlerUpdateStatuses(t *testing.T) {
	env := setupApp(t, fakeAuth(1, 1, "student"))
	seedTestStudent(t, env.db, 1, 1, models.RoleStudent)
	seedTestStudent(t, env.db, 2, 1, models.RoleStudent)

	require.NoError(t, env.db.Create(&models.Activity{
		ID:         10,
		UserID:     2,
		CollegeID:  1,
		Category:   models.CategoryCoding,
		Count:      4,
		LoggedDate: models.DayOf(time.Now()),
	}).Error)

	count := 6
	foreign, err := env.app.Test(jsonRequest(t, "PATCH", "/api/v1/activities/10", dto.UpdateActivityRequest{Count: &count}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, foreign.StatusCode)

	missing, err := env.app.Test(jsonRequest(t, "PATCH", "/api/v1/activities/999", dto.UpdateActivityRequest{Count: &count}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, missing.StatusCode)

	badID, err := env.app.Test(jsonRequest(t, "PATCH", "/api/v1/activities/abc", dto.UpdateActivityRequest{Count: &count}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, badID.StatusCode)
}

func TestActivityHandlerDelete(t *testing.T) {
	env := setupApp(t, fakeAuth(1, 1, "student"))
	seedTestStudent(t, env.db, 1, 1, models.RoleStudent)

	resp, err := env.app.Test(jsonRequest(t, "POST", "/api/v1/activities", dto.RecordActivityRequest{Category: "core"}))
	require.NoError(t, err)
	var created struct {
		Data dto.ActivityResponse `json:"data"`
	}
	decodeResponse(t, resp, &created)

	deleted, err := env.app.Test(jsonRequest(t, "DELETE", fmt.Sprintf("/api/v1/activities/%d", created.Data.ID), nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, deleted.StatusCode)

	again, err := env.app.Test(jsonRequest(t, "DELETE", fmt.Sprintf("/api/v1/activities/%d", created.Data.ID), nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, again.StatusCode)
}

func TestProgressHandlerReadinessAndStreak(t *testing.T) {
	env := setupApp(t, fakeAuth(1, 1, "student"))
	seedTestStudent(t, env.db, 1, 1, models.RoleStudent)

	resp, err := env.app.Test(jsonRequest(t, "POST", "/api/v1/activities", dto.RecordActivityRequest{
		Category: "coding",
		Count:    60,
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	readinessResp, err := env.app.Test(jsonRequest(t, "GET", "/api/v1/progress/readiness", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, readinessResp.StatusCode)

	var readiness struct {
		Data dto.ReadinessResponse `json:"data"`
	}
	decodeResponse(t, readinessResp, &readiness)
	require.Equal(t, "Moderate", readiness.Data.ReadinessLevel)
	require.Equal(t, 60, readiness.Data.TotalScore)

	streakResp, err := env.app.Test(jsonRequest(t, "GET", "/api/v1/progress/streak", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, streakResp.StatusCode)

	var streak struct {
		Data dto.StreakResponse `json:"data"`
	}
	decodeResponse(t, streakResp, &streak)
	require.Equal(t, 1, streak.Data.Streak)
}
