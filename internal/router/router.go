package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/trackora/trackora-api/internal/config"
	"github.com/trackora/trackora-api/internal/handler"
	"github.com/trackora/trackora-api/internal/middleware"
	"github.com/trackora/trackora-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ActivityHandler      *handler.ActivityHandler
	ProgressHandler      *handler.ProgressHandler
	PracticeHandler      *handler.PracticeHandler
	GoalHandler          *handler.GoalHandler
	AdminInsightsHandler *handler.AdminInsightsHandler
	AuditHandler         *handler.AuditHandler
	MockInterviewHandler *handler.MockInterviewHandler
	MentorHandler        *handler.MentorHandler
	JWTMiddleware        fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.ActivityHandler != nil {
		activities := api.Group("/activities", jwtMiddleware)
		deps.ActivityHandler.Register(activities)
	}

	if deps.ProgressHandler != nil {
		progress := api.Group("/progress", jwtMiddleware)
		deps.ProgressHandler.Register(progress)
	}

	if deps.PracticeHandler != nil {
		practice := api.Group("/practice", jwtMiddleware)
		deps.PracticeHandler.Register(practice)
	}

	if deps.GoalHandler != nil {
		assignments := api.Group("/assignments", jwtMiddleware)
		deps.GoalHandler.RegisterStudent(assignments)
	}

	if deps.MockInterviewHandler != nil {
		mock := api.Group("/mock-interviews", jwtMiddleware)
		deps.MockInterviewHandler.Register(mock)
	}

	if deps.MentorHandler != nil {
		mentor := api.Group("/mentor", jwtMiddleware,
			middleware.RateLimit("mentor", cfg.AIRateLimit, time.Minute))
		deps.MentorHandler.Register(mentor)
	}

	admin := api.Group("/admin", jwtMiddleware, middleware.RequireRole("admin", "trainer"))

	if deps.GoalHandler != nil {
		goals := admin.Group("/goals")
		deps.GoalHandler.RegisterAdmin(goals)
	}

	if deps.AdminInsightsHandler != nil {
		deps.AdminInsightsHandler.Register(admin)
	}

	if deps.AuditHandler != nil {
		audit := admin.Group("/audit-logs")
		deps.AuditHandler.Register(audit)
	}
}
