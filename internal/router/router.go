package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/ujian-go-api/internal/config"
	"github.com/noah-isme/ujian-go-api/internal/handler"
	"github.com/noah-isme/ujian-go-api/internal/middleware"
	"github.com/noah-isme/ujian-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	TokenHandler    *handler.TokenHandler
	SessionHandler  *handler.SessionHandler
	AdminHandler    *handler.AdminHandler
	TeacherHandler  *handler.TeacherHandler
	RealtimeHandler *handler.RealtimeHandler
	SeedHandler     *handler.SeedHandler
	JWTMiddleware   fiber.Handler
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

	// Student exam surface; credentialed by room token and session hash,
	// never by JWT. Login is rate limited.
	if deps.SessionHandler != nil {
		exam := api.Group("/exam")
		exam.Use("/login", middleware.RateLimit("exam_login", 30, time.Minute))
		deps.SessionHandler.Register(exam)
	}

	// Teacher login is the entry point to the JWT-gated surfaces.
	if deps.TeacherHandler != nil {
		teacher := api.Group("/teacher")
		teacher.Use("/login", middleware.RateLimit("teacher_login", 10, time.Minute))
		deps.TeacherHandler.Register(teacher)
	}

	// Proctor surface: token administration and session cleanup.
	if deps.TokenHandler != nil {
		proctor := api.Group("/proctor", jwtMiddleware)
		deps.TokenHandler.Register(proctor)
		if deps.SessionHandler != nil {
			deps.SessionHandler.RegisterProctor(proctor)
		}
	}

	// Admin surface: bans and appeals.
	if deps.AdminHandler != nil {
		admin := api.Group("/admin", jwtMiddleware)
		deps.AdminHandler.Register(admin)
	}

	// Realtime websocket; authenticates inside the handshake.
	if deps.RealtimeHandler != nil {
		realtime := api.Group("/realtime")
		deps.RealtimeHandler.Register(realtime)
	}

	// Seed surface is gated twice: JWT plus the X-Seed-Token header.
	if deps.SeedHandler != nil {
		seed := api.Group("/seed", jwtMiddleware)
		deps.SeedHandler.Register(seed)
	}
}
