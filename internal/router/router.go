package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/prajjwal-ghimire/sms-go-api/internal/config"
	"github.com/prajjwal-ghimire/sms-go-api/internal/handler"
	"github.com/prajjwal-ghimire/sms-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler    *handler.AuthHandler
	CourseHandler  *handler.CourseHandler
	StudentHandler *handler.StudentHandler
	JWTMiddleware  fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(app.Group("/auth"))
	}

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.CourseHandler != nil {
		deps.CourseHandler.Register(app.Group("/Course", jwtMiddleware))
	}

	if deps.StudentHandler != nil {
		deps.StudentHandler.Register(app.Group("/Student", jwtMiddleware))
	}
}
