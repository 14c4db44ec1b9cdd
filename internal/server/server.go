package server

import (
	"log"
	"strings"
	"time"

	"student-risk-be/internal/bootstrap"
	"student-risk-be/internal/config"
	"student-risk-be/internal/controller"
	"student-risk-be/internal/pkg/serverutils"
	"student-risk-be/internal/web"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024, // 1MB
		Views:        web.NewEngine(),
		ErrorHandler: serverutils.ErrorHandler(container.Logger),
	})

	// Middleware
	app.Use(recover.New())

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())
	app.Use(container.Metrics.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware(container.Logger))

	// Routes
	registerRoutes(app, cfg, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown() error {
	return s.app.ShutdownWithTimeout(10 * time.Second)
}

// registerRoutes mounts the API and operational routes before the session middleware so
// they never create page sessions.
func registerRoutes(app *fiber.App, cfg *config.Config, c *bootstrap.Container) {
	api := app.Group("/api", cors.New(cors.Config{
		AllowOrigins: cfg.App.CorsAllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	var guards []fiber.Handler
	if cfg.Auth.APIRequireAuth {
		guards = append(guards, serverutils.NewJwtMiddleware(cfg.Auth.JWTSecret))
	}
	c.PredictionController.RegisterRoutes(api, guards...)
	c.AuthController.RegisterAPIRoutes(api)

	c.HealthController.RegisterRoutes(app)

	app.Use(c.Sessions.Middleware())
	if cfg.App.CSRFEnabled {
		app.Use(csrf.New(csrf.Config{
			KeyLookup:      "form:csrf_token",
			CookieName:     "csrf_",
			CookieSameSite: "Lax",
			CookieHTTPOnly: true,
			CookieSecure:   cfg.Session.CookieSecure,
			Expiration:     time.Hour,
			ContextKey:     controller.CSRFContextKey,
			Next: func(ctx *fiber.Ctx) bool {
				return strings.HasPrefix(ctx.Path(), "/api")
			},
		}))
	}

	c.AuthController.RegisterRoutes(app)
	c.PageController.RegisterRoutes(app)
}
