// Package server contains the HTTP and WebSocket handlers for the profile and follow API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "socialcore/docs" // swagger docs
	"socialcore/internal/cache"
	"socialcore/internal/config"
	"socialcore/internal/credential"
	"socialcore/internal/database"
	"socialcore/internal/middleware"
	"socialcore/internal/models"
	"socialcore/internal/notifications"
	"socialcore/internal/observability"
	"socialcore/internal/repository"
	"socialcore/internal/service"
	"socialcore/internal/token"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies for the HTTP server
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus

	profileRepo repository.ProfileRepository
	followRepo  repository.FollowRepository

	issuer      *token.Issuer
	credentials *credential.Store

	profileSvc *service.ProfileService
	graphSvc   *service.GraphService
	authSvc    *service.AuthService

	notifier *notifications.Notifier
	hub      *notifications.Hub

	shutdownCtx context.Context
	shutdownFn  context.CancelFunc
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps builds a server around an existing database and optional
// Redis client. A nil redisClient runs without cache and delivers follow events
// to local websocket connections only.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	issuer, err := token.NewIssuer(token.Config{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.JWTTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create token issuer: %w", err)
	}

	cache.SetClient(redisClient)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics(observability.ServiceName),
		profileRepo:    repository.NewProfileRepository(db),
		followRepo:     repository.NewFollowRepository(db),
		issuer:         issuer,
		credentials: credential.NewStore(credential.Params{
			Time:        cfg.HashTime,
			Memory:      cfg.HashMemoryKB,
			Threads:     cfg.HashThreads,
			Concurrency: cfg.HashConcurrency,
		}),
		notifier: notifications.NewNotifier(redisClient),
		hub:      notifications.NewHub(),
	}

	s.profileSvc = service.NewProfileService(s.profileRepo)
	s.graphSvc = service.NewGraphService(s.followRepo, s.profileRepo, s.notifier)
	s.authSvc = service.NewAuthService(s.profileSvc, s.credentials, s.issuer)

	return s, nil
}

// SetupMiddleware configures global middleware
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Spans and trace IDs before the context middleware copies them
	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and Trace ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: origins != "*",
		MaxAge:           86400, // 24 hours
	}))
}

// SetupRoutes configures all application routes
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Socialcore Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", s.Register)
	auth.Post("/login", s.Login)

	// Protected routes
	profiles := api.Group("/profiles", s.AuthRequired())
	profiles.Get("/", s.ListProfiles)
	profiles.Get("/:name", s.GetProfile)
	profiles.Get("/:name/followers", s.GetFollowers)
	profiles.Get("/:name/following", s.GetFollowing)
	profiles.Put("/:name/media", s.UpdateMedia)
	profiles.Put("/:name/follow", s.Follow)
	profiles.Put("/:name/unfollow", s.Unfollow)

	// Follow events for the caller
	api.Get("/ws", s.AuthRequired(), s.WebSocketUpgrade, s.WebSocketHandler())
}

// LivenessCheck reports that the process is up.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "alive",
		"time":   time.Now(),
	})
}

// ReadinessCheck pings the database and, when configured, Redis.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// the API degrades to direct store reads without Redis
	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired verifies the bearer token and stores the caller's profile name
// in Fiber locals and in the request context.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		tokenString := ""
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenString = strings.TrimSpace(parts[1])
			}
		}

		if tokenString == "" {
			return respondError(c, models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := s.issuer.Parse(tokenString)
		if err != nil {
			middleware.Logger.DebugContext(c.UserContext(), "token rejected", slog.String("error", err.Error()))
			return respondError(c, models.NewUnauthorizedError("Invalid or expired token"))
		}

		c.Locals(middleware.LocalProfileName, claims.Name)
		c.SetUserContext(middleware.WithProfileName(c.UserContext(), claims.Name))

		return c.Next()
	}
}

// App builds the Fiber application with middleware and routes attached.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "Socialcore API",
		BodyLimit: 1 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Message: fe.Message})
			}
			return respondError(c, err)
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// Start wires the notification hub and listens on the configured port.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := s.App()

	if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
		middleware.Logger.Error("failed to start notification wiring", slog.String("error", err.Error()))
	}

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown stops the HTTP server and closes websocket clients, the database
// and Redis.
func (s *Server) Shutdown(ctx context.Context) error {
	// Cancel the server-scoped context to stop the pub/sub subscriber
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down notification hub", slog.String("error", err.Error()))
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		cache.Close()
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
