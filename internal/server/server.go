// Package server contains the HTTP handlers, middleware wiring and views of
// the AskMate web application.
package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"askmate/internal/cache"
	"askmate/internal/config"
	"askmate/internal/database"
	"askmate/internal/middleware"
	"askmate/internal/repository"
	"askmate/internal/service"
	"askmate/internal/upload"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	repo           repository.Repository
	accounts       *service.AccountService
	authz          *service.Authorizer
	admin          *service.AdministrationService
	uploads        *upload.Store
}

// NewServer connects to the database and Redis and builds the server.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	redisClient := cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use it with an in-memory database and an optional miniredis client.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	repo := repository.New(db)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("askmate"),
		repo:           repo,
		accounts:       service.NewAccountService(repo, cfg.JWTSecret),
		authz:          service.NewAuthorizer(repo, repo),
		admin:          service.NewAdministrationService(repo),
		uploads:        upload.NewStore(cfg.UploadDir),
	}, nil
}

// App returns the configured Fiber application, building it on first use.
func (s *Server) App() (*fiber.App, error) {
	if s.app != nil {
		return s.app, nil
	}

	views, err := newViewEngine()
	if err != nil {
		return nil, err
	}

	bodyLimit := s.config.UploadMaxSizeMB * 1024 * 1024
	if bodyLimit <= 0 {
		bodyLimit = fiber.DefaultBodyLimit
	}

	app := fiber.New(fiber.Config{
		AppName:      "AskMate",
		Views:        views,
		ViewsLayout:  mainLayout,
		BodyLimit:    bodyLimit,
		ErrorHandler: s.errorHandler,
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())

	app.Use(requestid.New())

	app.Use(middleware.TracingMiddleware())

	// Propagate request and trace ids into the user context
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())

	app.Use(middleware.StructuredLogger())

	// Global rate limiting (300 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return strings.HasPrefix(p, "/health") || p == middleware.MetricsPath || strings.HasPrefix(p, upload.URLPrefix)
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, please try again later.")
		},
	}))

	// Resolve the signed-in user, if any, for every page
	app.Use(s.OptionalAuth())
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, middleware.MetricsPath)
	}

	app.Static(strings.TrimSuffix(upload.URLPrefix, "/"), s.uploads.Dir())

	auth := s.AuthRequired()

	// Home
	app.Get("/", s.Index)
	app.Get("/search", middleware.RateLimit(s.redis, 30, time.Minute, "search"), s.Search)

	// Questions: specific routes before /:id
	questions := app.Group("/questions")
	questions.Get("/", s.ListQuestions)
	questions.Get("/add", auth, s.AddQuestionForm)
	questions.Post("/add", auth, middleware.RateLimit(s.redis, 5, 5*time.Minute, "add_question"), s.AddQuestion)
	questions.Get("/tagged/:tagId", s.QuestionsByTag)
	questions.Get("/:id/edit", auth, s.EditQuestionForm)
	questions.Post("/:id/edit", auth, s.EditQuestion)
	questions.Post("/:id/remove", auth, s.RemoveQuestion)
	questions.Get("/:id", s.QuestionDetails)

	// Answers
	answers := app.Group("/answers", auth)
	answers.Get("/addanswer/:questionId", s.AddAnswerForm)
	answers.Post("/addanswer/:questionId", middleware.RateLimit(s.redis, 10, 5*time.Minute, "add_answer"), s.AddAnswer)
	answers.Get("/:id/edit", s.EditAnswerForm)
	answers.Post("/:id/edit", s.EditAnswer)
	answers.Get("/:id/voteup", s.VoteUpAnswer)
	answers.Post("/:id/voteup", s.VoteUpAnswer)
	answers.Get("/:id/votedown", s.VoteDownAnswer)
	answers.Post("/:id/votedown", s.VoteDownAnswer)
	answers.Get("/:id/accept", s.AcceptAnswer)
	answers.Post("/:id/accept", s.AcceptAnswer)
	answers.Post("/:id/remove", s.RemoveAnswer)

	// Comments
	comments := app.Group("/comments", auth)
	comments.Get("/addQuestionComment/:questionId", s.AddQuestionCommentForm)
	comments.Post("/addQuestionComment/:questionId", middleware.RateLimit(s.redis, 20, 5*time.Minute, "add_comment"), s.AddQuestionComment)
	comments.Get("/addAnswerComment/:answerId", s.AddAnswerCommentForm)
	comments.Post("/addAnswerComment/:answerId", middleware.RateLimit(s.redis, 20, 5*time.Minute, "add_comment"), s.AddAnswerComment)
	comments.Get("/questionComments/:id/edit", s.EditQuestionCommentForm)
	comments.Post("/questionComments/:id/edit", s.EditQuestionComment)
	comments.Post("/questionComments/:id/remove", s.RemoveQuestionComment)
	comments.Get("/answerComments/:id/edit", s.EditAnswerCommentForm)
	comments.Post("/answerComments/:id/edit", s.EditAnswerComment)
	comments.Post("/answerComments/:id/remove", s.RemoveAnswerComment)

	// Tags
	tags := app.Group("/tags")
	tags.Get("/", s.ListTags)
	tags.Get("/add/:questionId", auth, s.AddTagsForm)
	tags.Post("/add/:questionId", auth, s.AddTags)
	tags.Post("/:questionId/detach/:tagId", auth, s.DetachTag)

	// Users
	app.Get("/users", s.ListUsers)
	app.Get("/users/:id/activity", s.UserActivity)
	app.Get("/activity", auth, s.MyActivity)

	// Administration
	admin := app.Group("/administration", auth)
	roleAdmin := s.RequirePolicy(service.AdminRolePolicy)
	claimAdmin := s.RequirePolicy(service.AdminClaimPolicy)
	admin.Get("/roles", roleAdmin, s.ListRoles)
	admin.Get("/roles/create", roleAdmin, s.CreateRoleForm)
	admin.Post("/roles/create", roleAdmin, s.CreateRole)
	admin.Get("/roles/:id/edit", roleAdmin, s.EditRoleForm)
	admin.Post("/roles/:id/edit", roleAdmin, s.EditRole)
	admin.Post("/roles/:id/delete", roleAdmin, s.DeleteRole)
	admin.Get("/roles/:id/users", roleAdmin, s.RoleUsersForm)
	admin.Post("/roles/:id/users", roleAdmin, s.UpdateRoleUsers)
	admin.Get("/users", claimAdmin, s.AdminListUsers)
	admin.Get("/users/:id/claims", claimAdmin, s.UserClaimsForm)
	admin.Post("/users/:id/claims", claimAdmin, s.AddUserClaim)
	admin.Post("/users/:id/claims/:claimId/remove", claimAdmin, s.RemoveUserClaim)
	admin.Get("/claims", claimAdmin, s.ListClaims)
	admin.Get("/claims/:id", claimAdmin, s.ClaimDetails)

	// Account
	account := app.Group("/account")
	account.Get("/register", s.RegisterForm)
	account.Post("/register", middleware.RateLimit(s.redis, 3, 10*time.Minute, "register"), s.Register)
	account.Get("/login", s.LoginForm)
	account.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	account.Post("/logout", s.Logout)
	account.Get("/accessdenied", s.AccessDenied)

	// Errors
	app.Get("/Error/:statusCode", s.ErrorPage)
	app.Get("/Error", s.ErrorPage)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database health and, when configured, Redis health.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
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

// Start starts the server
func (s *Server) Start() error {
	app, err := s.App()
	if err != nil {
		return err
	}
	middleware.Logger.Info("server starting", "port", s.config.Port, "env", s.config.Env)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
