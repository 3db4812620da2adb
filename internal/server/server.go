// Package server contains the HTTP handlers for the recipe API.
package server

import (
	"context"
	"log/slog"
	"time"

	_ "recipebox/docs" // swagger docs
	"recipebox/internal/config"
	"recipebox/internal/database"
	"recipebox/internal/middleware"
	"recipebox/internal/models"
	"recipebox/internal/service"
	"recipebox/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config    *config.Config
	db        *gorm.DB
	redis     *redis.Client
	app       *fiber.App
	validator *validation.Validator

	users   *service.UserService
	recipes *service.RecipeService
	books   *service.RecipeBookService
	tags    *service.TagService
	images  *service.ImageService
}

// NewServer creates a Server over already-initialized dependencies. redis may
// be nil; caching and rate limiting then degrade to pass-through.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, svc *service.Services) *Server {
	middleware.InitMiddleware(cfg)
	return &Server{
		config:    cfg,
		db:        db,
		redis:     redisClient,
		validator: validation.New(),
		users:     svc.Users,
		recipes:   svc.Recipes,
		books:     svc.Books,
		tags:      svc.Tags,
		images:    svc.Images,
	}
}

// App builds the fiber application with middleware and routes. It is
// created once per Server.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:      "Recipebox API",
		BodyLimit:    s.bodyLimit(),
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

func (s *Server) bodyLimit() int {
	limit := 4 * 1024 * 1024
	if s.images != nil {
		// Leave room for multipart framing around the largest image.
		if imageLimit := int(s.images.MaxUploadSizeBytes()) + 512*1024; imageLimit > limit {
			limit = imageLimit
		}
	}
	return limit
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		if fe.Code >= fiber.StatusInternalServerError {
			return models.RespondWithError(c, fe.Code, models.NewInternalError(fe))
		}
		return models.RespondWithError(c, fe.Code, &models.AppError{Code: models.CodeValidation, Message: fe.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())
	middleware.InitMetrics(app)
	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before anything that can short-circuit so error responses
	// still carry the headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Global per-IP limit; preflight is never limited.
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return models.RespondWithError(c, fiber.StatusTooManyRequests, &models.AppError{
				Code:    models.CodeRateLimited,
				Message: "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	users := api.Group("/users")
	users.Post("/", middleware.RateLimit(s.redis, 5, 10*time.Minute, "register"), s.RegisterUser)
	users.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	users.Get("/", s.ListUsers)
	// /me before /:id
	users.Get("/me", middleware.AuthRequired, s.GetMe)
	users.Put("/me", middleware.AuthRequired, s.UpdateMe)
	users.Get("/:id", s.GetUser)
	users.Put("/:id", s.UpdateUser)
	users.Delete("/:id", s.DeleteUser)

	recipes := api.Group("/recipes")
	recipes.Post("/", s.CreateRecipe)
	recipes.Get("/", s.ListRecipes)
	recipes.Get("/public", s.ListPublicRecipes)
	recipes.Get("/search", middleware.RateLimit(s.redis, 60, time.Minute, "search"), s.SearchRecipes)
	recipes.Get("/user/:userId/stats", s.GetAuthorStats)
	recipes.Get("/user/:userId", s.ListAuthorRecipes)
	recipes.Post("/:id/fork", s.ForkRecipe)
	recipes.Put("/:id/likes", s.UpdateRecipeLikes)
	recipes.Get("/:id", s.GetRecipe)
	recipes.Put("/:id", s.UpdateRecipe)
	recipes.Delete("/:id", s.DeleteRecipe)

	books := api.Group("/recipebooks")
	books.Post("/", s.CreateRecipeBook)
	books.Get("/public", s.ListPublicRecipeBooks)
	books.Get("/public/:id", s.GetPublicRecipeBook)
	books.Get("/user/:userId", s.ListUserRecipeBooks)
	books.Post("/:id/recipes/:recipeId", s.AddRecipeToBook)
	books.Delete("/:id/recipes/:recipeId", s.RemoveRecipeFromBook)
	books.Get("/:id", s.GetRecipeBook)
	books.Put("/:id", s.UpdateRecipeBook)
	books.Delete("/:id", s.DeleteRecipeBook)

	tags := api.Group("/tags")
	tags.Get("/", s.ListTags)
	tags.Get("/counts", s.ListTagCounts)
	tags.Get("/popular", s.PopularTags)
	tags.Get("/categories", s.ListTagCategories)
	tags.Get("/categories/:category", s.GetTagCategory)
	tags.Post("/seed", s.SeedTags)
	tags.Put("/:id", s.RenameTag)
	tags.Get("/:name", s.GetTag)

	images := api.Group("/images")
	images.Post("/", s.UploadImage)
	images.Get("/:key/url", s.GetImageURL)
	images.Delete("/:key", s.DeleteImage)
}

// LivenessCheck reports that the process is serving
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and cache health. Redis is optional, so
// only the database decides readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if s.db == nil {
		dbStatus = "unhealthy"
	} else if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	storageStatus := "unconfigured"
	if s.images != nil && s.images.Configured() {
		storageStatus = "configured"
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
			"storage":  storageStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown stops accepting requests and waits for in-flight ones. Closing
// the database and cache is left to the caller that opened them.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app == nil {
		return nil
	}
	return s.app.ShutdownWithContext(ctx)
}
