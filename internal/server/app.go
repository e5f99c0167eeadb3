package server

import (
	"codequest/configs"
	"codequest/internal/cache"
	"codequest/internal/handlers"
	"codequest/internal/middlewares"
	"codequest/internal/repositories"
	"codequest/internal/services"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// App holds the wired services behind the HTTP surface.
type App struct {
	Config      *configs.Config
	DB          *sqlx.DB
	Tokens      *services.TokenService
	Catalog     *services.CatalogService
	Progress    *services.ProgressTracker
	Submissions *services.SubmissionService
	Seeder      *services.Seeder
}

func NewApp(cfg *configs.Config, db *sqlx.DB, c cache.Cache, evaluator services.Evaluator, publisher services.EventPublisher) *App {
	problemRepo := repositories.NewProblemRepository(db, c, cfg.CacheTTL)
	submissionRepo := repositories.NewSubmissionRepository(db)
	progressRepo := repositories.NewProgressRepository()
	hackathonRepo := repositories.NewHackathonRepository(db, c, cfg.CacheTTL)

	progress := services.NewProgressTracker(db, progressRepo)

	return &App{
		Config:      cfg,
		DB:          db,
		Tokens:      services.NewTokenService(cfg.JWTSecret),
		Catalog:     services.NewCatalogService(problemRepo, submissionRepo, hackathonRepo),
		Progress:    progress,
		Submissions: services.NewSubmissionService(db, problemRepo, submissionRepo, progress, evaluator, publisher),
		Seeder:      services.NewSeeder(db, problemRepo, hackathonRepo),
	}
}

func (a *App) Router() *gin.Engine {
	router := gin.New()
	router.Use(
		middlewares.RequestIDMiddleware(),
		middlewares.RequestLoggerMiddleware(),
		middlewares.ErrorHandlerMiddleware(),
		middlewares.CORSMiddleware(a.Config.CORSAllowedOrigins),
	)

	router.GET("/health", a.health)

	auth := middlewares.AuthMiddleware(a.Tokens)
	optionalAuth := middlewares.OptionalAuthMiddleware(a.Tokens)

	api := router.Group("/api")
	handlers.NewProblemHandler(a.Catalog).RegisterRoutes(api, optionalAuth)
	handlers.NewSubmissionHandler(a.Submissions).RegisterRoutes(api, auth)
	handlers.NewUserHandler(a.Progress).RegisterRoutes(api, auth)
	handlers.NewHackathonHandler(a.Catalog).RegisterRoutes(api)

	return router
}

func (a *App) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := a.DB.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
