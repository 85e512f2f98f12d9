package router

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"comment-history-api/internal/cache"
	"comment-history-api/internal/config"
	"comment-history-api/internal/database"
	"comment-history-api/internal/handler"
	"comment-history-api/internal/metrics"
	"comment-history-api/internal/middleware"
	"comment-history-api/internal/repository"
	"comment-history-api/internal/service"
)

// Config holds router dependencies
type Config struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	JWTSecret      string
	BasePath       string
	AllowedOrigins []string
	Location       *time.Location
	Pagination     config.PaginationConfig
	TreeCacheTTL   time.Duration
	GzipExports    bool
	// Gatherer backs /metrics; defaults to the global registry
	Gatherer prometheus.Gatherer
	// Clock stamps comments, history entries and download records; defaults to the system clock
	Clock service.Clock
}

// Setup builds the gin engine with every route and its dependencies
func Setup(cfg Config) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(cfg.Metrics))

	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	clock := cfg.Clock
	if clock == nil {
		clock = service.SystemClock
	}

	// Repositories
	commentRepo := repository.NewCommentRepository(cfg.DB)
	historyRepo := repository.NewHistoryRepository(cfg.DB)
	downloadRepo := repository.NewDownloadRepository(cfg.DB)
	targetRepo := repository.NewTargetRepository(cfg.DB)

	treeCache := cache.NewTreeCache(cfg.Redis, cfg.TreeCacheTTL, cfg.Logger, cfg.Metrics)

	// Services
	commentService := service.NewCommentService(cfg.DB, commentRepo, historyRepo, targetRepo, treeCache, cfg.Pagination, clock, cfg.Metrics, cfg.Logger)
	treeService := service.NewTreeService(commentRepo, targetRepo, treeCache, loc, cfg.Logger)
	downloadService := service.NewDownloadService(downloadRepo, targetRepo, clock, loc, cfg.Logger)
	historyService := service.NewHistoryService(historyRepo, targetRepo, downloadService, clock, loc, cfg.Metrics, cfg.Logger)

	// Handlers
	commentHandler := handler.NewCommentHandler(commentService, cfg.Logger)
	treeHandler := handler.NewTreeHandler(treeService, cfg.Logger)
	historyHandler := handler.NewHistoryHandler(historyService, downloadService, cfg.GzipExports, cfg.Logger)
	healthHandler := handler.NewHealthHandler(readinessChecks(cfg), cfg.Logger)

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	metricsHandler := gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// operational endpoints at the root for probes and scrapers
	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/metrics", metricsHandler)

	base := r.Group(cfg.BasePath)
	{
		// and again under the base path for ingress setups that only forward it
		if cfg.BasePath != "" && cfg.BasePath != "/" {
			base.GET("/health", healthHandler.Health)
			base.GET("/ready", healthHandler.Ready)
			base.GET("/metrics", metricsHandler)
		}

		base.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

		// public reads
		base.GET("/first-level/:page", commentHandler.ListFirstLevel)
		base.GET("/tree", treeHandler.GetTree)

		authed := base.Group("")
		authed.Use(middleware.Auth(cfg.JWTSecret))
		{
			comments := authed.Group("/comments")
			{
				comments.POST("", commentHandler.CreateComment)
				comments.PUT("/:commentId", commentHandler.UpdateComment)
				comments.DELETE("/:commentId", commentHandler.DeleteComment)
			}

			authed.POST("/history/export", historyHandler.ExportHistory)
			authed.GET("/downloads/:userId", historyHandler.ListDownloads)
		}
	}

	return r
}

func readinessChecks(cfg Config) map[string]handler.Check {
	checks := map[string]handler.Check{
		"database": func(ctx context.Context) error {
			return database.Ping(ctx, cfg.DB)
		},
	}
	if cfg.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return cfg.Redis.Ping(ctx).Err()
		}
	}
	return checks
}
