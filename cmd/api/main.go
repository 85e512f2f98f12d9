// @title           Comment History API
// @version         1.0
// @description     계층형 댓글 및 작성자별 변경 이력 내보내기 API
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8000
// @BasePath  /api/comments

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "comment-history-api/docs" // Swagger docs import

	"comment-history-api/internal/cache"
	"comment-history-api/internal/config"
	"comment-history-api/internal/database"
	"comment-history-api/internal/job"
	"comment-history-api/internal/metrics"
	"comment-history-api/internal/repository"
	"comment-history-api/internal/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logger.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Set Gin mode
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Starting Comment History Service",
		zap.String("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("base_path", cfg.Server.BasePath),
		zap.String("display_timezone", cfg.Display.Timezone),
	)

	// Validated by config.Load
	loc, _ := cfg.Display.Location()

	db, err := database.New(database.Config{
		Driver:          database.DriverPostgres,
		DSN:             cfg.Database.GetDSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)
	logger.Info("Database connected successfully")

	if cfg.Database.AutoMigrate {
		if err := database.SafeAutoMigrateWithRetry(db, logger, 3); err != nil {
			logger.Fatal("Failed to run database migrations", zap.Error(err))
		}
	}

	// Initialize metrics
	m := metrics.NewWithLogger(logger)
	if err := database.RegisterMetricsCallbacks(db, m); err != nil {
		logger.Warn("Failed to register database metrics callbacks", zap.Error(err))
	}

	ctx, stopCollectors := context.WithCancel(context.Background())
	defer stopCollectors()
	database.StartDBStatsCollector(ctx, db, m, 15*time.Second)
	logger.Info("Metrics initialized")

	// Tree cache is optional
	redisClient, err := cache.NewRedisClient(cfg.Redis, logger)
	if err != nil {
		logger.Warn("Failed to connect to redis, tree cache disabled", zap.Error(err))
	} else if redisClient == nil {
		logger.Info("Redis not configured, tree cache disabled")
	}

	scheduler := job.NewScheduler(logger)
	statsJob := job.NewStatsJob(
		repository.NewCommentRepository(db),
		repository.NewHistoryRepository(db),
		repository.NewDownloadRepository(db),
		m,
		logger,
	)
	if err := scheduler.Add("stats", cfg.Metrics.CollectSchedule, statsJob); err != nil {
		logger.Fatal("Failed to schedule stats job", zap.Error(err))
	}
	statsJob.Run()
	scheduler.Start()

	// Setup router with all dependencies
	r := router.Setup(router.Config{
		DB:             db,
		Redis:          redisClient,
		Logger:         logger,
		Metrics:        m,
		JWTSecret:      cfg.JWT.Secret,
		BasePath:       cfg.Server.BasePath,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Location:       loc,
		Pagination:     cfg.Pagination,
		TreeCacheTTL:   cfg.Redis.TreeTTL,
		GzipExports:    cfg.Export.Gzip,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Comment History Service started successfully",
			zap.String("address", srv.Addr),
			zap.String("swagger", fmt.Sprintf("http://localhost:%s%s/swagger/index.html", cfg.Server.Port, cfg.Server.BasePath)),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := scheduler.Stop(shutdownCtx); err != nil {
		logger.Warn("Scheduled jobs did not finish before shutdown", zap.Error(err))
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}

	logger.Info("Server exited gracefully")
}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "configs/config.yaml"
}

// initLogger initializes the zap logger with the specified level
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      zapLevel == zapcore.DebugLevel,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return zapConfig.Build()
}
