package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"comment-history-api/internal/config"
	"comment-history-api/internal/database"
)

var (
	configFile string
	sqlitePath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "commentctl",
	Short:         "Operate the comment history store",
	Long:          "Migrate, seed and inspect the comment history database, export a user's history and mint development tokens.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "configs/config.yaml", "Path to the service config file")
	rootCmd.PersistentFlags().StringVar(&sqlitePath, "sqlite", "", "Use a sqlite database file instead of the configured postgres")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// env is what every command needs: config, logger and an open database
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
}

func loadConfig() (*config.Config, error) {
	return config.Load(configFile)
}

func openEnv() (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = zap.NewAtomicLevelAt(level)
	logCfg.OutputPaths = []string{"stderr"}
	logger, err := logCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	dbCfg := database.Config{
		Driver:          database.DriverPostgres,
		DSN:             cfg.Database.GetDSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
	if sqlitePath != "" {
		dbCfg = database.Config{Driver: database.DriverSQLite, DSN: sqlitePath, MaxOpenConns: 1}
	}

	db, err := database.New(dbCfg)
	if err != nil {
		return nil, err
	}
	logger.Debug("Database connected", zap.String("driver", dbCfg.Driver))

	return &env{cfg: cfg, logger: logger, db: db}, nil
}

func (e *env) Close() {
	_ = database.Close(e.db)
	_ = e.logger.Sync()
}

func (e *env) location() *time.Location {
	loc, err := e.cfg.Display.Location()
	if err != nil {
		return time.UTC
	}
	return loc
}

func newContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Minute)
}
