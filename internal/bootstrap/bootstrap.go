package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/yigit/unicluster/internal/app/controllers"
	appJobs "github.com/yigit/unicluster/internal/app/jobs"
	appMigrations "github.com/yigit/unicluster/internal/app/migrations"
	appRepos "github.com/yigit/unicluster/internal/app/repositories"
	appRoutes "github.com/yigit/unicluster/internal/app/routes"
	appServices "github.com/yigit/unicluster/internal/app/services"
	"github.com/yigit/unicluster/internal/config"
	"github.com/yigit/unicluster/internal/db"
	appMiddleware "github.com/yigit/unicluster/internal/middleware"
	pkgAuth "github.com/yigit/unicluster/internal/pkg/auth"
	"github.com/yigit/unicluster/internal/pkg/helpers"
	"github.com/yigit/unicluster/internal/pkg/logger"
	"github.com/yigit/unicluster/internal/pkg/metrics"
	"github.com/yigit/unicluster/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	PlacementService      *appServices.PlacementService
	ApplicationService    *appServices.ApplicationService
	PlacementController   *appControllers.PlacementController
	ApplicationController *appControllers.ApplicationController
	AuthMiddleware        *appMiddleware.AuthMiddleware
	Repos                 *appRepos.Repositories
	JWTService            *pkgAuth.JWTService
	Registry              *prometheus.Registry
	AutoPlacementJob      *appJobs.AutoPlacementJob // nil when no schedule is configured
	Database              *db.PostgresDB
	Logger                zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	format := strings.ToLower(cfg.Logging.Format)
	prettyLog := format == "text" || format == "console"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds the reference clusters.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		database.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, lgr)
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	if cfg.Database.SeedReference {
		clusters := appRepos.NewClusterRepository(database.Pool)
		if err := seed.CreateDefaultData(ctx, database, clusters, lgr); err != nil {
			lgr.Error().Err(err).Msg("Failed to seed reference clusters, proceeding anyway...")
		}
	}

	return database, nil
}

// BuildDependencies initializes repositories, services, controllers and the scheduled job.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Database: database, Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database.Pool)
	stores := appServices.NewStores(deps.Repos)

	ranking, err := appServices.ParseRankingOrder(cfg.Placement.Ranking)
	if err != nil {
		return nil, fmt.Errorf("invalid placement.ranking: %w", err)
	}

	deps.Registry = prometheus.NewRegistry()
	deps.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	placementMetrics := metrics.New(deps.Registry)

	deps.PlacementService = appServices.NewPlacementService(database, stores, appServices.PlacementOptions{
		Ranking:    ranking,
		Rescore:    cfg.Placement.Rescore,
		RunTimeout: helpers.ParseDuration(cfg.Placement.RunTimeout, 10*time.Minute),
	}, placementMetrics, lgr)
	deps.ApplicationService = appServices.NewApplicationService(database, stores, lgr)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.PlacementController = appControllers.NewPlacementController(deps.PlacementService)
	deps.ApplicationController = appControllers.NewApplicationController(deps.ApplicationService)

	deps.AutoPlacementJob, err = appJobs.NewAutoPlacementJob(
		deps.PlacementService,
		cfg.Placement.Schedule,
		helpers.ParseDuration(cfg.Placement.RunTimeout, 10*time.Minute),
		lgr,
	)
	if err != nil {
		return nil, err
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(appMiddleware.RequestID(), appMiddleware.RequestLogger(), appMiddleware.Recovery())

	appRoutes.SetupRouter(router,
		deps.PlacementController,
		deps.ApplicationController,
		deps.AuthMiddleware,
	)

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := deps.Database.Pool.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	return router
}
