package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	appControllers "github.com/yigit/unitime/internal/app/controllers"
	appMigrations "github.com/yigit/unitime/internal/app/migrations"
	appRepos "github.com/yigit/unitime/internal/app/repositories"
	appRoutes "github.com/yigit/unitime/internal/app/routes"
	appServices "github.com/yigit/unitime/internal/app/services"
	"github.com/yigit/unitime/internal/config"
	maintenance "github.com/yigit/unitime/internal/cron"
	"github.com/yigit/unitime/internal/db"
	pkgAuth "github.com/yigit/unitime/internal/pkg/auth"
	"github.com/yigit/unitime/internal/pkg/helpers"
	"github.com/yigit/unitime/internal/pkg/logger"
	"github.com/yigit/unitime/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos       *appRepos.Repositories
	Services    *appServices.Services
	Controllers *appControllers.Controllers
	JWTService  *pkgAuth.JWTService
	Maintenance *maintenance.Maintenance
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger
func LoadConfigAndSetupLogger() (*config.Config, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, err
	}

	logger.Configure(logger.Config{
		Level:  logger.LogLevel(strings.ToLower(cfg.Logging.Level)),
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	logger.Info().
		Str("logLevel", cfg.Logging.Level).
		Str("logFormat", cfg.Logging.Format).
		Msg("Logger configured")

	return cfg, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds the default data.
func SetupDatabase(cfg *config.Config) (*db.PostgresDB, error) {
	logger.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	migrationsDir := filepath.Join("internal", "app", "migrations")
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	migrator := appMigrations.NewMigrator(database.Pool)
	if err := migrator.MigrateFromDir(migrationsDir); err != nil {
		logger.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	logger.Info().Msg("Database migrations applied")

	if err := seed.CreateDefaultData(context.Background(), database); err != nil {
		// Seeding failure is not fatal, the schema is already in place
		logger.Error().Err(err).Msg("Failed to create default data, proceeding anyway")
	}

	return database, nil
}

// BuildDependencies initializes repositories, services and controllers
func BuildDependencies(cfg *config.Config, database *db.PostgresDB) *Dependencies {
	repos := appRepos.NewRepositories(database.Pool)

	jwtService := pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	svcs := appServices.NewServices(database, repos, jwtService, cfg)

	return &Dependencies{
		Repos:       repos,
		Services:    svcs,
		Controllers: appControllers.NewControllers(svcs),
		JWTService:  jwtService,
		Maintenance: maintenance.NewMaintenance(database, repos),
	}
}

// SetupRouter configures the Gin engine with middleware and routes
func SetupRouter(cfg *config.Config, database *db.PostgresDB, deps *Dependencies) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	appRoutes.SetupRoutes(router, deps.Controllers, deps.JWTService, database)

	return router
}
