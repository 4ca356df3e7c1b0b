package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yigit/unitime/internal/bootstrap"
	"github.com/yigit/unitime/internal/config"
	maintenance "github.com/yigit/unitime/internal/cron"
	"github.com/yigit/unitime/internal/db"
	"github.com/yigit/unitime/internal/pkg/logger"
)

// Server holds the state for the HTTP server
type Server struct {
	config      *config.Config
	router      *gin.Engine
	database    *db.PostgresDB
	maintenance *maintenance.Maintenance
	http        *http.Server
}

// NewServer creates and initializes a new server instance
func NewServer() (*Server, error) {
	cfg, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	database, err := bootstrap.SetupDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	deps := bootstrap.BuildDependencies(cfg, database)
	router := bootstrap.SetupRouter(cfg, database, deps)

	return &Server{
		config:      cfg,
		router:      router,
		database:    database,
		maintenance: deps.Maintenance,
	}, nil
}

// Run starts the HTTP server and the maintenance job, then blocks until a
// shutdown signal or a fatal server error.
func (s *Server) Run() error {
	if err := s.maintenance.Start(s.config.Scheduler.MaintenanceCron); err != nil {
		return fmt.Errorf("failed to start maintenance job: %w", err)
	}

	s.http = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		serverErrors <- s.http.ListenAndServe()
	}()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error starting server: %w", err)
		}
	case sig := <-osSignals:
		logger.Info().Str("signal", sig.String()).Msg("Received OS signal, initiating shutdown")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully stops the server and closes resources
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	shutdownError := false

	if s.http != nil {
		logger.Info().Msg("Shutting down HTTP server...")
		if err := s.http.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("HTTP server shutdown error")
			shutdownError = true
		}
	}

	logger.Info().Msg("Stopping maintenance job...")
	s.maintenance.Stop()

	if s.database != nil {
		logger.Info().Msg("Closing database connection pool...")
		s.database.Close()
	}

	logger.Info().Msg("Server shutdown complete")
	if shutdownError {
		return errors.New("server shutdown completed with errors")
	}
	return nil
}
