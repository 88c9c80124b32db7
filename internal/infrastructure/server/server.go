package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/AgentOS/romd/internal/api/http"
	"github.com/GriffinCanCode/AgentOS/romd/internal/api/middleware"
	"github.com/GriffinCanCode/AgentOS/romd/internal/domain/dataspace"
	"github.com/GriffinCanCode/AgentOS/romd/internal/domain/rom"
	"github.com/GriffinCanCode/AgentOS/romd/internal/infrastructure/capability"
	"github.com/GriffinCanCode/AgentOS/romd/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/romd/internal/infrastructure/hostfs"
	"github.com/GriffinCanCode/AgentOS/romd/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/romd/internal/infrastructure/monitoring"
)

// Server wraps the HTTP server and the ROM backend
type Server struct {
	router       *gin.Engine
	httpServer   *http.Server
	service      *rom.Service
	capabilities *capability.Table
	logger       *logging.Logger
	metrics      *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	logger := logging.FromSettings(cfg.Logging.Level, cfg.Logging.Development)

	logger.Info("Initializing ROM server",
		zap.String("addr", cfg.Addr()),
		zap.String("rom_root", cfg.ROM.Root),
	)

	metrics := monitoring.NewMetrics()

	// ROM backend
	fs := hostfs.New(cfg.ROM.Root)
	capabilities := capability.NewTable(nil)
	builder := dataspace.NewBuilder(fs, capabilities, logger.Logger).WithRecorder(metrics)
	service := rom.NewService(builder, capabilities, logger.Logger).WithGauge(metrics.SessionsActive)

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger.Logger))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}

	apihttp.NewHandlers(service, metrics).RegisterRoutes(router)

	logger.Info("Server initialized successfully")

	return &Server{
		router: router,
		httpServer: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		service:      service,
		capabilities: capabilities,
		logger:       logger,
		metrics:      metrics,
	}, nil
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the HTTP server and blocks until it stops. It returns nil once
// Close has been called, including when Close ran first.
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Close stops accepting requests and releases every open dataspace
func (s *Server) Close(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shut down http server: %w", err))
	}

	if err := s.service.CloseAll(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close sessions: %w", err))
	}
	if err := s.capabilities.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close capability table: %w", err))
	}

	for _, err := range errs {
		s.logger.Error("Shutdown error", zap.Error(err))
	}

	// Sync logger before exit
	_ = s.logger.Sync()

	return errors.Join(errs...)
}
