package api

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/zhadevv/anichin/internal/config"
	"github.com/zhadevv/anichin/internal/health"
	"github.com/zhadevv/anichin/internal/scheduler"
	"github.com/zhadevv/anichin/internal/scraper/anichin"
	"github.com/zhadevv/anichin/internal/websocket"
)

// Services are the components the API exposes. Scraper is required; the
// rest are optional and their routes are skipped when nil.
type Services struct {
	Scraper   *anichin.Client
	Hub       *websocket.Hub
	Health    *health.Service
	Scheduler *scheduler.Scheduler
	Logs      LogsProvider
}

// Server handles HTTP requests for the scraper API.
type Server struct {
	echo      *echo.Echo
	cfg       *config.Config
	logger    zerolog.Logger
	startTime time.Time

	scraper   *anichin.Client
	hub       *websocket.Hub
	health    *health.Service
	scheduler *scheduler.Scheduler
	logs      LogsProvider
}

// NewServer creates a new API server instance.
func NewServer(cfg *config.Config, svc Services, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:      e,
		cfg:       cfg,
		logger:    logger.With().Str("component", "api").Logger(),
		startTime: time.Now().UTC(),
		scraper:   svc.Scraper,
		hub:       svc.Hub,
		health:    svc.Health,
		scheduler: svc.Scheduler,
		logs:      svc.Logs,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Start begins listening for HTTP requests.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
