package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/zhadevv/anichin/internal/api/handlers"
	apimw "github.com/zhadevv/anichin/internal/api/middleware"
	"github.com/zhadevv/anichin/internal/health"
	"github.com/zhadevv/anichin/internal/scraper"
	"github.com/zhadevv/anichin/internal/scraper/anichin"
)

func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Request ID
	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	// Security headers
	s.echo.Use(apimw.SecurityHeaders())

	// The API only takes query parameters
	s.echo.Use(middleware.BodyLimit("64K"))

	// Read-only public API
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	// Request logging
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogMethod:    true,
		LogError:     true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Str("request_id", v.RequestID).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Info().
					Str("method", v.Method).
					Str("uri", v.URI).
					Str("request_id", v.RequestID).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))

	// Block proxy probes (absolute URI requests like GET http://www.google.com/)
	s.echo.Use(apimw.ProxyRequestBlock())

	// Gzip compression
	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			// Skip compression for WebSocket
			return c.Request().Header.Get("Upgrade") == "websocket"
		},
	}))
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)

	api := s.echo.Group("/api/v1")
	api.GET("/status", s.getStatus)

	anichin.NewHandlers(s.scraper).RegisterRoutes(api)

	s.setupSystemRoutes(api)
	s.setupSchedulerRoutes(api)

	if s.hub != nil {
		s.echo.GET("/ws", s.hub.HandleWebSocket)
	}
}

func (s *Server) setupSystemRoutes(api *echo.Group) {
	if s.health != nil {
		healthHandlers := health.NewHandlers(s.health, &health.TestFunctions{
			TestUpstream: func(ctx context.Context, _ string) (bool, string) {
				if _, err := s.scraper.Ping(ctx); err != nil {
					return false, scraper.Describe(err)
				}
				return true, ""
			},
		})
		healthHandlers.RegisterRoutes(api.Group("/health"))
	}

	if s.logs != nil {
		NewLogsHandlers(s.logs).RegisterRoutes(api.Group("/logs"))
	}
}

func (s *Server) setupSchedulerRoutes(api *echo.Group) {
	if s.scheduler == nil {
		return
	}
	handlers.NewSchedulerHandler(s.scheduler).RegisterRoutes(api.Group("/scheduler"))
}
