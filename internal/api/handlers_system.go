package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zhadevv/anichin/internal/config"
)

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getStatus(c echo.Context) error {
	response := map[string]interface{}{
		"version":   config.Version,
		"startTime": s.startTime.Format(time.RFC3339),
		"uptime":    time.Since(s.startTime).Round(time.Second).String(),
		"baseUrl":   s.scraper.BaseURL(),
	}
	if limit, ok := s.scraper.LimiterStatus(); ok {
		response["rateLimit"] = limit
	}
	if s.hub != nil {
		response["wsClients"] = s.hub.ClientCount()
	}
	if s.health != nil {
		response["healthy"] = !s.health.GetSummary().HasIssues
	}
	if s.scheduler != nil {
		response["scheduledTasks"] = len(s.scheduler.ListTasks())
	}
	return c.JSON(http.StatusOK, response)
}
