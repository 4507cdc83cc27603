//nolint:revive // Package name 'api' is intentionally generic for the HTTP API layer
package api

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/zhadevv/anichin/internal/logger"
)

// LogsProvider provides access to log data.
type LogsProvider interface {
	GetRecentLogs() []logger.LogEntry
	GetLogFilePath() string
}

// LogsHandlers serves the in-memory log tail and the rotated log file.
type LogsHandlers struct {
	provider LogsProvider
}

func NewLogsHandlers(provider LogsProvider) *LogsHandlers {
	return &LogsHandlers{provider: provider}
}

// RegisterRoutes registers log routes on the given group.
func (h *LogsHandlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetRecentLogs)
	g.GET("/download", h.DownloadLogFile)
}

// GetRecentLogs returns buffered entries, oldest first.
//
// Query parameters:
//   - level: minimum level, e.g. "warn" drops debug and info entries
//   - component: only entries logged by this component
//   - limit: keep the newest n entries
func (h *LogsHandlers) GetRecentLogs(c echo.Context) error {
	minLevel := zerolog.TraceLevel
	if raw := c.QueryParam("level"); raw != "" {
		lvl, err := zerolog.ParseLevel(raw)
		if err != nil || lvl == zerolog.NoLevel {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid level "+strconv.Quote(raw))
		}
		minLevel = lvl
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}

	component := c.QueryParam("component")
	logs := lo.Filter(h.provider.GetRecentLogs(), func(e logger.LogEntry, _ int) bool {
		if component != "" && e.Component != component {
			return false
		}
		lvl, err := zerolog.ParseLevel(e.Level)
		return err != nil || lvl >= minLevel
	})

	if limit > 0 && len(logs) > limit {
		logs = logs[len(logs)-limit:]
	}
	return c.JSON(http.StatusOK, logs)
}

// DownloadLogFile serves the current log file for download.
func (h *LogsHandlers) DownloadLogFile(c echo.Context) error {
	logPath := h.provider.GetLogFilePath()
	if logPath == "" {
		return echo.NewHTTPError(http.StatusNotFound, "file logging is disabled")
	}

	if _, err := os.Stat(logPath); errors.Is(err, fs.ErrNotExist) {
		return echo.NewHTTPError(http.StatusNotFound, "log file not found")
	}

	return c.Attachment(logPath, logger.LogFileName)
}
