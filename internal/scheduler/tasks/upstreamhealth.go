package tasks

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/zhadevv/anichin/internal/health"
	"github.com/zhadevv/anichin/internal/scheduler"
	"github.com/zhadevv/anichin/internal/scraper"
	"github.com/zhadevv/anichin/internal/scraper/fetch"
)

// UpstreamHealthID is the health item and task id of the upstream probe.
const UpstreamHealthID = "upstream-health"

// Pinger probes the scraped site.
type Pinger interface {
	Ping(ctx context.Context) (*fetch.Page, error)
	BaseURL() string
}

// UpstreamHealthTask handles scheduled reachability checks of the scraped site.
type UpstreamHealthTask struct {
	pinger Pinger
	health *health.Service
	logger zerolog.Logger
}

// NewUpstreamHealthTask creates a new upstream health check task.
func NewUpstreamHealthTask(pinger Pinger, healthService *health.Service, logger zerolog.Logger) *UpstreamHealthTask {
	healthService.RegisterItem(health.CategoryUpstream, UpstreamHealthID, pinger.BaseURL())
	return &UpstreamHealthTask{
		pinger: pinger,
		health: healthService,
		logger: logger.With().Str("task", UpstreamHealthID).Logger(),
	}
}

// Check probes the site once and reports whether it answered.
func (t *UpstreamHealthTask) Check(ctx context.Context) (bool, string) {
	if _, err := t.pinger.Ping(ctx); err != nil {
		return false, scraper.Describe(err)
	}
	return true, ""
}

// Run executes the upstream health check.
func (t *UpstreamHealthTask) Run(ctx context.Context) error {
	start := time.Now()
	ok, message := t.Check(ctx)
	if !ok {
		t.health.SetError(health.CategoryUpstream, UpstreamHealthID, message)
		t.logger.Warn().Str("error", message).Msg("Upstream health check failed")
		return nil
	}

	t.health.ClearStatus(health.CategoryUpstream, UpstreamHealthID)
	t.logger.Debug().Dur("elapsed", time.Since(start)).Msg("Upstream health check passed")
	return nil
}

// RegisterUpstreamHealthTask registers the upstream health check with the scheduler.
func RegisterUpstreamHealthTask(
	sched *scheduler.Scheduler,
	task *UpstreamHealthTask,
	cron string,
) error {
	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          UpstreamHealthID,
		Name:        "Upstream Health Check",
		Description: "Fetches the landing page of the scraped site",
		Cron:        cron,
		RunOnStart:  true,
		Timeout:     time.Minute,
		Func:        task.Run,
	})
}
