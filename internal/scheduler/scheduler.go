package scheduler

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

var (
	// ErrTaskNotFound is returned for an unknown task ID.
	ErrTaskNotFound = errors.New("task not found")
	// ErrTaskRunning is returned by RunNow while the task is in progress.
	ErrTaskRunning = errors.New("task is already running")
)

// TaskFunc is the function signature for scheduled tasks.
type TaskFunc func(ctx context.Context) error

// TaskConfig contains configuration for a scheduled task.
type TaskConfig struct {
	ID          string
	Name        string
	Description string
	Cron        string // Cron expression: "*/15 * * * *" for every quarter hour
	Func        TaskFunc
	RunOnStart  bool // Execute immediately on startup
	// Timeout bounds a single run. Zero means no limit.
	Timeout time.Duration
}

// TaskInfo contains information about a scheduled task for API responses.
type TaskInfo struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Cron           string     `json:"cron"`
	LastRun        *time.Time `json:"lastRun,omitempty"`
	LastDurationMS int64      `json:"lastDurationMs"`
	LastError      string     `json:"lastError,omitempty"`
	NextRun        *time.Time `json:"nextRun,omitempty"`
	Running        bool       `json:"running"`
	Runs           int        `json:"runs"`
	Failures       int        `json:"failures"`
}

// taskEntry holds internal task state. Guarded by Scheduler.mu.
type taskEntry struct {
	config   TaskConfig
	job      gocron.Job
	lastRun  *time.Time
	lastDur  time.Duration
	lastErr  error
	running  bool
	runs     int
	failures int
}

// Scheduler runs background tasks on cron schedules. A task never overlaps
// with itself, whether it was started by its schedule or by RunNow.
type Scheduler struct {
	gocron gocron.Scheduler
	logger zerolog.Logger
	tasks  map[string]*taskEntry
	mu     sync.RWMutex

	// ctx is canceled by Stop so running tasks can wind down.
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new scheduler.
func New(logger zerolog.Logger) (*Scheduler, error) {
	gs, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		gocron: gs,
		logger: logger.With().Str("component", "scheduler").Logger(),
		tasks:  make(map[string]*taskEntry),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// RegisterTask registers a new scheduled task.
func (s *Scheduler) RegisterTask(config TaskConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[config.ID]; exists {
		return fmt.Errorf("task with ID %q already registered", config.ID)
	}
	if config.Func == nil {
		return fmt.Errorf("task %q has no function", config.ID)
	}

	job, err := s.gocron.NewJob(
		gocron.CronJob(config.Cron, false),
		gocron.NewTask(func() {
			if entry, ok := s.claim(config.ID); ok {
				s.run(entry)
			}
		}),
		gocron.WithName(config.Name),
		gocron.WithTags(config.ID),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create job for task %q: %w", config.ID, err)
	}

	s.tasks[config.ID] = &taskEntry{
		config: config,
		job:    job,
	}

	s.logger.Info().
		Str("id", config.ID).
		Str("name", config.Name).
		Str("cron", config.Cron).
		Bool("runOnStart", config.RunOnStart).
		Msg("Registered task")

	return nil
}

// claim marks a task as running. It reports false when the task is unknown
// or already running.
func (s *Scheduler) claim(taskID string) (*taskEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.tasks[taskID]
	if !exists || entry.running {
		return nil, false
	}
	entry.running = true
	return entry, true
}

// run executes a claimed task and records the outcome.
func (s *Scheduler) run(entry *taskEntry) {
	log := s.logger.With().
		Str("id", entry.config.ID).
		Str("name", entry.config.Name).
		Logger()

	startTime := time.Now()
	log.Info().Msg("Starting task")

	ctx := s.ctx
	if entry.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, entry.config.Timeout)
		defer cancel()
	}
	err := entry.config.Func(ctx)
	duration := time.Since(startTime)

	s.mu.Lock()
	entry.running = false
	entry.lastRun = &startTime
	entry.lastDur = duration
	entry.lastErr = err
	entry.runs++
	if err != nil {
		entry.failures++
	}
	s.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Dur("duration", duration).Msg("Task failed")
		return
	}
	log.Info().Dur("duration", duration).Msg("Task completed")
}

// Start starts the scheduler and runs any tasks configured with RunOnStart.
func (s *Scheduler) Start() error {
	s.logger.Info().Msg("Starting scheduler")

	s.gocron.Start()

	s.mu.RLock()
	onStart := lo.Filter(lo.Keys(s.tasks), func(id string, _ int) bool {
		return s.tasks[id].config.RunOnStart
	})
	s.mu.RUnlock()

	for _, taskID := range onStart {
		if entry, ok := s.claim(taskID); ok {
			go s.run(entry)
		}
	}

	return nil
}

// Stop cancels running tasks and stops the scheduler.
func (s *Scheduler) Stop() error {
	s.logger.Info().Msg("Stopping scheduler")
	s.cancel()
	return s.gocron.Shutdown()
}

// RunNow starts a task in the background immediately.
func (s *Scheduler) RunNow(taskID string) error {
	s.mu.RLock()
	_, exists := s.tasks[taskID]
	s.mu.RUnlock()
	if !exists {
		return fmt.Errorf("%w: %q", ErrTaskNotFound, taskID)
	}

	entry, ok := s.claim(taskID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrTaskRunning, taskID)
	}
	go s.run(entry)
	return nil
}

// ListTasks returns information about all registered tasks ordered by ID.
func (s *Scheduler) ListTasks() []TaskInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := lo.MapToSlice(s.tasks, func(_ string, entry *taskEntry) TaskInfo {
		return entry.info()
	})
	slices.SortFunc(tasks, func(a, b TaskInfo) int { return strings.Compare(a.ID, b.ID) })
	return tasks
}

// GetTask returns information about a specific task.
func (s *Scheduler) GetTask(taskID string) (*TaskInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.tasks[taskID]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrTaskNotFound, taskID)
	}

	info := entry.info()
	return &info, nil
}

func (e *taskEntry) info() TaskInfo {
	info := TaskInfo{
		ID:             e.config.ID,
		Name:           e.config.Name,
		Description:    e.config.Description,
		Cron:           e.config.Cron,
		LastRun:        e.lastRun,
		LastDurationMS: e.lastDur.Milliseconds(),
		Running:        e.running,
		Runs:           e.runs,
		Failures:       e.failures,
	}
	if e.lastErr != nil {
		info.LastError = e.lastErr.Error()
	}

	if nextRun, err := e.job.NextRun(); err == nil {
		info.NextRun = &nextRun
	}
	return info
}
