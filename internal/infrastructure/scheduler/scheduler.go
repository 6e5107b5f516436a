package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RunStatus represents the outcome of a task's latest run
type RunStatus string

const (
	RunStatusIdle    RunStatus = "IDLE"
	RunStatusRunning RunStatus = "RUNNING"
	RunStatusSuccess RunStatus = "SUCCESS"
	RunStatusFailed  RunStatus = "FAILED"
)

// Task is a piece of housekeeping work repeated on a fixed interval.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

func (t Task) validate() error {
	if t.Name == "" || t.Interval <= 0 || t.Run == nil {
		return fmt.Errorf("%w: %q", ErrInvalidTask, t.Name)
	}
	return nil
}

// TaskState is a snapshot of a task's run history
type TaskState struct {
	Name          string
	Status        RunStatus
	Runs          int
	Failures      int
	LastError     string
	LastStartedAt *time.Time
	LastEndedAt   *time.Time
}

// Config holds scheduler configuration
type Config struct {
	JobTimeout    time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() Config {
	return Config{
		JobTimeout:    5 * time.Minute,
		RetryAttempts: 3,
		RetryDelay:    30 * time.Second,
	}
}

// Scheduler runs registered tasks, each on its own ticker. A run that fails
// is retried up to RetryAttempts times before waiting for the next tick.
type Scheduler struct {
	config Config
	logger *zap.Logger

	tasks     []Task
	states    map[string]*TaskState
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewScheduler creates a new scheduler instance
func NewScheduler(config Config, logger *zap.Logger) *Scheduler {
	if config.JobTimeout <= 0 {
		config.JobTimeout = DefaultConfig().JobTimeout
	}
	if config.RetryAttempts < 0 {
		config.RetryAttempts = 0
	}
	return &Scheduler{
		config: config,
		logger: logger,
		states: make(map[string]*TaskState),
	}
}

// Register adds a task. Tasks must be registered before Start.
func (s *Scheduler) Register(task Task) error {
	if err := task.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return ErrSchedulerRunning
	}
	if _, ok := s.states[task.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateTask, task.Name)
	}
	s.tasks = append(s.tasks, task)
	s.states[task.Name] = &TaskState{Name: task.Name, Status: RunStatusIdle}
	return nil
}

// Start launches one loop per task. Every task runs once immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	tasks := append([]Task(nil), s.tasks...)
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for _, task := range tasks {
		s.wg.Add(1)
		go s.loop(ctx, task)
	}

	s.logger.Info("Scheduler started",
		zap.Int("tasks", len(tasks)),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop cancels every loop and waits for in-flight runs to return.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns a copy of the named task's run history.
func (s *Scheduler) State(name string) (TaskState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[name]
	if !ok {
		return TaskState{}, false
	}
	return *st, true
}

func (s *Scheduler) loop(ctx context.Context, task Task) {
	defer s.wg.Done()

	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()

	s.execute(ctx, task)
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Task loop stopping", zap.String("task", task.Name))
			return
		case <-ticker.C:
			s.execute(ctx, task)
		}
	}
}

// execute runs the task with a per-attempt timeout, retrying on failure.
func (s *Scheduler) execute(ctx context.Context, task Task) {
	s.markStarted(task.Name)

	var err error
	for attempt := 0; attempt <= s.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			s.logger.Info("Retrying task",
				zap.String("task", task.Name),
				zap.Int("attempt", attempt),
				zap.Int("max_retries", s.config.RetryAttempts),
			)
			select {
			case <-ctx.Done():
				s.markEnded(task.Name, ctx.Err())
				return
			case <-time.After(s.config.RetryDelay):
			}
		}

		runCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
		err = task.Run(runCtx)
		cancel()
		if err == nil || ctx.Err() != nil {
			break
		}
		s.logger.Warn("Task failed",
			zap.String("task", task.Name),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}

	s.markEnded(task.Name, err)
	if err != nil {
		s.logger.Error("Task gave up", zap.String("task", task.Name), zap.Error(err))
		return
	}
	s.logger.Debug("Task completed", zap.String("task", task.Name))
}

func (s *Scheduler) markStarted(name string) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.states[name]
	st.Status = RunStatusRunning
	st.LastStartedAt = &now
}

func (s *Scheduler) markEnded(name string, err error) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.states[name]
	st.Runs++
	st.LastEndedAt = &now
	if err != nil {
		st.Status = RunStatusFailed
		st.Failures++
		st.LastError = err.Error()
		return
	}
	st.Status = RunStatusSuccess
	st.LastError = ""
}
