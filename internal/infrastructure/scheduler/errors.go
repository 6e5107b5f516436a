package scheduler

import "errors"

var (
	// ErrSchedulerRunning is returned when registering a task after Start
	ErrSchedulerRunning = errors.New("scheduler is already running")

	// ErrInvalidTask is returned for tasks without a name, interval or body
	ErrInvalidTask = errors.New("invalid scheduler task")

	// ErrDuplicateTask is returned when a task name is registered twice
	ErrDuplicateTask = errors.New("scheduler task already registered")
)
