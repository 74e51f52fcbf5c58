package scheduler

import "errors"

var (
	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrSchedulerNotRunning is returned by Stop on a scheduler that was never started
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrOrderSyncFailed wraps a pass that panicked
	ErrOrderSyncFailed = errors.New("order sync failed")

	// ErrOrderSyncAlreadyInProgress is returned when a tick fires while a pass is running
	ErrOrderSyncAlreadyInProgress = errors.New("order sync already in progress")
)
