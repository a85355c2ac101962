package scheduler

import "context"

// Job is a unit of work run by the WorkerPool.
type Job interface {
	// Execute runs the job. It must return once ctx is done.
	Execute(ctx context.Context) error

	// UserID returns the user the job works on, for logging.
	UserID() string

	// Description returns a human-readable description of the job.
	Description() string
}
