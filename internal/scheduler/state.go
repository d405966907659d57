package scheduler

// TaskState is the lifecycle state of a scheduled task
type TaskState string

const (
	// TaskStateWaiting means the task is queued and has no concurrency slot yet
	TaskStateWaiting TaskState = "Waiting"

	// TaskStateRunning means the task holds a concurrency slot and its work is executing
	TaskStateRunning TaskState = "Running"

	// TaskStateSuccess means the work reported success
	TaskStateSuccess TaskState = "Success"

	// TaskStateFailed means the work returned an error, reported failure or panicked
	TaskStateFailed TaskState = "Failed"

	// TaskStateCancelled means the task was cancelled before or while running
	TaskStateCancelled TaskState = "Cancelled"
)

func (ts TaskState) String() string {
	return string(ts)
}

// IsFinished returns true for the terminal states
func (ts TaskState) IsFinished() bool {
	return ts == TaskStateSuccess || ts == TaskStateFailed || ts == TaskStateCancelled
}
