package types

// TaskState is the lifecycle state of a compute engine task
type TaskState string

const (
	TaskStatePending TaskState = "PENDING"
	TaskStateSuccess TaskState = "SUCCESS"
	TaskStateFailed  TaskState = "FAILED"
	TaskStateOther   TaskState = "OTHER"
)

// ParseTaskState maps the status string reported by the server onto a TaskState.
// IN_PROGRESS, CANCELED and anything unknown collapse to TaskStateOther.
func ParseTaskState(status string) TaskState {
	switch TaskState(status) {
	case TaskStatePending, TaskStateSuccess, TaskStateFailed:
		return TaskState(status)
	default:
		return TaskStateOther
	}
}

// Terminal reports whether polling should stop at this state
func (s TaskState) Terminal() bool {
	return s == TaskStateSuccess || s == TaskStateFailed
}

// TaskStatus is a single observation of a compute engine task
type TaskStatus struct {
	State TaskState
	// Raw is the status exactly as reported, kept for logging
	Raw string
	// StartedAt and ExecutedAt are only set on success
	StartedAt  string
	ExecutedAt string
}
