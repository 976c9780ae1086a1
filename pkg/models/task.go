package models

import "time"

// TaskStatus represents the kanban state of a task.
type TaskStatus string

const (
	// TaskStatusBacklog indicates the task is queued and unstarted.
	TaskStatusBacklog TaskStatus = "Backlog"
	// TaskStatusInProgress indicates the task is being worked on.
	TaskStatusInProgress TaskStatus = "In Progress"
	// TaskStatusReview indicates the work finished and awaits review.
	TaskStatusReview TaskStatus = "Review"
	// TaskStatusDone indicates the task completed successfully.
	TaskStatusDone TaskStatus = "Done"
	// TaskStatusBlocked indicates the task failed or cannot proceed.
	TaskStatusBlocked TaskStatus = "Blocked"
)

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusBacklog, TaskStatusInProgress, TaskStatusReview, TaskStatusDone, TaskStatusBlocked:
		return true
	default:
		return false
	}
}

// Terminal returns true if no further transitions are allowed from this status.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusDone || s == TaskStatusBlocked
}

// Pending returns true if the task still needs dispatcher attention.
func (s TaskStatus) Pending() bool {
	switch s {
	case TaskStatusBacklog, TaskStatusInProgress, TaskStatusReview:
		return true
	default:
		return false
	}
}

// Task represents a unit of work assigned to one or more workers.
type Task struct {
	// ID is the unique identifier for this task.
	ID string `json:"id"`
	// Title is the short description of the task.
	Title string `json:"title"`
	// Description provides detailed context for the task.
	Description string `json:"description,omitempty"`
	// Status is the current kanban state.
	Status TaskStatus `json:"status"`
	// Priority orders tasks within a worker's backlog, higher first.
	Priority int `json:"priority"`
	// CreatedBy is the id of the worker or system that created the task.
	CreatedBy string `json:"created_by,omitempty"`
	// Assignees lists the worker ids assigned to this task.
	Assignees []string `json:"assignees,omitempty"`
	// CreatedAt is when the task was created.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the task last changed.
	UpdatedAt time.Time `json:"updated_at"`
}

// Goal renders the task as a run goal: the title, plus the description
// as trailing context when present.
func (t Task) Goal() string {
	if t.Description == "" {
		return t.Title
	}
	return t.Title + "\n\nTask context: " + t.Description
}
