package models

import "time"

// WorkerStatus represents the current availability of a worker.
type WorkerStatus string

const (
	// StatusIdle indicates the worker is available for dispatch.
	StatusIdle WorkerStatus = "Idle"
	// StatusWorking indicates the worker has an in-flight task.
	StatusWorking WorkerStatus = "Working"
	// StatusMeeting indicates the worker is in a meeting and unavailable.
	StatusMeeting WorkerStatus = "Meeting"
	// StatusError indicates the worker's last run failed and it awaits recovery.
	StatusError WorkerStatus = "Error"
	// StatusClockedOut indicates the worker is off shift.
	StatusClockedOut WorkerStatus = "Clocked Out"
)

// Valid returns true if the status is a known value.
func (s WorkerStatus) Valid() bool {
	switch s {
	case StatusIdle, StatusWorking, StatusMeeting, StatusError, StatusClockedOut:
		return true
	default:
		return false
	}
}

// Busy returns true if the worker cannot accept a new task in this status.
func (s WorkerStatus) Busy() bool {
	return s != StatusIdle
}

// Room is a worker's current location in the office.
type Room string

const (
	RoomPrivateOffice Room = "Private Office"
	RoomWarRoom       Room = "War Room"
	RoomDesks         Room = "Desks"
	RoomLounge        Room = "Lounge"
	RoomServerRoom    Room = "Server Room"
)

// Valid returns true if the room is a known value.
func (r Room) Valid() bool {
	switch r {
	case RoomPrivateOffice, RoomWarRoom, RoomDesks, RoomLounge, RoomServerRoom:
		return true
	default:
		return false
	}
}

// Worker represents a named specialist and its live state.
type Worker struct {
	// ID is the stable specialist identifier, e.g. "researcher".
	ID string `json:"id"`
	// Name is the display name.
	Name string `json:"name"`
	// Role is the human-readable job description.
	Role string `json:"role"`
	// Room is the worker's current location.
	Room Room `json:"room"`
	// Status is the worker's current availability.
	Status WorkerStatus `json:"status"`
	// CurrentTask is the title of the task in flight, empty when idle.
	CurrentTask string `json:"current_task,omitempty"`
	// Note is a free-text activity note describing what the worker is doing.
	Note string `json:"note,omitempty"`
	// UpdatedAt is when any field last changed.
	UpdatedAt time.Time `json:"updated_at"`
}

// WorkerUpdate is a partial update to a worker's mutable fields.
// Nil fields are left unchanged.
type WorkerUpdate struct {
	Room        *Room
	Status      *WorkerStatus
	CurrentTask *string
	Note        *string
}

// RoomPtr returns a pointer to r, for building WorkerUpdate values.
func RoomPtr(r Room) *Room { return &r }

// StatusPtr returns a pointer to s, for building WorkerUpdate values.
func StatusPtr(s WorkerStatus) *WorkerStatus { return &s }

// StringPtr returns a pointer to s, for building WorkerUpdate values.
func StringPtr(s string) *string { return &s }
