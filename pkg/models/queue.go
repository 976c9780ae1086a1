package models

// QueueItem is one goal submission read from the durable queue.
// Delivery is at-least-once: a crash before Ack causes redelivery.
type QueueItem struct {
	// ID is the queue message id used for acknowledgment.
	ID string `json:"id"`
	// Goal is the free-text goal to run through the workflow graph.
	Goal string `json:"goal"`
	// Priority is the submission priority hint.
	Priority int `json:"priority"`
	// AssignedTo optionally hints which workers should handle the goal.
	AssignedTo []string `json:"assigned_to,omitempty"`
}
