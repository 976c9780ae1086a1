package models

import "time"

// MessageKind classifies a message between workers, the system, and the user.
type MessageKind string

const (
	KindDelegation     MessageKind = "delegation"
	KindEscalation     MessageKind = "escalation"
	KindKnowledge      MessageKind = "knowledge"
	KindRecovery       MessageKind = "recovery"
	KindStatusReport   MessageKind = "status_report"
	KindContentReady   MessageKind = "content_ready"
	KindDesignReady    MessageKind = "design_ready"
	KindDesignComplete MessageKind = "design_complete"
	KindKBUpdate       MessageKind = "kb_update"
	KindTaskComplete   MessageKind = "task_complete"
	KindError          MessageKind = "error"
	KindChat           MessageKind = "chat"
	KindMeeting        MessageKind = "meeting"
)

// Valid returns true if the kind is a known value.
func (k MessageKind) Valid() bool {
	switch k {
	case KindDelegation, KindEscalation, KindKnowledge, KindRecovery,
		KindStatusReport, KindContentReady, KindDesignReady, KindDesignComplete,
		KindKBUpdate, KindTaskComplete, KindError, KindChat, KindMeeting:
		return true
	default:
		return false
	}
}

// Message is a directed, append-only message. Immutable once written.
type Message struct {
	// ID is the unique identifier for this message.
	ID string `json:"id"`
	// From is the sender id ("system" and "user" are reserved).
	From string `json:"from"`
	// To is the recipient id.
	To string `json:"to"`
	// Content is the message body.
	Content string `json:"content"`
	// Kind classifies the message.
	Kind MessageKind `json:"kind"`
	// CreatedAt is when the message was written.
	CreatedAt time.Time `json:"created_at"`
}
