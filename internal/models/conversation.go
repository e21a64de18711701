package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation groups the turns recorded between two history resets.
type Conversation struct {
	ID        uuid.UUID  `json:"id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// Turn is a single persisted chat message inside a conversation.
type Turn struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// TurnJob is the queue payload asking the worker pool to persist one turn.
type TurnJob struct {
	ConversationID uuid.UUID `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	RecordedAt     time.Time `json:"recorded_at"`
}
