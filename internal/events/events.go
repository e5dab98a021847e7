package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the services.
const (
	// TypeMemoryRecorded fires after a memory is appended; the sync
	// coordinator listens to invalidate its cached pair state.
	TypeMemoryRecorded = "memory_recorded"

	// TypeInvitationCreated fires after an email invitation is stored; the
	// delivery task listens to send the email and mark the invitation
	// delivered.
	TypeInvitationCreated = "invitation_created"
)

// Event is a fact published by a service after a state change committed.
// The payload is serialized JSON so emitters and handlers share no types
// beyond this package.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// MemoryRecordedPayload accompanies TypeMemoryRecorded.
type MemoryRecordedPayload struct {
	MemoryID       uuid.UUID `json:"memory_id"`
	RelationshipID uuid.UUID `json:"relationship_id"`
}

// InvitationCreatedPayload accompanies TypeInvitationCreated.
type InvitationCreatedPayload struct {
	InvitationID uuid.UUID `json:"invitation_id"`
}

// NewEvent creates an Event of the given type with the payload serialized
// as JSON.
func NewEvent(eventType string, payload any) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// Handler processes events it has been registered for.
type Handler interface {
	HandleEvent(ctx context.Context, event *Event) error
}

// Emitter publishes events to registered handlers. Services depend on this
// interface so they stay unaware of who listens.
type Emitter interface {
	EmitEvent(ctx context.Context, event *Event) error
}
