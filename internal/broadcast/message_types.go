package broadcast

import (
	"time"

	"github.com/spec-kit/event-service/internal/domain"
)

// MessageType enumerates change notifications pushed to stream clients.
type MessageType string

const (
	MessageEventCreated MessageType = "event_created"
	MessageEventUpdated MessageType = "event_updated"
	MessageEventDeleted MessageType = "event_deleted"
)

// Message represents a change emitted by the event service.
type Message struct {
	Type      MessageType `json:"type"`
	EventID   string      `json:"event_id"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload"`
}

// EventData is the wire shape of an event inside stream messages.
type EventData struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Date        string     `json:"date"`
	Time        string     `json:"time"`
	ImageURL    string     `json:"image_url"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// EventCreatedPayload payload.
type EventCreatedPayload struct {
	Event EventData `json:"event"`
}

// EventUpdatedPayload payload.
type EventUpdatedPayload struct {
	OldData EventData `json:"old_data"`
	NewData EventData `json:"new_data"`
}

// EventDeletedPayload payload.
type EventDeletedPayload struct {
	EventData EventData `json:"event_data"`
	DeletedBy string    `json:"deleted_by"`
}

// NewEventData converts a domain event for the wire.
func NewEventData(e domain.Event) EventData {
	data := EventData{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Time:        e.Time,
		ImageURL:    e.ImageURL,
	}
	if !e.CreatedAt.IsZero() {
		created := e.CreatedAt
		data.CreatedAt = &created
	}
	if !e.UpdatedAt.IsZero() {
		updated := e.UpdatedAt
		data.UpdatedAt = &updated
	}
	return data
}
