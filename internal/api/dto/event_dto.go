package dto

import (
	"strings"
	"time"

	"github.com/spec-kit/event-service/internal/domain"
)

// CreateEventRequest payload. imageUrl is accepted as an alias of image_url.
type CreateEventRequest struct {
	Title         string `json:"title" validate:"required,max=200"`
	Description   string `json:"description" validate:"required"`
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	Time          string `json:"time" validate:"required,datetime=15:04"`
	ImageURL      string `json:"image_url" validate:"required,max=2048"`
	ImageURLCamel string `json:"imageUrl,omitempty" validate:"-"`
}

// Normalize trims fields and folds the camelCase alias.
func (r *CreateEventRequest) Normalize() {
	if r.ImageURL == "" {
		r.ImageURL = r.ImageURLCamel
	}
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Date = strings.TrimSpace(r.Date)
	r.Time = strings.TrimSpace(r.Time)
	r.ImageURL = strings.TrimSpace(r.ImageURL)
}

// UpdateEventRequest payload; omitted fields are left unchanged.
type UpdateEventRequest struct {
	Title         *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description   *string `json:"description" validate:"omitempty,min=1"`
	Date          *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Time          *string `json:"time" validate:"omitempty,datetime=15:04"`
	ImageURL      *string `json:"image_url" validate:"omitempty,min=1,max=2048"`
	ImageURLCamel *string `json:"imageUrl,omitempty" validate:"-"`
}

// Patch converts the request into a domain patch.
func (r *UpdateEventRequest) Patch() domain.EventPatch {
	image := r.ImageURL
	if image == nil {
		image = r.ImageURLCamel
	}
	return domain.EventPatch{
		Title:       trimmed(r.Title),
		Description: trimmed(r.Description),
		Date:        trimmed(r.Date),
		Time:        trimmed(r.Time),
		ImageURL:    trimmed(image),
	}
}

// EventResponse is the wire shape of an event.
type EventResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewEventResponse renders an event.
func NewEventResponse(e *domain.Event) EventResponse {
	return EventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Time:        e.Time,
		ImageURL:    e.ImageURL,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// NewEventResponses renders a list of events.
func NewEventResponses(events []domain.Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for i := range events {
		out = append(out, NewEventResponse(&events[i]))
	}
	return out
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
