package domain

import "time"

const (
	// EventDateLayout is the wire and storage format of Event.Date.
	EventDateLayout = "2006-01-02"
	// EventTimeLayout is the wire and storage format of Event.Time.
	EventTimeLayout = "15:04"
)

// Event is the resource managed by admins and read by every authenticated user.
type Event struct {
	ID          string
	Title       string
	Description string
	Date        string
	Time        string
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EventPatch carries the fields of a partial update; nil fields are left untouched.
type EventPatch struct {
	Title       *string
	Description *string
	Date        *string
	Time        *string
	ImageURL    *string
}

// Empty reports whether the patch changes nothing.
func (p EventPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Date == nil && p.Time == nil && p.ImageURL == nil
}

// Apply copies the set fields of p onto e.
func (p EventPatch) Apply(e *Event) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Time != nil {
		e.Time = *p.Time
	}
	if p.ImageURL != nil {
		e.ImageURL = *p.ImageURL
	}
}
