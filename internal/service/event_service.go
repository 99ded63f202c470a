package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/event-service/internal/broadcast"
	"github.com/spec-kit/event-service/internal/domain"
	"github.com/spec-kit/event-service/internal/repository"
)

const (
	DefaultEventLimit = 10
	MaxEventLimit     = 100
)

// ErrEventNotFound is returned for unknown or malformed event ids.
var ErrEventNotFound = errors.New("event not found")

// EventInput describes a new event. All fields are required.
type EventInput struct {
	Title       string
	Description string
	Date        string
	Time        string
	ImageURL    string
}

// ListOptions pages through events, newest first.
type ListOptions struct {
	Skip  int
	Limit int
}

// EventService coordinates event CRUD and change notifications.
type EventService struct {
	events     repository.EventRepository
	dispatcher broadcast.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// EventDependencies bundles collaborators for the event service.
type EventDependencies struct {
	EventRepo  repository.EventRepository
	Dispatcher broadcast.Dispatcher
	Logger     *zap.Logger
}

// NewEventService constructs the service.
func NewEventService(deps EventDependencies) *EventService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{
		events:     deps.EventRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger.Named("events"),
		now:        time.Now,
	}
}

// List returns a page of events. Limit is clamped to [1, MaxEventLimit].
func (s *EventService) List(ctx context.Context, opts ListOptions) ([]domain.Event, error) {
	filter := repository.EventFilter{Limit: opts.Limit, Offset: opts.Skip}
	if filter.Limit <= 0 {
		filter.Limit = 1
	}
	if filter.Limit > MaxEventLimit {
		filter.Limit = MaxEventLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.events.List(ctx, filter)
}

// Get fetches a single event.
func (s *EventService) Get(ctx context.Context, id string) (*domain.Event, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrEventNotFound
	}
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

// Create stores a new event and announces it.
func (s *EventService) Create(ctx context.Context, actor domain.Principal, input EventInput) (*domain.Event, error) {
	event := &domain.Event{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Date:        strings.TrimSpace(input.Date),
		Time:        strings.TrimSpace(input.Time),
		ImageURL:    strings.TrimSpace(input.ImageURL),
	}
	if err := validateEvent(event); err != nil {
		return nil, err
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.logger.Info("event created", zap.String("event_id", event.ID), zap.String("actor_id", actor.UserID))
	s.publish(ctx, broadcast.Message{
		Type:    broadcast.MessageEventCreated,
		EventID: event.ID,
		ActorID: actor.UserID,
		Payload: broadcast.EventCreatedPayload{Event: broadcast.NewEventData(*event)},
	})
	return event, nil
}

// Update applies a partial update.
func (s *EventService) Update(ctx context.Context, actor domain.Principal, id string, patch domain.EventPatch) (*domain.Event, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *event

	patch.Apply(event)
	if err := validateEvent(event); err != nil {
		return nil, err
	}
	if !patch.Empty() {
		if err := s.events.Update(ctx, event); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrEventNotFound
			}
			return nil, fmt.Errorf("update event: %w", err)
		}
	}

	s.logger.Info("event updated", zap.String("event_id", event.ID), zap.String("actor_id", actor.UserID))
	s.publish(ctx, broadcast.Message{
		Type:    broadcast.MessageEventUpdated,
		EventID: event.ID,
		ActorID: actor.UserID,
		Payload: broadcast.EventUpdatedPayload{
			OldData: broadcast.NewEventData(before),
			NewData: broadcast.NewEventData(*event),
		},
	})
	return event, nil
}

// Delete removes an event.
func (s *EventService) Delete(ctx context.Context, actor domain.Principal, id string) error {
	event, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.events.Delete(ctx, event.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}

	s.logger.Info("event deleted", zap.String("event_id", event.ID), zap.String("actor_id", actor.UserID))
	s.publish(ctx, broadcast.Message{
		Type:    broadcast.MessageEventDeleted,
		EventID: event.ID,
		ActorID: actor.UserID,
		Payload: broadcast.EventDeletedPayload{
			EventData: broadcast.NewEventData(*event),
			DeletedBy: actor.UserID,
		},
	})
	return nil
}

func (s *EventService) publish(ctx context.Context, msg broadcast.Message) {
	if s.dispatcher == nil {
		return
	}
	msg.Timestamp = s.now().UTC()
	if err := s.dispatcher.Publish(ctx, msg); err != nil {
		s.logger.Warn("publish event change", zap.String("type", string(msg.Type)), zap.Error(err))
	}
}

func validateEvent(e *domain.Event) error {
	fields := map[string]string{}
	if e.Title == "" {
		fields["title"] = "required"
	}
	if e.Description == "" {
		fields["description"] = "required"
	}
	if _, err := time.Parse(domain.EventDateLayout, e.Date); err != nil {
		fields["date"] = "must be YYYY-MM-DD"
	}
	if _, err := time.Parse(domain.EventTimeLayout, e.Time); err != nil {
		fields["time"] = "must be HH:MM"
	}
	if e.ImageURL == "" {
		fields["image_url"] = "required"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
