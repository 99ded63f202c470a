package http

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/event-service/internal/domain"
	"github.com/spec-kit/event-service/internal/repository"
)

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: map[string]domain.User{}}
}

func (r *memoryUsers) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrConflict
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = *user
	return nil
}

func (r *memoryUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *memoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

type memoryEvents struct {
	mu     sync.Mutex
	events map[string]domain.Event
	clock  time.Time
}

func newMemoryEvents() *memoryEvents {
	return &memoryEvents{
		events: map[string]domain.Event{},
		clock:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *memoryEvents) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

func (r *memoryEvents) Create(_ context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.ID = uuid.NewString()
	event.CreatedAt = r.tick()
	event.UpdatedAt = event.CreatedAt
	r.events[event.ID] = *event
	return nil
}

func (r *memoryEvents) Update(_ context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[event.ID]; !ok {
		return repository.ErrNotFound
	}
	event.UpdatedAt = r.tick()
	r.events[event.ID] = *event
	return nil
}

func (r *memoryEvents) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.events, id)
	return nil
}

func (r *memoryEvents) GetByID(_ context.Context, id string) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r *memoryEvents) List(_ context.Context, filter repository.EventFilter) ([]domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]domain.Event, 0, len(r.events))
	for _, e := range r.events {
		all = append(all, e)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if filter.Offset >= len(all) {
		return []domain.Event{}, nil
	}
	all = all[filter.Offset:]
	if len(all) > filter.Limit {
		all = all[:filter.Limit]
	}
	return all, nil
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }

var errDown = errors.New("connection refused")
