package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/spec-kit/event-service/internal/broadcast"
	"github.com/spec-kit/event-service/internal/domain"
	"github.com/spec-kit/event-service/internal/repository"
)

type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserRepoMock) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type EventRepoMock struct {
	mock.Mock
}

func (m *EventRepoMock) Create(ctx context.Context, event *domain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *EventRepoMock) Update(ctx context.Context, event *domain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *EventRepoMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *EventRepoMock) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *EventRepoMock) List(ctx context.Context, filter repository.EventFilter) ([]domain.Event, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Event), args.Error(1)
}

type DispatcherMock struct {
	mock.Mock
}

func (m *DispatcherMock) Publish(ctx context.Context, msg broadcast.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *DispatcherMock) Subscribe(msgType broadcast.MessageType, handler broadcast.Handler) {
	m.Called(msgType, handler)
}
