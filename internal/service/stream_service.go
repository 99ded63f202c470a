package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/event-service/internal/broadcast"
)

// Broadcaster fans an encoded frame out to connected stream clients.
type Broadcaster interface {
	Broadcast(payload []byte) int
}

// StreamService forwards event changes to live stream clients.
type StreamService struct {
	dispatcher broadcast.Dispatcher
	hub        Broadcaster
	logger     *zap.Logger
}

// NewStreamService creates the service.
func NewStreamService(dispatcher broadcast.Dispatcher, hub Broadcaster, logger *zap.Logger) *StreamService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StreamService{
		dispatcher: dispatcher,
		hub:        hub,
		logger:     logger.Named("stream"),
	}
}

// RegisterHandlers subscribes to event changes.
func (s *StreamService) RegisterHandlers() {
	if s.dispatcher == nil || s.hub == nil {
		return
	}
	s.dispatcher.Subscribe(broadcast.MessageEventCreated, s.forward)
	s.dispatcher.Subscribe(broadcast.MessageEventUpdated, s.forward)
	s.dispatcher.Subscribe(broadcast.MessageEventDeleted, s.forward)
}

func (s *StreamService) forward(_ context.Context, msg broadcast.Message) error {
	frame, err := broadcast.Encode(msg)
	if err != nil {
		s.logger.Error("encode stream message", zap.String("type", string(msg.Type)), zap.Error(err))
		return err
	}
	delivered := s.hub.Broadcast(frame)
	s.logger.Debug("stream message broadcast",
		zap.String("type", string(msg.Type)),
		zap.String("event_id", msg.EventID),
		zap.Int("delivered", delivered))
	return nil
}
