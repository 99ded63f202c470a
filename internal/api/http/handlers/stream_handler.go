package handlers

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/event-service/internal/api/dto"
	"github.com/spec-kit/event-service/internal/auth"
	"github.com/spec-kit/event-service/internal/service"
	"github.com/spec-kit/event-service/internal/stream"
)

const (
	// StreamIdleTimeout is how long a connection may stay silent before the
	// server sends an application level ping.
	StreamIdleTimeout = 5 * time.Minute
	// MaxStreamEvents caps get_events page size.
	MaxStreamEvents = 50

	streamUserKey      = "stream_user"
	streamQueryTimeout = 5 * time.Second
)

type streamRequest struct {
	Type  string `json:"type"`
	Skip  int    `json:"skip"`
	Limit *int   `json:"limit"`
}

type streamUser struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	IsAdmin bool   `json:"is_admin"`
}

// StreamHandler upgrades authenticated clients to a websocket that receives
// event changes as they happen.
type StreamHandler struct {
	auth   *service.AuthService
	events *service.EventService
	hub    *stream.Hub
	logger *zap.Logger
	idle   time.Duration
}

// NewStreamHandler constructs handler.
func NewStreamHandler(authService *service.AuthService, eventService *service.EventService, hub *stream.Hub, logger *zap.Logger) *StreamHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StreamHandler{
		auth:   authService,
		events: eventService,
		hub:    hub,
		logger: logger.Named("stream"),
		idle:   StreamIdleTimeout,
	}
}

// Prepare runs after the token guard and before the upgrade. It rejects plain
// HTTP requests and loads the account behind the token.
func (h *StreamHandler) Prepare(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	user, err := h.auth.CurrentUser(c.UserContext(), principal)
	if err != nil {
		return err
	}
	c.Locals(streamUserKey, streamUser{
		ID:      user.ID,
		Email:   user.Email,
		Role:    string(user.Role),
		IsAdmin: user.IsAdmin(),
	})
	return c.Next()
}

// Serve GET /events/ws.
func (h *StreamHandler) Serve() fiber.Handler {
	return websocket.New(h.serve)
}

func (h *StreamHandler) serve(conn *websocket.Conn) {
	user, _ := conn.Locals(streamUserKey).(streamUser)
	client := h.hub.Register(user.ID)
	defer h.hub.Unregister(client)

	activity := make(chan struct{}, 1)
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.writeLoop(conn, client, activity, done)
	}()

	h.reply(client, fiber.Map{
		"type":      "connection",
		"status":    "connected",
		"user":      user,
		"timestamp": time.Now().UTC(),
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("stream read ended", zap.String("client_id", client.ID), zap.Error(err))
			}
			break
		}
		select {
		case activity <- struct{}{}:
		default:
		}

		var req streamRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			continue
		}
		switch req.Type {
		case "ping":
			h.reply(client, fiber.Map{"type": "pong"})
		case "get_events":
			h.sendEvents(client, req)
		}
	}

	close(done)
	wg.Wait()
	h.logger.Info("stream client disconnected", zap.String("client_id", client.ID), zap.String("user_id", user.ID))
}

// writeLoop owns every write to conn.
func (h *StreamHandler) writeLoop(conn *websocket.Conn, client *stream.Client, activity <-chan struct{}, done <-chan struct{}) {
	idle := time.NewTimer(h.idle)
	defer idle.Stop()

	ping, _ := json.Marshal(fiber.Map{"type": "ping"})
	for {
		select {
		case payload, ok := <-client.Outbound():
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "too slow"))
				_ = conn.Close()
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				_ = conn.Close()
				return
			}
		case <-activity:
			resetTimer(idle, h.idle)
		case <-idle.C:
			if err := conn.WriteMessage(websocket.TextMessage, ping); err != nil {
				_ = conn.Close()
				return
			}
			idle.Reset(h.idle)
		case <-done:
			return
		}
	}
}

func (h *StreamHandler) sendEvents(client *stream.Client, req streamRequest) {
	limit := service.DefaultEventLimit
	if req.Limit != nil {
		limit = *req.Limit
	}
	if limit > MaxStreamEvents {
		limit = MaxStreamEvents
	}

	ctx, cancel := context.WithTimeout(context.Background(), streamQueryTimeout)
	defer cancel()
	events, err := h.events.List(ctx, service.ListOptions{Skip: req.Skip, Limit: limit})
	if err != nil {
		h.logger.Error("list events for stream", zap.String("client_id", client.ID), zap.Error(err))
		h.reply(client, fiber.Map{"type": "error", "message": "could not load events"})
		return
	}
	h.reply(client, fiber.Map{"type": "initial_events", "events": dto.NewEventResponses(events)})
}

func (h *StreamHandler) reply(client *stream.Client, msg fiber.Map) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("encode stream reply", zap.Error(err))
		return
	}
	h.hub.SendTo(client, payload)
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
