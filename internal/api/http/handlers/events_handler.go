package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-service/internal/api/dto"
	"github.com/spec-kit/event-service/internal/auth"
	"github.com/spec-kit/event-service/internal/service"
	apperrors "github.com/spec-kit/event-service/pkg/util"
)

// EventsHandler serves event CRUD. The same handler type backs /events and
// /admin/events; they differ only in the default page size.
type EventsHandler struct {
	service      *service.EventService
	defaultLimit int
}

// NewEventsHandler constructs handler. A non-positive defaultLimit falls back
// to service.DefaultEventLimit.
func NewEventsHandler(eventService *service.EventService, defaultLimit int) *EventsHandler {
	if defaultLimit <= 0 {
		defaultLimit = service.DefaultEventLimit
	}
	return &EventsHandler{service: eventService, defaultLimit: defaultLimit}
}

// List GET /events.
func (h *EventsHandler) List(c *fiber.Ctx) error {
	opts := service.ListOptions{
		Skip:  c.QueryInt("skip", 0),
		Limit: c.QueryInt("limit", h.defaultLimit),
	}
	events, err := h.service.List(c.UserContext(), opts)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEventResponses(events)})
}

// Get GET /events/:id.
func (h *EventsHandler) Get(c *fiber.Ctx) error {
	event, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEventResponse(event)})
}

// Create POST /events.
func (h *EventsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(auth.UnauthorizedMessage, nil)
	}
	var req dto.CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	req.Normalize()
	if err := dto.Validate(&req); err != nil {
		return err
	}

	event, err := h.service.Create(c.UserContext(), principal, service.EventInput{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Time:        req.Time,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewEventResponse(event)})
}

// Update PUT /events/:id.
func (h *EventsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(auth.UnauthorizedMessage, nil)
	}
	var req dto.UpdateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}

	event, err := h.service.Update(c.UserContext(), principal, c.Params("id"), req.Patch())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEventResponse(event)})
}

// Delete DELETE /events/:id.
func (h *EventsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(auth.UnauthorizedMessage, nil)
	}
	if err := h.service.Delete(c.UserContext(), principal, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
