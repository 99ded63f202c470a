package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-service/internal/api/dto"
	"github.com/spec-kit/event-service/internal/auth"
	"github.com/spec-kit/event-service/internal/service"
	apperrors "github.com/spec-kit/event-service/pkg/util"
)

// AuthHandler exposes signup, login and the current user.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Signup POST /auth/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	req.Normalize()
	if err := dto.Validate(&req); err != nil {
		return err
	}

	user, err := h.service.Signup(c.UserContext(), service.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"user": dto.NewUserResponse(user)}})
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	req.Normalize()
	if err := dto.Validate(&req); err != nil {
		return err
	}

	res, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuthResponse{
		Token:     res.Token,
		TokenType: "bearer",
		ExpiresAt: res.ExpiresAt,
		User:      dto.NewUserResponse(res.User),
	}})
}

// Me GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(auth.UnauthorizedMessage, nil)
	}
	user, err := h.service.CurrentUser(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"user": dto.NewUserResponse(user)}})
}
