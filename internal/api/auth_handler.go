package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Chou1102/QuickChatWeb/internal/service"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Avatar   string `json:"avatar"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	user, token, err := h.svc.Register(c.Context(), body.Username, body.Email, body.Password, body.Avatar)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user, "token": token})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	user, token, err := h.svc.Login(c.Context(), body.Email, body.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"user": user, "token": token})
}

// Search handles GET /user?search=: look up users to start a chat with.
func (h *AuthHandler) Search(c *fiber.Ctx) error {
	users, err := h.svc.SearchUsers(c.Context(), callerID(c), c.Query("search"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(users)
}
