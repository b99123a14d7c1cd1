package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Chou1102/QuickChatWeb/internal/models"
	"github.com/Chou1102/QuickChatWeb/internal/service"
)

type ChatHandler struct {
	svc *service.ChatService
}

func NewChatHandler(svc *service.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// Access handles POST /chat: find or create the 1:1 chat with a user.
func (h *ChatHandler) Access(c *fiber.Ctx) error {
	var body struct {
		UserID string `json:"userId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	chat, err := h.svc.AccessChat(c.Context(), callerID(c), body.UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(chat)
}

func (h *ChatHandler) List(c *fiber.Ctx) error {
	chats, err := h.svc.ListChats(c.Context(), callerID(c))
	if err != nil {
		return fail(c, err)
	}
	if chats == nil {
		chats = []*models.ChatView{}
	}
	return c.JSON(chats)
}

func (h *ChatHandler) CreateGroup(c *fiber.Ctx) error {
	var body struct {
		Name  string   `json:"name"`
		Users []string `json:"users"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	chat, err := h.svc.CreateGroup(c.Context(), callerID(c), body.Name, body.Users)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(chat)
}

func (h *ChatHandler) RenameGroup(c *fiber.Ctx) error {
	var body struct {
		ChatID string `json:"chatId"`
		Name   string `json:"name"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	chat, err := h.svc.RenameGroup(c.Context(), callerID(c), body.ChatID, body.Name)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(chat)
}

func (h *ChatHandler) AddUser(c *fiber.Ctx) error {
	var body struct {
		ChatID string `json:"chatId"`
		UserID string `json:"userId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	chat, err := h.svc.AddToGroup(c.Context(), callerID(c), body.ChatID, body.UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(chat)
}

func (h *ChatHandler) RemoveUser(c *fiber.Ctx) error {
	var body struct {
		ChatID string `json:"chatId"`
		UserID string `json:"userId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	chat, err := h.svc.RemoveFromGroup(c.Context(), callerID(c), body.ChatID, body.UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(chat)
}

func (h *ChatHandler) Delete(c *fiber.Ctx) error {
	if err := h.svc.DeleteChat(c.Context(), callerID(c), c.Params("chatId")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}
