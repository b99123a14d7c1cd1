package api

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/Chou1102/QuickChatWeb/internal/models"
	"github.com/Chou1102/QuickChatWeb/internal/service"
)

type MessageHandler struct {
	svc *service.MessageService
}

func NewMessageHandler(svc *service.MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

// Send handles POST /message: a text message.
func (h *MessageHandler) Send(c *fiber.Ctx) error {
	var body struct {
		ChatID  string `json:"chatId"`
		Message string `json:"message"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	msg, err := h.svc.SendText(c.Context(), callerID(c), body.ChatID, body.Message)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(msg)
}

// SendImage handles POST /message/image (multipart field "image").
func (h *MessageHandler) SendImage(c *fiber.Ctx) error {
	return h.sendMedia(c, models.TypeImage, "image")
}

// SendSticker handles POST /message/sticker (multipart field "sticker").
func (h *MessageHandler) SendSticker(c *fiber.Ctx) error {
	return h.sendMedia(c, models.TypeSticker, "sticker")
}

func (h *MessageHandler) sendMedia(c *fiber.Ctx, msgType, field string) error {
	chatID := c.FormValue("chatId")
	caption := c.FormValue("message")

	fh, err := c.FormFile(field)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return fail(c, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return fail(c, err)
	}

	msg, err := h.svc.SendMedia(c.Context(), callerID(c), chatID, msgType, caption,
		fh.Filename, fh.Header.Get("Content-Type"), data)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(msg)
}

// History handles GET /message/:chatId.
func (h *MessageHandler) History(c *fiber.Ctx) error {
	msgs, err := h.svc.ListMessages(c.Context(), c.Params("chatId"))
	if err != nil {
		return fail(c, err)
	}
	if msgs == nil {
		msgs = []*models.MessageView{}
	}
	return c.JSON(msgs)
}
