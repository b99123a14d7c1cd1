package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/Chou1102/QuickChatWeb/internal/auth"
	"github.com/Chou1102/QuickChatWeb/internal/metrics"
	"github.com/Chou1102/QuickChatWeb/internal/presence"
	"github.com/Chou1102/QuickChatWeb/internal/relay"
	"github.com/Chou1102/QuickChatWeb/internal/service"
)

type Deps struct {
	Auth     *service.AuthService
	Chats    *service.ChatService
	Messages *service.MessageService
	Tokens   *auth.Manager
	Relay    *relay.Server
	Presence *presence.Store
	Log      *zap.SugaredLogger

	// UploadDir enables static serving of disk-stored media when set.
	UploadDir string
}

// NewServer wires the Fiber app: REST routes, the websocket relay
// endpoint, metrics and health.
func NewServer(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: 8 << 20, // media uploads, validated per-kind downstream
	})
	app.Use(recovery(d.Log))
	app.Use(requestLogger(d.Log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	if d.UploadDir != "" {
		app.Static("/uploads", d.UploadDir)
	}

	// The relay: one long-lived connection per client session.
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(d.Relay.HandleWS()))

	authH := NewAuthHandler(d.Auth)
	chatH := NewChatHandler(d.Chats)
	msgH := NewMessageHandler(d.Messages)

	v1 := app.Group("/api/v1")
	v1.Post("/auth/register", authH.Register)
	v1.Post("/auth/login", authH.Login)

	guarded := v1.Group("", bearerAuth(d.Tokens))

	guarded.Get("/user", authH.Search)

	guarded.Post("/message", msgH.Send)
	guarded.Post("/message/image", msgH.SendImage)
	guarded.Post("/message/sticker", msgH.SendSticker)
	guarded.Get("/message/:chatId", msgH.History)

	guarded.Post("/chat", chatH.Access)
	guarded.Get("/chat", chatH.List)
	guarded.Post("/chat/createGroup", chatH.CreateGroup)
	guarded.Patch("/chat/renameGroup", chatH.RenameGroup)
	guarded.Patch("/chat/addUserToGroup", chatH.AddUser)
	guarded.Patch("/chat/removeFromGroup", chatH.RemoveUser)
	guarded.Delete("/chat/:chatId", chatH.Delete)

	guarded.Get("/presence/:userId", func(c *fiber.Ctx) error {
		if d.Presence == nil {
			return c.JSON(fiber.Map{"userId": c.Params("userId"), "online": false})
		}
		online, err := d.Presence.IsOnline(c.Context(), c.Params("userId"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"userId": c.Params("userId"), "online": online})
	})

	return app
}
