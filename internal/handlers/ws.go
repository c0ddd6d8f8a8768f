package handlers

import (
	"photo-share/internal/hub"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// WebSocketHandler registers each live-update channel with the registry for
// as long as it stays open. Inbound frames only keep the channel alive.
func WebSocketHandler(registry *hub.Registry, logger *zap.Logger) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		client := registry.Register(viewerConn(c))
		logger.Debug("viewer connected", zap.String("client_id", client.ID))

		defer func() {
			registry.Unregister(client)
			c.Close()
			logger.Debug("viewer disconnected", zap.String("client_id", client.ID))
		}()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
					logger.Warn("viewer read failed", zap.String("client_id", client.ID), zap.Error(err))
				}
				return
			}
		}
	})
}

// viewerConn returns the connection bound to this viewer for its whole
// lifetime. The gofiber wrapper is pooled and handed to the next viewer once
// the handler returns, so it must not outlive the handler in the registry.
func viewerConn(c *websocket.Conn) hub.Conn {
	return c.Conn
}

// WSUpgradeMiddleware rejects plain HTTP requests to the websocket route.
func WSUpgradeMiddleware(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}
