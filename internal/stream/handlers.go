package stream

import (
	"github.com/Dilhara2002/lak-travelers-sub000/internal/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const localStreamUser = "stream_user"

// RegisterRoutes mounts GET /ws. authMiddleware runs on the upgrade request,
// so the token may come from the cookie or the Authorization header.
func RegisterRoutes(r fiber.Router, hub *Hub, authMiddleware fiber.Handler) {
	r.Get("/ws", authMiddleware, func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		c.Locals(localStreamUser, auth.UserID(c))
		return c.Next()
	}, websocket.New(func(c *websocket.Conn) {
		userID, _ := c.Locals(localStreamUser).(string)
		client := hub.Register(userID)
		defer hub.Unregister(client)

		done := make(chan struct{})
		go func() {
			for msg := range client.Send {
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					break
				}
			}
			close(done)
		}()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
		hub.Unregister(client)
		<-done
	}))
}
