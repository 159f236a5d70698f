package ws

import (
	"github.com/gorilla/websocket"

	"giglink_backend/internal/logger"
)

type Client struct {
	UserID  string
	Conn    *websocket.Conn
	Send    chan Event
	manager *Manager
}

// readPump discards inbound frames (the channel is push-only) and detaches
// the client when the connection drops.
func (c *Client) readPump() {
	defer func() {
		c.manager.unregister <- c
		c.Conn.Close()
	}()

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			logger.Debug("ws read closed", "user_id", c.UserID, "error", err)
			break
		}
	}
}

func (c *Client) writePump() {
	for event := range c.Send {
		if err := c.Conn.WriteJSON(event); err != nil {
			logger.Debug("ws write failed", "user_id", c.UserID, "error", err)
			break
		}
	}
	c.Conn.Close()
}
