package web

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/valerio/go-chip8/chip8/input/action"
)

type client struct {
	hub     *hub
	backend *Backend
	conn    *websocket.Conn
	send    chan []byte

	// keys this client is holding, released when it goes away
	pressed [16]bool
}

func (c *client) readPump() {
	defer func() {
		for k, down := range c.pressed {
			if down {
				c.backend.keyEvent(uint8(k), false)
			}
		}
		c.hub.leave(c)
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if len(message) < 2 {
			continue
		}

		switch message[0] {
		case MsgKeyDown, MsgKeyUp:
			k := message[1] & 0x0F
			down := message[0] == MsgKeyDown
			c.pressed[k] = down
			c.backend.keyEvent(k, down)
		case MsgAction:
			act := action.Action(message[1])
			if action.GetInfo(act).Category == action.CategoryKeypad {
				continue
			}
			c.backend.actionEvent(act)
		default:
			slog.Debug("Unknown web message", "type", message[0])
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
			return
		}
	}

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
