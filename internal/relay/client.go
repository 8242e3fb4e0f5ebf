package relay

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 5120
)

// Connection roles. Chat-namespace connections carry RoleNone; support
// connections get their role from the verified handshake token.
const (
	RoleNone    = ""
	RoleUser    = "user"
	RoleSupport = "support"
)

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// ConnID identifies this transport connection for its lifetime.
	ConnID string
	// UserID is set when the connection announces presence; empty until then.
	UserID string
	// Identity and Role come from the support-namespace handshake token.
	Identity string
	Role     string

	support bool
	replier *AutoReplier
	notify  Notifier
}

// Notifier is told about support messages that arrive while no agent is
// present in the room. Implementations are best-effort.
type Notifier interface {
	SupportOffline(orderID, preview string) error
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var ev Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			log.Printf("[relay] %s: malformed frame dropped: %v", c.ConnID, err)
			continue
		}
		c.handle(ev)
	}
}

// handle dispatches one inbound event. Malformed events are logged and
// dropped; they must never take the connection down.
func (c *Client) handle(ev Event) {
	switch ev.Type {
	case EvUserOnline:
		if ev.UserID == "" {
			log.Printf("[relay] %s: %s without userId dropped", c.ConnID, ev.Type)
			return
		}
		c.hub.SetOnline(c, ev.UserID)

	case EvJoin:
		if ev.ConversationID == "" {
			log.Printf("[relay] %s: %s without conversationId dropped", c.ConnID, ev.Type)
			return
		}
		c.hub.Join(c, ev.ConversationID)

	case EvTyping, EvStopTyping:
		if ev.ConversationID == "" || ev.UserID == "" {
			log.Printf("[relay] %s: %s missing fields dropped", c.ConnID, ev.Type)
			return
		}
		c.hub.BroadcastRoomExcept(ev.ConversationID, c, Event{
			Type:           ev.Type,
			ConversationID: ev.ConversationID,
			UserID:         ev.UserID,
		})

	case EvJoinRoom:
		if !c.support {
			log.Printf("[relay] %s: %s outside support namespace dropped", c.ConnID, ev.Type)
			return
		}
		if ev.OrderID == "" {
			log.Printf("[relay] %s: %s without orderId dropped", c.ConnID, ev.Type)
			return
		}
		c.hub.Join(c, ev.OrderID)

	case EvSendMsg:
		if !c.support {
			log.Printf("[relay] %s: %s outside support namespace dropped", c.ConnID, ev.Type)
			return
		}
		if ev.OrderID == "" || ev.Text == "" {
			log.Printf("[relay] %s: %s missing fields dropped", c.ConnID, ev.Type)
			return
		}
		c.sendMessage(ev)

	default:
		log.Printf("[relay] %s: unknown event type %q dropped", c.ConnID, ev.Type)
	}
}

// sendMessage stamps and echoes a support message to the whole room, the
// sender included, so the sending UI can render the delivered copy. User
// messages additionally schedule the deferred auto-reply and, when no agent
// is present, an offline notification.
func (c *Client) sendMessage(ev Event) {
	id := ev.ID
	if id == "" {
		id = uuid.NewString()
	}
	sender := RoleUser
	if c.Role == RoleSupport {
		sender = RoleSupport
	}
	out := Event{
		Type:      EvReceiveMsg,
		ID:        id,
		Text:      ev.Text,
		Sender:    sender,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	c.hub.BroadcastRoom(ev.OrderID, out)

	if sender != RoleUser {
		return
	}
	if c.replier != nil {
		c.replier.Schedule(ev.OrderID, id)
	}
	if c.notify != nil && !c.hub.RoomHasAgent(ev.OrderID) {
		go func(orderID, text string) {
			if err := c.notify.SupportOffline(orderID, text); err != nil {
				log.Printf("[relay] offline notification for %s failed: %v", orderID, err)
			}
		}(ev.OrderID, ev.Text)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = w.Write(message)
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
