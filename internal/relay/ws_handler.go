package relay

import (
	"net/http"
	"strings"

	"github.com/akindayo/vendora/backend/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow CORS for the app clients; tighten in prod.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RegisterWS mounts the two relay namespaces:
//
//	GET /ws          — chat namespace, no handshake auth (dev-mode parity)
//	GET /support/ws  — support namespace, JWT required before upgrade
//
// The support token is taken from ?token=<JWT> or the Authorization bearer
// header. A missing or invalid token refuses the connection with 401 before
// any event handler attaches.
func RegisterWS(rg *gin.RouterGroup, hub *Hub, replier *AutoReplier, notify Notifier, jwtSecret string) {
	rg.GET("/ws", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		client := &Client{
			hub:    hub,
			conn:   conn,
			send:   make(chan []byte, 256),
			ConnID: uuid.NewString(),
		}
		hub.Register(client)
		go client.writePump()
		go client.readPump()
	})

	rg.GET("/support/ws", func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			h := c.GetHeader("Authorization")
			if strings.HasPrefix(h, "Bearer ") {
				token = strings.TrimPrefix(h, "Bearer ")
			}
		}
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		cl, err := auth.ParseToken(jwtSecret, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		client := &Client{
			hub:      hub,
			conn:     conn,
			send:     make(chan []byte, 256),
			ConnID:   uuid.NewString(),
			Identity: cl.UserID,
			Role:     cl.Role,
			support:  true,
			replier:  replier,
			notify:   notify,
		}
		hub.Register(client)
		go client.writePump()
		go client.readPump()
	})
}
