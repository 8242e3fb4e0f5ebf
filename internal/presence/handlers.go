// Package presence exposes the registry lookup used by external
// collaborators such as the push-notification dispatcher.
package presence

import (
	"net/http"

	"github.com/akindayo/vendora/backend/internal/httpx"
	"github.com/akindayo/vendora/backend/internal/relay"
	"github.com/gin-gonic/gin"
)

func Register(rg *gin.RouterGroup, hub *relay.Hub) {
	rg.GET("/presence/:userId", func(c *gin.Context) {
		userID := c.Param("userId")
		connID, ok := hub.Lookup(userID)
		if !ok {
			httpx.Err(c, http.StatusNotFound, "user not online")
			return
		}
		httpx.OK(c, gin.H{"userId": userID, "connectionId": connID, "status": "online"})
	})
}
