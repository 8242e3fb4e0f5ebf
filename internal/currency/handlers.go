package currency

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/akindayo/vendora/backend/internal/httpx"
	"github.com/gin-gonic/gin"
)

// Register mounts GET /convert?amount=&from=&to= for screens that want a
// server-side conversion.
func Register(rg *gin.RouterGroup, cache *RateCache) {
	rg.GET("/convert", func(c *gin.Context) {
		amount, err := strconv.ParseFloat(c.Query("amount"), 64)
		if err != nil {
			httpx.Err(c, http.StatusBadRequest, "invalid amount")
			return
		}
		from := strings.ToUpper(c.Query("from"))
		to := strings.ToUpper(c.Query("to"))
		if from == "" || to == "" {
			httpx.Err(c, http.StatusBadRequest, "from and to are required")
			return
		}

		result := cache.Convert(c.Request.Context(), amount, from, to)
		httpx.OK(c, gin.H{
			"amount": amount,
			"from":   from,
			"to":     to,
			"result": result,
		})
	})
}
