// Package agents exposes the support-agent login endpoint. The token it
// issues is what the support websocket namespace verifies at handshake.
package agents

import (
	"errors"
	"net/http"

	"github.com/akindayo/vendora/backend/internal/auth"
	"github.com/akindayo/vendora/backend/internal/config"
	"github.com/akindayo/vendora/backend/internal/httpx"
	"github.com/akindayo/vendora/backend/internal/relay"
	"github.com/akindayo/vendora/backend/internal/storage"
	"github.com/akindayo/vendora/backend/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Service struct {
	Store     storage.Store
	JWTSecret string
	JWTTTLMin int
}

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Register(rg *gin.RouterGroup, store storage.Store, cfg config.Config) {
	s := Service{
		Store:     store,
		JWTSecret: cfg.JWTSecret,
		JWTTTLMin: cfg.JWTTTLMin,
	}
	rg.POST("/login", s.login)
}

func (s Service) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			httpx.Err(c, http.StatusBadRequest, utils.ValidationErr(validationErrors))
			return
		}
		httpx.Err(c, http.StatusBadRequest, err.Error())
		return
	}

	agent, err := s.Store.AgentByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpx.Err(c, http.StatusUnauthorized, "Invalid Credentials")
			return
		}
		httpx.Err(c, http.StatusInternalServerError, "database error")
		return
	}
	if !auth.CheckPassword(agent.PasswordHash, req.Password) {
		httpx.Err(c, http.StatusUnauthorized, "Invalid Credentials")
		return
	}

	token, err := auth.NewToken(s.JWTSecret, agent.Username, relay.RoleSupport, s.JWTTTLMin)
	if err != nil {
		httpx.Err(c, http.StatusInternalServerError, "token issue failed")
		return
	}
	httpx.OK(c, gin.H{"token": token, "username": agent.Username})
}
