package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/set-night/chatline/internal/config"
)

func (h *Handler) handleWelcome(c *gin.Context) {
	c.String(http.StatusOK, config.WelcomeText)
}

func (h *Handler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": h.chat.Sessions(),
	})
}
