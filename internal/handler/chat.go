package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/set-night/chatline/internal/config"
	"github.com/set-night/chatline/internal/domain"
	"github.com/set-night/chatline/internal/identity"
	"github.com/set-night/chatline/internal/middleware"
	"github.com/set-night/chatline/internal/service"
)

type chatRequest struct {
	UserInput string `json:"userInput"`
	UserID    string `json:"userId"`
	Username  string `json:"username"`
}

type chatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"sessionId"`
}

const missingInputText = "Invalid request: userInput is missing."

func (h *Handler) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: malformed JSON body."})
		return
	}
	if strings.TrimSpace(req.UserInput) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": missingInputText})
		return
	}

	cookie, _ := c.Cookie(config.SessionCookie)
	explicit := req.UserID
	if explicit == "" {
		explicit = c.GetHeader(config.SessionHeader)
	}
	res := h.resolver.Resolve(identity.Hints{
		Explicit:   explicit,
		Cookie:     cookie,
		RemoteAddr: c.ClientIP(),
	})

	slog.Debug("chat request",
		"session", res.Key,
		"source", res.Source,
		"request_id", middleware.GetRequestID(c),
	)

	reply, err := h.chat.Submit(c.Request.Context(), service.SubmitRequest{
		Key:         res.Key,
		Text:        req.UserInput,
		DisplayName: req.Username,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmptyInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": missingInputText})
			return
		}
		slog.Error("chat submit", "error", err, "session", res.Key)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	if res.Minted() {
		h.issueSessionKey(c, res.Key)
	}

	c.JSON(http.StatusOK, chatResponse{
		Response:  reply.Text,
		SessionID: res.Key.String(),
	})
}

func (h *Handler) issueSessionKey(c *gin.Context, key domain.SessionKey) {
	c.Header(config.SessionHeader, key.String())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(config.SessionCookie, key.String(), int(config.SessionCookieTTL.Seconds()), "/", "", h.cfg.CookieSecure, true)
}
