package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/set-night/chatline/internal/domain"
)

type turnView struct {
	Speaker   domain.Speaker `json:"speaker"`
	Text      string         `json:"text"`
	CreatedAt time.Time      `json:"createdAt"`
}

type usageView struct {
	PromptTokens     int64  `json:"promptTokens"`
	CompletionTokens int64  `json:"completionTokens"`
	Cost             string `json:"cost"`
}

type sessionView struct {
	SessionID string     `json:"sessionId"`
	Turns     []turnView `json:"turns"`
	Usage     usageView  `json:"usage"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// handleSession is a read-only view of one transcript.
func (h *Handler) handleSession(c *gin.Context) {
	key := domain.SessionKey(c.Param("key"))

	snap, err := h.chat.Transcript(key)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	turns := make([]turnView, len(snap.Turns))
	for i, t := range snap.Turns {
		turns[i] = turnView{Speaker: t.Speaker, Text: t.Text, CreatedAt: t.CreatedAt}
	}

	c.JSON(http.StatusOK, sessionView{
		SessionID: snap.Key.String(),
		Turns:     turns,
		Usage: usageView{
			PromptTokens:     snap.Usage.PromptTokens,
			CompletionTokens: snap.Usage.CompletionTokens,
			Cost:             snap.Usage.Cost.String(),
		},
		CreatedAt: snap.CreatedAt,
		UpdatedAt: snap.UpdatedAt,
	})
}
