package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/set-night/chatline/internal/config"
	"github.com/set-night/chatline/internal/middleware"
)

// Router builds the gin engine with middleware and all routes registered.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recover(),
		middleware.Logging(),
		cors.New(h.corsConfig()),
	)
	h.Register(r)
	return r
}

// Register registers all endpoints on the router.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/", h.handleWelcome)
	r.GET("/healthz", h.handleHealth)
	r.POST("/chat", h.handleChat)
	if h.cfg.DiagnosticsEnabled {
		r.GET("/sessions/:key", h.handleSession)
	}
}

func (h *Handler) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", config.SessionHeader, middleware.RequestIDHeader},
		ExposeHeaders: []string{config.SessionHeader, middleware.RequestIDHeader},
	}
	origins := h.cfg.CORSOrigins
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}
