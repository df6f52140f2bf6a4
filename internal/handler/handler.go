package handler

import (
	"github.com/set-night/chatline/internal/config"
	"github.com/set-night/chatline/internal/identity"
	"github.com/set-night/chatline/internal/service"
)

// Handler holds all dependencies needed by the HTTP endpoints.
type Handler struct {
	cfg      *config.Config
	chat     *service.ChatService
	resolver *identity.Resolver
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Cfg      *config.Config
	Chat     *service.ChatService
	Resolver *identity.Resolver
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		cfg:      deps.Cfg,
		chat:     deps.Chat,
		resolver: deps.Resolver,
	}
}
