package config

import "time"

const (
	// Generation parameters sent with every completion request
	Temperature     = 0.7
	TopP            = 0.95
	TopK            = 64
	MaxOutputTokens = 65536

	// Fixed user-facing texts
	WelcomeText = "🌍 Welcome to the Kalvium Chatbot API! Ask me anything specific about Kalvium."
	ApologyText = "I'm having trouble processing your request right now. Please try again later."

	// Identity transport
	SessionHeader    = "X-Session-Key"
	SessionCookie    = "chat_session"
	SessionCookieTTL = 365 * 24 * time.Hour

	// Telegram limits
	MaxTelegramMessageLen = 4096

	// Shutdown grace period for the HTTP server
	ShutdownTimeout = 10 * time.Second
)
