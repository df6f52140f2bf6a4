package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	// Core
	APIKey   string        `env:"API_KEY,required"`
	Provider string        `env:"PROVIDER" envDefault:"openrouter" validate:"oneof=openrouter openai"`
	Model    string        `env:"MODEL" envDefault:"google/gemini-2.0-flash-thinking-exp:free" validate:"required"`
	BaseURL  string        `env:"BASE_URL" validate:"omitempty,url"`
	Timeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"90s" validate:"gt=0"`

	// Server
	Port        int      `env:"PORT" envDefault:"3000" validate:"min=1,max=65535"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`

	// GET /sessions/:key exposes whole transcripts; off unless set.
	DiagnosticsEnabled bool `env:"DIAGNOSTICS_ENABLED" envDefault:"false"`

	// Conversation behavior
	FormatPolicy string `env:"FORMAT_POLICY" envDefault:"spacing" validate:"oneof=spacing structured"`
	IdentityMode string `env:"IDENTITY_MODE" envDefault:"token" validate:"oneof=token address"`
	MaxTurns     int    `env:"MAX_TRANSCRIPT_TURNS" envDefault:"0" validate:"min=0"`
	SystemPrompt string `env:"SYSTEM_PROMPT"`
	CookieSecure bool   `env:"COOKIE_SECURE" envDefault:"false"`

	// Optional integrations
	DatabaseURL   string `env:"DATABASE_URL"`
	TelegramToken string `env:"TELEGRAM_BOT_TOKEN"`

	// Logging
	LogFormat string `env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json text"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse builds a Config from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("validate config: API_KEY is blank")
	}
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return fmt.Errorf("validate config: field %s failed on '%s' with value '%v'", e.Field(), e.Tag(), e.Value())
		}
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
