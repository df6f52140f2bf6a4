package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/set-night/chatline/internal/config"
	"github.com/set-night/chatline/internal/domain"
	"github.com/shopspring/decimal"
)

// GenerationConfig is sent unchanged with every completion request.
type GenerationConfig struct {
	Temperature     float64
	TopP            float64
	TopK            int
	MaxOutputTokens int
	PlainText       bool
}

func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:     config.Temperature,
		TopP:            config.TopP,
		TopK:            config.TopK,
		MaxOutputTokens: config.MaxOutputTokens,
		PlainText:       true,
	}
}

type Completion struct {
	Text  string
	Usage domain.Usage
}

// Provider is the external completion capability. Implementations must not
// retry; a failed call is reported once.
type Provider interface {
	Complete(ctx context.Context, turns []domain.Turn, gen GenerationConfig) (*Completion, error)
}

// APIError is a non-success answer from a completion provider.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("provider error %d", e.StatusCode)
	}
	return fmt.Sprintf("provider error %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) IsRateLimit() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

func (e *APIError) IsUnavailable() bool {
	return e.StatusCode == http.StatusServiceUnavailable
}

func roleFor(speaker domain.Speaker) string {
	if speaker == domain.SpeakerModel {
		return "assistant"
	}
	return "user"
}

func costFromFloat(v float64) decimal.Decimal {
	if v <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}
