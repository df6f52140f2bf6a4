package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/set-night/chatline/internal/domain"
)

const defaultOpenRouterURL = "https://openrouter.ai/api/v1"

var _ Provider = (*OpenRouterService)(nil)

type OpenRouterService struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewOpenRouterService(apiKey, baseURL, model string, timeout time.Duration) *OpenRouterService {
	if baseURL == "" {
		baseURL = defaultOpenRouterURL
	}
	return &OpenRouterService{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		logger:     slog.Default().With("component", "openrouter"),
	}
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type ChatRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	TopP           float64         `json:"top_p"`
	TopK           int             `json:"top_k"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int64   `json:"prompt_tokens"`
		CompletionTokens int64   `json:"completion_tokens"`
		TotalCost        float64 `json:"total_cost"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (s *OpenRouterService) Complete(ctx context.Context, turns []domain.Turn, gen GenerationConfig) (*Completion, error) {
	messages := make([]ChatMessage, len(turns))
	for i, t := range turns {
		messages[i] = ChatMessage{Role: roleFor(t.Speaker), Content: t.Text}
	}

	chatReq := ChatRequest{
		Model:       s.model,
		Messages:    messages,
		Temperature: gen.Temperature,
		TopP:        gen.TopP,
		TopK:        gen.TopK,
		MaxTokens:   gen.MaxOutputTokens,
	}
	if gen.PlainText {
		chatReq.ResponseFormat = &responseFormat{Type: "text"}
	}

	payload, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var chatResp ChatResponse
	decodeErr := json.Unmarshal(body, &chatResp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if decodeErr == nil && chatResp.Error != nil {
			apiErr.Message = chatResp.Error.Message
		}
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("parse response: %w", decodeErr)
	}
	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return nil, domain.ErrEmptyCompletion
	}

	s.logger.Debug("chat completion",
		"model", s.model,
		"turns", len(turns),
		"prompt_tokens", chatResp.Usage.PromptTokens,
		"completion_tokens", chatResp.Usage.CompletionTokens,
		"duration", time.Since(start),
	)

	return &Completion{
		Text: chatResp.Choices[0].Message.Content,
		Usage: domain.Usage{
			PromptTokens:     chatResp.Usage.PromptTokens,
			CompletionTokens: chatResp.Usage.CompletionTokens,
			Cost:             costFromFloat(chatResp.Usage.TotalCost),
		},
	}, nil
}
