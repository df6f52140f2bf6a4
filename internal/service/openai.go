package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/set-night/chatline/internal/domain"
	"github.com/shopspring/decimal"
)

var _ Provider = (*OpenAIService)(nil)

// OpenAIService talks to any OpenAI-compatible chat completions endpoint.
type OpenAIService struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

func NewOpenAIService(apiKey, baseURL, model string, timeout time.Duration) *OpenAIService {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIService{
		client: openai.NewClient(opts...),
		model:  model,
		logger: slog.Default().With("component", "openai"),
	}
}

func (s *OpenAIService) Complete(ctx context.Context, turns []domain.Turn, gen GenerationConfig) (*Completion, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, len(turns))
	for i, t := range turns {
		if t.Speaker == domain.SpeakerModel {
			messages[i] = openai.AssistantMessage(t.Text)
		} else {
			messages[i] = openai.UserMessage(t.Text)
		}
	}

	params := openai.ChatCompletionNewParams{
		Messages:    openai.F(messages),
		Model:       openai.F(openai.ChatModel(s.model)),
		Temperature: openai.F(gen.Temperature),
		TopP:        openai.F(gen.TopP),
		MaxTokens:   openai.F(int64(gen.MaxOutputTokens)),
	}

	// top_k and the text response format are not part of the typed params
	reqOpts := []option.RequestOption{option.WithJSONSet("top_k", gen.TopK)}
	if gen.PlainText {
		reqOpts = append(reqOpts, option.WithJSONSet("response_format", map[string]string{"type": "text"}))
	}

	start := time.Now()
	completion, err := s.client.Chat.Completions.New(ctx, params, reqOpts...)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, &APIError{StatusCode: apiErr.StatusCode, Message: apiErr.Message}
		}
		return nil, fmt.Errorf("chat request: %w", err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return nil, domain.ErrEmptyCompletion
	}

	s.logger.Debug("chat completion",
		"model", s.model,
		"turns", len(turns),
		"prompt_tokens", completion.Usage.PromptTokens,
		"completion_tokens", completion.Usage.CompletionTokens,
		"duration", time.Since(start),
	)

	return &Completion{
		Text: completion.Choices[0].Message.Content,
		Usage: domain.Usage{
			PromptTokens:     completion.Usage.PromptTokens,
			CompletionTokens: completion.Usage.CompletionTokens,
			Cost:             reportedCost(completion.Usage),
		},
	}, nil
}

// reportedCost reads the non-standard usage.cost that OpenRouter-style
// gateways add. Plain OpenAI responses carry none and cost stays zero.
func reportedCost(usage openai.CompletionUsage) decimal.Decimal {
	field, ok := usage.JSON.ExtraFields["cost"]
	if !ok {
		return decimal.Zero
	}
	cost, err := decimal.NewFromString(field.Raw())
	if err != nil || cost.IsNegative() {
		return decimal.Zero
	}
	return cost
}
