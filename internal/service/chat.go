package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/set-night/chatline/internal/config"
	"github.com/set-night/chatline/internal/conversation"
	"github.com/set-night/chatline/internal/domain"
	"github.com/set-night/chatline/internal/format"
)

// Archiver receives every committed exchange, preceded once per transcript by
// its seed pair. Failures are logged and never affect the reply.
type Archiver interface {
	SaveTurns(ctx context.Context, key domain.SessionKey, turns []domain.Turn, usage domain.Usage) error
}

type SubmitRequest struct {
	Key         domain.SessionKey
	Text        string
	DisplayName string
}

type Reply struct {
	// Text is the normalized presentation text, or the apology on failure.
	Text string
	// Raw is the unmodified model output; empty on failure.
	Raw string
	// Failed is set when the provider call did not produce a committed turn.
	Failed bool
}

type ChatService struct {
	store     *conversation.Store
	provider  Provider
	normalize format.Normalizer
	gen       GenerationConfig
	archiver  Archiver
	logger    *slog.Logger
}

type ChatDeps struct {
	Store      *conversation.Store
	Provider   Provider
	Normalizer format.Normalizer
	Archiver   Archiver
}

func NewChatService(deps ChatDeps) *ChatService {
	normalize := deps.Normalizer
	if normalize == nil {
		normalize = format.Spacing
	}
	return &ChatService{
		store:     deps.Store,
		provider:  deps.Provider,
		normalize: normalize,
		gen:       DefaultGenerationConfig(),
		archiver:  deps.Archiver,
		logger:    slog.Default().With("component", "chat"),
	}
}

// Submit runs one conversational turn for req.Key. Provider failures are not
// returned as errors: the transcript is left untouched and the reply carries
// the fixed apology.
func (s *ChatService) Submit(ctx context.Context, req SubmitRequest) (*Reply, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, domain.ErrEmptyInput
	}

	snap := s.store.GetOrCreate(req.Key, req.DisplayName)

	// The user turn is staged locally and only committed with its answer.
	turns := append(snap.Turns, domain.Turn{
		Speaker:   domain.SpeakerUser,
		Text:      req.Text,
		CreatedAt: time.Now(),
	})

	start := time.Now()
	completion, err := s.provider.Complete(ctx, turns, s.gen)
	if err != nil {
		s.logFailure(ctx, req.Key, err)
		return &Reply{Text: config.ApologyText, Failed: true}, nil
	}

	pair, err := s.store.Commit(req.Key, req.Text, completion.Text, completion.Usage)
	if err != nil {
		s.logger.Error("commit turn", "error", err, "session", req.Key)
		return &Reply{Text: config.ApologyText, Failed: true}, nil
	}

	s.logger.Info("turn completed",
		"session", req.Key,
		"turns", snap.Len()+len(pair),
		"duration", time.Since(start),
	)

	s.archive(ctx, req.Key, pair, completion.Usage)

	return &Reply{
		Text: s.normalize(completion.Text),
		Raw:  completion.Text,
	}, nil
}

// Transcript exposes a read-only copy for diagnostics.
func (s *ChatService) Transcript(key domain.SessionKey) (domain.TranscriptSnapshot, error) {
	snap, ok := s.store.Get(key)
	if !ok {
		return domain.TranscriptSnapshot{}, domain.ErrSessionNotFound
	}
	return snap, nil
}

func (s *ChatService) Sessions() int {
	return s.store.Len()
}

func (s *ChatService) archive(ctx context.Context, key domain.SessionKey, pair []domain.Turn, usage domain.Usage) {
	if s.archiver == nil {
		return
	}
	turns := pair
	if seed, ok := s.store.ClaimSeed(key); ok {
		turns = append(seed, pair...)
	}
	if err := s.archiver.SaveTurns(context.WithoutCancel(ctx), key, turns, usage); err != nil {
		s.logger.Warn("archive turns", "error", err, "session", key)
	}
}

func (s *ChatService) logFailure(ctx context.Context, key domain.SessionKey, err error) {
	attrs := []any{"error", err, "session", key}
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.IsRateLimit():
		attrs = append(attrs, "reason", "rate_limited")
	case errors.As(err, &apiErr) && apiErr.IsUnavailable():
		attrs = append(attrs, "reason", "unavailable")
	case ctx.Err() != nil:
		attrs = append(attrs, "reason", "canceled")
	}
	s.logger.Error("completion failed", attrs...)
}
