// Package conversation keeps per-session transcripts in process memory.
package conversation

import (
	"fmt"
	"sync"
	"time"

	"github.com/set-night/chatline/internal/domain"
)

// SeedLen is the number of turns every transcript starts with.
const SeedLen = 2

type transcript struct {
	turns     []domain.Turn
	usage     domain.Usage
	claimed   bool
	createdAt time.Time
	updatedAt time.Time
}

// Store maps session keys to transcripts. All mutations run under one lock;
// nothing is held across provider calls.
type Store struct {
	mu       sync.RWMutex
	sessions map[domain.SessionKey]*transcript
	seed     Seed
	maxTurns int
	now      func() time.Time
}

type Option func(*Store)

// WithMaxTurns caps transcript length. Zero disables the cap. The seed pair is
// always kept and the oldest exchanges are dropped in whole pairs.
func WithMaxTurns(n int) Option {
	return func(s *Store) {
		if n < 0 {
			n = 0
		}
		if n > 0 && n < SeedLen+2 {
			n = SeedLen + 2
		}
		s.maxTurns = n
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(seed Seed, opts ...Option) *Store {
	s := &Store{
		sessions: make(map[domain.SessionKey]*transcript),
		seed:     seed,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrCreate returns the transcript for key, seeding a new one when absent.
// displayName only affects a transcript created by this call.
func (s *Store) GetOrCreate(key domain.SessionKey, displayName string) domain.TranscriptSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.sessions[key]
	if !ok {
		now := s.now()
		t = &transcript{
			turns: []domain.Turn{
				{Speaker: domain.SpeakerUser, Text: s.seed.Instruction, CreatedAt: now},
				{Speaker: domain.SpeakerModel, Text: s.seed.Greeting(displayName), CreatedAt: now},
			},
			createdAt: now,
			updatedAt: now,
		}
		s.sessions[key] = t
	}
	return snapshot(key, t)
}

// Append adds one turn to an existing transcript.
func (s *Store) Append(key domain.SessionKey, speaker domain.Speaker, text string) error {
	if speaker != domain.SpeakerUser && speaker != domain.SpeakerModel {
		return fmt.Errorf("append %q: %w", speaker, domain.ErrUnknownSpeaker)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.sessions[key]
	if !ok {
		return domain.ErrSessionNotFound
	}
	now := s.now()
	t.turns = append(t.turns, domain.Turn{Speaker: speaker, Text: text, CreatedAt: now})
	t.updatedAt = now
	return nil
}

// Commit appends a completed user/model exchange in one step and returns the
// two stored turns.
func (s *Store) Commit(key domain.SessionKey, userText, modelText string, usage domain.Usage) ([]domain.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.sessions[key]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	now := s.now()
	pair := []domain.Turn{
		{Speaker: domain.SpeakerUser, Text: userText, CreatedAt: now},
		{Speaker: domain.SpeakerModel, Text: modelText, CreatedAt: now},
	}
	t.turns = append(t.turns, pair...)
	t.usage = t.usage.Add(usage)
	t.updatedAt = now
	s.trim(t)
	return pair, nil
}

func (s *Store) trim(t *transcript) {
	if s.maxTurns == 0 || len(t.turns) <= s.maxTurns {
		return
	}
	excess := len(t.turns) - s.maxTurns
	if excess%2 != 0 {
		excess++
	}
	kept := make([]domain.Turn, 0, len(t.turns)-excess)
	kept = append(kept, t.turns[:SeedLen]...)
	kept = append(kept, t.turns[SeedLen+excess:]...)
	t.turns = kept
}

// Get returns a copy of the transcript for diagnostics.
func (s *Store) Get(key domain.SessionKey) (domain.TranscriptSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.sessions[key]
	if !ok {
		return domain.TranscriptSnapshot{}, false
	}
	return snapshot(key, t), true
}

// ClaimSeed returns the seed pair the first time it is called for key and
// nothing afterwards, so journals record the framing exactly once.
func (s *Store) ClaimSeed(key domain.SessionKey) ([]domain.Turn, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.sessions[key]
	if !ok || t.claimed {
		return nil, false
	}
	t.claimed = true
	seed := make([]domain.Turn, SeedLen)
	copy(seed, t.turns[:SeedLen])
	return seed, true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func snapshot(key domain.SessionKey, t *transcript) domain.TranscriptSnapshot {
	turns := make([]domain.Turn, len(t.turns))
	copy(turns, t.turns)
	return domain.TranscriptSnapshot{
		Key:       key,
		Turns:     turns,
		Usage:     t.usage,
		CreatedAt: t.createdAt,
		UpdatedAt: t.updatedAt,
	}
}
