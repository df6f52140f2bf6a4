package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionKey identifies one conversational participant.
type SessionKey string

func (k SessionKey) String() string {
	return string(k)
}

type Speaker string

const (
	SpeakerUser  Speaker = "user"
	SpeakerModel Speaker = "model"
)

type Turn struct {
	Speaker   Speaker
	Text      string
	CreatedAt time.Time
}

// Usage accumulates provider accounting for one transcript.
type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
	Cost             decimal.Decimal
}

func (u Usage) Add(other Usage) Usage {
	return Usage{
		PromptTokens:     u.PromptTokens + other.PromptTokens,
		CompletionTokens: u.CompletionTokens + other.CompletionTokens,
		Cost:             u.Cost.Add(other.Cost),
	}
}

// TranscriptSnapshot is a read-only copy of a transcript.
type TranscriptSnapshot struct {
	Key       SessionKey
	Turns     []Turn
	Usage     Usage
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s TranscriptSnapshot) Len() int {
	return len(s.Turns)
}
