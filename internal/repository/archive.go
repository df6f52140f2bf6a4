package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/set-night/chatline/internal/domain"
)

const insertTurnSQL = `
INSERT INTO transcript_turns (session_key, speaker, text, created_at)
VALUES ($1, $2, $3, $4)`

const upsertUsageSQL = `
INSERT INTO session_usage (session_key, prompt_tokens, completion_tokens, cost, updated_at)
VALUES ($1, $2, $3, $4, NOW())
ON CONFLICT (session_key) DO UPDATE SET
    prompt_tokens     = session_usage.prompt_tokens + EXCLUDED.prompt_tokens,
    completion_tokens = session_usage.completion_tokens + EXCLUDED.completion_tokens,
    cost              = session_usage.cost + EXCLUDED.cost,
    updated_at        = NOW()`

// ArchiveRepository journals committed turns. It is write-only: transcripts are
// never rebuilt from it.
type ArchiveRepository struct {
	db *pgxpool.Pool
}

func NewArchiveRepository(db *pgxpool.Pool) *ArchiveRepository {
	return &ArchiveRepository{db: db}
}

func (r *ArchiveRepository) SaveTurns(ctx context.Context, key domain.SessionKey, turns []domain.Turn, usage domain.Usage) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, t := range turns {
			batch.Queue(insertTurnSQL, key.String(), string(t.Speaker), t.Text, t.CreatedAt)
		}
		batch.Queue(upsertUsageSQL, key.String(), usage.PromptTokens, usage.CompletionTokens, usage.Cost)
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("archive turns: %w", err)
	}
	return nil
}
