package repository

import (
	"context"
	"time"

	"smartmatch/internal/database"

	"github.com/google/uuid"
)

// MatchHistoryEntry is one orchestrated request's audit record.
type MatchHistoryEntry struct {
	ID           uuid.UUID `json:"id"`
	RequestID    string    `json:"request_id"`
	Algorithm    string    `json:"algorithm"`
	FallbackUsed bool      `json:"fallback_used"`
	JobsAnalyzed int       `json:"jobs_analyzed"`
	JobsMatched  int       `json:"jobs_matched"`
	AverageScore float64   `json:"average_score"`
	ProcessingMS int64     `json:"processing_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

type MatchHistoryRepository interface {
	Insert(ctx context.Context, e MatchHistoryEntry) error
	ListRecent(ctx context.Context, limit int) ([]MatchHistoryEntry, error)
}

type matchHistoryRepository struct {
	db database.DB
}

func NewMatchHistoryRepository(db database.DB) MatchHistoryRepository {
	return &matchHistoryRepository{db: db}
}

// EnsureSchema creates the history table when it does not exist yet.
func EnsureSchema(ctx context.Context, db database.DB) error {
	_, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS match_history (
			id UUID PRIMARY KEY,
			request_id TEXT NOT NULL,
			algorithm TEXT NOT NULL,
			fallback_used BOOLEAN NOT NULL DEFAULT FALSE,
			jobs_analyzed INT NOT NULL,
			jobs_matched INT NOT NULL,
			average_score DOUBLE PRECISION NOT NULL,
			processing_ms BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	return err
}

func (r *matchHistoryRepository) Insert(ctx context.Context, e MatchHistoryEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO match_history
			(id, request_id, algorithm, fallback_used, jobs_analyzed, jobs_matched, average_score, processing_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.RequestID, e.Algorithm, e.FallbackUsed, e.JobsAnalyzed, e.JobsMatched, e.AverageScore, e.ProcessingMS, e.CreatedAt,
	)
	return err
}

func (r *matchHistoryRepository) ListRecent(ctx context.Context, limit int) ([]MatchHistoryEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, request_id, algorithm, fallback_used, jobs_analyzed, jobs_matched, average_score, processing_ms, created_at
		FROM match_history
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MatchHistoryEntry
	for rows.Next() {
		var e MatchHistoryEntry
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Algorithm, &e.FallbackUsed, &e.JobsAnalyzed, &e.JobsMatched, &e.AverageScore, &e.ProcessingMS, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
