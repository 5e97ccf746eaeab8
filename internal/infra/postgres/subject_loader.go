package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"hero-trivia-engine/internal/domain"
)

// SubjectLoader loads subject JSONB rows from Postgres.
type SubjectLoader struct {
	pool *pgxpool.Pool
}

func NewSubjectLoader(pool *pgxpool.Pool) *SubjectLoader {
	return &SubjectLoader{pool: pool}
}

func (l *SubjectLoader) LoadSubjects(ctx context.Context) ([]domain.Subject, error) {
	rows, err := l.pool.Query(ctx, `SELECT id, data FROM subjects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load subjects: %w", err)
	}
	defer rows.Close()

	var subjects []domain.Subject
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		var s domain.Subject
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("unmarshal subject %s: %w", id, err)
		}
		s.ID = id
		subjects = append(subjects, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load subjects: %w", err)
	}
	return subjects, nil
}

// SeedSubjects upserts subjects, used by the migrate command to install the
// built-in dataset.
func (l *SubjectLoader) SeedSubjects(ctx context.Context, subjects []domain.Subject) error {
	for _, s := range subjects {
		raw, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("marshal subject %s: %w", s.ID, err)
		}
		if _, err := l.pool.Exec(ctx,
			`INSERT INTO subjects (id, data) VALUES ($1, $2::jsonb)
			 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data`, s.ID, string(raw)); err != nil {
			return fmt.Errorf("seed subject %s: %w", s.ID, err)
		}
	}
	return nil
}
