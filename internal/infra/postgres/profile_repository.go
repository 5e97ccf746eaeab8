package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"hero-trivia-engine/internal/domain"
)

// ProfileRepository keeps one JSONB row per profile.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) Get(ctx context.Context, id string) (domain.PlayerProfile, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, `SELECT data FROM profiles WHERE id=$1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.PlayerProfile{}, domain.ErrProfileNotFound
	}
	if err != nil {
		return domain.PlayerProfile{}, fmt.Errorf("load profile: %w", err)
	}
	var p domain.PlayerProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.PlayerProfile{}, fmt.Errorf("unmarshal profile: %w", err)
	}
	return p, nil
}

func (r *ProfileRepository) Set(ctx context.Context, p domain.PlayerProfile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO profiles (id, data, updated_at) VALUES ($1, $2::jsonb, now())
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`, p.ID, string(raw))
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) Clear(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE id=$1`, id); err != nil {
		return fmt.Errorf("clear profile: %w", err)
	}
	return nil
}
