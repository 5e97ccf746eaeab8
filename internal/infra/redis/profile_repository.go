package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"hero-trivia-engine/internal/domain"
)

// ProfileRepository stores each profile as a JSON string under profile:{id}.
// A zero ttl keeps records indefinitely.
type ProfileRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProfileRepository(client *redis.Client, ttl time.Duration) *ProfileRepository {
	return &ProfileRepository{client: client, ttl: ttl}
}

func (r *ProfileRepository) Get(ctx context.Context, id string) (domain.PlayerProfile, error) {
	raw, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.PlayerProfile{}, domain.ErrProfileNotFound
	}
	if err != nil {
		return domain.PlayerProfile{}, fmt.Errorf("get profile: %w", err)
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
	if err := r.client.Set(ctx, r.key(p.ID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("set profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) Clear(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("clear profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) key(id string) string {
	return "profile:" + id
}
