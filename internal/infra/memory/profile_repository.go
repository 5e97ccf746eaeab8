package memory

import (
	"context"
	"encoding/json"
	"sync"

	"hero-trivia-engine/internal/domain"
)

// ProfileRepository is an in-memory implementation of profile.Repository.
// Records are stored serialised so callers never share mutable state with it.
type ProfileRepository struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{records: make(map[string][]byte)}
}

func (r *ProfileRepository) Get(_ context.Context, id string) (domain.PlayerProfile, error) {
	r.mu.RLock()
	raw, ok := r.records[id]
	r.mu.RUnlock()
	if !ok {
		return domain.PlayerProfile{}, domain.ErrProfileNotFound
	}
	var p domain.PlayerProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.PlayerProfile{}, err
	}
	return p, nil
}

func (r *ProfileRepository) Set(_ context.Context, p domain.PlayerProfile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[p.ID] = raw
	return nil
}

func (r *ProfileRepository) Clear(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, id)
	return nil
}
