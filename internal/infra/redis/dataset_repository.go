package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"hero-trivia-engine/internal/domain"
	"hero-trivia-engine/internal/questions"
)

// SubjectLoader fetches the subject dataset from a backing store (e.g., Postgres).
type SubjectLoader interface {
	LoadSubjects(ctx context.Context) ([]domain.Subject, error)
}

const subjectsKey = "dataset:subjects"

// DatasetRepository caches the subject dataset in Redis so every instance
// shares one copy, falling back to the loader on a miss.
type DatasetRepository struct {
	client *redis.Client
	loader SubjectLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewDatasetRepository(client *redis.Client, loader SubjectLoader, ttl time.Duration) *DatasetRepository {
	return &DatasetRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *DatasetRepository) Subjects(ctx context.Context) ([]domain.Subject, error) {
	if subjects, ok := r.cached(ctx); ok {
		return subjects, nil
	}

	result, err, _ := r.sf.Do(subjectsKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if subjects, ok := r.cached(ctx); ok {
			return subjects, nil
		}

		subjects, err := r.loader.LoadSubjects(ctx)
		if err != nil {
			return nil, err
		}
		if err := questions.Validate(subjects); err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(subjects); err == nil {
			// best-effort fill; the loaded copy is still served on failure
			_ = r.client.Set(ctx, subjectsKey, raw, r.ttlWithJitter()).Err()
		}
		return subjects, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Subject), nil
}

func (r *DatasetRepository) cached(ctx context.Context) ([]domain.Subject, bool) {
	raw, err := r.client.Get(ctx, subjectsKey).Bytes()
	if err != nil {
		return nil, false
	}
	var subjects []domain.Subject
	if err := json.Unmarshal(raw, &subjects); err != nil || questions.Validate(subjects) != nil {
		return nil, false
	}
	return subjects, true
}

func (r *DatasetRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
