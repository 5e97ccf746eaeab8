package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"hero-trivia-engine/internal/domain"
	"hero-trivia-engine/internal/questions"
)

// SubjectLoader fetches the subject dataset from a backing store.
type SubjectLoader interface {
	LoadSubjects(ctx context.Context) ([]domain.Subject, error)
}

// DatasetRepository caches the validated dataset with a TTL to avoid repeated loads.
type DatasetRepository struct {
	loader SubjectLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	subjects  []domain.Subject
	expiresAt time.Time
}

func NewDatasetRepository(loader SubjectLoader, ttl time.Duration) *DatasetRepository {
	return &DatasetRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Subjects returns the cached dataset, reloading it once it expires. A dataset
// that fails validation is never cached.
func (r *DatasetRepository) Subjects(ctx context.Context) ([]domain.Subject, error) {
	now := r.clock()

	r.mu.RLock()
	if r.subjects != nil && r.expiresAt.After(now) {
		subjects := r.subjects
		r.mu.RUnlock()
		return subjects, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do("subjects", func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if r.subjects != nil && r.expiresAt.After(now) {
			subjects := r.subjects
			r.mu.RUnlock()
			return subjects, nil
		}
		r.mu.RUnlock()

		subjects, err := r.loader.LoadSubjects(ctx)
		if err != nil {
			return nil, err
		}
		if err := questions.Validate(subjects); err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.subjects = subjects
		r.expiresAt = now.Add(r.ttlWithJitter())
		r.mu.Unlock()
		return subjects, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Subject), nil
}

// StaticSubjectLoader serves a fixed dataset (built-in heroes, tests, demos).
type StaticSubjectLoader struct {
	subjects []domain.Subject
}

func NewStaticSubjectLoader(subjects []domain.Subject) *StaticSubjectLoader {
	return &StaticSubjectLoader{subjects: subjects}
}

func (l *StaticSubjectLoader) LoadSubjects(_ context.Context) ([]domain.Subject, error) {
	out := make([]domain.Subject, len(l.subjects))
	copy(out, l.subjects)
	return out, nil
}

func (r *DatasetRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
