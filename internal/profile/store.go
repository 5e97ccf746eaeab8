// Package profile keeps a player's lifetime statistics and achievements.
package profile

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"hero-trivia-engine/internal/domain"
)

// Repository is the persistence port for profile records.
type Repository interface {
	Get(ctx context.Context, id string) (domain.PlayerProfile, error)
	Set(ctx context.Context, p domain.PlayerProfile) error
	Clear(ctx context.Context, id string) error
}

// experiencePerLevel is the XP needed to gain one level.
const experiencePerLevel = 500

// LevelFor derives a level from experience.
func LevelFor(experience int) int {
	if experience < 0 {
		experience = 0
	}
	return 1 + experience/experiencePerLevel
}

// New returns a fresh level 1 profile.
func New(id, displayName string) domain.PlayerProfile {
	return domain.PlayerProfile{
		ID:          id,
		DisplayName: displayName,
		Level:       1,
		Settings:    domain.Settings{SoundEnabled: true, DefaultDifficulty: domain.DifficultyEasy},
	}
}

// Store is the in-memory authority for one profile. Writes to the repository are
// best effort: a failed save is logged and reported, never rolled back.
type Store struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
	onFail func(op string, err error)

	mu      sync.RWMutex
	profile domain.PlayerProfile
}

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithFailureHook is called for every persistence failure.
func WithFailureHook(fn func(op string, err error)) Option {
	return func(s *Store) { s.onFail = fn }
}

// Load reads the profile for id, creating one when none exists. On a read
// failure the returned store holds a fresh profile and the error is a
// *domain.PersistenceError the caller may log and ignore.
func Load(ctx context.Context, repo Repository, id, displayName string, logger *zap.Logger, opts ...Option) (*Store, error) {
	s := &Store{repo: repo, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	p, err := repo.Get(ctx, id)
	switch {
	case err == nil:
		if displayName != "" {
			p.DisplayName = displayName
		}
		s.profile = p
		return s, nil
	case errors.Is(err, domain.ErrProfileNotFound):
		s.profile = New(id, displayName)
		return s, nil
	default:
		s.profile = New(id, displayName)
		return s, s.fail("load profile", err)
	}
}

// Profile returns a copy of the current profile.
func (s *Store) Profile() domain.PlayerProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.profile)
}

// RecordAnswer updates running counters and averages as answers arrive.
// Skips count toward questions answered like a wrong answer.
func (s *Store) RecordAnswer(a domain.PlayerAnswer, archetype domain.Archetype) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := &s.profile.Stats
	st.QuestionsAnswered++
	switch {
	case a.Correct:
		st.CorrectAnswers++
	case a.TimedOut:
		st.TimedOutAnswers++
	case a.Skipped:
		st.SkippedAnswers++
	}
	n := time.Duration(st.QuestionsAnswered)
	st.AverageResponseTime += (a.ResponseTime - st.AverageResponseTime) / n

	if archetype != "" {
		if st.CategoryCounts == nil {
			st.CategoryCounts = make(map[domain.Archetype]int)
		}
		st.CategoryCounts[archetype]++
		if st.FavoriteCategory == "" || st.CategoryCounts[archetype] > st.CategoryCounts[st.FavoriteCategory] {
			st.FavoriteCategory = archetype
		}
	}
	s.profile.UpdatedAt = s.now()
}

// RecordSession folds a completed session into the bulk aggregates.
func (s *Store) RecordSession(sum domain.SessionSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profile.GamesPlayed++
	s.profile.TotalScore += sum.Score
	s.profile.Stats.TotalTimePlayed += sum.Duration
	if sum.BestStreak > s.profile.Stats.BestStreak {
		s.profile.Stats.BestStreak = sum.BestStreak
	}
	s.profile.Experience += sum.Score / 10
	s.profile.Level = LevelFor(s.profile.Experience)
	s.profile.UpdatedAt = s.now()
}

// Unlock adds a to the unlocked set and grants its reward. Unlocking twice
// returns domain.ErrAlreadyUnlocked and changes nothing.
func (s *Store) Unlock(a domain.Achievement, at time.Time) (domain.Achievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.profile.HasAchievement(a.ID) {
		return domain.Achievement{}, domain.ErrAlreadyUnlocked
	}
	unlockedAt := at
	a.UnlockedAt = &unlockedAt
	s.profile.Achievements = append(s.profile.Achievements, a)
	s.profile.Experience += a.Points
	s.profile.Level = LevelFor(s.profile.Experience)
	s.profile.UpdatedAt = s.now()
	return a, nil
}

// UpdateSettings replaces player preferences and optionally the display name.
func (s *Store) UpdateSettings(settings domain.Settings, displayName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.Settings = settings
	if displayName != "" {
		s.profile.DisplayName = displayName
	}
	s.profile.UpdatedAt = s.now()
}

// Save writes the current profile. Failures leave memory untouched.
func (s *Store) Save(ctx context.Context) error {
	snapshot := s.Profile()
	if err := s.repo.Set(ctx, snapshot); err != nil {
		return s.fail("save profile", err)
	}
	return nil
}

// Reset clears the stored record and starts over with a fresh profile.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	id, name := s.profile.ID, s.profile.DisplayName
	s.profile = New(id, name)
	s.mu.Unlock()

	if err := s.repo.Clear(ctx, id); err != nil {
		return s.fail("clear profile", err)
	}
	return nil
}

func (s *Store) fail(op string, err error) error {
	s.logger.Warn("profile persistence failed",
		zap.String("op", op),
		zap.String("profile_id", s.profileID()),
		zap.Error(err))
	if s.onFail != nil {
		s.onFail(op, err)
	}
	return &domain.PersistenceError{Op: op, Err: err}
}

func (s *Store) profileID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.ID
}

func clone(p domain.PlayerProfile) domain.PlayerProfile {
	out := p
	if p.Achievements != nil {
		out.Achievements = make([]domain.Achievement, len(p.Achievements))
		copy(out.Achievements, p.Achievements)
	}
	if p.Stats.CategoryCounts != nil {
		out.Stats.CategoryCounts = make(map[domain.Archetype]int, len(p.Stats.CategoryCounts))
		for k, v := range p.Stats.CategoryCounts {
			out.Stats.CategoryCounts[k] = v
		}
	}
	return out
}
