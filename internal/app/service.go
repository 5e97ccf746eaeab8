package app

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hero-trivia-engine/internal/achievements"
	"hero-trivia-engine/internal/clock"
	"hero-trivia-engine/internal/domain"
	"hero-trivia-engine/internal/events"
	"hero-trivia-engine/internal/profile"
	"hero-trivia-engine/internal/questions"
)

// DatasetRepository serves the validated subject dataset (from cache/backing store).
type DatasetRepository interface {
	Subjects(ctx context.Context) ([]domain.Subject, error)
}

// RoomCoordinator handles multiplayer room membership and opponent sync.
// The engine only reports to it; the protocol lives elsewhere.
type RoomCoordinator interface {
	Join(ctx context.Context, sessionID, profileID string) error
	ReportAnswer(ctx context.Context, sessionID string, a domain.PlayerAnswer) error
	Leave(ctx context.Context, sessionID string)
}

type noopRooms struct{}

func (noopRooms) Join(context.Context, string, string) error                      { return nil }
func (noopRooms) ReportAnswer(context.Context, string, domain.PlayerAnswer) error { return nil }
func (noopRooms) Leave(context.Context, string)                                   {}

// GameService wires the engine's collaborators and opens players.
type GameService struct {
	datasets  DatasetRepository
	profiles  profile.Repository
	rooms     RoomCoordinator
	clock     clock.Clock
	newRand   func() questions.Source
	newID     func() string
	defaults  Defaults
	logger    *zap.Logger
	observers []events.Handler
	onFail    func(op string, err error)

	// players holds every open player so all handles for one id share a
	// single in-memory profile.
	mu      sync.Mutex
	players map[string]*Player
}

// Option customises a GameService.
type Option func(*GameService)

func WithClock(c clock.Clock) Option { return func(s *GameService) { s.clock = c } }

// WithRandom sets the factory for per-session random sources.
func WithRandom(fn func() questions.Source) Option { return func(s *GameService) { s.newRand = fn } }

func WithRoomCoordinator(r RoomCoordinator) Option { return func(s *GameService) { s.rooms = r } }

func WithDefaults(d Defaults) Option { return func(s *GameService) { s.defaults = d } }

// WithObserver subscribes h to every player's events (metrics, audit logs).
func WithObserver(h events.Handler) Option {
	return func(s *GameService) { s.observers = append(s.observers, h) }
}

// WithPersistenceFailureHook is called whenever a profile read or write fails.
func WithPersistenceFailureHook(fn func(op string, err error)) Option {
	return func(s *GameService) { s.onFail = fn }
}

func NewGameService(datasets DatasetRepository, profiles profile.Repository, logger *zap.Logger, opts ...Option) *GameService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &GameService{
		datasets: datasets,
		profiles: profiles,
		rooms:    noopRooms{},
		clock:    clock.Real{},
		newRand: func() questions.Source {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
		newID:    uuid.NewString,
		defaults: DefaultDefaults(),
		logger:   logger,
		players:  make(map[string]*Player),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate loads the dataset once so configuration errors surface at startup.
func (s *GameService) Validate(ctx context.Context) error {
	subjects, err := s.datasets.Subjects(ctx)
	if err != nil {
		return err
	}
	return questions.Validate(subjects)
}

// Catalog lists every achievement.
func (s *GameService) Catalog() []domain.Achievement {
	return achievements.Definitions()
}

// Profile returns the live profile of an open player, or the stored one.
func (s *GameService) Profile(ctx context.Context, id string) (domain.PlayerProfile, error) {
	if p, ok := s.openPlayer(id); ok {
		return p.Profile(), nil
	}
	return s.profiles.Get(ctx, id)
}

// ResetProfile wipes a profile. An open player is reset in memory as well,
// so its next save cannot bring the old record back.
func (s *GameService) ResetProfile(ctx context.Context, id string) error {
	if p, ok := s.openPlayer(id); ok {
		return p.ResetProfile(ctx)
	}
	if err := s.profiles.Clear(ctx, id); err != nil {
		return &domain.PersistenceError{Op: "clear profile", Err: err}
	}
	return nil
}

// OpenPlayer loads (or creates) a profile and returns the host-owned player
// object. A failed profile read is logged and play continues on a fresh profile.
// Opening an id that is already open returns the same player; each open must
// be paired with a Close.
func (s *GameService) OpenPlayer(ctx context.Context, id, displayName string) (*Player, error) {
	if id == "" {
		return nil, errors.New("player id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.players[id]; ok {
		p.refs++
		return p, nil
	}

	var storeOpts []profile.Option
	storeOpts = append(storeOpts, profile.WithClock(s.clock.Now))
	if s.onFail != nil {
		storeOpts = append(storeOpts, profile.WithFailureHook(s.onFail))
	}
	store, err := profile.Load(ctx, s.profiles, id, displayName, s.logger, storeOpts...)
	if err != nil && !errors.Is(err, domain.ErrPersistence) {
		return nil, err
	}

	emitter := events.NewEmitter()
	for _, h := range s.observers {
		emitter.Subscribe(h)
	}
	p := &Player{
		id:      id,
		svc:     s,
		store:   store,
		emitter: emitter,
		logger:  s.logger.With(zap.String("player_id", id)),
		refs:    1,
	}
	p.evaluator = achievements.NewEvaluator(achievements.Catalog(), emitter, s.clock.Now, s.defaults.DismissAfter, p.logger)
	s.players[id] = p
	return p, nil
}

func (s *GameService) openPlayer(id string) (*Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	return p, ok
}

// release drops one handle on p and reports whether it was the last.
func (s *GameService) release(p *Player) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.refs == 0 {
		return false
	}
	p.refs--
	if p.refs > 0 {
		return false
	}
	if s.players[p.id] == p {
		delete(s.players, p.id)
	}
	return true
}
