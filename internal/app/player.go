package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"hero-trivia-engine/internal/achievements"
	"hero-trivia-engine/internal/domain"
	"hero-trivia-engine/internal/events"
	"hero-trivia-engine/internal/profile"
	"hero-trivia-engine/internal/questions"
)

// saveTimeout bounds profile writes triggered by session completion.
const saveTimeout = 5 * time.Second

// Player is the host-owned handle for one local player: their profile, their
// event stream and at most one live session.
type Player struct {
	id        string
	svc       *GameService
	store     *profile.Store
	emitter   *events.Emitter
	evaluator *achievements.Evaluator
	logger    *zap.Logger

	mu      sync.Mutex
	session *Session

	// refs counts open handles; guarded by svc.mu
	refs int
}

// Start abandons any unfinished session and begins a new one.
func (p *Player) Start(ctx context.Context, mode domain.Mode, difficulty domain.Difficulty, cfg StartConfig) (*Session, error) {
	rules, err := RulesFor(mode, difficulty, cfg, p.svc.defaults)
	if err != nil {
		return nil, err
	}
	subjects, err := p.svc.datasets.Subjects(ctx)
	if err != nil {
		return nil, err
	}
	gen, err := questions.NewGenerator(subjects, p.svc.newRand())
	if err != nil {
		return nil, err
	}

	id := p.svc.newID()
	profileID := p.store.Profile().ID
	if mode == domain.ModeMultiplayer {
		if err := p.svc.rooms.Join(ctx, id, profileID); err != nil {
			return nil, err
		}
	}

	session := NewSession(id, gen, p.svc.clock, p.svc.defaults.TickResolution, p.emitter, Hooks{
		OnAnswer: func(a domain.PlayerAnswer, q domain.Question) {
			p.store.RecordAnswer(a, q.Archetype)
			if mode == domain.ModeMultiplayer {
				if err := p.svc.rooms.ReportAnswer(context.Background(), id, a); err != nil {
					p.logger.Warn("room answer report failed", zap.String("session_id", id), zap.Error(err))
				}
			}
		},
		OnComplete: func(sum domain.SessionSummary) {
			p.finish(id, mode, sum)
		},
	}, p.logger)

	p.mu.Lock()
	previous := p.session
	p.session = session
	p.mu.Unlock()
	if previous != nil {
		p.abandon(previous)
	}

	if err := session.Start(rules); err != nil {
		return nil, err
	}
	return session, nil
}

// Session returns the current session, completed or not.
func (p *Player) Session() (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return nil, domain.ErrNoActiveSession
	}
	return p.session, nil
}

// Subscribe registers a handler for this player's events.
func (p *Player) Subscribe(fn events.Handler) func() {
	return p.emitter.Subscribe(fn)
}

// SubscribeChan streams this player's events on a channel.
func (p *Player) SubscribeChan(buffer int) (<-chan events.Event, func()) {
	return p.emitter.SubscribeChan(buffer)
}

// Profile returns the in-memory profile.
func (p *Player) Profile() domain.PlayerProfile {
	return p.store.Profile()
}

// UpdateSettings changes preferences and saves them. A failed save is
// reported but the new settings stay in effect.
func (p *Player) UpdateSettings(ctx context.Context, settings domain.Settings, displayName string) error {
	p.store.UpdateSettings(settings, displayName)
	return p.store.Save(ctx)
}

// ResetProfile wipes stats and achievements.
func (p *Player) ResetProfile(ctx context.Context) error {
	return p.store.Reset(ctx)
}

// Close releases one handle. When the last handle goes, the current session
// is abandoned, as when the player navigates away.
func (p *Player) Close() {
	if !p.svc.release(p) {
		return
	}
	p.mu.Lock()
	session := p.session
	p.mu.Unlock()
	if session != nil {
		p.abandon(session)
	}
}

func (p *Player) abandon(session *Session) {
	wasLive := session.Status() != domain.StatusCompleted
	session.Abandon()
	if wasLive && session.Snapshot().Mode == domain.ModeMultiplayer {
		p.svc.rooms.Leave(context.Background(), session.ID())
	}
}

func (p *Player) finish(sessionID string, mode domain.Mode, sum domain.SessionSummary) {
	p.store.RecordSession(sum)
	unlocked := p.evaluator.Check(sessionID, sum, p.store)

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	// failures are logged by the store; memory stays authoritative
	_ = p.store.Save(ctx)

	if mode == domain.ModeMultiplayer {
		p.svc.rooms.Leave(ctx, sessionID)
	}
	p.logger.Info("session folded into profile",
		zap.String("session_id", sessionID),
		zap.Int("score", sum.Score),
		zap.Int("unlocked", len(unlocked)))
}
