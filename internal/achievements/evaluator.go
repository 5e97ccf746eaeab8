package achievements

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"hero-trivia-engine/internal/domain"
	"hero-trivia-engine/internal/events"
)

// Ledger is where unlocks are recorded; *profile.Store implements it.
type Ledger interface {
	Profile() domain.PlayerProfile
	Unlock(a domain.Achievement, at time.Time) (domain.Achievement, error)
}

// Notifier receives unlock notifications.
type Notifier interface {
	Emit(evs ...events.Event)
}

// Evaluator checks the catalog after a session completes.
type Evaluator struct {
	rules        []Rule
	notify       Notifier
	now          func() time.Time
	dismissAfter time.Duration
	logger       *zap.Logger
}

func NewEvaluator(rules []Rule, notify Notifier, now func() time.Time, dismissAfter time.Duration, logger *zap.Logger) *Evaluator {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{rules: rules, notify: notify, now: now, dismissAfter: dismissAfter, logger: logger}
}

// Check grants every rule the session or profile now satisfies and returns the
// new unlocks. Running it again for the same session grants nothing.
func (e *Evaluator) Check(sessionID string, sum domain.SessionSummary, ledger Ledger) []domain.Achievement {
	var unlocked []domain.Achievement
	for _, rule := range e.rules {
		p := ledger.Profile()
		if p.HasAchievement(rule.Achievement.ID) {
			continue
		}
		if !rule.Met(Facts{Session: sum, Profile: p}) {
			continue
		}
		at := e.now()
		a, err := ledger.Unlock(rule.Achievement, at)
		if errors.Is(err, domain.ErrAlreadyUnlocked) {
			continue
		}
		if err != nil {
			e.logger.Warn("achievement unlock failed", zap.String("achievement", rule.Achievement.ID), zap.Error(err))
			continue
		}
		e.logger.Info("achievement unlocked",
			zap.String("profile_id", p.ID),
			zap.String("achievement", a.ID))
		unlocked = append(unlocked, a)
		if e.notify != nil {
			e.notify.Emit(events.Event{
				Type:      events.AchievementUnlocked,
				SessionID: sessionID,
				At:        at,
				Payload:   events.AchievementUnlockedPayload{Achievement: a, DismissAfter: e.dismissAfter},
			})
		}
	}
	return unlocked
}
