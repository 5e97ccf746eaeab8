package app

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"hero-trivia-engine/internal/clock"
	"hero-trivia-engine/internal/domain"
	"hero-trivia-engine/internal/events"
	"hero-trivia-engine/internal/scoring"
)

// QuestionSource produces questions on demand; *questions.Generator implements it.
type QuestionSource interface {
	Generate(d domain.Difficulty) domain.Question
}

// Notifier receives session events; *events.Emitter implements it.
type Notifier interface {
	Emit(evs ...events.Event)
}

// Hooks let the owner react to answers and completion. They run after the
// session lock is released, in the order the changes happened. A change made
// while another goroutine is delivering is delivered by that goroutine.
type Hooks struct {
	OnAnswer   func(a domain.PlayerAnswer, q domain.Question)
	OnComplete func(sum domain.SessionSummary)
}

type answerKind int

const (
	answerChosen answerKind = iota
	answerTimeout
	answerSkip
)

type recordedAnswer struct {
	answer   domain.PlayerAnswer
	question domain.Question
}

// effects are collected under the lock and applied after it is released.
type effects struct {
	events  []events.Event
	answers []recordedAnswer
	summary *domain.SessionSummary
}

// Session is the state machine for one play-through. Every mutating call,
// including timer expiry, is serialised by mu; a question resolves at most once.
type Session struct {
	id     string
	source QuestionSource
	clock  clock.Clock
	notify Notifier
	hooks  Hooks
	logger *zap.Logger

	mu         sync.Mutex
	timer      *clock.Timer
	rules      Rules
	status     domain.SessionStatus
	reason     domain.CompletionReason
	questions  []domain.Question
	index      int
	resolved   bool
	score      int
	lives      int
	streak     int
	bestStreak int
	answers    []domain.PlayerAnswer

	startedAt   time.Time
	endedAt     time.Time
	pausedAt    time.Time
	pausedTotal time.Duration

	// per-question stopwatch, frozen while paused or resolved
	questionStart   time.Time
	questionElapsed time.Duration
	stopwatchOn     bool

	powerUp          float64
	powerUpRemaining int

	summary *domain.SessionSummary
	pending effects

	// outbox holds effects awaiting delivery; draining marks an active deliverer
	outbox   []effects
	draining bool
}

// NewSession creates an idle session. Start arms it.
func NewSession(id string, source QuestionSource, c clock.Clock, tick time.Duration, notify Notifier, hooks Hooks, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		id:     id,
		source: source,
		clock:  c,
		notify: notify,
		hooks:  hooks,
		logger: logger.With(zap.String("session_id", id)),
		status: domain.StatusIdle,
	}
	s.timer = clock.NewTimer(c, tick, s.onTick)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Status returns the current state.
func (s *Session) Status() domain.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Start builds the initial questions and moves idle -> active.
func (s *Session) Start(rules Rules) error {
	return s.mutate(func() error {
		if s.status != domain.StatusIdle {
			return &domain.TransitionError{Op: "start", Status: s.status}
		}
		s.rules = rules
		n := 1
		if rules.fixedLength() {
			n = rules.QuestionCount
		}
		s.questions = make([]domain.Question, 0, n)
		for i := 0; i < n; i++ {
			s.questions = append(s.questions, s.source.Generate(rules.Difficulty))
		}
		s.lives = rules.Lives
		s.status = domain.StatusActive
		s.startedAt = s.clock.Now()
		if rules.sessionClock() {
			s.timer.Arm(rules.TotalTime)
		}
		s.logger.Info("session started",
			zap.String("mode", string(rules.Mode)),
			zap.String("difficulty", string(rules.Difficulty)),
			zap.Int("questions", rules.QuestionCount),
			zap.Int("lives", rules.Lives))
		s.presentLocked()
		return nil
	})
}

// SubmitAnswer resolves the current question with the chosen option.
func (s *Session) SubmitAnswer(index int) (domain.PlayerAnswer, error) {
	var out domain.PlayerAnswer
	err := s.mutate(func() error {
		if err := s.requireUnresolvedLocked("submit answer"); err != nil {
			return err
		}
		if q := s.questions[s.index]; index < 0 || index >= len(q.Options) {
			return fmt.Errorf("%w: %d", domain.ErrInvalidOption, index)
		}
		out = s.resolveLocked(answerChosen, index)
		return nil
	})
	return out, err
}

// Timeout resolves the current question as timed out. The timer calls it
// internally; hosts may call it when they run their own clock.
func (s *Session) Timeout() (domain.PlayerAnswer, error) {
	var out domain.PlayerAnswer
	err := s.mutate(func() error {
		if err := s.requireUnresolvedLocked("time out"); err != nil {
			return err
		}
		out = s.resolveLocked(answerTimeout, domain.TimeoutIndex)
		return nil
	})
	return out, err
}

// Skip gives up on the current question. It progresses like a wrong answer:
// no points, the streak breaks and life-limited modes lose a life. It is
// flagged Skipped rather than counted as a wrong choice.
func (s *Session) Skip() (domain.PlayerAnswer, error) {
	var out domain.PlayerAnswer
	err := s.mutate(func() error {
		if err := s.requireUnresolvedLocked("skip"); err != nil {
			return err
		}
		out = s.resolveLocked(answerSkip, domain.TimeoutIndex)
		return nil
	})
	return out, err
}

// NextQuestion advances past a resolved question.
func (s *Session) NextQuestion() error {
	return s.mutate(func() error {
		if err := s.requireActiveLocked("advance"); err != nil {
			return err
		}
		if !s.resolved {
			return &domain.TransitionError{Op: "advance", Status: s.status, Detail: "current question unresolved"}
		}
		if !s.rules.fixedLength() {
			s.questions = append(s.questions, s.source.Generate(s.rules.Difficulty))
		}
		s.index++
		s.presentLocked()
		return nil
	})
}

// Pause freezes the clock. Nothing else may change until Resume.
func (s *Session) Pause() error {
	return s.mutate(func() error {
		if err := s.requireActiveLocked("pause"); err != nil {
			return err
		}
		now := s.clock.Now()
		s.timer.Pause()
		s.stopStopwatchLocked(now)
		s.pausedAt = now
		s.status = domain.StatusPaused
		return nil
	})
}

// Resume continues a paused session from the time that was left.
func (s *Session) Resume() error {
	return s.mutate(func() error {
		if s.status != domain.StatusPaused {
			return &domain.TransitionError{Op: "resume", Status: s.status}
		}
		now := s.clock.Now()
		s.pausedTotal += now.Sub(s.pausedAt)
		s.status = domain.StatusActive
		s.timer.Resume()
		if !s.resolved {
			s.startStopwatchLocked(now)
		}
		return nil
	})
}

// ActivatePowerUp multiplies points for the next n answers.
func (s *Session) ActivatePowerUp(multiplier float64, n int) error {
	return s.mutate(func() error {
		if err := s.requireActiveLocked("activate power-up"); err != nil {
			return err
		}
		if multiplier <= 0 || n <= 0 {
			return fmt.Errorf("invalid power-up %.2fx for %d answers", multiplier, n)
		}
		s.powerUp = multiplier
		s.powerUpRemaining = n
		return nil
	})
}

// Complete finalizes the session now and hands it to the completion hook.
func (s *Session) Complete() (domain.SessionSummary, error) {
	return s.finish("complete", domain.ReasonEndedEarly)
}

// EndEarly is the player quitting mid-game; it finalizes like Complete.
func (s *Session) EndEarly() (domain.SessionSummary, error) {
	return s.finish("end early", domain.ReasonEndedEarly)
}

// Abandon marks the session non-resumable without folding it into the
// profile. No timer fires against it afterwards. Abandoning a completed
// session is a no-op.
func (s *Session) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == domain.StatusCompleted || s.status == domain.StatusIdle {
		s.status = domain.StatusCompleted
		s.timer.Stop()
		return
	}
	s.timer.Stop()
	s.endedAt = s.clock.Now()
	s.status = domain.StatusCompleted
	s.reason = domain.ReasonAbandoned
	s.logger.Info("session abandoned", zap.Int("answers", len(s.answers)))
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() domain.GameSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	qs := make([]domain.Question, len(s.questions))
	copy(qs, s.questions)
	as := make([]domain.PlayerAnswer, len(s.answers))
	copy(as, s.answers)
	return domain.GameSession{
		ID:            s.id,
		Mode:          s.rules.Mode,
		Difficulty:    s.rules.Difficulty,
		Questions:     qs,
		CurrentIndex:  s.index,
		Score:         s.score,
		Lives:         s.lives,
		Streak:        s.streak,
		BestStreak:    s.bestStreak,
		TimeRemaining: s.timer.Remaining(),
		Status:        s.status,
		Reason:        s.reason,
		Answers:       as,
	}
}

// Summary returns the final summary once the session has completed normally.
func (s *Session) Summary() (domain.SessionSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.summary == nil {
		return domain.SessionSummary{}, false
	}
	return *s.summary, true
}

func (s *Session) finish(op string, reason domain.CompletionReason) (domain.SessionSummary, error) {
	var out domain.SessionSummary
	err := s.mutate(func() error {
		if s.status != domain.StatusActive && s.status != domain.StatusPaused {
			return &domain.TransitionError{Op: op, Status: s.status}
		}
		if s.status == domain.StatusPaused {
			s.pausedTotal += s.clock.Now().Sub(s.pausedAt)
		}
		out = s.completeLocked(reason)
		return nil
	})
	return out, err
}

// onTick is the timer's delivery callback.
func (s *Session) onTick(gen uint64) {
	_ = s.mutate(func() error {
		result, left := s.timer.Tick(gen)
		switch result {
		case clock.TickStale:
			s.logger.Debug("ignored stale timer tick")
		case clock.TickRunning:
			s.queueLocked(events.TimerTick, events.TimerTickPayload{Remaining: left})
		case clock.TickExpired:
			s.queueLocked(events.TimerTick, events.TimerTickPayload{Remaining: 0})
			switch {
			case s.status != domain.StatusActive:
				s.logger.Warn("timer expired outside active play", zap.String("status", string(s.status)))
			case s.rules.sessionClock():
				s.completeLocked(domain.ReasonTimeUp)
			case !s.resolved:
				s.resolveLocked(answerTimeout, domain.TimeoutIndex)
			}
		}
		return nil
	})
}

func (s *Session) resolveLocked(kind answerKind, chosen int) domain.PlayerAnswer {
	now := s.clock.Now()
	q := s.questions[s.index]
	elapsed := s.stopStopwatchLocked(now)
	limit := s.rules.TimePerQuestion
	if !s.rules.sessionClock() {
		s.timer.Stop()
	}

	a := domain.PlayerAnswer{QuestionID: q.ID, ChosenIndex: chosen, ResponseTime: elapsed}
	switch kind {
	case answerChosen:
		a.Correct = chosen == q.CorrectIndex
	case answerTimeout:
		a.TimedOut = true
		// blitz has no per-question countdown, so the stopwatch stands
		if limit > 0 && !s.rules.sessionClock() {
			a.ResponseTime = limit
		}
	case answerSkip:
		a.Skipped = true
	}

	multiplier := 1.0
	if s.powerUpRemaining > 0 {
		multiplier = s.powerUp
		s.powerUpRemaining--
	}

	if a.Correct {
		s.streak++
		if s.streak > s.bestStreak {
			s.bestStreak = s.streak
		}
		a.Points = scoring.Points(q.Points, true, elapsed, limit, s.streak, multiplier)
	} else {
		s.streak = 0
		if s.rules.lifeLimited() {
			s.lives--
		}
	}
	s.score += a.Points
	s.answers = append(s.answers, a)
	s.resolved = true

	s.pending.answers = append(s.pending.answers, recordedAnswer{answer: a, question: q})
	s.queueLocked(events.AnswerResult, events.AnswerResultPayload{
		QuestionID:   q.ID,
		Correct:      a.Correct,
		TimedOut:     a.TimedOut,
		Skipped:      a.Skipped,
		PointsEarned: a.Points,
		CorrectIndex: q.CorrectIndex,
		Explanation:  q.Explanation,
		Score:        s.score,
		Streak:       s.streak,
		Lives:        s.lives,
	})

	switch {
	case s.rules.lifeLimited() && s.lives <= 0:
		s.lives = 0
		s.completeLocked(domain.ReasonOutOfLives)
	case s.rules.fixedLength() && s.index == len(s.questions)-1:
		s.completeLocked(domain.ReasonQuestionsExhausted)
	}
	return a
}

func (s *Session) completeLocked(reason domain.CompletionReason) domain.SessionSummary {
	now := s.clock.Now()
	s.timer.Stop()
	s.stopStopwatchLocked(now)
	s.status = domain.StatusCompleted
	s.reason = reason
	s.endedAt = now

	sum := s.summarizeLocked()
	s.summary = &sum
	s.pending.summary = &sum
	s.queueLocked(events.SessionCompleted, events.SessionCompletedPayload{
		Score:      sum.Score,
		Accuracy:   sum.Accuracy,
		BestStreak: sum.BestStreak,
		Grade:      sum.Grade,
		Reason:     reason,
	})
	s.logger.Info("session completed",
		zap.String("reason", string(reason)),
		zap.Int("score", sum.Score),
		zap.Float64("accuracy", sum.Accuracy),
		zap.String("grade", string(sum.Grade)))
	return sum
}

func (s *Session) summarizeLocked() domain.SessionSummary {
	sum := domain.SessionSummary{
		SessionID:   s.id,
		Mode:        s.rules.Mode,
		Difficulty:  s.rules.Difficulty,
		Reason:      s.reason,
		Score:       s.score,
		Answered:    len(s.answers),
		BestStreak:  s.bestStreak,
		Duration:    s.endedAt.Sub(s.startedAt) - s.pausedTotal,
		CompletedAt: s.endedAt,
	}
	var total time.Duration
	for _, a := range s.answers {
		switch {
		case a.Correct:
			sum.Correct++
		case a.TimedOut:
			sum.TimedOut++
		case a.Skipped:
			sum.Skipped++
		}
		total += a.ResponseTime
	}
	if sum.Answered > 0 {
		sum.Accuracy = float64(sum.Correct) * 100 / float64(sum.Answered)
		sum.AverageResponse = total / time.Duration(sum.Answered)
	}
	sum.Grade = domain.GradeFor(sum.Accuracy)
	return sum
}

func (s *Session) presentLocked() {
	s.resolved = false
	s.questionElapsed = 0
	s.startStopwatchLocked(s.clock.Now())
	if !s.rules.sessionClock() && s.rules.TimePerQuestion > 0 {
		s.timer.Arm(s.rules.TimePerQuestion)
	}
	limit := s.rules.TimePerQuestion
	if s.rules.sessionClock() {
		limit = s.timer.Remaining()
	}
	s.queueLocked(events.QuestionChanged, events.QuestionChangedPayload{
		Index:     s.index,
		Question:  s.questions[s.index],
		TimeLimit: limit,
		Lives:     s.lives,
		Score:     s.score,
	})
}

func (s *Session) startStopwatchLocked(now time.Time) {
	s.questionStart = now
	s.stopwatchOn = true
}

func (s *Session) stopStopwatchLocked(now time.Time) time.Duration {
	if s.stopwatchOn {
		s.questionElapsed += now.Sub(s.questionStart)
		s.stopwatchOn = false
	}
	return s.questionElapsed
}

func (s *Session) requireActiveLocked(op string) error {
	if s.status != domain.StatusActive {
		return &domain.TransitionError{Op: op, Status: s.status}
	}
	return nil
}

func (s *Session) requireUnresolvedLocked(op string) error {
	if err := s.requireActiveLocked(op); err != nil {
		return err
	}
	if s.resolved {
		return &domain.TransitionError{Op: op, Status: s.status, Detail: "question already resolved"}
	}
	return nil
}

func (s *Session) queueLocked(t events.Type, payload any) {
	s.pending.events = append(s.pending.events, events.Event{
		Type:      t,
		SessionID: s.id,
		At:        s.clock.Now(),
		Payload:   payload,
	})
}

// mutate runs fn under the lock, then delivers whatever fn produced. Effects
// from every mutation go through one queue so hooks and events never overtake
// each other, even when the timer and a caller mutate concurrently.
func (s *Session) mutate(fn func() error) error {
	s.mu.Lock()
	err := fn()
	if !s.pending.empty() {
		s.outbox = append(s.outbox, s.pending)
	}
	s.pending = effects{}
	if s.draining {
		s.mu.Unlock()
		return err
	}
	s.draining = true
	for len(s.outbox) > 0 {
		fx := s.outbox[0]
		s.outbox = s.outbox[1:]
		s.mu.Unlock()
		s.deliver(fx)
		s.mu.Lock()
	}
	s.draining = false
	s.mu.Unlock()
	return err
}

func (s *Session) deliver(fx effects) {
	if s.hooks.OnAnswer != nil {
		for _, r := range fx.answers {
			s.hooks.OnAnswer(r.answer, r.question)
		}
	}
	if s.notify != nil && len(fx.events) > 0 {
		s.notify.Emit(fx.events...)
	}
	if fx.summary != nil && s.hooks.OnComplete != nil {
		s.hooks.OnComplete(*fx.summary)
	}
}

func (fx effects) empty() bool {
	return len(fx.events) == 0 && len(fx.answers) == 0 && fx.summary == nil
}
