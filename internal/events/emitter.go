// Package events carries engine notifications to presentation layers.
package events

import (
	"sync"
	"time"

	"hero-trivia-engine/internal/domain"
)

// Type names an engine event on the wire.
type Type string

const (
	QuestionChanged     Type = "question-changed"
	AnswerResult        Type = "answer-result"
	SessionCompleted    Type = "session-completed"
	AchievementUnlocked Type = "achievement-unlocked"
	TimerTick           Type = "timer-tick"
)

// Event is one notification. Payload holds the matching *Payload struct.
type Event struct {
	Type      Type      `json:"type"`
	SessionID string    `json:"sessionId,omitempty"`
	At        time.Time `json:"at"`
	Payload   any       `json:"payload"`
}

// QuestionChangedPayload announces the question now on screen.
type QuestionChangedPayload struct {
	Index     int             `json:"index"`
	Question  domain.Question `json:"question"`
	TimeLimit time.Duration   `json:"timeLimit"`
	Lives     int             `json:"lives"`
	Score     int             `json:"score"`
}

// AnswerResultPayload reports how the current question resolved.
type AnswerResultPayload struct {
	QuestionID   string `json:"questionId"`
	Correct      bool   `json:"correct"`
	TimedOut     bool   `json:"timedOut"`
	Skipped      bool   `json:"skipped"`
	PointsEarned int    `json:"pointsEarned"`
	CorrectIndex int    `json:"correctIndex"`
	Explanation  string `json:"explanation"`
	Score        int    `json:"score"`
	Streak       int    `json:"streak"`
	Lives        int    `json:"lives"`
}

// SessionCompletedPayload summarises a finished session.
type SessionCompletedPayload struct {
	Score      int                     `json:"score"`
	Accuracy   float64                 `json:"accuracy"`
	BestStreak int                     `json:"bestStreak"`
	Grade      domain.Grade            `json:"grade"`
	Reason     domain.CompletionReason `json:"reason"`
}

// AchievementUnlockedPayload is a transient notification; clients hide it after DismissAfter.
type AchievementUnlockedPayload struct {
	Achievement  domain.Achievement `json:"achievement"`
	DismissAfter time.Duration      `json:"dismissAfter"`
}

// TimerTickPayload drives countdown displays.
type TimerTickPayload struct {
	Remaining time.Duration `json:"remaining"`
}

// Handler receives events synchronously on the emitting goroutine.
type Handler func(Event)

type subscription struct {
	id uint64
	fn Handler
}

// Emitter fans events out to subscribers in subscription order.
type Emitter struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscription
}

func NewEmitter() *Emitter {
	return &Emitter{}
}

// Subscribe registers fn. The returned cancel func is idempotent.
func (e *Emitter) Subscribe(fn Handler) func() {
	e.mu.Lock()
	e.nextID++
	id := e.nextID
	e.subs = append(e.subs, subscription{id: id, fn: fn})
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, s := range e.subs {
			if s.id == id {
				e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
				return
			}
		}
	}
}

// SubscribeChan delivers events on a buffered channel. When the buffer is full the
// oldest queued event is dropped so a slow reader never blocks the engine.
func (e *Emitter) SubscribeChan(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)
	var mu sync.Mutex
	closed := false

	cancelSub := e.Subscribe(func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- ev:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	})

	cancel := func() {
		cancelSub()
		mu.Lock()
		defer mu.Unlock()
		if !closed {
			closed = true
			close(ch)
		}
	}
	return ch, cancel
}

// Emit delivers events in order. Handlers run outside the emitter lock and may subscribe or cancel.
func (e *Emitter) Emit(events ...Event) {
	if len(events) == 0 {
		return
	}
	e.mu.RLock()
	subs := make([]subscription, len(e.subs))
	copy(subs, e.subs)
	e.mu.RUnlock()

	for _, ev := range events {
		for _, s := range subs {
			s.fn(ev)
		}
	}
}
