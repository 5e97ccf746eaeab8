package app_test

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"sync"
	"testing"
	"time"

	"hero-trivia-engine/internal/app"
	"hero-trivia-engine/internal/clock"
	"hero-trivia-engine/internal/domain"
	"hero-trivia-engine/internal/events"
	"hero-trivia-engine/internal/scoring"
)

func TestStoryScenario(t *testing.T) {
	h := newHarness(t, domain.ModeStory, domain.DifficultyEasy, app.StartConfig{QuestionCount: 8, TimePerQuestionSec: 30})
	if snap := h.session.Snapshot(); snap.Lives != 3 || len(snap.Questions) != 8 || snap.Status != domain.StatusActive {
		t.Fatalf("unexpected start state %+v", snap)
	}

	wantPoints := []int{15, 15, 23, 23, 30}
	for i := 0; i < 5; i++ {
		h.clock.Advance(3 * time.Second)
		a := h.answer(correctIndex)
		if !a.Correct || a.Points != wantPoints[i] {
			t.Fatalf("question %d: expected %d points, got %+v", i+1, wantPoints[i], a)
		}
		if got := h.session.Snapshot().Streak; got != i+1 {
			t.Fatalf("question %d: expected streak %d, got %d", i+1, i+1, got)
		}
		h.next()
	}

	h.clock.Advance(3 * time.Second)
	a := h.answer(wrongIndex)
	snap := h.session.Snapshot()
	if a.Correct || a.Points != 0 || snap.Streak != 0 || snap.Lives != 2 {
		t.Fatalf("question 6: expected miss with streak 0 and 2 lives, got %+v / %+v", a, snap)
	}
	h.next()

	h.clock.Advance(3 * time.Second)
	if a := h.answer(correctIndex); a.Points != 15 || h.session.Snapshot().Streak != 1 {
		t.Fatalf("question 7: expected 15 points and streak 1, got %+v", a)
	}
	h.next()

	h.clock.Advance(30 * time.Second)
	snap = h.session.Snapshot()
	if snap.Status != domain.StatusCompleted || snap.Reason != domain.ReasonQuestionsExhausted {
		t.Fatalf("expected completion by exhausted questions, got %s/%s", snap.Status, snap.Reason)
	}
	if snap.Lives != 1 {
		t.Fatalf("expected 1 life left, got %d", snap.Lives)
	}
	last := snap.Answers[len(snap.Answers)-1]
	if !last.TimedOut || last.ChosenIndex != domain.TimeoutIndex || last.ResponseTime != 30*time.Second {
		t.Fatalf("expected timed-out final answer, got %+v", last)
	}
	if snap.Score != 121 || snap.Score != sumPoints(snap.Answers) {
		t.Fatalf("expected score 121 equal to answer sum %d, got %d", sumPoints(snap.Answers), snap.Score)
	}

	if len(h.completed) != 1 {
		t.Fatalf("expected one completion hook call, got %d", len(h.completed))
	}
	sum := h.completed[0]
	if sum.Answered != 8 || sum.Correct != 6 || sum.TimedOut != 1 || sum.BestStreak != 5 || sum.Grade != domain.GradeB {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if len(h.recorded) != 8 {
		t.Fatalf("expected 8 answers recorded, got %d", len(h.recorded))
	}

	types := h.eventTypes()
	if types[0] != events.QuestionChanged || types[len(types)-1] != events.SessionCompleted {
		t.Fatalf("unexpected event ordering %v", types)
	}
	if n := h.count(events.AnswerResult); n != 8 {
		t.Fatalf("expected 8 answer-result events, got %d", n)
	}
}

func TestStoryEndsWhenLivesRunOut(t *testing.T) {
	h := newHarness(t, domain.ModeStory, domain.DifficultyMedium, app.StartConfig{})
	h.answer(wrongIndex)
	h.next()
	if _, err := h.session.Timeout(); err != nil {
		t.Fatalf("timeout: %v", err)
	}
	h.next()
	h.answer(wrongIndex)

	snap := h.session.Snapshot()
	if snap.Lives != 0 || snap.Status != domain.StatusCompleted || snap.Reason != domain.ReasonOutOfLives {
		t.Fatalf("expected out of lives, got %+v", snap)
	}
	if len(snap.Questions) != 10 || len(snap.Answers) != 3 {
		t.Fatalf("expected 3 of 10 questions answered, got %d/%d", len(snap.Answers), len(snap.Questions))
	}
}

func TestCompletedSessionRejectsMutation(t *testing.T) {
	h := newHarness(t, domain.ModeStory, domain.DifficultyEasy, app.StartConfig{QuestionCount: 3})
	h.answer(correctIndex)
	if _, err := h.session.EndEarly(); err != nil {
		t.Fatalf("end early: %v", err)
	}
	before := h.session.Snapshot()

	calls := map[string]func() error{
		"submit":  func() error { _, err := h.session.SubmitAnswer(0); return err },
		"timeout": func() error { _, err := h.session.Timeout(); return err },
		"skip":    func() error { _, err := h.session.Skip(); return err },
		"next":    h.session.NextQuestion,
		"pause":   h.session.Pause,
		"resume":  h.session.Resume,
		"start":   func() error { return h.session.Start(app.Rules{Mode: domain.ModeStory}) },
		"end":     func() error { _, err := h.session.EndEarly(); return err },
		"finish":  func() error { _, err := h.session.Complete(); return err },
		"powerup": func() error { return h.session.ActivatePowerUp(2, 1) },
	}
	for name, call := range calls {
		if err := call(); !errors.Is(err, domain.ErrInvalidTransition) {
			t.Fatalf("%s: expected invalid transition, got %v", name, err)
		}
	}
	h.clock.Advance(time.Minute)

	if after := h.session.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Fatalf("completed session changed:\nbefore %+v\nafter  %+v", before, after)
	}
	if len(h.completed) != 1 {
		t.Fatalf("expected a single completion, got %d", len(h.completed))
	}
}

func TestSecondAnswerForResolvedQuestionIsRejected(t *testing.T) {
	h := newHarness(t, domain.ModeStory, domain.DifficultyEasy, app.StartConfig{QuestionCount: 3})
	h.answer(correctIndex)

	if _, err := h.session.SubmitAnswer(correctIndex); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition for second answer, got %v", err)
	}
	if _, err := h.session.Timeout(); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition for timeout after answer, got %v", err)
	}
	h.clock.Advance(time.Minute)
	if n := len(h.session.Snapshot().Answers); n != 1 {
		t.Fatalf("timer fired against a resolved question: %d answers", n)
	}
}

func TestNextQuestionRequiresResolution(t *testing.T) {
	h := newHarness(t, domain.ModeStory, domain.DifficultyEasy, app.StartConfig{QuestionCount: 3})
	if err := h.session.NextQuestion(); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestInvalidOptionLeavesSessionUntouched(t *testing.T) {
	h := newHarness(t, domain.ModeStory, domain.DifficultyEasy, app.StartConfig{QuestionCount: 3})
	before := h.session.Snapshot()
	if _, err := h.session.SubmitAnswer(7); !errors.Is(err, domain.ErrInvalidOption) {
		t.Fatalf("expected invalid option, got %v", err)
	}
	if after := h.session.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Fatalf("invalid option mutated session")
	}
}

func TestPauseFreezesTimerAndForbidsMutation(t *testing.T) {
	h := newHarness(t, domain.ModeStory, domain.DifficultyEasy, app.StartConfig{QuestionCount: 3, TimePerQuestionSec: 30})
	h.clock.Advance(10 * time.Second)
	if err := h.session.Pause(); err != nil {
		t.Fatalf("pause: %v", err)
	}
	h.clock.Advance(10 * time.Minute)

	if _, err := h.session.SubmitAnswer(correctIndex); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected answer while paused to fail, got %v", err)
	}
	if err := h.session.Pause(); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected double pause to fail, got %v", err)
	}
	snap := h.session.Snapshot()
	if snap.Status != domain.StatusPaused || len(snap.Answers) != 0 || snap.TimeRemaining != 20*time.Second {
		t.Fatalf("unexpected paused state %+v", snap)
	}

	if err := h.session.Resume(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	h.clock.Advance(4 * time.Second)
	a := h.answer(correctIndex)
	if a.ResponseTime != 14*time.Second {
		t.Fatalf("expected paused time excluded from response time, got %v", a.ResponseTime)
	}
	if a.Points != 12 {
		t.Fatalf("expected 1.2x time bonus at 50%% threshold, got %d", a.Points)
	}
}

func TestTimerRunsOutAfterResume(t *testing.T) {
	h := newHarness(t, domain.ModeStory, domain.DifficultyEasy, app.StartConfig{QuestionCount: 3, TimePerQuestionSec: 30})
	h.clock.Advance(25 * time.Second)
	_ = h.session.Pause()
	h.clock.Advance(time.Hour)
	_ = h.session.Resume()
	h.clock.Advance(4 * time.Second)
	if n := len(h.session.Snapshot().Answers); n != 0 {
		t.Fatalf("timed out too early")
	}
	h.clock.Advance(time.Second)
	snap := h.session.Snapshot()
	if len(snap.Answers) != 1 || !snap.Answers[0].TimedOut || snap.Lives != 2 {
		t.Fatalf("expected one timeout costing a life, got %+v", snap)
	}
}

func TestSkipEndsSurvivalLikeAMiss(t *testing.T) {
	h := newHarness(t, domain.ModeSurvival, domain.DifficultyEasy, app.StartConfig{})
	h.answer(correctIndex)
	h.next()
	a, err := h.session.Skip()
	if err != nil {
		t.Fatalf("skip: %v", err)
	}
	snap := h.session.Snapshot()
	if !a.Skipped || a.Correct || a.Points != 0 || snap.Streak != 0 || snap.Lives != 0 {
		t.Fatalf("unexpected skip outcome %+v / %+v", a, snap)
	}
	if snap.Status != domain.StatusCompleted || snap.Reason != domain.ReasonOutOfLives {
		t.Fatalf("expected skip to end survival, got %s/%s", snap.Status, snap.Reason)
	}
	if len(h.completed) != 1 || h.completed[0].Answered != 2 || h.completed[0].Skipped != 1 {
		t.Fatalf("unexpected summary %+v", h.completed)
	}
}

func TestSkipCostsALifeInStory(t *testing.T) {
	h := newHarness(t, domain.ModeStory, domain.DifficultyEasy, app.StartConfig{QuestionCount: 5})
	if _, err := h.session.Skip(); err != nil {
		t.Fatalf("skip: %v", err)
	}
	if snap := h.session.Snapshot(); snap.Lives != 2 || snap.Status != domain.StatusActive {
		t.Fatalf("expected one life lost, got %+v", snap)
	}
}

func TestSurvivalRegeneratesUntilLifeLost(t *testing.T) {
	h := newHarness(t, domain.ModeSurvival, domain.DifficultyHard, app.StartConfig{})
	for i := 0; i < 12; i++ {
		snap := h.session.Snapshot()
		if len(snap.Questions) != snap.CurrentIndex+1 {
			t.Fatalf("expected lazily extended questions, got %d for index %d", len(snap.Questions), snap.CurrentIndex)
		}
		h.answer(correctIndex)
		h.next()
	}
	h.answer(wrongIndex)
	snap := h.session.Snapshot()
	if snap.Status != domain.StatusCompleted || snap.Reason != domain.ReasonOutOfLives || len(snap.Answers) != 13 {
		t.Fatalf("expected survival to end on first miss, got %+v", snap)
	}
	if snap.BestStreak != 12 {
		t.Fatalf("expected best streak 12, got %d", snap.BestStreak)
	}
}

func TestBlitzClocksOut(t *testing.T) {
	h := newHarness(t, domain.ModeBlitz, domain.DifficultyMedium, app.StartConfig{TotalTimeSec: 10})
	if snap := h.session.Snapshot(); snap.Lives != 0 || snap.TimeRemaining != 10*time.Second {
		t.Fatalf("unexpected blitz start %+v", snap)
	}
	for i := 0; i < 4; i++ {
		h.clock.Advance(2 * time.Second)
		idx := correctIndex
		if i == 2 {
			idx = wrongIndex
		}
		h.answer(idx)
		h.next()
	}
	if snap := h.session.Snapshot(); snap.Status != domain.StatusActive || snap.Lives != 0 {
		t.Fatalf("blitz should ignore lives, got %+v", snap)
	}

	h.clock.Advance(2 * time.Second)
	snap := h.session.Snapshot()
	if snap.Status != domain.StatusCompleted || snap.Reason != domain.ReasonTimeUp {
		t.Fatalf("expected blitz to clock out, got %s/%s", snap.Status, snap.Reason)
	}
	if len(snap.Answers) != 4 || snap.Score != sumPoints(snap.Answers) {
		t.Fatalf("unexpected blitz result %+v", snap)
	}
}

func TestBlitzTimeoutRecordsTimeSpent(t *testing.T) {
	h := newHarness(t, domain.ModeBlitz, domain.DifficultyEasy, app.StartConfig{TotalTimeSec: 10})
	h.clock.Advance(3 * time.Second)
	a, err := h.session.Timeout()
	if err != nil {
		t.Fatalf("timeout: %v", err)
	}
	if !a.TimedOut || a.ResponseTime != 3*time.Second {
		t.Fatalf("expected 3s response time, got %+v", a)
	}
	if snap := h.session.Snapshot(); snap.Status != domain.StatusActive || snap.TimeRemaining != 7*time.Second {
		t.Fatalf("timeout should not touch the session clock, got %+v", snap)
	}
}

func TestEffectsRaisedDuringDeliveryKeepOrder(t *testing.T) {
	clk := clock.NewManual(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	n := &answeringNotifier{}
	n.session = app.NewSession("s1", &fixedSource{}, clk, time.Second, n, app.Hooks{
		OnAnswer:   func(domain.PlayerAnswer, domain.Question) { n.log = append(n.log, "recorded") },
		OnComplete: func(domain.SessionSummary) { n.log = append(n.log, "folded") },
	}, nil)
	rules, err := app.RulesFor(domain.ModeStory, domain.DifficultyEasy, app.StartConfig{QuestionCount: 1}, app.DefaultDefaults())
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	if err := n.session.Start(rules); err != nil {
		t.Fatalf("start: %v", err)
	}

	want := []string{
		string(events.QuestionChanged),
		"recorded",
		string(events.AnswerResult),
		string(events.SessionCompleted),
		"folded",
	}
	if !reflect.DeepEqual(n.log, want) {
		t.Fatalf("expected %v, got %v", want, n.log)
	}
}

func TestCompletionHookSeesEveryRecordedAnswer(t *testing.T) {
	for round := 0; round < 25; round++ {
		clk := clock.NewManual(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
		var recorded, recordedAtFold, answered int
		folds := 0
		session := app.NewSession("s1", &fixedSource{}, clk, time.Second, nil, app.Hooks{
			OnAnswer: func(domain.PlayerAnswer, domain.Question) { recorded++ },
			OnComplete: func(sum domain.SessionSummary) {
				folds++
				recordedAtFold = recorded
				answered = sum.Answered
			},
		}, nil)
		rules, err := app.RulesFor(domain.ModeBlitz, domain.DifficultyEasy, app.StartConfig{TotalTimeSec: 5}, app.DefaultDefaults())
		if err != nil {
			t.Fatalf("rules: %v", err)
		}
		if err := session.Start(rules); err != nil {
			t.Fatalf("start: %v", err)
		}

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for session.Status() == domain.StatusActive {
				if _, err := session.SubmitAnswer(correctIndex); err == nil {
					_ = session.NextQuestion()
				}
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 5; i++ {
				clk.Advance(time.Second)
			}
		}()
		wg.Wait()

		if folds != 1 || recordedAtFold != answered || recorded != answered {
			t.Fatalf("round %d: folds=%d recorded=%d at fold=%d answered=%d", round, folds, recorded, recordedAtFold, answered)
		}
	}
}

func TestAbandonStopsTimer(t *testing.T) {
	h := newHarness(t, domain.ModeStory, domain.DifficultyEasy, app.StartConfig{QuestionCount: 3})
	h.session.Abandon()
	h.clock.Advance(time.Hour)

	snap := h.session.Snapshot()
	if snap.Status != domain.StatusCompleted || snap.Reason != domain.ReasonAbandoned || len(snap.Answers) != 0 {
		t.Fatalf("unexpected abandoned state %+v", snap)
	}
	if h.clock.Pending() != 0 {
		t.Fatalf("abandoned session still has %d timer callbacks", h.clock.Pending())
	}
	if len(h.completed) != 0 {
		t.Fatalf("abandoned session must not be folded into the profile")
	}
	if err := h.session.Resume(); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected abandoned session to be non-resumable, got %v", err)
	}
}

func TestPowerUpMultipliesNextAnswers(t *testing.T) {
	h := newHarness(t, domain.ModeStory, domain.DifficultyEasy, app.StartConfig{QuestionCount: 4, TimePerQuestionSec: 30})
	if err := h.session.ActivatePowerUp(2, 1); err != nil {
		t.Fatalf("activate: %v", err)
	}
	h.clock.Advance(20 * time.Second)
	if a := h.answer(correctIndex); a.Points != 20 {
		t.Fatalf("expected doubled points, got %d", a.Points)
	}
	h.next()
	h.clock.Advance(20 * time.Second)
	if a := h.answer(correctIndex); a.Points != 10 {
		t.Fatalf("expected power-up to have expired, got %d", a.Points)
	}
}

func TestScoreAlwaysEqualsSumOfAnswerPoints(t *testing.T) {
	modes := []domain.Mode{domain.ModeStory, domain.ModeSurvival, domain.ModeBlitz, domain.ModeMultiplayer}
	for seed := int64(1); seed <= 20; seed++ {
		for _, mode := range modes {
			rnd := rand.New(rand.NewSource(seed))
			h := newHarness(t, mode, domain.DifficultyMedium, app.StartConfig{QuestionCount: 6, TotalTimeSec: 40})
			for step := 0; step < 50 && h.session.Status() == domain.StatusActive; step++ {
				h.clock.Advance(time.Duration(rnd.Intn(12)) * time.Second)
				if h.session.Status() != domain.StatusActive {
					break
				}
				snap := h.session.Snapshot()
				if len(snap.Answers) == snap.CurrentIndex {
					var a domain.PlayerAnswer
					var err error
					switch rnd.Intn(4) {
					case 0:
						a, err = h.session.Skip()
					case 1:
						a, err = h.session.SubmitAnswer(wrongIndex)
					default:
						a, err = h.session.SubmitAnswer(correctIndex)
					}
					if err != nil {
						t.Fatalf("seed %d %s: answer: %v", seed, mode, err)
					}
					after := h.session.Snapshot()
					if want := trailingCorrect(after.Answers); after.Streak != want || (a.Correct && want < 1) {
						t.Fatalf("seed %d %s: streak %d, want %d", seed, mode, after.Streak, want)
					}
				} else if h.session.Status() == domain.StatusActive {
					if err := h.session.NextQuestion(); err != nil {
						t.Fatalf("seed %d %s: next: %v", seed, mode, err)
					}
				}
			}
			if h.session.Status() == domain.StatusActive {
				_, _ = h.session.EndEarly()
			}
			snap := h.session.Snapshot()
			if snap.Score != sumPoints(snap.Answers) {
				t.Fatalf("seed %d %s: score %d != sum %d", seed, mode, snap.Score, sumPoints(snap.Answers))
			}
			if snap.Lives < 0 {
				t.Fatalf("seed %d %s: negative lives", seed, mode)
			}
		}
	}
}

const (
	correctIndex = 1
	wrongIndex   = 2
)

type fixedSource struct{ n int }

func (f *fixedSource) Generate(d domain.Difficulty) domain.Question {
	f.n++
	return domain.Question{
		ID:           fmt.Sprintf("q%d", f.n),
		Archetype:    domain.ArchetypeIdentity,
		Difficulty:   d,
		Prompt:       "Which hero is secretly Peter Parker?",
		Options:      []string{"Batman", "Spider-Man", "Hulk", "Iron Man"},
		CorrectIndex: correctIndex,
		Explanation:  "Peter Parker is the secret identity of Spider-Man.",
		Points:       scoring.BasePoints(d),
	}
}

// answeringNotifier answers the first question from inside event delivery.
type answeringNotifier struct {
	session  *app.Session
	answered bool
	log      []string
}

func (n *answeringNotifier) Emit(evs ...events.Event) {
	for _, ev := range evs {
		if ev.Type == events.TimerTick {
			continue
		}
		if ev.Type == events.QuestionChanged && !n.answered {
			n.answered = true
			_, _ = n.session.SubmitAnswer(correctIndex)
		}
		n.log = append(n.log, string(ev.Type))
	}
}

type harness struct {
	t         *testing.T
	clock     *clock.Manual
	session   *app.Session
	events    []events.Event
	recorded  []domain.PlayerAnswer
	completed []domain.SessionSummary
}

func newHarness(t *testing.T, mode domain.Mode, difficulty domain.Difficulty, cfg app.StartConfig) *harness {
	t.Helper()
	h := &harness{t: t, clock: clock.NewManual(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))}
	emitter := events.NewEmitter()
	emitter.Subscribe(func(ev events.Event) { h.events = append(h.events, ev) })

	rules, err := app.RulesFor(mode, difficulty, cfg, app.DefaultDefaults())
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	h.session = app.NewSession("s1", &fixedSource{}, h.clock, time.Second, emitter, app.Hooks{
		OnAnswer:   func(a domain.PlayerAnswer, _ domain.Question) { h.recorded = append(h.recorded, a) },
		OnComplete: func(sum domain.SessionSummary) { h.completed = append(h.completed, sum) },
	}, nil)
	if err := h.session.Start(rules); err != nil {
		t.Fatalf("start: %v", err)
	}
	return h
}

func (h *harness) answer(index int) domain.PlayerAnswer {
	h.t.Helper()
	a, err := h.session.SubmitAnswer(index)
	if err != nil {
		h.t.Fatalf("submit answer: %v", err)
	}
	return a
}

func (h *harness) next() {
	h.t.Helper()
	if err := h.session.NextQuestion(); err != nil {
		h.t.Fatalf("next question: %v", err)
	}
}

func (h *harness) eventTypes() []events.Type {
	out := make([]events.Type, 0, len(h.events))
	for _, ev := range h.events {
		if ev.Type != events.TimerTick {
			out = append(out, ev.Type)
		}
	}
	return out
}

func (h *harness) count(t events.Type) int {
	n := 0
	for _, ev := range h.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func trailingCorrect(answers []domain.PlayerAnswer) int {
	n := 0
	for i := len(answers) - 1; i >= 0 && answers[i].Correct; i-- {
		n++
	}
	return n
}

func sumPoints(answers []domain.PlayerAnswer) int {
	total := 0
	for _, a := range answers {
		total += a.Points
	}
	return total
}
