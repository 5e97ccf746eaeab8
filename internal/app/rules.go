package app

import (
	"time"

	"hero-trivia-engine/internal/domain"
)

// StartConfig carries the optional per-game overrides a client may send.
type StartConfig struct {
	QuestionCount      int `json:"questionCount,omitempty"`
	TimePerQuestionSec int `json:"timePerQuestionSec,omitempty"`
	TotalTimeSec       int `json:"totalTimeSec,omitempty"`
}

// Defaults are the operator-configured rule values.
type Defaults struct {
	StoryQuestions  int
	BlitzTime       time.Duration
	TimePerQuestion map[domain.Difficulty]time.Duration
	TickResolution  time.Duration
	DismissAfter    time.Duration
}

// DefaultDefaults mirrors config.yaml's shipped values.
func DefaultDefaults() Defaults {
	return Defaults{
		StoryQuestions: 10,
		BlitzTime:      60 * time.Second,
		TimePerQuestion: map[domain.Difficulty]time.Duration{
			domain.DifficultyEasy:   30 * time.Second,
			domain.DifficultyMedium: 20 * time.Second,
			domain.DifficultyHard:   15 * time.Second,
		},
		TickResolution: time.Second,
		DismissAfter:   4 * time.Second,
	}
}

// Rules are the resolved settings for one session.
type Rules struct {
	Mode       domain.Mode
	Difficulty domain.Difficulty
	// QuestionCount is 0 for modes that keep generating questions.
	QuestionCount int
	// Lives is 0 when the mode is not life-limited.
	Lives int
	// TimePerQuestion is the countdown per question and the scoring time limit.
	TimePerQuestion time.Duration
	// TotalTime is the whole-session budget; when set the per-question countdown is off.
	TotalTime time.Duration
}

func (r Rules) fixedLength() bool  { return r.QuestionCount > 0 }
func (r Rules) lifeLimited() bool  { return r.Lives > 0 }
func (r Rules) sessionClock() bool { return r.TotalTime > 0 }

// RulesFor resolves mode rules, applying cfg overrides on top of defaults.
func RulesFor(mode domain.Mode, difficulty domain.Difficulty, cfg StartConfig, d Defaults) (Rules, error) {
	if _, err := domain.ParseMode(string(mode)); err != nil {
		return Rules{}, err
	}
	if _, err := domain.ParseDifficulty(string(difficulty)); err != nil {
		return Rules{}, err
	}

	perQuestion := d.TimePerQuestion[difficulty]
	if cfg.TimePerQuestionSec > 0 {
		perQuestion = time.Duration(cfg.TimePerQuestionSec) * time.Second
	}
	r := Rules{Mode: mode, Difficulty: difficulty, TimePerQuestion: perQuestion}

	switch mode {
	case domain.ModeStory, domain.ModeMultiplayer:
		r.QuestionCount = d.StoryQuestions
		if cfg.QuestionCount > 0 {
			r.QuestionCount = cfg.QuestionCount
		}
		if r.QuestionCount <= 0 {
			r.QuestionCount = 10
		}
		r.Lives = 3
	case domain.ModeSurvival:
		r.Lives = 1
	case domain.ModeBlitz:
		r.TotalTime = d.BlitzTime
		if cfg.TotalTimeSec > 0 {
			r.TotalTime = time.Duration(cfg.TotalTimeSec) * time.Second
		}
		if r.TotalTime <= 0 {
			r.TotalTime = 60 * time.Second
		}
	}
	return r, nil
}
