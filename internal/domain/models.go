package domain

import "time"

// Archetype is the kind of fact a question asks about.
type Archetype string

const (
	ArchetypeIdentity        Archetype = "identity"
	ArchetypePowers          Archetype = "powers"
	ArchetypeRealName        Archetype = "realName"
	ArchetypeFirstAppearance Archetype = "firstAppearance"
	ArchetypeCreators        Archetype = "creators"
	ArchetypeTrivia          Archetype = "trivia"
)

// Difficulty controls base points, time limits and the archetypes in play.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty validates a difficulty name.
func ParseDifficulty(raw string) (Difficulty, error) {
	switch d := Difficulty(raw); d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, nil
	}
	return "", ErrUnknownDifficulty
}

// Mode selects the rules a session is played under.
type Mode string

const (
	ModeStory       Mode = "story"
	ModeBlitz       Mode = "blitz"
	ModeSurvival    Mode = "survival"
	ModeMultiplayer Mode = "multiplayer"
)

// ParseMode validates a mode name.
func ParseMode(raw string) (Mode, error) {
	switch m := Mode(raw); m {
	case ModeStory, ModeBlitz, ModeSurvival, ModeMultiplayer:
		return m, nil
	}
	return "", ErrUnknownMode
}

// SessionStatus is the state of a game session.
type SessionStatus string

const (
	StatusIdle      SessionStatus = "idle"
	StatusActive    SessionStatus = "active"
	StatusPaused    SessionStatus = "paused"
	StatusCompleted SessionStatus = "completed"
)

// CompletionReason records why a session reached completed.
type CompletionReason string

const (
	ReasonQuestionsExhausted CompletionReason = "questions-exhausted"
	ReasonOutOfLives         CompletionReason = "out-of-lives"
	ReasonTimeUp             CompletionReason = "time-up"
	ReasonEndedEarly         CompletionReason = "ended-early"
	ReasonAbandoned          CompletionReason = "abandoned"
)

// Subject is one entry of the question dataset.
type Subject struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	RealName        string   `json:"realName"`
	Powers          string   `json:"powers"`
	FirstAppearance string   `json:"firstAppearance"`
	Creators        string   `json:"creators"`
	Trivia          []string `json:"trivia"`
}

// Question is generated on demand and never persisted individually.
type Question struct {
	ID           string     `json:"id"`
	Archetype    Archetype  `json:"archetype"`
	Difficulty   Difficulty `json:"difficulty"`
	Prompt       string     `json:"prompt"`
	Options      []string   `json:"options"`
	CorrectIndex int        `json:"-"`
	Explanation  string     `json:"explanation"`
	Points       int        `json:"points"`
	SubjectID    string     `json:"subjectId"`
}

// TimeoutIndex marks an answer that was never chosen.
const TimeoutIndex = -1

// PlayerAnswer is immutable once appended to a session.
type PlayerAnswer struct {
	QuestionID   string        `json:"questionId"`
	ChosenIndex  int           `json:"chosenIndex"`
	Correct      bool          `json:"correct"`
	TimedOut     bool          `json:"timedOut"`
	Skipped      bool          `json:"skipped"`
	ResponseTime time.Duration `json:"responseTime"`
	Points       int           `json:"points"`
}

// GameSession is a read-only snapshot of a session.
type GameSession struct {
	ID            string           `json:"id"`
	Mode          Mode             `json:"mode"`
	Difficulty    Difficulty       `json:"difficulty"`
	Questions     []Question       `json:"questions"`
	CurrentIndex  int              `json:"currentIndex"`
	Score         int              `json:"score"`
	Lives         int              `json:"lives"`
	Streak        int              `json:"streak"`
	BestStreak    int              `json:"bestStreak"`
	TimeRemaining time.Duration    `json:"timeRemaining"`
	Status        SessionStatus    `json:"status"`
	Reason        CompletionReason `json:"reason,omitempty"`
	Answers       []PlayerAnswer   `json:"answers"`
}

// SessionSummary is what a completed session is reduced to.
type SessionSummary struct {
	SessionID       string           `json:"sessionId"`
	Mode            Mode             `json:"mode"`
	Difficulty      Difficulty       `json:"difficulty"`
	Reason          CompletionReason `json:"reason"`
	Score           int              `json:"score"`
	Answered        int              `json:"answered"`
	Correct         int              `json:"correct"`
	TimedOut        int              `json:"timedOut"`
	Skipped         int              `json:"skipped"`
	BestStreak      int              `json:"bestStreak"`
	Accuracy        float64          `json:"accuracy"`
	Grade           Grade            `json:"grade"`
	AverageResponse time.Duration    `json:"averageResponse"`
	Duration        time.Duration    `json:"duration"`
	CompletedAt     time.Time        `json:"completedAt"`
}

// Rarity ranks achievements for display.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Achievement is a catalog entry; UnlockedAt is set on the profile's copy.
type Achievement struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Rarity      Rarity     `json:"rarity"`
	Points      int        `json:"points"`
	Criterion   string     `json:"criterion"`
	UnlockedAt  *time.Time `json:"unlockedAt,omitempty"`
}

// Statistics are lifetime aggregates.
type Statistics struct {
	QuestionsAnswered   int               `json:"questionsAnswered"`
	CorrectAnswers      int               `json:"correctAnswers"`
	TimedOutAnswers     int               `json:"timedOutAnswers"`
	SkippedAnswers      int               `json:"skippedAnswers"`
	AverageResponseTime time.Duration     `json:"averageResponseTime"`
	BestStreak          int               `json:"bestStreak"`
	TotalTimePlayed     time.Duration     `json:"totalTimePlayed"`
	FavoriteCategory    Archetype         `json:"favoriteCategory,omitempty"`
	CategoryCounts      map[Archetype]int `json:"categoryCounts,omitempty"`
}

// Accuracy returns correct answers as a percentage of all answers.
func (s Statistics) Accuracy() float64 {
	if s.QuestionsAnswered == 0 {
		return 0
	}
	return float64(s.CorrectAnswers) * 100 / float64(s.QuestionsAnswered)
}

// Settings are player preferences stored alongside the profile.
type Settings struct {
	SoundEnabled      bool       `json:"soundEnabled"`
	DefaultDifficulty Difficulty `json:"defaultDifficulty"`
}

// PlayerProfile is the only durably persisted unit.
type PlayerProfile struct {
	ID           string        `json:"id"`
	DisplayName  string        `json:"displayName"`
	Level        int           `json:"level"`
	Experience   int           `json:"experience"`
	Stats        Statistics    `json:"stats"`
	TotalScore   int           `json:"totalScore"`
	GamesPlayed  int           `json:"gamesPlayed"`
	Achievements []Achievement `json:"achievements"`
	Settings     Settings      `json:"settings"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// HasAchievement reports whether id is already unlocked.
func (p PlayerProfile) HasAchievement(id string) bool {
	for _, a := range p.Achievements {
		if a.ID == id {
			return true
		}
	}
	return false
}
