// Package achievements holds the static achievement catalog and the rule evaluator.
package achievements

import (
	"time"

	"hero-trivia-engine/internal/domain"
)

// Facts is what a rule can look at: the session that just finished and the
// profile after that session was folded in.
type Facts struct {
	Session domain.SessionSummary
	Profile domain.PlayerProfile
}

// Rule pairs a catalog entry with its unlock test.
type Rule struct {
	Achievement domain.Achievement
	Met         func(Facts) bool
}

// Catalog returns the fixed rule set. Rules that count unlocks come last so
// they see unlocks granted earlier in the same pass.
func Catalog() []Rule {
	return []Rule{
		{
			Achievement: domain.Achievement{ID: "first-answer", Name: "First Steps", Rarity: domain.RarityCommon, Points: 10,
				Description: "Answer your first question.", Criterion: "lifetime questions answered >= 1"},
			Met: func(f Facts) bool { return f.Profile.Stats.QuestionsAnswered >= 1 },
		},
		{
			Achievement: domain.Achievement{ID: "perfect-game", Name: "Flawless", Rarity: domain.RarityRare, Points: 100,
				Description: "Finish a game with every answer correct.", Criterion: "session accuracy 100% over at least 5 answers"},
			Met: func(f Facts) bool { return f.Session.Answered >= 5 && f.Session.Correct == f.Session.Answered },
		},
		{
			Achievement: domain.Achievement{ID: "streak-5", Name: "On Fire", Rarity: domain.RarityUncommon, Points: 25,
				Description: "Reach a streak of 5 in one game.", Criterion: "session best streak >= 5"},
			Met: func(f Facts) bool { return f.Session.BestStreak >= 5 },
		},
		{
			Achievement: domain.Achievement{ID: "streak-10", Name: "Unstoppable", Rarity: domain.RarityRare, Points: 50,
				Description: "Reach a streak of 10 in one game.", Criterion: "session best streak >= 10"},
			Met: func(f Facts) bool { return f.Session.BestStreak >= 10 },
		},
		{
			Achievement: domain.Achievement{ID: "speed-demon", Name: "Speed Demon", Rarity: domain.RarityRare, Points: 75,
				Description: "Average under 5 seconds per answer with at least 5 correct.", Criterion: "session average response < 5s and correct >= 5"},
			Met: func(f Facts) bool {
				return f.Session.Correct >= 5 && f.Session.AverageResponse > 0 && f.Session.AverageResponse < 5*time.Second
			},
		},
		{
			Achievement: domain.Achievement{ID: "survivor", Name: "Survivor", Rarity: domain.RarityEpic, Points: 150,
				Description: "Answer 20 questions correctly in one survival run.", Criterion: "survival session correct >= 20"},
			Met: func(f Facts) bool { return f.Session.Mode == domain.ModeSurvival && f.Session.Correct >= 20 },
		},
		{
			Achievement: domain.Achievement{ID: "blitz-master", Name: "Blitz Master", Rarity: domain.RarityRare, Points: 75,
				Description: "Score 500 points in a single blitz.", Criterion: "blitz session score >= 500"},
			Met: func(f Facts) bool { return f.Session.Mode == domain.ModeBlitz && f.Session.Score >= 500 },
		},
		{
			Achievement: domain.Achievement{ID: "score-1000", Name: "Point Collector", Rarity: domain.RarityUncommon, Points: 50,
				Description: "Earn 1,000 points across all games.", Criterion: "lifetime total score >= 1000"},
			Met: func(f Facts) bool { return f.Profile.TotalScore >= 1000 },
		},
		{
			Achievement: domain.Achievement{ID: "score-10000", Name: "High Roller", Rarity: domain.RarityEpic, Points: 200,
				Description: "Earn 10,000 points across all games.", Criterion: "lifetime total score >= 10000"},
			Met: func(f Facts) bool { return f.Profile.TotalScore >= 10000 },
		},
		{
			Achievement: domain.Achievement{ID: "veteran", Name: "Veteran", Rarity: domain.RarityUncommon, Points: 40,
				Description: "Play 10 games.", Criterion: "lifetime games played >= 10"},
			Met: func(f Facts) bool { return f.Profile.GamesPlayed >= 10 },
		},
		{
			Achievement: domain.Achievement{ID: "scholar", Name: "Scholar", Rarity: domain.RarityRare, Points: 100,
				Description: "Answer 100 questions correctly.", Criterion: "lifetime correct answers >= 100"},
			Met: func(f Facts) bool { return f.Profile.Stats.CorrectAnswers >= 100 },
		},
		{
			Achievement: domain.Achievement{ID: "collector", Name: "Collector", Rarity: domain.RarityLegendary, Points: 250,
				Description: "Unlock 5 other achievements.", Criterion: "unlocked achievements >= 5"},
			Met: func(f Facts) bool { return len(f.Profile.Achievements) >= 5 },
		},
	}
}

// Definitions lists the catalog entries without their rules.
func Definitions() []domain.Achievement {
	rules := Catalog()
	out := make([]domain.Achievement, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.Achievement)
	}
	return out
}
