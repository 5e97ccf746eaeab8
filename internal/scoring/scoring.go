// Package scoring converts answers into points.
package scoring

import (
	"math"
	"time"

	"hero-trivia-engine/internal/domain"
)

// BasePoints is the value of a correct answer before multipliers.
func BasePoints(d domain.Difficulty) int {
	switch d {
	case domain.DifficultyHard:
		return 30
	case domain.DifficultyMedium:
		return 20
	default:
		return 10
	}
}

// StreakMultiplier uses the streak including the answer being scored.
func StreakMultiplier(streak int) float64 {
	switch {
	case streak >= 10:
		return 3
	case streak >= 5:
		return 2
	case streak >= 3:
		return 1.5
	default:
		return 1
	}
}

// TimeBonus rewards answers given in under 30% or 50% of the limit.
func TimeBonus(response, limit time.Duration) float64 {
	if limit <= 0 {
		return 1
	}
	switch {
	case response*10 < limit*3:
		return 1.5
	case response*2 < limit:
		return 1.2
	default:
		return 1
	}
}

// Points is pure: incorrect or timed-out answers earn nothing, the caller resets the streak.
func Points(base int, correct bool, response, limit time.Duration, streakAfter int, active float64) int {
	if !correct {
		return 0
	}
	if active <= 0 {
		active = 1
	}
	return int(math.Round(float64(base) * StreakMultiplier(streakAfter) * TimeBonus(response, limit) * active))
}
