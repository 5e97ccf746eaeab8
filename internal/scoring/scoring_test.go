package scoring

import (
	"testing"
	"time"

	"hero-trivia-engine/internal/domain"
)

func TestPoints(t *testing.T) {
	limit := 30 * time.Second
	cases := []struct {
		name     string
		base     int
		correct  bool
		response time.Duration
		streak   int
		active   float64
		want     int
	}{
		{"medium streak five fast", 20, true, 3 * time.Second, 5, 1, 60},
		{"incorrect earns nothing", 20, false, time.Second, 9, 2, 0},
		{"slow single answer", 10, true, 20 * time.Second, 1, 1, 10},
		{"under half the limit", 10, true, 14 * time.Second, 1, 1, 12},
		{"exactly thirty percent is not fast", 10, true, 9 * time.Second, 1, 1, 12},
		{"exactly half is not quick", 10, true, 15 * time.Second, 1, 1, 10},
		{"streak three rounds half up", 10, true, 3 * time.Second, 3, 1, 23},
		{"streak ten", 30, true, 25 * time.Second, 10, 1, 90},
		{"power-up doubles", 10, true, 25 * time.Second, 1, 2, 20},
		{"zero multiplier treated as none", 10, true, 25 * time.Second, 1, 0, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Points(tc.base, tc.correct, tc.response, limit, tc.streak, tc.active)
			if got != tc.want {
				t.Fatalf("Points() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestBasePoints(t *testing.T) {
	if BasePoints(domain.DifficultyEasy) != 10 || BasePoints(domain.DifficultyMedium) != 20 || BasePoints(domain.DifficultyHard) != 30 {
		t.Fatalf("unexpected base points")
	}
}

func TestTimeBonusWithoutLimit(t *testing.T) {
	if got := TimeBonus(time.Second, 0); got != 1 {
		t.Fatalf("expected no bonus without a limit, got %v", got)
	}
}
