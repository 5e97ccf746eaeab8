// Package metrics exports engine activity as Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hero-trivia-engine/internal/events"
)

// Collector turns engine events into Prometheus series. It owns its registry
// so tests and multiple services never collide on the global one.
type Collector struct {
	registry *prometheus.Registry

	answers              *prometheus.CounterVec
	sessionsCompleted    *prometheus.CounterVec
	sessionScore         prometheus.Histogram
	achievementsUnlocked *prometheus.CounterVec
	persistenceFailures  *prometheus.CounterVec
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		answers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trivia_answers_total",
				Help: "Resolved questions by outcome",
			},
			[]string{"outcome"},
		),
		sessionsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trivia_sessions_completed_total",
				Help: "Completed sessions by completion reason and grade",
			},
			[]string{"reason", "grade"},
		),
		sessionScore: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "trivia_session_score",
				Help:    "Final score of completed sessions",
				Buckets: []float64{0, 50, 100, 250, 500, 1000, 2500},
			},
		),
		achievementsUnlocked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trivia_achievements_unlocked_total",
				Help: "Achievement unlocks by achievement id",
			},
			[]string{"achievement"},
		),
		persistenceFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trivia_persistence_failures_total",
				Help: "Failed profile reads and writes by operation",
			},
			[]string{"op"},
		),
	}
	c.registry.MustRegister(
		c.answers,
		c.sessionsCompleted,
		c.sessionScore,
		c.achievementsUnlocked,
		c.persistenceFailures,
	)
	return c
}

// Observe is an events.Handler.
func (c *Collector) Observe(ev events.Event) {
	switch ev.Type {
	case events.AnswerResult:
		p, ok := ev.Payload.(events.AnswerResultPayload)
		if !ok {
			return
		}
		c.answers.WithLabelValues(outcome(p)).Inc()
	case events.SessionCompleted:
		p, ok := ev.Payload.(events.SessionCompletedPayload)
		if !ok {
			return
		}
		c.sessionsCompleted.WithLabelValues(string(p.Reason), string(p.Grade)).Inc()
		c.sessionScore.Observe(float64(p.Score))
	case events.AchievementUnlocked:
		p, ok := ev.Payload.(events.AchievementUnlockedPayload)
		if !ok {
			return
		}
		c.achievementsUnlocked.WithLabelValues(p.Achievement.ID).Inc()
	}
}

// PersistenceFailure matches the profile store failure hook.
func (c *Collector) PersistenceFailure(op string, _ error) {
	c.persistenceFailures.WithLabelValues(op).Inc()
}

// Handler serves the collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func outcome(p events.AnswerResultPayload) string {
	switch {
	case p.Skipped:
		return "skipped"
	case p.TimedOut:
		return "timeout"
	case p.Correct:
		return "correct"
	default:
		return "wrong"
	}
}
