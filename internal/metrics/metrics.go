package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gokatarajesh/synergy-debrief/internal/game"
)

const namespace = "synergy_debrief"

// Metrics holds the game collectors.
type Metrics struct {
	Events         *prometheus.CounterVec
	RoundsStarted  prometheus.Counter
	TraitsFound    prometheus.Counter
	DebriefAnswers *prometheus.CounterVec
	GamesFinished  prometheus.Counter
	SynergyScore   prometheus.Histogram
	TraitsAtFinish prometheus.Histogram
	ActiveSessions prometheus.Gauge
	ContentLoads   *prometheus.CounterVec
}

// New registers the collectors with reg. Pass prometheus.DefaultRegisterer to expose them on /metrics.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Events: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Game events emitted, partitioned by type.",
		}, []string{"type"}),
		RoundsStarted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_started_total",
			Help:      "Round One starts.",
		}),
		TraitsFound: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "traits_discovered_total",
			Help:      "Traits discovered across all sessions.",
		}),
		DebriefAnswers: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "debrief_answers_total",
			Help:      "Graded debrief answers, partitioned by result.",
		}, []string{"result"}),
		GamesFinished: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Games that reached the final summary.",
		}),
		SynergyScore: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "synergy_score",
			Help:      "Synergy score at the end of a game.",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),
		TraitsAtFinish: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "traits_discovered_at_finish",
			Help:      "Traits discovered by the end of a game.",
			Buckets:   prometheus.LinearBuckets(0, 1, 7),
		}),
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Connected play sessions.",
		}),
		ContentLoads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_loads_total",
			Help:      "Content document loads, partitioned by origin (cache or source).",
		}, []string{"origin"}),
	}
}

// Observe records one game event.
func (m *Metrics) Observe(e game.Event) {
	m.Events.WithLabelValues(string(e.Type)).Inc()

	switch e.Type {
	case game.EventRoundOneStarted:
		m.RoundsStarted.Inc()
	case game.EventTraitDiscovered:
		m.TraitsFound.Inc()
	case game.EventAnswerGraded:
		result := "wrong"
		if e.Grade != nil && e.Grade.Correct {
			result = "correct"
		}
		m.DebriefAnswers.WithLabelValues(result).Inc()
	case game.EventGameFinished:
		m.GamesFinished.Inc()
		if f := e.Snapshot.Final; f != nil {
			m.SynergyScore.Observe(float64(f.SynergyScore))
			m.TraitsAtFinish.Observe(float64(f.TraitsDiscovered))
		}
	}
}

// Wrap returns a Notifier that records every event before passing it on.
func (m *Metrics) Wrap(next game.Notifier) game.Notifier {
	return game.NotifierFunc(func(e game.Event) {
		m.Observe(e)
		if next != nil {
			next.Notify(e)
		}
	})
}
