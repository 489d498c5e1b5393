// Package metrics exposes Prometheus collectors fed by engine hooks and boss encounters.
package metrics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/aretw0/gitquest/pkg/boss"
	"github.com/aretw0/gitquest/pkg/domain"
	"github.com/aretw0/gitquest/pkg/puzzle"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so several engines (and tests) never collide.
type Metrics struct {
	registry *prometheus.Registry

	StepVisits    *prometheus.CounterVec
	Commands      *prometheus.CounterVec
	ActsCompleted *prometheus.CounterVec
	Effects       *prometheus.CounterVec
	Resolutions   *prometheus.CounterVec
	Encounters    *prometheus.CounterVec
	BossScore     prometheus.Histogram
}

// New creates and registers the collectors. withRuntime adds the Go and process collectors.
func New(withRuntime bool) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		StepVisits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gitquest_step_visits_total",
			Help: "Total number of step entries.",
		}, []string{"act", "step"}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gitquest_commands_total",
			Help: "Terminal commands submitted, by outcome.",
		}, []string{"step", "outcome"}),
		ActsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gitquest_acts_completed_total",
			Help: "Acts played to completion.",
		}, []string{"act"}),
		Effects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gitquest_effects_total",
			Help: "Presentation effects emitted, by kind.",
		}, []string{"kind"}),
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gitquest_hunk_resolutions_total",
			Help: "Boss conflict hunk resolutions, by correctness.",
		}, []string{"level", "correct"}),
		Encounters: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gitquest_boss_encounters_total",
			Help: "Finished boss encounters, by outcome.",
		}, []string{"level", "outcome"}),
		BossScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gitquest_boss_score",
			Help:    "Score of won boss encounters.",
			Buckets: prometheus.LinearBuckets(0, 250, 8),
		}),
	}
	m.registry.MustRegister(m.StepVisits, m.Commands, m.ActsCompleted, m.Effects, m.Resolutions, m.Encounters, m.BossScore)
	if withRuntime {
		m.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	return m
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns engine hooks that record lesson activity.
// Session IDs are never used as labels.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) {
			m.StepVisits.WithLabelValues(strconv.Itoa(e.ActID), e.StepID).Inc()
		},
		OnLine: func(_ context.Context, e *domain.LineEvent) {
			if e.Line.Kind != domain.LineCommand {
				return
			}
			m.Commands.WithLabelValues(e.Line.StepID, string(e.Line.Outcome)).Inc()
		},
		OnEffect: func(_ context.Context, e *domain.EffectEvent) {
			if e.Effect.VisualEvent != "" {
				m.Effects.WithLabelValues("visual").Inc()
			}
			if e.Effect.SoundEvent != "" {
				m.Effects.WithLabelValues("sound").Inc()
			}
		},
		OnActComplete: func(_ context.Context, e *domain.CompletionEvent) {
			m.ActsCompleted.WithLabelValues(strconv.Itoa(e.Completion.ActID)).Inc()
		},
	}
}

// ObserveEncounter records the resolutions and outcome of a boss encounter.
func (m *Metrics) ObserveEncounter(enc *boss.Encounter) {
	level := enc.Level().ID
	enc.OnResolved(func(ev puzzle.HunkResolved) {
		m.Resolutions.WithLabelValues(level, strconv.FormatBool(ev.Correct)).Inc()
	})
	enc.OnFinish(func(o boss.Outcome) {
		m.Encounters.WithLabelValues(level, string(o)).Inc()
		if o == boss.OutcomeVictory {
			m.BossScore.Observe(float64(enc.Score()))
		}
	})
}
