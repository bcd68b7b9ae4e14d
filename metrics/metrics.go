// Package metrics exposes prometheus instrumentation for the triage and
// consensus paths.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's prometheus collectors. Create one per process
// and register it on the process registry.
type Metrics struct {
	TriageDecisions  *prometheus.CounterVec
	MatchConfidence  prometheus.Histogram
	ConsensusRounds  *prometheus.CounterVec
	RoundDuration    prometheus.Histogram
	Escalations      prometheus.Counter
	EvaluatorFaults  *prometheus.CounterVec
	RefinementRounds prometheus.Histogram
}

// New creates the collector set.
func New() *Metrics {
	return &Metrics{
		TriageDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skillforge",
			Subsystem: "triage",
			Name:      "decisions_total",
			Help:      "Triage decisions by routing action.",
		}, []string{"action"}),
		MatchConfidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "skillforge",
			Subsystem: "triage",
			Name:      "top_match_confidence",
			Help:      "Top match confidence per triage request.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
		ConsensusRounds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skillforge",
			Subsystem: "consensus",
			Name:      "rounds_total",
			Help:      "Consensus rounds by outcome.",
		}, []string{"outcome"}),
		RoundDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "skillforge",
			Subsystem: "consensus",
			Name:      "round_duration_seconds",
			Help:      "Wall time of one full panel round.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
		}),
		Escalations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skillforge",
			Subsystem: "consensus",
			Name:      "escalations_total",
			Help:      "Candidates escalated to a human after exhausting rounds.",
		}),
		EvaluatorFaults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skillforge",
			Subsystem: "consensus",
			Name:      "evaluator_faults_total",
			Help:      "Evaluator errors or timeouts converted to synthetic rejections.",
		}, []string{"evaluator"}),
		RefinementRounds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "skillforge",
			Subsystem: "refine",
			Name:      "session_rounds",
			Help:      "Rounds used by terminated refinement sessions.",
			Buckets:   prometheus.LinearBuckets(1, 1, 7),
		}),
	}
}

// Register registers every collector on reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.TriageDecisions,
		m.MatchConfidence,
		m.ConsensusRounds,
		m.RoundDuration,
		m.Escalations,
		m.EvaluatorFaults,
		m.RefinementRounds,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
