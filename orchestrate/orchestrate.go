// Package orchestrate sequences the full request lifecycle: triage routing,
// requirement discovery, candidate builds, and the consensus review loop.
package orchestrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/c360studio/skillforge/catalog"
	"github.com/c360studio/skillforge/consensus"
	"github.com/c360studio/skillforge/metrics"
	"github.com/c360studio/skillforge/refine"
	"github.com/c360studio/skillforge/triage"
)

// ErrBuildFailed wraps a build collaborator fault. A failed build aborts the
// cycle without consuming a consensus round, since no candidate was produced.
var ErrBuildFailed = errors.New("build failed")

// Status is the terminal disposition of one engine run.
type Status string

// Run dispositions.
const (
	// StatusAccepted means a candidate reached unanimous approval.
	StatusAccepted Status = "accepted"
	// StatusEscalated means the round budget ran out without unanimity.
	StatusEscalated Status = "escalated"
	// StatusRouted means triage resolved the request without a build
	// (reuse or composition of existing artifacts).
	StatusRouted Status = "routed"
	// StatusClarify means triage needs more input before anything can run.
	StatusClarify Status = "clarify"
)

// Lookup is the read-only catalog surface the engine queries during triage.
// *catalog.Provider satisfies it.
type Lookup interface {
	Lookup(query string) []catalog.Descriptor
}

// BuildRequest carries everything a builder needs to produce a candidate:
// the triaged request, accumulated requirements from discovery, and on
// rebuilds the fix-set demanded by the last failed round.
type BuildRequest struct {
	Request      triage.Request
	Decision     triage.Decision
	Requirements []string
	Fixes        []consensus.Issue
	Attempt      int
}

// Builder produces candidate artifacts. The engine treats it as an opaque,
// possibly-failing collaborator; candidates are replaced wholesale between
// rounds, never patched in place.
type Builder interface {
	Build(ctx context.Context, req BuildRequest) (consensus.Candidate, error)
}

// BuilderFunc adapts a function into a Builder.
type BuilderFunc func(ctx context.Context, req BuildRequest) (consensus.Candidate, error)

// Build calls fn.
func (fn BuilderFunc) Build(ctx context.Context, req BuildRequest) (consensus.Candidate, error) {
	return fn(ctx, req)
}

// Result is the outcome of one full engine run.
type Result struct {
	Status     Status                `json:"status"`
	Request    triage.Request        `json:"request"`
	Decision   triage.Decision       `json:"decision"`
	Candidate  *consensus.Candidate  `json:"candidate,omitempty"`
	Rounds     []consensus.Round     `json:"rounds,omitempty"`
	Escalation *consensus.Escalation `json:"escalation,omitempty"`
	Insights   []string              `json:"insights,omitempty"`
}

// Engine wires triage, refinement, builds, and consensus into one pipeline.
type Engine struct {
	lookup    Lookup
	builder   Builder
	panel     []consensus.Evaluator
	scriptEv  consensus.Evaluator
	lenses    []Lens
	policy    triage.Policy
	floor     float64
	bounds    refine.Bounds
	consensus consensus.Config
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger.With(slog.String("component", "orchestrate"))
		}
	}
}

// WithPolicy sets the triage decision thresholds.
func WithPolicy(p triage.Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithConfidenceFloor sets the match confidence floor.
func WithConfidenceFloor(floor float64) Option {
	return func(e *Engine) { e.floor = floor }
}

// WithRefineBounds sets the refinement termination policy.
func WithRefineBounds(b refine.Bounds) Option {
	return func(e *Engine) { e.bounds = b }
}

// WithConsensusConfig sets the consensus policy.
func WithConsensusConfig(c consensus.Config) Option {
	return func(e *Engine) { e.consensus = c }
}

// WithScriptEvaluator sets the extra panel member used for candidates that
// declare an auxiliary-script payload.
func WithScriptEvaluator(ev consensus.Evaluator) Option {
	return func(e *Engine) { e.scriptEv = ev }
}

// WithLenses sets the discovery lens rotation.
func WithLenses(lenses []Lens) Option {
	return func(e *Engine) { e.lenses = lenses }
}

// WithMetrics attaches prometheus collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine creates an engine. lookup may be nil when no index is available;
// triage then degrades to zero matches rather than failing.
func NewEngine(lookup Lookup, builder Builder, panel []consensus.Evaluator, opts ...Option) *Engine {
	e := &Engine{
		lookup:    lookup,
		builder:   builder,
		panel:     panel,
		policy:    triage.DefaultPolicy(),
		floor:     triage.DefaultConfidenceFloor,
		bounds:    refine.DefaultBounds(),
		consensus: consensus.DefaultConfig(),
		logger:    slog.Default().With(slog.String("component", "orchestrate")),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Triage classifies the raw text, scores it against the catalog, and applies
// the routing table. An unavailable index yields zero matches, never an
// error.
func (e *Engine) Triage(rawText string) (triage.Request, triage.Decision) {
	req := triage.Classify(rawText)

	var descriptors []catalog.Descriptor
	if e.lookup != nil {
		descriptors = e.lookup.Lookup(req.RawText)
	}

	matcher := triage.NewMatcher(e.floor)
	matches := matcher.Score(req, descriptors)
	decision := triage.Decide(e.policy, req, matches)

	if e.metrics != nil {
		e.metrics.TriageDecisions.WithLabelValues(string(decision.Action)).Inc()
		if len(matches) > 0 {
			e.metrics.MatchConfidence.Observe(matches[0].Confidence)
		} else {
			e.metrics.MatchConfidence.Observe(0)
		}
	}

	e.logger.Info("triage decision",
		slog.String("intent", string(req.Intent)),
		slog.String("action", string(decision.Action)),
		slog.Int("matches", len(matches)))
	return req, decision
}

// Discover runs the bounded lens rotation over the request and returns the
// accumulated requirement set from the terminated session.
func (e *Engine) Discover(ctx context.Context, req triage.Request) ([]string, error) {
	session := refine.NewSession(e.bounds)
	if err := session.Start(); err != nil {
		return nil, err
	}

	for !session.Terminated() {
		for _, lens := range e.lenses {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			insights, err := lens.Analyze(ctx, req.RawText)
			if err != nil {
				e.logger.Warn("lens failed",
					slog.String("lens", lens.Name()),
					slog.String("error", err.Error()))
				insights = nil
			}
			state, err := session.ApplyRound(lens.Name(), insights)
			if err != nil {
				return nil, err
			}
			if state == refine.StateTerminated {
				break
			}
		}
		if len(e.lenses) == 0 {
			// Nothing to rotate; the session can only hit the ceiling.
			if _, err := session.ApplyRound("none", nil); err != nil {
				return nil, err
			}
		}
	}

	if e.metrics != nil {
		e.metrics.RefinementRounds.Observe(float64(session.Round()))
	}
	e.logger.Info("discovery terminated",
		slog.Int("rounds", session.Round()),
		slog.Int("insights", len(session.Insights())))
	return session.Insights(), nil
}

// Run executes the full pipeline for one raw request. Reuse, composition,
// and clarification resolve at triage; improvement and creation continue
// into discovery, build, and the consensus loop.
func (e *Engine) Run(ctx context.Context, rawText string) (*Result, error) {
	req, decision := e.Triage(rawText)
	result := &Result{Request: req, Decision: decision}

	switch decision.Action {
	case triage.ActionUseExisting, triage.ActionCompose:
		result.Status = StatusRouted
		return result, nil
	case triage.ActionClarify:
		result.Status = StatusClarify
		return result, nil
	}

	requirements, err := e.Discover(ctx, req)
	if err != nil {
		return nil, err
	}
	result.Insights = requirements

	candidate, err := e.build(ctx, BuildRequest{
		Request:      req,
		Decision:     decision,
		Requirements: requirements,
		Attempt:      1,
	})
	if err != nil {
		return nil, err
	}

	return e.reviewLoop(ctx, result, req, decision, requirements, candidate)
}

// reviewLoop drives the consensus iterate/escalate cycle over a candidate
// lineage until unanimity, escalation, or a fatal fault.
func (e *Engine) reviewLoop(ctx context.Context, result *Result, req triage.Request, decision triage.Decision, requirements []string, candidate consensus.Candidate) (*Result, error) {
	coord := consensus.NewCoordinator(e.panel, e.consensus,
		consensus.WithScriptEvaluator(e.scriptEv),
		consensus.WithCoordinatorLogger(e.logger))

	attempt := 1
	for {
		started := time.Now()
		round, err := coord.EvaluateRound(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if e.metrics != nil {
			e.metrics.RoundDuration.Observe(time.Since(started).Seconds())
			e.metrics.ConsensusRounds.WithLabelValues(string(round.Outcome)).Inc()
		}

		if round.Outcome == consensus.OutcomeUnanimous {
			result.Status = StatusAccepted
			result.Candidate = &candidate
			result.Rounds = coord.History()
			return result, nil
		}

		if coord.Exhausted() {
			if e.metrics != nil {
				e.metrics.Escalations.Inc()
			}
			result.Status = StatusEscalated
			result.Candidate = &candidate
			result.Rounds = coord.History()
			result.Escalation = coord.Escalate()
			e.logger.Warn("consensus escalated",
				slog.Int("rounds", coord.RoundsUsed()),
				slog.String("candidate", candidate.ID))
			return result, nil
		}

		fixes := coord.RequiredFixes(round)
		requirements = e.absorb(requirements, fixes)

		attempt++
		candidate, err = e.build(ctx, BuildRequest{
			Request:      req,
			Decision:     decision,
			Requirements: requirements,
			Fixes:        fixes,
			Attempt:      attempt,
		})
		if err != nil {
			return nil, err
		}
	}
}

// absorb feeds review issues through a fresh feedback session so they join
// the requirement set as forced insights.
func (e *Engine) absorb(requirements []string, fixes []consensus.Issue) []string {
	session := refine.NewSession(e.bounds)
	if err := session.Start(); err != nil {
		return requirements
	}
	if _, err := session.ApplyRound("consensus-feedback", consensus.InsightsFromIssues(fixes)); err != nil {
		return requirements
	}
	return append(requirements, session.Insights()...)
}

// build invokes the collaborator and wraps any fault as ErrBuildFailed.
func (e *Engine) build(ctx context.Context, breq BuildRequest) (consensus.Candidate, error) {
	candidate, err := e.builder.Build(ctx, breq)
	if err != nil {
		return consensus.Candidate{}, fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}
	e.logger.Info("candidate built",
		slog.String("candidate", candidate.ID),
		slog.Int("attempt", breq.Attempt))
	return candidate, nil
}
