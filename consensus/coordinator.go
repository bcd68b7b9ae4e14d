package consensus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Coordinator defaults.
const (
	// DefaultMaxRounds is the escalation ceiling: a candidate lineage that
	// is still not unanimous after this many rounds goes to a human.
	DefaultMaxRounds = 5

	// DefaultCriticalOnlyRound is the round from which the required fix-set
	// is restricted to critical issues.
	DefaultCriticalOnlyRound = 4

	// DefaultEvaluatorTimeout bounds one evaluator's review. Reviews are
	// deep analysis, so the bound is minutes, not seconds.
	DefaultEvaluatorTimeout = 3 * time.Minute
)

// Coordinator errors.
var (
	// ErrRoundsExhausted is returned when EvaluateRound is called after the
	// escalation ceiling was reached. The caller should have escalated.
	ErrRoundsExhausted = errors.New("consensus rounds exhausted")

	// ErrEmptyPanel is returned when no evaluators are configured.
	ErrEmptyPanel = errors.New("evaluator panel is empty")
)

// Escalation is the terminal hand-off to a human after the round ceiling.
// It carries the full per-evaluator position history; it is a hard stop and
// is never retried automatically.
type Escalation struct {
	Rounds []Round `json:"rounds"`
}

// Config carries the consensus policy knobs.
type Config struct {
	// ApprovalBar is the weighted-average threshold for an approval.
	ApprovalBar float64

	// MaxRounds is the escalation ceiling across the whole candidate
	// lineage: new candidates start fresh round sequences, but the counter
	// feeding the ceiling is global.
	MaxRounds int

	// CriticalOnlyRound is the round number from which only critical issues
	// are required fixes.
	CriticalOnlyRound int

	// EvaluatorTimeout bounds a single evaluator's review.
	EvaluatorTimeout time.Duration
}

// DefaultConfig returns the standard consensus policy.
func DefaultConfig() Config {
	return Config{
		ApprovalBar:       DefaultApprovalBar,
		MaxRounds:         DefaultMaxRounds,
		CriticalOnlyRound: DefaultCriticalOnlyRound,
		EvaluatorTimeout:  DefaultEvaluatorTimeout,
	}
}

// Coordinator runs consensus rounds over one candidate lineage. It owns the
// global round counter and the round history used for escalation. A
// Coordinator serves one lineage; create a new one per triage request.
type Coordinator struct {
	panel   []Evaluator
	scripts Evaluator // extra panel member for auxiliary-script candidates
	config  Config
	logger  *slog.Logger

	rounds []Round
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithScriptEvaluator sets the evaluator added to the panel when a
// candidate declares an auxiliary-script payload.
func WithScriptEvaluator(e Evaluator) CoordinatorOption {
	return func(c *Coordinator) {
		c.scripts = e
	}
}

// WithCoordinatorLogger sets the logger.
func WithCoordinatorLogger(logger *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// NewCoordinator creates a coordinator over a fixed panel. Zero config
// fields fall back to defaults.
func NewCoordinator(panel []Evaluator, config Config, opts ...CoordinatorOption) *Coordinator {
	def := DefaultConfig()
	if config.ApprovalBar <= 0 {
		config.ApprovalBar = def.ApprovalBar
	}
	if config.MaxRounds <= 0 {
		config.MaxRounds = def.MaxRounds
	}
	if config.CriticalOnlyRound <= 0 {
		config.CriticalOnlyRound = def.CriticalOnlyRound
	}
	if config.EvaluatorTimeout <= 0 {
		config.EvaluatorTimeout = def.EvaluatorTimeout
	}

	c := &Coordinator{
		panel:  panel,
		config: config,
		logger: slog.Default().With(slog.String("component", "consensus")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RoundsUsed returns how many rounds have been consumed.
func (c *Coordinator) RoundsUsed() int {
	return len(c.rounds)
}

// Exhausted reports whether the escalation ceiling has been reached.
func (c *Coordinator) Exhausted() bool {
	return len(c.rounds) >= c.config.MaxRounds
}

// History returns all completed rounds in order.
func (c *Coordinator) History() []Round {
	out := make([]Round, len(c.rounds))
	copy(out, c.rounds)
	return out
}

// Escalate builds the terminal escalation result from the round history.
func (c *Coordinator) Escalate() *Escalation {
	return &Escalation{Rounds: c.History()}
}

// RequiredFixes returns the fix-set a failed round demands. Early rounds
// require every merged issue; from CriticalOnlyRound on, major and minor
// issues are deferred and only critical issues block.
func (c *Coordinator) RequiredFixes(round *Round) []Issue {
	if round.Number >= c.config.CriticalOnlyRound {
		return CriticalOnly(round.Issues)
	}
	return round.Issues
}

// EvaluateRound dispatches the candidate to the full panel concurrently and
// blocks until every evaluator has returned or been declared failed. No
// partial consensus exists: if ctx is cancelled, outstanding reviews are
// cancelled cooperatively and the whole round is discarded.
func (c *Coordinator) EvaluateRound(ctx context.Context, candidate Candidate) (*Round, error) {
	if len(c.panel) == 0 {
		return nil, ErrEmptyPanel
	}
	if c.Exhausted() {
		return nil, ErrRoundsExhausted
	}

	panel := c.panel
	if candidate.AuxiliaryScript && c.scripts != nil {
		panel = append(append([]Evaluator(nil), c.panel...), c.scripts)
	}

	number := len(c.rounds) + 1
	c.logger.Info("consensus round dispatch",
		slog.Int("round", number),
		slog.String("candidate", candidate.ID),
		slog.Int("panel", len(panel)))

	verdicts := make([]Verdict, len(panel))

	g, gctx := errgroup.WithContext(ctx)
	for i, ev := range panel {
		g.Go(func() error {
			verdicts[i] = c.reviewOne(gctx, ev, candidate)
			return nil
		})
	}
	// Worker closures never return errors (faults become synthetic
	// verdicts), so Wait only reflects the barrier completing.
	_ = g.Wait()

	// All-or-nothing: a cancelled round is discarded, not scored.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	round := Round{
		Number:      number,
		CandidateID: candidate.ID,
		Verdicts:    verdicts,
		Outcome:     OutcomeUnanimous,
	}
	for i := range verdicts {
		if !verdicts[i].Approves(c.config.ApprovalBar) {
			round.Outcome = OutcomeNotUnanimous
			break
		}
	}
	if round.Outcome == OutcomeNotUnanimous {
		round.Issues = MergeIssues(verdicts)
	}

	c.rounds = append(c.rounds, round)
	c.logger.Info("consensus round scored",
		slog.Int("round", round.Number),
		slog.String("outcome", string(round.Outcome)),
		slog.Int("issues", len(round.Issues)))
	return &round, nil
}

// reviewOne runs a single evaluator under the per-evaluator timeout. An
// error or timeout becomes a synthetic rejection with one critical issue, so
// a coordination fault can never silently pass review.
func (c *Coordinator) reviewOne(ctx context.Context, ev Evaluator, candidate Candidate) Verdict {
	rctx, cancel := context.WithTimeout(ctx, c.config.EvaluatorTimeout)
	defer cancel()

	verdict, err := ev.Review(rctx, candidate)
	if err != nil {
		c.logger.Warn("evaluator failed",
			slog.String("evaluator", ev.ID()),
			slog.String("error", err.Error()))
		return syntheticFailure(ev.ID(), err)
	}
	verdict.EvaluatorID = ev.ID()
	return verdict
}

// syntheticFailure manufactures the rejection verdict for a failed
// evaluator.
func syntheticFailure(evaluatorID string, err error) Verdict {
	return Verdict{
		EvaluatorID: evaluatorID,
		Kind:        VerdictChangesRequired,
		Synthetic:   true,
		Issues: []Issue{{
			ID:          uuid.NewString(),
			EvaluatorID: evaluatorID,
			Severity:    SeverityCritical,
			Description: fmt.Sprintf("evaluator %s failed to complete review: %v", evaluatorID, err),
			RequiredFix: "resolve the evaluator fault and re-run the review round",
		}},
	}
}
