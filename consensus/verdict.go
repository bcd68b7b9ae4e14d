// Package consensus dispatches a candidate artifact to a panel of evaluators
// in parallel, aggregates their verdicts into a single round outcome, and
// enforces the bounded iterate/escalate policy. A round is all-or-nothing:
// every evaluator reports (or is declared failed) before the round is
// scored, and partial consensus is never produced.
package consensus

import "context"

// DefaultApprovalBar is the weighted-average score an evaluator's verdict
// must reach before it can count as an approval.
const DefaultApprovalBar = 7.0

// Severity classifies an issue raised by an evaluator.
type Severity string

// Issue severities, strongest first.
const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
)

// Rank returns the ordering weight of a severity; higher sorts first.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityMajor:
		return 2
	case SeverityMinor:
		return 1
	default:
		return 0
	}
}

// Issue is one problem an evaluator requires addressed.
type Issue struct {
	ID          string   `json:"id"`
	EvaluatorID string   `json:"evaluator_id"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	RequiredFix string   `json:"required_fix,omitempty"`
}

// VerdictKind is an evaluator's overall judgment of a candidate.
type VerdictKind string

// Verdict kinds.
const (
	VerdictApproved        VerdictKind = "approved"
	VerdictChangesRequired VerdictKind = "changes_required"
)

// Verdict is the structured result of one evaluator reviewing one candidate.
// Prose lives only in issue descriptions; control flow depends solely on the
// kind, the weighted average, and issue severities.
type Verdict struct {
	EvaluatorID     string             `json:"evaluator_id"`
	CriterionScores map[string]float64 `json:"criterion_scores,omitempty"`
	WeightedAverage float64            `json:"weighted_average"`
	Kind            VerdictKind        `json:"verdict"`
	Issues          []Issue            `json:"issues,omitempty"`

	// Synthetic marks verdicts manufactured by the coordinator for
	// evaluators that errored or timed out.
	Synthetic bool `json:"synthetic,omitempty"`
}

// CriticalCount returns how many critical issues the verdict carries.
func (v *Verdict) CriticalCount() int {
	n := 0
	for _, is := range v.Issues {
		if is.Severity == SeverityCritical {
			n++
		}
	}
	return n
}

// Approves reports whether this verdict counts as an approval against bar:
// the evaluator approved, the weighted average meets the bar, and no
// critical issue is open. All three must hold.
func (v *Verdict) Approves(bar float64) bool {
	return v.Kind == VerdictApproved && v.WeightedAverage >= bar && v.CriticalCount() == 0
}

// Candidate is the opaque artifact under review. The engine never patches a
// candidate in place; a rejected candidate is replaced wholesale by the next
// build.
type Candidate struct {
	// ID identifies this build of the artifact.
	ID string `json:"id"`

	// Name is the skill name the artifact declares.
	Name string `json:"name,omitempty"`

	// Content is the artifact payload, treated as an immutable value.
	Content []byte `json:"content"`

	// AuxiliaryScript marks candidates that bundle an executable helper
	// script; these get an extra evaluator on the panel.
	AuxiliaryScript bool `json:"auxiliary_script,omitempty"`
}

// Evaluator reviews candidates. Implementations must be idempotent for the
// same candidate: no hidden memory of prior rounds beyond what the caller
// re-supplies in the candidate itself.
type Evaluator interface {
	// ID returns a stable evaluator identifier.
	ID() string

	// Review produces a verdict for the candidate. It should honor ctx
	// cancellation; the coordinator converts errors and timeouts into
	// synthetic rejections.
	Review(ctx context.Context, candidate Candidate) (Verdict, error)
}

// Outcome is the aggregate result of one consensus round.
type Outcome string

// Round outcomes.
const (
	OutcomeUnanimous    Outcome = "unanimous"
	OutcomeNotUnanimous Outcome = "not_unanimous"
)

// Round is one synchronized fan-out/fan-in pass of the full panel over one
// candidate. Verdicts appear in panel submission order.
type Round struct {
	Number      int       `json:"round"`
	CandidateID string    `json:"candidate_id"`
	Verdicts    []Verdict `json:"verdicts"`
	Outcome     Outcome   `json:"outcome"`

	// Issues is the merged issue list from all verdicts: critical first,
	// then major, then minor; within a severity, panel submission order.
	Issues []Issue `json:"issues,omitempty"`
}
