package consensus

import (
	"context"
	"errors"
	"testing"
	"time"
)

// stubEvaluator returns a fixed verdict, an error, or blocks until cancelled.
type stubEvaluator struct {
	id      string
	verdict Verdict
	err     error
	block   bool
}

func (s *stubEvaluator) ID() string { return s.id }

func (s *stubEvaluator) Review(ctx context.Context, _ Candidate) (Verdict, error) {
	if s.block {
		<-ctx.Done()
		return Verdict{}, ctx.Err()
	}
	if s.err != nil {
		return Verdict{}, s.err
	}
	return s.verdict, nil
}

func approving(id string, avg float64) *stubEvaluator {
	return &stubEvaluator{id: id, verdict: Verdict{
		Kind:            VerdictApproved,
		WeightedAverage: avg,
	}}
}

func dissenting(id string, avg float64, issues ...Issue) *stubEvaluator {
	return &stubEvaluator{id: id, verdict: Verdict{
		Kind:            VerdictChangesRequired,
		WeightedAverage: avg,
		Issues:          issues,
	}}
}

func testCandidate() Candidate {
	return Candidate{ID: "cand-1", Name: "test-skill", Content: []byte("---\nname: test-skill\n---\nbody")}
}

func TestVerdictApproves(t *testing.T) {
	tests := []struct {
		name    string
		verdict Verdict
		want    bool
	}{
		{
			name:    "approved above bar with no criticals",
			verdict: Verdict{Kind: VerdictApproved, WeightedAverage: 7.5},
			want:    true,
		},
		{
			name:    "approved exactly at bar",
			verdict: Verdict{Kind: VerdictApproved, WeightedAverage: 7.0},
			want:    true,
		},
		{
			name:    "approved but below bar",
			verdict: Verdict{Kind: VerdictApproved, WeightedAverage: 6.9},
			want:    false,
		},
		{
			name: "approved above bar but carries a critical",
			verdict: Verdict{Kind: VerdictApproved, WeightedAverage: 9.0,
				Issues: []Issue{{Severity: SeverityCritical}}},
			want: false,
		},
		{
			name:    "changes required regardless of score",
			verdict: Verdict{Kind: VerdictChangesRequired, WeightedAverage: 9.5},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.verdict.Approves(DefaultApprovalBar); got != tt.want {
				t.Errorf("Approves(7.0) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateRoundUnanimous(t *testing.T) {
	panel := []Evaluator{approving("structure", 8.0), approving("accuracy", 7.2), approving("reusability", 9.1)}
	coord := NewCoordinator(panel, DefaultConfig())

	round, err := coord.EvaluateRound(context.Background(), testCandidate())
	if err != nil {
		t.Fatalf("EvaluateRound() error = %v", err)
	}
	if round.Outcome != OutcomeUnanimous {
		t.Errorf("Outcome = %q, want unanimous", round.Outcome)
	}
	if len(round.Verdicts) != 3 {
		t.Errorf("len(Verdicts) = %d, want 3", len(round.Verdicts))
	}
	if round.Number != 1 {
		t.Errorf("round number = %d, want 1", round.Number)
	}
}

func TestEvaluateRoundOneDissenterBlocksConsensus(t *testing.T) {
	critical := Issue{ID: "i1", Severity: SeverityCritical, Description: "missing frontmatter"}
	panel := []Evaluator{
		approving("structure", 8.1),
		approving("accuracy", 7.5),
		dissenting("reusability", 6.9, critical),
	}
	coord := NewCoordinator(panel, DefaultConfig())

	round, err := coord.EvaluateRound(context.Background(), testCandidate())
	if err != nil {
		t.Fatalf("EvaluateRound() error = %v", err)
	}
	if round.Outcome != OutcomeNotUnanimous {
		t.Errorf("Outcome = %q, want not_unanimous", round.Outcome)
	}
	if len(round.Issues) == 0 || round.Issues[0].Severity != SeverityCritical {
		t.Errorf("merged issues must start with the critical item: %+v", round.Issues)
	}
}

func TestEvaluateRoundMergedIssueOrder(t *testing.T) {
	panel := []Evaluator{
		dissenting("structure", 5.0,
			Issue{ID: "minor-a", Severity: SeverityMinor},
			Issue{ID: "crit-a", Severity: SeverityCritical}),
		dissenting("accuracy", 5.5,
			Issue{ID: "major-b", Severity: SeverityMajor},
			Issue{ID: "minor-b", Severity: SeverityMinor}),
		dissenting("reusability", 6.0,
			Issue{ID: "crit-c", Severity: SeverityCritical}),
	}
	coord := NewCoordinator(panel, DefaultConfig())

	round, err := coord.EvaluateRound(context.Background(), testCandidate())
	if err != nil {
		t.Fatal(err)
	}

	wantOrder := []string{"crit-a", "crit-c", "major-b", "minor-a", "minor-b"}
	if len(round.Issues) != len(wantOrder) {
		t.Fatalf("merged %d issues, want %d", len(round.Issues), len(wantOrder))
	}
	for i, want := range wantOrder {
		if round.Issues[i].ID != want {
			t.Errorf("Issues[%d] = %q, want %q", i, round.Issues[i].ID, want)
		}
	}
}

func TestEscalationAtExactlyFiveRounds(t *testing.T) {
	panel := []Evaluator{
		approving("structure", 8.0),
		dissenting("accuracy", 5.0, Issue{ID: "i1", Severity: SeverityMajor, Description: "never satisfied"}),
		approving("reusability", 8.5),
	}
	coord := NewCoordinator(panel, DefaultConfig())

	for i := 1; i <= DefaultMaxRounds; i++ {
		if coord.Exhausted() {
			t.Fatalf("exhausted before round %d", i)
		}
		round, err := coord.EvaluateRound(context.Background(), testCandidate())
		if err != nil {
			t.Fatalf("round %d: %v", i, err)
		}
		if round.Outcome != OutcomeNotUnanimous {
			t.Fatalf("round %d unexpectedly unanimous", i)
		}
	}

	if !coord.Exhausted() {
		t.Fatal("coordinator not exhausted after 5 dissenting rounds")
	}
	if _, err := coord.EvaluateRound(context.Background(), testCandidate()); !errors.Is(err, ErrRoundsExhausted) {
		t.Errorf("sixth round error = %v, want ErrRoundsExhausted", err)
	}

	esc := coord.Escalate()
	if len(esc.Rounds) != DefaultMaxRounds {
		t.Errorf("escalation carries %d rounds, want %d", len(esc.Rounds), DefaultMaxRounds)
	}
}

func TestEvaluatorFailureBecomesSyntheticRejection(t *testing.T) {
	panel := []Evaluator{
		approving("structure", 9.0),
		&stubEvaluator{id: "accuracy", err: errors.New("agent offline")},
		approving("reusability", 8.0),
	}
	coord := NewCoordinator(panel, DefaultConfig())

	round, err := coord.EvaluateRound(context.Background(), testCandidate())
	if err != nil {
		t.Fatalf("EvaluateRound() error = %v", err)
	}
	if round.Outcome != OutcomeNotUnanimous {
		t.Errorf("a failed evaluator must never pass review: outcome = %q", round.Outcome)
	}

	var synthetic *Verdict
	for i := range round.Verdicts {
		if round.Verdicts[i].EvaluatorID == "accuracy" {
			synthetic = &round.Verdicts[i]
		}
	}
	if synthetic == nil {
		t.Fatal("no verdict recorded for the failed evaluator")
	}
	if !synthetic.Synthetic || synthetic.Kind != VerdictChangesRequired {
		t.Errorf("verdict = %+v, want synthetic changes_required", synthetic)
	}
	if synthetic.CriticalCount() != 1 {
		t.Errorf("synthetic verdict carries %d criticals, want 1", synthetic.CriticalCount())
	}
}

func TestEvaluatorTimeoutBecomesSyntheticRejection(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EvaluatorTimeout = 10 * time.Millisecond

	panel := []Evaluator{
		approving("structure", 9.0),
		&stubEvaluator{id: "accuracy", block: true},
		approving("reusability", 8.0),
	}
	coord := NewCoordinator(panel, cfg)

	round, err := coord.EvaluateRound(context.Background(), testCandidate())
	if err != nil {
		t.Fatalf("EvaluateRound() error = %v", err)
	}
	if round.Outcome != OutcomeNotUnanimous {
		t.Errorf("a timed-out evaluator must never pass review: outcome = %q", round.Outcome)
	}
}

func TestScriptCandidateExtendsPanel(t *testing.T) {
	panel := []Evaluator{approving("structure", 8.0), approving("accuracy", 8.0), approving("reusability", 8.0)}
	script := approving("script-safety", 8.0)
	coord := NewCoordinator(panel, DefaultConfig(), WithScriptEvaluator(script))

	plain := testCandidate()
	round, err := coord.EvaluateRound(context.Background(), plain)
	if err != nil {
		t.Fatal(err)
	}
	if len(round.Verdicts) != 3 {
		t.Errorf("plain candidate reviewed by %d evaluators, want 3", len(round.Verdicts))
	}

	withScript := testCandidate()
	withScript.AuxiliaryScript = true
	round, err = coord.EvaluateRound(context.Background(), withScript)
	if err != nil {
		t.Fatal(err)
	}
	if len(round.Verdicts) != 4 {
		t.Errorf("script candidate reviewed by %d evaluators, want 4", len(round.Verdicts))
	}
}

func TestCancelledRoundIsDiscarded(t *testing.T) {
	panel := []Evaluator{&stubEvaluator{id: "structure", block: true}}
	coord := NewCoordinator(panel, DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := coord.EvaluateRound(ctx, testCandidate()); err == nil {
		t.Fatal("expected error from cancelled round")
	}
	if coord.RoundsUsed() != 0 {
		t.Errorf("cancelled round was recorded: RoundsUsed = %d", coord.RoundsUsed())
	}
}

func TestRequiredFixesCriticalOnlyNearLimit(t *testing.T) {
	coord := NewCoordinator([]Evaluator{approving("structure", 8.0)}, DefaultConfig())

	issues := []Issue{
		{ID: "c", Severity: SeverityCritical},
		{ID: "m", Severity: SeverityMajor},
		{ID: "n", Severity: SeverityMinor},
	}

	early := &Round{Number: 2, Issues: issues}
	if got := coord.RequiredFixes(early); len(got) != 3 {
		t.Errorf("round 2 required %d fixes, want all 3", len(got))
	}

	late := &Round{Number: DefaultCriticalOnlyRound, Issues: issues}
	got := coord.RequiredFixes(late)
	if len(got) != 1 || got[0].Severity != SeverityCritical {
		t.Errorf("round %d required fixes = %+v, want critical only", DefaultCriticalOnlyRound, got)
	}
}

func TestEmptyPanel(t *testing.T) {
	coord := NewCoordinator(nil, DefaultConfig())
	if _, err := coord.EvaluateRound(context.Background(), testCandidate()); !errors.Is(err, ErrEmptyPanel) {
		t.Errorf("error = %v, want ErrEmptyPanel", err)
	}
}
