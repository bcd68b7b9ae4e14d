// Package main implements a mock evaluator panel for e2e testing.
// It serves every panel role over NATS with deterministic heuristic verdicts
// derived from the candidate's structural validity and content shape. This
// eliminates the need for real evaluator agents during review wiring tests,
// making them fast, deterministic, and offline-capable.
//
// Usage:
//
//	mock-evaluator -nats nats://localhost:4222 [-approve-after N]
//
// With -approve-after N, each role withholds approval until its Nth review
// of a given candidate lineage, enabling rejection→revision→approval loops.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/c360studio/skillforge/consensus"
	"github.com/c360studio/skillforge/evaluator"
	"github.com/c360studio/skillforge/validate"
)

func main() {
	natsURL := flag.String("nats", nats.DefaultURL, "NATS server URL")
	approveAfter := flag.Int("approve-after", 1, "approve a candidate only from its Nth review onward")
	flag.Parse()

	if env := os.Getenv("NATS_URL"); env != "" {
		*natsURL = env
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	conn, err := nats.Connect(*natsURL, nats.Name("mock-evaluator"))
	if err != nil {
		logger.Error("connect to NATS", slog.String("url", *natsURL), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer conn.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	roles := append(evaluator.BaseRoles(), evaluator.RoleScriptSafety)
	var wg sync.WaitGroup
	for _, role := range roles {
		h := &heuristic{role: role, approveAfter: *approveAfter, seen: make(map[string]int)}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := evaluator.Serve(ctx, conn, role, h.review, logger); err != nil && ctx.Err() == nil {
				logger.Error("serve role failed", slog.String("role", role), slog.String("error", err.Error()))
			}
		}()
	}

	logger.Info("mock evaluator panel ready",
		slog.String("url", *natsURL),
		slog.Int("roles", len(roles)),
		slog.Int("approve_after", *approveAfter))
	wg.Wait()
}

// heuristic scores candidates from structural signals only, so the same
// content always yields the same verdict at the same review count.
type heuristic struct {
	role         string
	approveAfter int

	mu   sync.Mutex
	seen map[string]int // candidate name → review count
}

func (h *heuristic) review(_ context.Context, candidate consensus.Candidate) (consensus.Verdict, error) {
	h.mu.Lock()
	h.seen[candidate.Name]++
	count := h.seen[candidate.Name]
	h.mu.Unlock()

	res := validate.Document(string(candidate.Content))

	verdict := consensus.Verdict{
		EvaluatorID:     h.role,
		CriterionScores: h.scores(candidate, res),
	}
	var sum float64
	for _, s := range verdict.CriterionScores {
		sum += s
	}
	verdict.WeightedAverage = sum / float64(len(verdict.CriterionScores))

	for _, e := range res.Errors {
		verdict.Issues = append(verdict.Issues, consensus.Issue{
			ID:          uuid.NewString(),
			EvaluatorID: h.role,
			Severity:    consensus.SeverityCritical,
			Description: e,
			RequiredFix: "fix the structural error and resubmit",
		})
	}
	for _, w := range res.Warnings {
		verdict.Issues = append(verdict.Issues, consensus.Issue{
			ID:          uuid.NewString(),
			EvaluatorID: h.role,
			Severity:    consensus.SeverityMinor,
			Description: w,
		})
	}

	if count < h.approveAfter {
		verdict.Kind = consensus.VerdictChangesRequired
		verdict.Issues = append(verdict.Issues, consensus.Issue{
			ID:          uuid.NewString(),
			EvaluatorID: h.role,
			Severity:    consensus.SeverityMajor,
			Description: fmt.Sprintf("%s review %d of %d: revision requested", h.role, count, h.approveAfter),
		})
		return verdict, nil
	}

	if verdict.CriticalCount() == 0 && verdict.WeightedAverage >= consensus.DefaultApprovalBar {
		verdict.Kind = consensus.VerdictApproved
	} else {
		verdict.Kind = consensus.VerdictChangesRequired
	}
	return verdict, nil
}

// scores derives per-criterion scores from cheap content signals.
func (h *heuristic) scores(candidate consensus.Candidate, res validate.Result) map[string]float64 {
	content := string(candidate.Content)

	base := 9.0
	if !res.Valid {
		base = 4.0
	} else if len(res.Warnings) > 0 {
		base = 7.5
	}

	structure := base
	if !strings.HasPrefix(content, "---") {
		structure = 3.0
	}

	depth := base
	if len(content) < 200 {
		depth = base - 2.0
	}

	return map[string]float64{
		"structure":    structure,
		h.role:         base,
		"completeness": depth,
	}
}
