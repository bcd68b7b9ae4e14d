package evaluator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/c360studio/skillforge/consensus"
)

// SubjectPrefix is the subject namespace for review request/reply traffic.
// One evaluator role listens on SubjectPrefix + "." + role.
const SubjectPrefix = "skillforge.review"

// ReviewSubject returns the request subject for an evaluator role.
func ReviewSubject(role string) string {
	return SubjectPrefix + "." + role
}

// reviewRequest is the wire payload sent to a remote evaluator.
type reviewRequest struct {
	Candidate consensus.Candidate `json:"candidate"`
}

// NATS is a consensus.Evaluator that delegates reviews to a remote service
// over NATS request/reply. Requests are idempotent from the evaluator's side:
// the full candidate travels with every request and no round state is kept
// on the wire.
type NATS struct {
	conn   *nats.Conn
	role   string
	logger *slog.Logger
}

// NATSOption configures a NATS evaluator.
type NATSOption func(*NATS)

// WithNATSLogger sets the logger.
func WithNATSLogger(logger *slog.Logger) NATSOption {
	return func(e *NATS) {
		e.logger = logger
	}
}

// NewNATS creates a NATS-backed evaluator for the given role.
func NewNATS(conn *nats.Conn, role string, opts ...NATSOption) *NATS {
	e := &NATS{
		conn:   conn,
		role:   role,
		logger: slog.Default().With(slog.String("component", "evaluator"), slog.String("role", role)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ID implements consensus.Evaluator.
func (e *NATS) ID() string {
	return e.role
}

// Review implements consensus.Evaluator. The per-evaluator timeout arrives
// through ctx; a request that outlives it surfaces as an error and the
// coordinator converts it into a synthetic rejection.
func (e *NATS) Review(ctx context.Context, candidate consensus.Candidate) (consensus.Verdict, error) {
	data, err := json.Marshal(reviewRequest{Candidate: candidate})
	if err != nil {
		return consensus.Verdict{}, fmt.Errorf("marshal review request: %w", err)
	}

	msg, err := e.conn.RequestWithContext(ctx, ReviewSubject(e.role), data)
	if err != nil {
		return consensus.Verdict{}, fmt.Errorf("review request to %s: %w", e.role, err)
	}

	var verdict consensus.Verdict
	if err := json.Unmarshal(msg.Data, &verdict); err != nil {
		return consensus.Verdict{}, fmt.Errorf("parse verdict from %s: %w", e.role, err)
	}

	e.logger.Debug("verdict received",
		slog.String("candidate", candidate.ID),
		slog.String("verdict", string(verdict.Kind)),
		slog.Float64("score", verdict.WeightedAverage))
	return verdict, nil
}

// ReviewFunc is the handler signature for Serve.
type ReviewFunc func(ctx context.Context, candidate consensus.Candidate) (consensus.Verdict, error)

// Serve subscribes a review handler for role and answers review requests
// until ctx is cancelled. It backs evaluator services and the mock
// evaluator used in development.
func Serve(ctx context.Context, conn *nats.Conn, role string, handler ReviewFunc, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default().With(slog.String("component", "evaluator-serve"), slog.String("role", role))
	}

	sub, err := conn.Subscribe(ReviewSubject(role), func(msg *nats.Msg) {
		var req reviewRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			logger.Warn("bad review request", slog.String("error", err.Error()))
			return
		}

		verdict, err := handler(ctx, req.Candidate)
		if err != nil {
			logger.Warn("review handler failed",
				slog.String("candidate", req.Candidate.ID),
				slog.String("error", err.Error()))
			return
		}
		verdict.EvaluatorID = role

		data, err := json.Marshal(verdict)
		if err != nil {
			logger.Warn("marshal verdict failed", slog.String("error", err.Error()))
			return
		}
		if err := msg.Respond(data); err != nil {
			logger.Warn("respond failed", slog.String("error", err.Error()))
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", ReviewSubject(role), err)
	}
	defer sub.Unsubscribe()

	logger.Info("evaluator serving", slog.String("subject", ReviewSubject(role)))
	<-ctx.Done()
	return ctx.Err()
}

// Panel builds the standing NATS evaluator panel plus the script-safety
// evaluator for use with consensus.WithScriptEvaluator.
func Panel(conn *nats.Conn, opts ...NATSOption) (panel []consensus.Evaluator, script consensus.Evaluator) {
	for _, role := range BaseRoles() {
		panel = append(panel, NewNATS(conn, role, opts...))
	}
	return panel, NewNATS(conn, RoleScriptSafety, opts...)
}
