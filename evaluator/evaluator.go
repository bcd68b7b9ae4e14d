// Package evaluator provides Evaluator implementations for the consensus
// panel: an in-process adapter around a plain function and a NATS
// request/reply adapter for evaluators running as separate services.
package evaluator

import (
	"context"

	"github.com/c360studio/skillforge/consensus"
)

// Standard panel roles. The base panel has three members; the script role
// joins only for candidates bundling an auxiliary script.
const (
	RoleStructure    = "structure"
	RoleAccuracy     = "accuracy"
	RoleReusability  = "reusability"
	RoleScriptSafety = "script-safety"
)

// BaseRoles returns the three standing panel roles in submission order.
func BaseRoles() []string {
	return []string{RoleStructure, RoleAccuracy, RoleReusability}
}

// Func adapts a plain review function into a consensus.Evaluator.
type Func struct {
	id string
	fn func(ctx context.Context, candidate consensus.Candidate) (consensus.Verdict, error)
}

// NewFunc creates a function-backed evaluator.
func NewFunc(id string, fn func(ctx context.Context, candidate consensus.Candidate) (consensus.Verdict, error)) *Func {
	return &Func{id: id, fn: fn}
}

// ID implements consensus.Evaluator.
func (f *Func) ID() string {
	return f.id
}

// Review implements consensus.Evaluator.
func (f *Func) Review(ctx context.Context, candidate consensus.Candidate) (consensus.Verdict, error) {
	v, err := f.fn(ctx, candidate)
	if err != nil {
		return consensus.Verdict{}, err
	}
	v.EvaluatorID = f.id
	return v, nil
}
