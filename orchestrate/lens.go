package orchestrate

import "context"

// Lens is one analytical technique applied during requirement discovery.
// Implementations inspect the subject text and return newly discovered
// requirements or concerns; an empty slice means the lens found nothing new
// this round.
type Lens interface {
	Name() string
	Analyze(ctx context.Context, subject string) ([]string, error)
}

// LensFunc adapts a function into a Lens.
type LensFunc struct {
	name string
	fn   func(ctx context.Context, subject string) ([]string, error)
}

// NewLensFunc creates a Lens backed by fn.
func NewLensFunc(name string, fn func(ctx context.Context, subject string) ([]string, error)) *LensFunc {
	return &LensFunc{name: name, fn: fn}
}

// Name returns the lens name.
func (l *LensFunc) Name() string { return l.name }

// Analyze applies the lens to the subject.
func (l *LensFunc) Analyze(ctx context.Context, subject string) ([]string, error) {
	return l.fn(ctx, subject)
}

// DefaultLensNames is the standard discovery rotation. Callers supply the
// analysis behind each name; the names themselves feed session breadth
// tracking.
var DefaultLensNames = []string{
	"inputs-outputs",
	"edge-cases",
	"error-handling",
	"dependencies",
	"security",
	"performance",
	"composition",
}
