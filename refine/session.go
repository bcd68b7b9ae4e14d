// Package refine drives the bounded analytical loop applied to a request or
// candidate: repeated passes through analytical lenses until the session
// stops yielding new insights, with a hard round ceiling so the loop always
// terminates. One session serves one candidate; re-use is not allowed.
package refine

import (
	"errors"
	"sort"
)

// Session bounds.
const (
	// MaxRounds is the hard ceiling on analytical rounds. It always wins,
	// regardless of how productive rounds still are.
	MaxRounds = 7

	// MinEmptyRounds is how many consecutive insight-free rounds are needed
	// before convergence can terminate the session.
	MinEmptyRounds = 3

	// MinLenses is the breadth floor: convergence alone never terminates a
	// session until at least this many distinct lenses were productive.
	MinLenses = 5
)

// State is the session lifecycle state.
type State string

// Session states.
const (
	StateIdle       State = "idle"
	StateAnalyzing  State = "analyzing"
	StateTerminated State = "terminated"
)

// Session errors.
var (
	// ErrNotAnalyzing is returned when a round is applied to a session that
	// was never started or has already terminated. Terminated is absorbing;
	// a fresh candidate needs a fresh session.
	ErrNotAnalyzing = errors.New("session is not analyzing")

	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("session already started")
)

// Bounds carries the termination policy for a session.
type Bounds struct {
	MaxRounds      int
	MinEmptyRounds int
	MinLenses      int
}

// DefaultBounds returns the standard termination policy.
func DefaultBounds() Bounds {
	return Bounds{
		MaxRounds:      MaxRounds,
		MinEmptyRounds: MinEmptyRounds,
		MinLenses:      MinLenses,
	}
}

// Session is a single-threaded refinement loop. It is not safe for
// concurrent use; concurrent requests each get their own session.
type Session struct {
	bounds Bounds
	state  State

	round            int
	consecutiveEmpty int
	lenses           map[string]bool
	insights         []string
}

// NewSession creates an idle session with the given bounds. Zero bound
// fields fall back to the defaults.
func NewSession(bounds Bounds) *Session {
	def := DefaultBounds()
	if bounds.MaxRounds <= 0 {
		bounds.MaxRounds = def.MaxRounds
	}
	if bounds.MinEmptyRounds <= 0 {
		bounds.MinEmptyRounds = def.MinEmptyRounds
	}
	if bounds.MinLenses <= 0 {
		bounds.MinLenses = def.MinLenses
	}
	return &Session{
		bounds: bounds,
		state:  StateIdle,
		lenses: make(map[string]bool),
	}
}

// Start moves the session from Idle to Analyzing.
func (s *Session) Start() error {
	if s.state != StateIdle {
		return ErrAlreadyStarted
	}
	s.state = StateAnalyzing
	return nil
}

// ApplyRound records one analytical pass through lens that surfaced the
// given insights, then evaluates the termination conditions. It returns the
// state after the round: StateAnalyzing when the session should continue,
// StateTerminated when it is done.
//
// Termination fires when either the convergence condition holds (enough
// consecutive empty rounds and enough lens breadth) or the round ceiling is
// hit. The dual condition prevents premature stops when early rounds are
// unproductive, while the ceiling prevents unbounded looping.
func (s *Session) ApplyRound(lens string, insights []string) (State, error) {
	if s.state != StateAnalyzing {
		return s.state, ErrNotAnalyzing
	}

	s.round++
	if len(insights) > 0 {
		s.consecutiveEmpty = 0
		s.lenses[lens] = true
		s.insights = append(s.insights, insights...)
	} else {
		s.consecutiveEmpty++
	}

	converged := s.consecutiveEmpty >= s.bounds.MinEmptyRounds && len(s.lenses) >= s.bounds.MinLenses
	if converged || s.round >= s.bounds.MaxRounds {
		s.state = StateTerminated
	}
	return s.state, nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Round returns the number of rounds applied so far.
func (s *Session) Round() int {
	return s.round
}

// ConsecutiveEmpty returns the current run of insight-free rounds.
func (s *Session) ConsecutiveEmpty() int {
	return s.consecutiveEmpty
}

// Lenses returns the distinct lenses that produced insights, sorted.
func (s *Session) Lenses() []string {
	out := make([]string, 0, len(s.lenses))
	for l := range s.lenses {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Insights returns everything discovered across all rounds, in discovery
// order. This is the requirement set handed to the build collaborator.
func (s *Session) Insights() []string {
	out := make([]string, len(s.insights))
	copy(out, s.insights)
	return out
}

// Terminated reports whether the session has reached its absorbing state.
func (s *Session) Terminated() bool {
	return s.state == StateTerminated
}
