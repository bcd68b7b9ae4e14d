package triage

import (
	"fmt"

	"github.com/c360studio/skillforge/vocabulary"
)

// Action is the routing outcome of a triage decision.
type Action string

// Routing actions.
const (
	ActionUseExisting     Action = "use_existing"
	ActionImproveExisting Action = "improve_existing"
	ActionCreateNew       Action = "create_new"
	ActionCompose         Action = "compose"
	ActionClarify         Action = "clarify"
)

// Policy carries the confidence thresholds for the decision table. The
// bands are tuning choices, not structural requirements, so they are
// configuration rather than constants.
type Policy struct {
	// HighConfidence is the reuse threshold (default 0.80).
	HighConfidence float64
	// ModerateConfidence is the improve threshold (default 0.50).
	ModerateConfidence float64
}

// DefaultPolicy returns the standard decision thresholds.
func DefaultPolicy() Policy {
	return Policy{HighConfidence: 0.80, ModerateConfidence: 0.50}
}

// Decision is the outcome of routing one request. Matches are ordered by
// descending confidence; Action is a pure function of the request's intent
// and the confidence distribution.
type Decision struct {
	Action  Action        `json:"action"`
	Matches []MatchResult `json:"matches,omitempty"`
	Chain   []MatchResult `json:"chain,omitempty"`
	Reason  string        `json:"reason"`
}

// Decide applies the routing rule table top-down and returns the first rule
// that resolves. It is stateless and side-effect-free: identical
// (request, matches) always produce an identical Decision.
//
// Explicit intent to create is checked against near-duplicates before the
// generic reuse rules so a user's creation request is never silently
// hijacked; composition is considered only after single-descriptor
// resolution fails, since one good match beats a multi-step chain.
func Decide(p Policy, req Request, matches []MatchResult) Decision {
	var top float64
	if len(matches) > 0 {
		top = matches[0].Confidence
	}

	// Rule 1: near-duplicate of an explicit creation request.
	if top >= p.HighConfidence && req.Intent == IntentExplicitCreate {
		return Decision{
			Action:  ActionClarify,
			Matches: matches[:1],
			Reason: fmt.Sprintf("existing skill %q (%.0f%%) may already handle this; create anyway or use existing?",
				matches[0].Name, top*100),
		}
	}

	// Rule 2: strong match for any non-creation intent.
	if top >= p.HighConfidence {
		strong := matches
		for i, m := range strong {
			if m.Confidence < p.HighConfidence || i == 3 {
				strong = strong[:i]
				break
			}
		}
		return Decision{
			Action:  ActionUseExisting,
			Matches: strong,
			Reason:  fmt.Sprintf("strong match: %s (%.0f%%)", matches[0].Name, top*100),
		}
	}

	// Rule 3: moderate match; enhancement beats duplication.
	if top >= p.ModerateConfidence {
		return Decision{
			Action:  ActionImproveExisting,
			Matches: matches[:1],
			Reason:  fmt.Sprintf("partial match: %s (%.0f%%) could be enhanced for this use case", matches[0].Name, top*100),
		}
	}

	// Rule 4: explicit creation with no meaningful prior art.
	if req.Intent == IntentExplicitCreate {
		reason := "no strong existing match found; proceeding with skill creation"
		if req.Signals.ExtractedPurpose != "" {
			reason = fmt.Sprintf("no strong existing match found; creating a skill for %s", req.Signals.ExtractedPurpose)
		}
		return Decision{Action: ActionCreateNew, Matches: matches, Reason: reason}
	}

	// Rule 5: the request spans multiple domains that no single descriptor
	// covers. Propose a chain, one candidate per detected cluster.
	if chain := composeChain(req, matches); len(chain) >= 2 {
		return Decision{
			Action:  ActionCompose,
			Matches: matches,
			Chain:   chain,
			Reason:  fmt.Sprintf("request spans %d domains with no single skill covering all; suggesting a chain", len(chain)),
		}
	}

	// Rule 6: nothing resolves unambiguously.
	reason := "unclear intent and no good skill matches; please elaborate on the goal"
	if len(matches) > 0 {
		reason = "unclear intent; partial matches found, please clarify what is needed"
	}
	return Decision{Action: ActionClarify, Matches: matches, Reason: reason}
}

// composeChain builds the ordered candidate chain for a multi-domain
// request: for each detected domain cluster (strongest signal first), the
// highest-confidence match covering that cluster. Returns nil when fewer
// than two clusters are detected or when a single descriptor already covers
// every cluster.
func composeChain(req Request, matches []MatchResult) []MatchResult {
	clusters := vocabulary.DetectDomains(req.RawText)
	if len(clusters) < 2 || len(matches) == 0 {
		return nil
	}

	// A single descriptor covering all clusters means composition adds
	// nothing over rule 2/3 resolution.
	for _, m := range matches {
		if coversAll(m, clusters) {
			return nil
		}
	}

	var chain []MatchResult
	used := make(map[string]bool)
	for _, cluster := range clusters {
		for _, m := range matches { // matches are confidence-sorted
			if used[m.DescriptorID] || !hasDomain(m, cluster.Domain) {
				continue
			}
			chain = append(chain, m)
			used[m.DescriptorID] = true
			break
		}
	}
	if len(chain) < 2 {
		return nil
	}
	return chain
}

func coversAll(m MatchResult, clusters []vocabulary.Match) bool {
	for _, c := range clusters {
		if !hasDomain(m, c.Domain) {
			return false
		}
	}
	return true
}

func hasDomain(m MatchResult, domain string) bool {
	for _, d := range m.Domains {
		if d == domain {
			return true
		}
	}
	return false
}
