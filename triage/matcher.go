package triage

import (
	"sort"
	"strings"

	"github.com/c360studio/skillforge/catalog"
	"github.com/c360studio/skillforge/vocabulary"
)

// DefaultConfidenceFloor drops matches that carry no usable signal.
const DefaultConfidenceFloor = 0.15

// Scoring weights. The matcher is a purely lexical, additive scorer: every
// weight contributes at most once except triggers, which accumulate per
// distinct matching phrase, and the final sum is clamped to [0, 1]. Keeping
// the score additive makes it monotone in trigger hits by construction.
const (
	weightDomainBase     = 0.35
	weightDomainPerTerm  = 0.05
	weightDomainCap      = 0.50
	weightKeywordTerm    = 0.15
	weightSummaryTerm    = 0.10
	weightNameExact      = 0.35
	weightNamePartial    = 0.20
	weightTrigger        = 0.25
	weightKeywordOverlap = 0.06
	weightKeywordCap     = 0.20
	weightSummaryOverlap = 0.08

	boostErrorContext = 0.25
	boostCodeContext  = 0.15
	boostURLContext   = 0.10
	boostDomainAlign  = 0.05
	boostDomainCap    = 0.15
)

// MatchResult is one scored (request, descriptor) pairing. Results live only
// until the decision is made; they are not persisted.
type MatchResult struct {
	DescriptorID string   `json:"descriptor_id"`
	Name         string   `json:"name"`
	Confidence   float64  `json:"confidence"`
	Rationale    string   `json:"rationale"`
	Domains      []string `json:"domains"`
	Summary      string   `json:"summary,omitempty"`
}

// Matcher scores requests against catalog descriptors.
type Matcher struct {
	floor float64
}

// NewMatcher creates a matcher with the given confidence floor; a
// non-positive floor uses DefaultConfidenceFloor.
func NewMatcher(floor float64) *Matcher {
	if floor <= 0 {
		floor = DefaultConfidenceFloor
	}
	return &Matcher{floor: floor}
}

// Score computes a confidence in [0, 1] for every descriptor, drops results
// below the floor, and returns the rest sorted by descending confidence.
// Ties break by shorter descriptor ID, then lexically, so the ordering is a
// deterministic total order. Identical inputs always yield identical output.
func (m *Matcher) Score(req Request, descriptors []catalog.Descriptor) []MatchResult {
	queryDomains := vocabulary.DetectDomains(req.RawText)

	var results []MatchResult
	for i := range descriptors {
		conf, reasons := m.scoreOne(req, &descriptors[i], queryDomains)
		if conf < m.floor {
			continue
		}
		results = append(results, MatchResult{
			DescriptorID: descriptors[i].ID,
			Name:         descriptors[i].Name,
			Confidence:   conf,
			Rationale:    strings.Join(reasons, "; "),
			Domains:      descriptors[i].Domains,
			Summary:      truncate(descriptors[i].Summary, 100),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Confidence != results[j].Confidence {
			return results[i].Confidence > results[j].Confidence
		}
		if len(results[i].DescriptorID) != len(results[j].DescriptorID) {
			return len(results[i].DescriptorID) < len(results[j].DescriptorID)
		}
		return results[i].DescriptorID < results[j].DescriptorID
	})
	return results
}

// scoreOne scores a single descriptor against the request.
func (m *Matcher) scoreOne(req Request, d *catalog.Descriptor, queryDomains []vocabulary.Match) (float64, []string) {
	lower := strings.ToLower(req.RawText)
	words := significantWords(lower, 3)

	var score float64
	var reasons []string

	// Strongest signal: the descriptor's own domain appears among the
	// request's detected domains. Only the best domain counts.
	for _, qd := range queryDomains {
		if !d.HasDomain(qd.Domain) {
			continue
		}
		ds := weightDomainBase + float64(len(qd.Terms))*weightDomainPerTerm
		if ds > weightDomainCap {
			ds = weightDomainCap
		}
		score += ds
		reasons = append(reasons, "domain: "+qd.Domain+" ("+strings.Join(firstN(qd.Terms, 2), ", ")+")")
		break
	}

	// Detected domain terms appearing in descriptor tags.
	score, reasons = addKeywordTermSignal(score, reasons, d, queryDomains)

	// Detected domain terms appearing in the summary.
	score, reasons = addSummaryTermSignal(score, reasons, d, queryDomains)

	// Direct name match, or partial overlap of name words with the query.
	nameLower := strings.ToLower(d.Name)
	if nameLower != "" && strings.Contains(lower, nameLower) {
		score += weightNameExact
		reasons = append(reasons, "name match: "+d.Name)
	} else {
		nameWords := significantWords(strings.ReplaceAll(strings.ReplaceAll(nameLower, "-", " "), "_", " "), 3)
		var overlap []string
		for w := range nameWords {
			if words[w] {
				overlap = append(overlap, w)
			}
		}
		if len(overlap) > 0 {
			sort.Strings(overlap)
			score += weightNamePartial
			reasons = append(reasons, "partial name: "+strings.Join(overlap, ", "))
		}
	}

	// Trigger phrases: each distinct matching trigger adds weight, so adding
	// a matching trigger can never lower the score.
	triggerHits := 0
	for _, t := range d.TriggerPhrases {
		if strings.Contains(lower, strings.ToLower(t)) {
			triggerHits++
			if triggerHits == 1 {
				reasons = append(reasons, "trigger: "+t)
			}
		}
	}
	score += float64(triggerHits) * weightTrigger

	// General keyword overlap between query words and descriptor tags.
	var kwOverlap []string
	for w := range words {
		if len(w) > 3 && d.HasTag(w) {
			kwOverlap = append(kwOverlap, w)
		}
	}
	if len(kwOverlap) > 0 {
		sort.Strings(kwOverlap)
		ks := float64(len(kwOverlap)) * weightKeywordOverlap
		if ks > weightKeywordCap {
			ks = weightKeywordCap
		}
		score += ks
		reasons = append(reasons, "keywords: "+strings.Join(firstN(kwOverlap, 3), ", "))
	}

	// Weak fallback: two or more long query words appear in the summary.
	summaryWords := significantWords(strings.ToLower(d.Summary), 4)
	summaryHits := 0
	for w := range words {
		if len(w) > 4 && summaryWords[w] {
			summaryHits++
		}
	}
	if summaryHits >= 2 {
		score += weightSummaryOverlap
		reasons = append(reasons, "summary overlap")
	}

	// Context boosts from classification signals.
	if req.Signals.HasError && d.HasDomain("debugging") {
		score += boostErrorContext
		reasons = append(reasons, "error context boost")
	}
	if req.Signals.HasCode && d.HasDomain("code_quality") {
		score += boostCodeContext
		reasons = append(reasons, "code context boost")
	}
	if req.Signals.HasURL && (d.HasDomain("code_quality") || d.HasDomain("api") || d.HasDomain("documentation")) {
		score += boostURLContext
		reasons = append(reasons, "url context boost")
	}

	// Alignment boost: only meaningful on top of an existing signal.
	if score > 0 {
		aligned := 0
		for _, qd := range queryDomains {
			if d.HasDomain(qd.Domain) {
				aligned++
			}
		}
		if aligned > 0 {
			as := float64(aligned) * boostDomainAlign
			if as > boostDomainCap {
				as = boostDomainCap
			}
			score += as
		}
	}

	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score, reasons
}

// addKeywordTermSignal adds the first detected-domain term found among the
// descriptor's tags, or the domain name itself.
func addKeywordTermSignal(score float64, reasons []string, d *catalog.Descriptor, queryDomains []vocabulary.Match) (float64, []string) {
	for _, qd := range queryDomains {
		for _, term := range qd.Terms {
			if d.HasTag(term) {
				return score + weightKeywordTerm, append(reasons, "keyword: "+term)
			}
		}
		if d.HasTag(qd.Domain) || d.HasTag(strings.ReplaceAll(qd.Domain, "_", " ")) {
			return score + weightKeywordTerm, append(reasons, "keyword: "+qd.Domain)
		}
	}
	return score, reasons
}

// addSummaryTermSignal adds the first detected-domain term found in the
// descriptor's summary, or the domain name itself.
func addSummaryTermSignal(score float64, reasons []string, d *catalog.Descriptor, queryDomains []vocabulary.Match) (float64, []string) {
	summary := strings.ToLower(d.Summary)
	for _, qd := range queryDomains {
		for _, term := range qd.Terms {
			if strings.Contains(summary, term) {
				return score + weightSummaryTerm, append(reasons, "summary: "+term)
			}
		}
		if strings.Contains(summary, qd.Domain) {
			return score + weightSummaryTerm, append(reasons, "summary: "+qd.Domain)
		}
	}
	return score, reasons
}

// significantWords tokenizes text into a set of words longer than minLen-1.
func significantWords(text string, minLen int) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(text) {
		w = strings.Trim(w, ".,;:!?\"'()[]{}")
		if len(w) >= minLen {
			words[w] = true
		}
	}
	return words
}

func firstN(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
