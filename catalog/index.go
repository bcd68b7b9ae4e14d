package catalog

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// IndexVersion identifies the persisted index schema.
const IndexVersion = "2.0.0"

// Index is an immutable snapshot of all discovered descriptors plus derived
// lookup structures. Build a new Index via NewIndex or Scanner.Scan; never
// mutate one in place.
type Index struct {
	Version     string                `json:"version"`
	GeneratedAt time.Time             `json:"generated_at"`
	Descriptors []Descriptor          `json:"descriptors"`
	Domains     map[string][]string   `json:"domains"`
	Sources     map[string]string     `json:"sources"`
	TotalCount  int                   `json:"total_count"`
	Warnings    []string              `json:"warnings,omitempty"`
}

// NewIndex builds an index snapshot from descriptors, deriving the
// domain → descriptor-name mapping. Descriptors are sorted by (priority, id)
// so persisted output is stable across rebuilds.
func NewIndex(descriptors []Descriptor, sources map[string]string, warnings []string) *Index {
	sorted := make([]Descriptor, len(descriptors))
	copy(sorted, descriptors)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority < sorted[j].Priority
		}
		return sorted[i].ID < sorted[j].ID
	})

	domains := make(map[string][]string)
	for _, d := range sorted {
		for _, dom := range d.Domains {
			domains[dom] = append(domains[dom], d.Name)
		}
	}

	return &Index{
		Version:     IndexVersion,
		GeneratedAt: time.Now().UTC(),
		Descriptors: sorted,
		Domains:     domains,
		Sources:     sources,
		TotalCount:  len(sorted),
		Warnings:    warnings,
	}
}

// Lookup returns every descriptor that lexically relates to query through its
// name, tags, trigger phrases, domains, or summary. Ordering carries no
// meaning beyond determinism; callers re-rank by confidence downstream. A
// nil or empty index yields an empty result, never an error.
func (idx *Index) Lookup(query string) []Descriptor {
	if idx == nil || len(idx.Descriptors) == 0 {
		return nil
	}

	lower := strings.ToLower(query)
	words := queryWords(lower)

	var out []Descriptor
	for _, d := range idx.Descriptors {
		if descriptorRelates(&d, lower, words) {
			out = append(out, d)
		}
	}
	return out
}

// descriptorRelates applies the generous lexical filter used by Lookup.
// Precision is the matcher's job; this only prunes descriptors with no
// lexical connection to the query at all.
func descriptorRelates(d *Descriptor, lowerQuery string, words map[string]bool) bool {
	if strings.Contains(lowerQuery, strings.ToLower(d.Name)) {
		return true
	}
	for _, t := range d.TriggerPhrases {
		if strings.Contains(lowerQuery, strings.ToLower(t)) {
			return true
		}
	}
	for _, tag := range d.Tags {
		if words[tag] || (strings.Contains(tag, " ") && strings.Contains(lowerQuery, tag)) {
			return true
		}
	}
	for _, dom := range d.Domains {
		if words[dom] || words[strings.ReplaceAll(dom, "_", " ")] {
			return true
		}
	}
	for w := range words {
		if len(w) > 4 && strings.Contains(strings.ToLower(d.Summary), w) {
			return true
		}
	}
	return false
}

// queryWords tokenizes a lowercase query into a word set, keeping only words
// long enough to carry signal.
func queryWords(lower string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(lower, func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_')
	}) {
		if len(w) >= 2 {
			words[w] = true
		}
	}
	return words
}

// Provider serves read-only index snapshots to the triage path and accepts
// rebuilt snapshots from the discovery path. Swaps are atomic: an in-flight
// decision keeps the snapshot it started with.
type Provider struct {
	mu  sync.RWMutex
	idx *Index
}

// NewProvider wraps an initial snapshot, which may be nil (empty catalog).
func NewProvider(idx *Index) *Provider {
	return &Provider{idx: idx}
}

// Current returns the active snapshot, or nil when no index has been loaded.
func (p *Provider) Current() *Index {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.idx
}

// Lookup queries the active snapshot. An absent index degrades to an empty
// result so the caller never fails on catalog unavailability.
func (p *Provider) Lookup(query string) []Descriptor {
	return p.Current().Lookup(query)
}

// Replace installs a freshly built snapshot.
func (p *Provider) Replace(idx *Index) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.idx = idx
}
