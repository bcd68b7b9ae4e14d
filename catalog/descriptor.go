// Package catalog provides the descriptor index for previously built skills:
// the descriptor model, discovery scanning of skill sources, JSON index
// persistence, and read-only lookup during a triage cycle. The index is
// rebuilt out-of-band (see Rebuilder and Watcher); lookups never observe a
// partially built index.
package catalog

import (
	"sort"
	"strings"
)

// Descriptor is the indexed record for one previously built skill. It is
// immutable once indexed; a descriptor is created at index-build time and
// removed only by a re-index.
type Descriptor struct {
	// ID uniquely identifies the descriptor. IDs are hyphen-case slugs
	// derived from the skill name, suffixed with the source name when two
	// sources carry the same skill.
	ID string `json:"id"`

	// Name is the skill name as declared in its front matter.
	Name string `json:"name"`

	// Summary is the discovery description from front matter, or the first
	// prose paragraph when front matter carries none.
	Summary string `json:"summary"`

	// Tags are normalized keywords extracted from the skill document,
	// deduplicated and sorted.
	Tags []string `json:"tags"`

	// TriggerPhrases are the trigger phrases declared by the skill, in
	// document order.
	TriggerPhrases []string `json:"trigger_phrases"`

	// Domains are the vocabulary domains this skill was classified into.
	Domains []string `json:"domains"`

	// Source names the skill source this descriptor was discovered from.
	Source string `json:"source"`

	// Path is the skill document path on disk.
	Path string `json:"path"`

	// Priority is the source priority (lower wins on name collisions).
	Priority int `json:"priority"`

	// Version is the skill version from front matter metadata, if declared.
	Version string `json:"version,omitempty"`
}

// HasTag reports whether tag is among the descriptor's tags. The comparison
// is case-insensitive.
func (d *Descriptor) HasTag(tag string) bool {
	tag = strings.ToLower(tag)
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// HasDomain reports whether domain is among the descriptor's domains.
func (d *Descriptor) HasDomain(domain string) bool {
	domain = strings.ToLower(domain)
	for _, dom := range d.Domains {
		if strings.ToLower(dom) == domain {
			return true
		}
	}
	return false
}

// normalizeTags lowercases, deduplicates, and sorts tags so descriptor
// comparisons and match scoring stay deterministic.
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Slugify converts a name into a hyphen-case identifier: lowercase letters,
// digits, and single hyphens, trimmed at both ends.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '-'
	}, slug)
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return strings.Trim(slug, "-")
}
