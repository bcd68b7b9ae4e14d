package catalog

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// frontMatterRe captures the YAML block between the opening and closing
// "---" fences, tolerating CRLF line endings.
var frontMatterRe = regexp.MustCompile(`(?s)\A---\r?\n(.*?)\r?\n---`)

// FrontMatter is the parsed YAML header of a skill document. Unknown keys
// are preserved in Extra for structural validation.
type FrontMatter struct {
	Name        string
	Description string
	License     string
	Metadata    map[string]string
	Extra       map[string]any
}

// ParseFrontMatter extracts and parses the YAML front matter block from a
// skill document. Documents without a front matter block return a zero
// FrontMatter and no error; malformed YAML is an error.
func ParseFrontMatter(content string) (FrontMatter, error) {
	var fm FrontMatter

	m := frontMatterRe.FindStringSubmatch(content)
	if m == nil {
		return fm, nil
	}

	raw := make(map[string]any)
	if err := yaml.Unmarshal([]byte(m[1]), &raw); err != nil {
		return fm, fmt.Errorf("parse front matter: %w", err)
	}

	fm.Extra = raw
	if v, ok := raw["name"].(string); ok {
		fm.Name = strings.TrimSpace(v)
	}
	if v, ok := raw["description"].(string); ok {
		fm.Description = strings.TrimSpace(v)
	}
	if v, ok := raw["license"].(string); ok {
		fm.License = strings.TrimSpace(v)
	}
	if meta, ok := raw["metadata"].(map[string]any); ok {
		fm.Metadata = make(map[string]string, len(meta))
		for k, v := range meta {
			fm.Metadata[k] = fmt.Sprintf("%v", v)
		}
	}
	return fm, nil
}

// Trigger phrase extraction patterns, applied in order. Triggers appear in
// skill documents either as inline "**Triggers:** `...`" annotations or
// inside trigger tables.
var triggerPatterns = []*regexp.Regexp{
	regexp.MustCompile("(?i)\\*\\*Triggers?:\\*\\*\\s*`([^`]+)`"),
	regexp.MustCompile("(?i)Triggers?:\\s*`([^`]+)`"),
	regexp.MustCompile("(?i)\\|\\s*`([^`]+)`\\s*\\|[^|\n]*trigger"),
}

// triggerTableCellRe matches backticked cells inside a trigger table section.
var triggerTableCellRe = regexp.MustCompile("\\|\\s*`([^`]+)`\\s*\\|")

// sectionBreakRe ends a trigger section at the next heading or a standalone
// horizontal rule. Table separator rows start with "|", so they do not match.
var sectionBreakRe = regexp.MustCompile(`(?m)^(?:---\s*$|#)`)

// ExtractTriggers collects trigger phrases from a skill document,
// deduplicated, in first-seen document order.
func ExtractTriggers(content string) []string {
	seen := make(map[string]bool)
	var triggers []string
	add := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			return
		}
		seen[t] = true
		triggers = append(triggers, t)
	}

	for _, re := range triggerPatterns {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			add(m[1])
		}
	}

	// Trigger tables: backticked cells between the "Trigger" heading and the
	// next section break.
	if i := strings.Index(content, "Trigger"); i >= 0 {
		section := content[i:]
		if end := sectionBreakRe.FindStringIndex(section); end != nil {
			section = section[:end[0]]
		}
		for _, m := range triggerTableCellRe.FindAllStringSubmatch(section, -1) {
			add(m[1])
		}
	}

	return triggers
}

// purposeRe finds "Purpose:" / "Description:" lines whose prose contributes
// keyword candidates.
var purposeRe = regexp.MustCompile(`(?i)(?:Purpose|Description)[:\s]+([^\n]+)`)

// keywordTableRe matches the keyword column of descriptor tables:
// | **name** | ... | keyword, keyword |
var keywordTableRe = regexp.MustCompile(`\|\s*\*\*[^*]+\*\*\s*\|[^|]+\|\s*([^|]+)\s*\|`)

// wordRe extracts lowercase words long enough to be meaningful keywords.
var wordRe = regexp.MustCompile(`\b[a-z]{4,}\b`)

// ExtractKeywords derives the keyword tag set for a skill from its name and
// document content. The result is lowercase, deduplicated, and sorted.
func ExtractKeywords(content, name string) []string {
	seen := make(map[string]bool)
	var keywords []string
	add := func(k string) {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			return
		}
		seen[k] = true
		keywords = append(keywords, k)
	}

	add(name)
	for _, part := range strings.Split(strings.ReplaceAll(strings.ToLower(name), "-", " "), " ") {
		add(part)
	}

	for _, m := range keywordTableRe.FindAllStringSubmatch(content, -1) {
		for _, k := range strings.Split(m[1], ",") {
			add(k)
		}
	}

	for _, m := range purposeRe.FindAllStringSubmatch(content, -1) {
		for _, w := range wordRe.FindAllString(strings.ToLower(m[1]), -1) {
			add(w)
		}
	}

	sort.Strings(keywords)
	return keywords
}

// FirstParagraph returns the first prose line of a document, used as the
// fallback summary for skills whose front matter omits a description.
func FirstParagraph(content string) string {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "---") {
			continue
		}
		if len(trimmed) > 200 {
			trimmed = trimmed[:200]
		}
		return trimmed
	}
	return ""
}
