// Package triage routes free-form requests against the skill catalog. It
// classifies the request's intent, scores it against every indexed
// descriptor, and selects a single routing action: use an existing skill,
// improve one, create a new one, compose a chain, or ask for clarification.
package triage

import (
	"regexp"
	"strings"
)

// Intent is the declared intent of a request, derived from its category.
type Intent string

// Request intents.
const (
	IntentExplicitCreate  Intent = "explicit_create"
	IntentExplicitImprove Intent = "explicit_improve"
	IntentQuestion        Intent = "question"
	IntentTaskOrError     Intent = "task_or_error"
	IntentUnclassified    Intent = "unclassified"
)

// Category is the finer-grained input classification. Categories map onto
// intents; task-like inputs (tasks, errors, code, URLs) share one intent but
// keep their category for matcher context boosts.
type Category string

// Input categories.
const (
	CategoryExplicitCreate  Category = "explicit_create"
	CategoryExplicitImprove Category = "explicit_improve"
	CategoryQuestion        Category = "question"
	CategoryTask            Category = "task_request"
	CategoryError           Category = "error_message"
	CategoryCode            Category = "code_snippet"
	CategoryURL             Category = "url_content"
	CategoryGeneral         Category = "general"
)

// Intent returns the declared intent for a category.
func (c Category) Intent() Intent {
	switch c {
	case CategoryExplicitCreate:
		return IntentExplicitCreate
	case CategoryExplicitImprove:
		return IntentExplicitImprove
	case CategoryQuestion:
		return IntentQuestion
	case CategoryTask, CategoryError, CategoryCode, CategoryURL:
		return IntentTaskOrError
	default:
		return IntentUnclassified
	}
}

// Signals are secondary facts extracted during classification. They feed
// matcher context boosts and decision reasons but never drive the decision
// table directly.
type Signals struct {
	HasSkillMention  bool   `json:"has_skill_mention"`
	HasError         bool   `json:"has_error"`
	HasCode          bool   `json:"has_code"`
	HasURL           bool   `json:"has_url"`
	MentionedName    string `json:"mentioned_skill_name,omitempty"`
	ExtractedPurpose string `json:"extracted_purpose,omitempty"`
	URL              string `json:"url,omitempty"`
}

// Request is one immutable triage invocation: the raw input plus its
// classification. Build one with Classify.
type Request struct {
	RawText  string   `json:"raw_text"`
	Category Category `json:"category"`
	Intent   Intent   `json:"intent"`
	Signals  Signals  `json:"signals"`
}

// Classification signal tables, checked top-down; the first matching table
// decides the category. Explicit creation is checked first so a "create a
// skill for X" request is never silently rerouted by weaker signals.
var (
	explicitCreatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:create|build|make|design|develop)\s+(?:a\s+)?(?:new\s+)?skill\b`),
		regexp.MustCompile(`\bskillforge[:\s]`),
		regexp.MustCompile(`\b(?:new|custom)\s+skill\s+(?:for|to)\b`),
		regexp.MustCompile(`\bultimate\s+skill\b`),
	}

	explicitImprovePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:improve|enhance|update|upgrade|fix|extend)\s+(?:the\s+)?(?:[\w-]+\s+)?skill\b`),
		regexp.MustCompile(`\bskill\s+(?:needs?|could\s+use|should\s+have)\b`),
		regexp.MustCompile(`\b(?:add|include)\s+(?:to|in)\s+(?:the\s+)?\w+\s+skill\b`),
	}

	questionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bdo\s+(?:i|we)\s+have\s+(?:a\s+)?skill\b`),
		regexp.MustCompile(`\bwhich\s+skill\b`),
		regexp.MustCompile(`\bwhat\s+skill\b`),
		regexp.MustCompile(`\brecommend\s+(?:a\s+)?skill\b`),
		regexp.MustCompile(`\bskill\s+for\b`),
		regexp.MustCompile(`\bfind\s+(?:a\s+)?skill\b`),
		regexp.MustCompile(`\bsuggest\s+(?:a\s+)?skill\b`),
		regexp.MustCompile(`\bis\s+there\s+(?:a\s+)?skill\b`),
	}

	errorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?m)Error:`),
		regexp.MustCompile(`(?m)Exception:`),
		regexp.MustCompile(`(?m)TypeError:`),
		regexp.MustCompile(`(?m)ReferenceError:`),
		regexp.MustCompile(`(?m)SyntaxError:`),
		regexp.MustCompile(`(?m)at\s+\S+\s+\(`),
		regexp.MustCompile(`(?m)Traceback \(most recent call`),
		regexp.MustCompile(`(?m)File "[^"]+", line \d+`),
	}

	codePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?m)^\s*(function|const|let|var|class|import|export|def|async|await)\s+`),
		regexp.MustCompile(`(?m)^\s*<[a-zA-Z][^>]*>`),
		regexp.MustCompile(`=>`),
		regexp.MustCompile(`(?m)^\s*@\w+`),
	}

	urlPattern = regexp.MustCompile(`https?://[^\s]+`)

	taskPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:help|assist)\s+(?:me\s+)?(?:with|to)\b`),
		regexp.MustCompile(`\bi\s+need\s+to\b`),
		regexp.MustCompile(`\bhow\s+(?:do\s+i|can\s+i|to)\b`),
		regexp.MustCompile(`\bcan\s+you\b`),
		regexp.MustCompile(`\bplease\b.*\b(?:help|do|make|create|fix|build)\b`),
	}

	purposePattern       = regexp.MustCompile(`skill\s+(?:for|to)\s+(.+?)(?:\.|$)`)
	mentionedNamePattern = regexp.MustCompile(`(?:improve|enhance|update|fix)\s+(?:the\s+)?(\w+(?:-\w+)*)\s+skill`)
)

// Classify analyzes raw input and produces an immutable Request. The same
// input always yields the same classification.
func Classify(rawText string) Request {
	lower := strings.ToLower(rawText)

	req := Request{
		RawText:  rawText,
		Category: CategoryGeneral,
		Signals: Signals{
			HasSkillMention: strings.Contains(lower, "skill"),
		},
	}

	switch {
	case matchesAny(explicitCreatePatterns, lower):
		req.Category = CategoryExplicitCreate
		if m := purposePattern.FindStringSubmatch(lower); m != nil {
			req.Signals.ExtractedPurpose = strings.TrimSpace(m[1])
		}

	case matchesAny(explicitImprovePatterns, lower):
		req.Category = CategoryExplicitImprove
		if m := mentionedNamePattern.FindStringSubmatch(lower); m != nil {
			req.Signals.MentionedName = m[1]
		}

	case matchesAny(questionPatterns, lower):
		req.Category = CategoryQuestion

	case matchesAny(errorPatterns, rawText):
		req.Category = CategoryError
		req.Signals.HasError = true

	case matchesAny(codePatterns, rawText):
		req.Category = CategoryCode
		req.Signals.HasCode = true

	case urlPattern.MatchString(rawText):
		req.Category = CategoryURL
		req.Signals.HasURL = true
		req.Signals.URL = urlPattern.FindString(rawText)

	case matchesAny(taskPatterns, lower):
		req.Category = CategoryTask
	}

	req.Intent = req.Category.Intent()
	return req
}

func matchesAny(patterns []*regexp.Regexp, text string) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
