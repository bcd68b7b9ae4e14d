// Package vocabulary defines the shared domain vocabulary used by catalog
// discovery and triage matching. Discovery classifies descriptors into
// domains with these keyword lists, and triage detects the same domains in
// free-form requests, so both sides must draw from a single table.
package vocabulary

import (
	"sort"
	"strings"
)

// Synonyms maps each domain to the concept terms that signal it. Terms are
// matched as lowercase substrings of the request text; they are not tied to
// any particular descriptor name.
var Synonyms = map[string][]string{
	// Document formats
	"spreadsheet":  {"excel", "xlsx", "xls", "csv", "workbook", "tabular", "data table", "cells", "rows columns"},
	"document":     {"word", "docx", "doc", "text document", "write document", "report"},
	"presentation": {"powerpoint", "pptx", "slides", "deck", "slide deck", "keynote", "pitch"},
	"pdf":          {"pdf", "export pdf", "portable document"},

	// Development concepts
	"debugging":      {"debug", "error", "exception", "stack trace", "traceback", "crash", "fix bug", "breakpoint", "investigate"},
	"testing":        {"test", "unit test", "integration test", "e2e", "coverage", "spec", "tdd", "jest", "vitest", "pytest", "mocha"},
	"security":       {"security", "vulnerability", "owasp", "audit", "secure", "penetration", "pentest", "xss", "injection"},
	"code_quality":   {"review", "code review", "pr review", "pull request", "refactor", "clean code", "code smell", "lint"},
	"database":       {"database", "db", "schema", "migration", "sql", "postgres", "mysql", "mongodb", "data model", "orm"},
	"api":            {"api", "rest", "graphql", "endpoint", "openapi", "swagger", "restful", "http"},
	"frontend":       {"ui", "ux", "frontend", "react", "vue", "angular", "css", "styling", "component", "user interface"},
	"accessibility":  {"accessibility", "a11y", "wcag", "screen reader", "aria", "keyboard navigation"},
	"performance":    {"performance", "optimize", "slow", "speed", "fast", "bottleneck", "profiling", "cache"},
	"authentication": {"auth", "login", "authentication", "oauth", "jwt", "session", "sign in", "sign up", "password"},
	"deployment":     {"deploy", "deployment", "production", "release", "ship", "hosting", "ci", "cd", "pipeline"},
	"devops":         {"docker", "kubernetes", "k8s", "container", "helm", "terraform", "infrastructure"},
	"documentation":  {"documentation", "docs", "readme", "changelog", "api docs", "jsdoc"},
	"architecture":   {"architecture", "system design", "design pattern", "microservices", "monolith"},
	"workflow":       {"flowchart", "diagram", "workflow", "process", "swimlane", "sequence diagram", "uml"},

	// AI/ML
	"ai_ml": {"ai", "ml", "machine learning", "llm", "rag", "embedding", "langchain", "prompt", "model"},

	// Creative
	"visual": {"visual", "image", "graphic", "art", "canvas", "design"},

	// Meta (discovery only; requests rarely mention these directly)
	"meta": {"orchestrate", "compose", "skill", "maker", "proactive", "chain"},
}

// Match describes one detected domain and the terms that matched.
type Match struct {
	Domain string
	Terms  []string
}

// DetectDomains returns the domains whose terms appear in text, strongest
// signal first (most matched terms, ties broken by domain name for a
// deterministic order).
func DetectDomains(text string) []Match {
	lower := strings.ToLower(text)

	var detected []Match
	for domain, terms := range Synonyms {
		var matched []string
		for _, term := range terms {
			if strings.Contains(lower, term) {
				matched = append(matched, term)
			}
		}
		if len(matched) > 0 {
			detected = append(detected, Match{Domain: domain, Terms: matched})
		}
	}

	sort.Slice(detected, func(i, j int) bool {
		if len(detected[i].Terms) != len(detected[j].Terms) {
			return len(detected[i].Terms) > len(detected[j].Terms)
		}
		return detected[i].Domain < detected[j].Domain
	})
	return detected
}

// Classify assigns domains to a descriptor from its keywords and body text.
// A domain applies when at least two of its terms are present; descriptors
// with no qualifying domain fall back to "general".
func Classify(keywords []string, body string) []string {
	lower := strings.ToLower(body)
	kwSet := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		kwSet[strings.ToLower(k)] = true
	}

	var domains []string
	for domain, terms := range Synonyms {
		hits := 0
		for _, term := range terms {
			if kwSet[term] || strings.Contains(lower, term) {
				hits++
			}
		}
		if hits >= 2 {
			domains = append(domains, domain)
		}
	}

	if len(domains) == 0 {
		return []string{"general"}
	}
	sort.Strings(domains)
	return domains
}
