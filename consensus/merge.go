package consensus

import "sort"

// MergeIssues flattens the issues of all verdicts into a single ordered fix
// list: critical, then major, then minor; within one severity, issues keep
// evaluator submission order. The sort is stable so equal-severity issues
// never reorder between runs.
func MergeIssues(verdicts []Verdict) []Issue {
	var merged []Issue
	for _, v := range verdicts {
		merged = append(merged, v.Issues...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Severity.Rank() > merged[j].Severity.Rank()
	})
	return merged
}

// CriticalOnly filters a merged issue list down to critical issues,
// preserving order. Used near the escalation limit, where deferring major
// and minor fixes reduces churn.
func CriticalOnly(issues []Issue) []Issue {
	var out []Issue
	for _, is := range issues {
		if is.Severity == SeverityCritical {
			out = append(out, is)
		}
	}
	return out
}

// InsightsFromIssues renders merged issues as forced insights for a
// refinement round. Every issue contributes one insight, so a round fed
// from review feedback always resets the session's empty-round counter.
func InsightsFromIssues(issues []Issue) []string {
	insights := make([]string, 0, len(issues))
	for _, is := range issues {
		text := string(is.Severity) + ": " + is.Description
		if is.RequiredFix != "" {
			text += "; required fix: " + is.RequiredFix
		}
		insights = append(insights, text)
	}
	return insights
}
