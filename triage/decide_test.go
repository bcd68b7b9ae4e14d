package triage

import (
	"reflect"
	"testing"

	"github.com/c360studio/skillforge/catalog"
)

func match(id string, conf float64, domains ...string) MatchResult {
	return MatchResult{DescriptorID: id, Name: id, Confidence: conf, Domains: domains}
}

func TestDecideRoutingTable(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name        string
		req         Request
		matches     []MatchResult
		wantAction  Action
		wantMatches int
	}{
		{
			name:        "strong match answers a question",
			req:         Request{Intent: IntentQuestion},
			matches:     []MatchResult{match("excel-builder", 0.92, "spreadsheet")},
			wantAction:  ActionUseExisting,
			wantMatches: 1,
		},
		{
			name:        "strong match on explicit create warns about a duplicate",
			req:         Request{Intent: IntentExplicitCreate},
			matches:     []MatchResult{match("excel-builder", 0.85, "spreadsheet")},
			wantAction:  ActionClarify,
			wantMatches: 1,
		},
		{
			name:        "moderate match improves the single best candidate",
			req:         Request{Intent: IntentTaskOrError},
			matches:     []MatchResult{match("excel-builder", 0.65, "spreadsheet"), match("pdf-export", 0.55, "pdf")},
			wantAction:  ActionImproveExisting,
			wantMatches: 1,
		},
		{
			name:       "weak match with explicit create proceeds to creation",
			req:        Request{Intent: IntentExplicitCreate},
			matches:    []MatchResult{match("excel-builder", 0.30, "spreadsheet")},
			wantAction: ActionCreateNew,
		},
		{
			name:       "nothing resolves",
			req:        Request{Intent: IntentUnclassified},
			matches:    nil,
			wantAction: ActionClarify,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(p, tt.req, tt.matches)
			if got.Action != tt.wantAction {
				t.Errorf("Action = %q, want %q", got.Action, tt.wantAction)
			}
			if tt.wantMatches > 0 && len(got.Matches) != tt.wantMatches {
				t.Errorf("len(Matches) = %d, want %d", len(got.Matches), tt.wantMatches)
			}
			if got.Reason == "" {
				t.Error("Reason must never be empty")
			}
		})
	}
}

func TestDecideUseExistingCapsAtThree(t *testing.T) {
	matches := []MatchResult{
		match("a", 0.95), match("b", 0.92), match("c", 0.88), match("d", 0.85), match("e", 0.40),
	}
	got := Decide(DefaultPolicy(), Request{Intent: IntentQuestion}, matches)
	if got.Action != ActionUseExisting {
		t.Fatalf("Action = %q", got.Action)
	}
	if len(got.Matches) != 3 {
		t.Errorf("expected top 3 strong matches, got %d", len(got.Matches))
	}
}

func TestDecideCompose(t *testing.T) {
	req := Classify("convert the excel spreadsheet into a pdf")

	matches := []MatchResult{
		match("excel-builder", 0.40, "spreadsheet"),
		match("pdf-export", 0.35, "pdf"),
	}
	got := Decide(DefaultPolicy(), req, matches)
	if got.Action != ActionCompose {
		t.Fatalf("Action = %q, want compose", got.Action)
	}
	if len(got.Chain) != 2 {
		t.Fatalf("len(Chain) = %d, want 2", len(got.Chain))
	}
	// Chain follows cluster strength: the spreadsheet cluster matched more
	// terms than the pdf cluster.
	if got.Chain[0].DescriptorID != "excel-builder" || got.Chain[1].DescriptorID != "pdf-export" {
		t.Errorf("Chain order = %q, %q", got.Chain[0].DescriptorID, got.Chain[1].DescriptorID)
	}
}

func TestDecideNoComposeWhenOneDescriptorCoversAll(t *testing.T) {
	req := Classify("convert the excel spreadsheet into a pdf")

	matches := []MatchResult{
		match("office-suite", 0.40, "spreadsheet", "pdf"),
	}
	got := Decide(DefaultPolicy(), req, matches)
	if got.Action == ActionCompose {
		t.Errorf("single covering descriptor must not compose")
	}
	if got.Action != ActionClarify {
		t.Errorf("Action = %q, want clarify", got.Action)
	}
}

func TestDecideIsPure(t *testing.T) {
	req := Classify("do we have a skill for excel spreadsheets?")
	matches := []MatchResult{match("excel-builder", 0.72, "spreadsheet")}

	first := Decide(DefaultPolicy(), req, matches)
	for i := 0; i < 10; i++ {
		again := Decide(DefaultPolicy(), req, matches)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d: decision changed: %+v vs %+v", i, again, first)
		}
	}
}

func TestDecideFloorNeverLeaks(t *testing.T) {
	// Matches handed to Decide already passed the matcher floor; the decision
	// must never re-introduce anything below it.
	m := NewMatcher(0.15)
	req := Classify("help me with an excel spreadsheet")
	results := m.Score(req, []catalog.Descriptor{testDescriptor("excel-builder"), {
		ID:      "unrelated",
		Name:    "unrelated",
		Summary: "something else entirely",
	}})
	got := Decide(DefaultPolicy(), req, results)
	for _, mr := range got.Matches {
		if mr.Confidence < 0.15 {
			t.Errorf("match below floor leaked into decision: %+v", mr)
		}
	}
}
