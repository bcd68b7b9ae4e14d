package triage

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantCategory Category
		wantIntent   Intent
	}{
		{
			name:         "explicit create",
			input:        "Create a new skill for parsing invoices",
			wantCategory: CategoryExplicitCreate,
			wantIntent:   IntentExplicitCreate,
		},
		{
			name:         "explicit improve",
			input:        "Improve the excel skill to handle pivot tables",
			wantCategory: CategoryExplicitImprove,
			wantIntent:   IntentExplicitImprove,
		},
		{
			name:         "question",
			input:        "Do we have a skill for generating PDFs?",
			wantCategory: CategoryQuestion,
			wantIntent:   IntentQuestion,
		},
		{
			name:         "error message",
			input:        "TypeError: cannot read property 'length' of undefined",
			wantCategory: CategoryError,
			wantIntent:   IntentTaskOrError,
		},
		{
			name:         "python traceback",
			input:        "Traceback (most recent call last):\n  File \"app.py\", line 10",
			wantCategory: CategoryError,
			wantIntent:   IntentTaskOrError,
		},
		{
			name:         "code snippet",
			input:        "const handler = (req) => {\n  return req.body\n}",
			wantCategory: CategoryCode,
			wantIntent:   IntentTaskOrError,
		},
		{
			name:         "url content",
			input:        "summarize https://example.com/article for the team",
			wantCategory: CategoryURL,
			wantIntent:   IntentTaskOrError,
		},
		{
			name:         "task request",
			input:        "help me with the quarterly report numbers",
			wantCategory: CategoryTask,
			wantIntent:   IntentTaskOrError,
		},
		{
			name:         "general",
			input:        "the weather is nice today",
			wantCategory: CategoryGeneral,
			wantIntent:   IntentUnclassified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.input)
			if got.Category != tt.wantCategory {
				t.Errorf("Category = %q, want %q", got.Category, tt.wantCategory)
			}
			if got.Intent != tt.wantIntent {
				t.Errorf("Intent = %q, want %q", got.Intent, tt.wantIntent)
			}
			if got.RawText != tt.input {
				t.Errorf("RawText mutated: %q", got.RawText)
			}
		})
	}
}

func TestClassifySignals(t *testing.T) {
	t.Run("extracted purpose", func(t *testing.T) {
		req := Classify("create a new skill for scraping product pages")
		if req.Signals.ExtractedPurpose != "scraping product pages" {
			t.Errorf("ExtractedPurpose = %q", req.Signals.ExtractedPurpose)
		}
	})

	t.Run("mentioned skill name", func(t *testing.T) {
		req := Classify("improve the pdf-export skill with watermarks")
		if req.Signals.MentionedName != "pdf-export" {
			t.Errorf("MentionedName = %q", req.Signals.MentionedName)
		}
	})

	t.Run("url captured", func(t *testing.T) {
		req := Classify("look at https://example.com/docs please")
		if !req.Signals.HasURL || req.Signals.URL != "https://example.com/docs" {
			t.Errorf("URL signal = %+v", req.Signals)
		}
	})

	t.Run("skill mention flag", func(t *testing.T) {
		req := Classify("which skill handles spreadsheets?")
		if !req.Signals.HasSkillMention {
			t.Error("expected HasSkillMention")
		}
	})
}

func TestClassifyPrecedence(t *testing.T) {
	// Explicit creation wins over the question signal in the same input.
	req := Classify("create a new skill for pdf export, or is there a skill already?")
	if req.Category != CategoryExplicitCreate {
		t.Errorf("Category = %q, want explicit_create", req.Category)
	}
}
