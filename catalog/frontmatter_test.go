package catalog

import (
	"testing"
)

const sampleSkill = `---
name: excel-builder
description: Creates and edits excel spreadsheets
license: MIT
metadata:
  version: 1.2.0
---

# Excel Builder

Builds spreadsheets from structured data.

**Triggers:** ` + "`create spreadsheet`" + `

| Trigger | Action |
|---|---|
| ` + "`excel file`" + ` | build |
| ` + "`xlsx export`" + ` | export |

Purpose: tabular data manipulation and formula generation
`

func TestParseFrontMatter(t *testing.T) {
	fm, err := ParseFrontMatter(sampleSkill)
	if err != nil {
		t.Fatalf("ParseFrontMatter() error = %v", err)
	}
	if fm.Name != "excel-builder" {
		t.Errorf("Name = %q", fm.Name)
	}
	if fm.Description != "Creates and edits excel spreadsheets" {
		t.Errorf("Description = %q", fm.Description)
	}
	if fm.License != "MIT" {
		t.Errorf("License = %q", fm.License)
	}
	if fm.Metadata["version"] != "1.2.0" {
		t.Errorf("Metadata[version] = %q", fm.Metadata["version"])
	}
}

func TestParseFrontMatterMissing(t *testing.T) {
	fm, err := ParseFrontMatter("# Just a heading\n\nNo front matter here.")
	if err != nil {
		t.Fatalf("ParseFrontMatter() error = %v", err)
	}
	if fm.Name != "" || fm.Extra != nil {
		t.Errorf("expected zero FrontMatter, got %+v", fm)
	}
}

func TestParseFrontMatterMalformed(t *testing.T) {
	if _, err := ParseFrontMatter("---\nname: [unclosed\n---\nbody"); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestExtractTriggers(t *testing.T) {
	got := ExtractTriggers(sampleSkill)

	want := map[string]bool{
		"create spreadsheet": true,
		"excel file":         true,
		"xlsx export":        true,
	}
	for _, trigger := range got {
		if !want[trigger] {
			t.Errorf("unexpected trigger %q", trigger)
		}
		delete(want, trigger)
	}
	for missing := range want {
		t.Errorf("trigger %q not extracted", missing)
	}
}

func TestExtractTriggersDeduplicates(t *testing.T) {
	content := "**Triggers:** `same phrase`\n\nTriggers: `same phrase`\n"
	got := ExtractTriggers(content)
	if len(got) != 1 || got[0] != "same phrase" {
		t.Errorf("ExtractTriggers() = %v, want one deduplicated phrase", got)
	}
}

func TestExtractKeywords(t *testing.T) {
	got := ExtractKeywords(sampleSkill, "excel-builder")

	wantPresent := []string{"excel-builder", "excel", "builder", "tabular", "formula"}
	set := make(map[string]bool, len(got))
	for _, k := range got {
		set[k] = true
	}
	for _, w := range wantPresent {
		if !set[w] {
			t.Errorf("keyword %q missing from %v", w, got)
		}
	}

	// Sorted output.
	for i := 1; i < len(got); i++ {
		if got[i-1] > got[i] {
			t.Errorf("keywords not sorted: %q > %q", got[i-1], got[i])
		}
	}
}

func TestFirstParagraph(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "skips headings and lists",
			content: "# Title\n\n- item\n\nThe actual summary line.\n",
			want:    "The actual summary line.",
		},
		{
			name:    "empty document",
			content: "",
			want:    "",
		},
		{
			name:    "headings only",
			content: "# One\n## Two\n",
			want:    "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FirstParagraph(tt.content); got != tt.want {
				t.Errorf("FirstParagraph() = %q, want %q", got, tt.want)
			}
		})
	}
}
