package catalog

import (
	"testing"
)

func indexFixture() *Index {
	return NewIndex([]Descriptor{
		{
			ID:             "pdf-export",
			Name:           "pdf-export",
			Summary:        "Exports documents as portable PDF files",
			Tags:           []string{"pdf", "export"},
			TriggerPhrases: []string{"export pdf"},
			Domains:        []string{"pdf"},
			Priority:       2,
		},
		{
			ID:             "excel-builder",
			Name:           "excel-builder",
			Summary:        "Creates and edits excel spreadsheets",
			Tags:           []string{"excel", "spreadsheet"},
			TriggerPhrases: []string{"excel", "spreadsheet"},
			Domains:        []string{"spreadsheet"},
			Priority:       1,
		},
	}, map[string]string{"custom": "/tmp/skills"}, nil)
}

func TestNewIndexOrdering(t *testing.T) {
	idx := indexFixture()

	if idx.Version != IndexVersion {
		t.Errorf("Version = %q, want %q", idx.Version, IndexVersion)
	}
	if idx.TotalCount != 2 {
		t.Errorf("TotalCount = %d, want 2", idx.TotalCount)
	}
	// Sorted by priority, then id.
	if idx.Descriptors[0].ID != "excel-builder" || idx.Descriptors[1].ID != "pdf-export" {
		t.Errorf("descriptor order = %q, %q", idx.Descriptors[0].ID, idx.Descriptors[1].ID)
	}
	if names := idx.Domains["spreadsheet"]; len(names) != 1 || names[0] != "excel-builder" {
		t.Errorf("Domains[spreadsheet] = %v", names)
	}
}

func TestIndexLookup(t *testing.T) {
	idx := indexFixture()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "trigger phrase",
			query: "help me with an excel sheet",
			want:  []string{"excel-builder"},
		},
		{
			name:  "tag word",
			query: "pdf conversion please",
			want:  []string{"pdf-export"},
		},
		{
			name:  "summary word",
			query: "manage my spreadsheets today",
			want:  []string{"excel-builder"},
		},
		{
			name:  "unrelated",
			query: "water my plants",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := idx.Lookup(tt.query)
			if len(got) != len(tt.want) {
				t.Fatalf("Lookup(%q) returned %d descriptors, want %d", tt.query, len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i].ID != tt.want[i] {
					t.Errorf("Lookup(%q)[%d] = %q, want %q", tt.query, i, got[i].ID, tt.want[i])
				}
			}
		})
	}
}

func TestIndexLookupNilSafe(t *testing.T) {
	var idx *Index
	if got := idx.Lookup("anything"); got != nil {
		t.Errorf("nil index Lookup = %v, want nil", got)
	}
}

func TestProviderSwap(t *testing.T) {
	p := NewProvider(nil)

	// Absent index degrades to empty results.
	if got := p.Lookup("excel"); len(got) != 0 {
		t.Errorf("empty provider Lookup = %v", got)
	}

	p.Replace(indexFixture())
	if got := p.Lookup("build an excel sheet"); len(got) != 1 {
		t.Errorf("after Replace, Lookup returned %d results", len(got))
	}
	if p.Current() == nil {
		t.Error("Current() = nil after Replace")
	}
}
