package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/c360studio/skillforge/vocabulary"
)

// Source describes one location skills are discovered from. Pattern is a
// doublestar glob evaluated relative to Path; lower Priority wins when two
// sources declare the same skill name.
type Source struct {
	Name     string `yaml:"name" json:"name"`
	Path     string `yaml:"path" json:"path"`
	Pattern  string `yaml:"pattern" json:"pattern"`
	Priority int    `yaml:"priority" json:"priority"`
}

// DefaultSources returns the standard skill source list: user-authored
// skills first, then installed skill packs and marketplaces.
func DefaultSources() []Source {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []Source{
		{
			Name:     "custom",
			Path:     filepath.Join(home, ".config", "skillforge", "skills"),
			Pattern:  "*/skill.md",
			Priority: 1,
		},
		{
			Name:     "packs",
			Path:     filepath.Join(home, ".config", "skillforge", "packs"),
			Pattern:  "*/skills/*/skill.md",
			Priority: 2,
		},
		{
			Name:     "marketplace",
			Path:     filepath.Join(home, ".config", "skillforge", "marketplace"),
			Pattern:  "**/skills/*/skill.md",
			Priority: 3,
		},
	}
}

// Scanner builds index snapshots from skill sources. It is the out-of-band
// rebuild path; nothing here runs during a triage decision.
type Scanner struct {
	sources []Source
	logger  *slog.Logger
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithScannerLogger sets the logger.
func WithScannerLogger(logger *slog.Logger) ScannerOption {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// NewScanner creates a scanner over sources. An empty source list uses
// DefaultSources.
func NewScanner(sources []Source, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		sources: sources,
		logger:  slog.Default().With(slog.String("component", "catalog-scanner")),
	}
	if len(s.sources) == 0 {
		s.sources = DefaultSources()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sources returns the configured source list.
func (s *Scanner) Sources() []Source {
	return s.sources
}

// Scan walks every source, parses each skill document, and returns a fresh
// index snapshot. Missing sources produce warnings, not errors; only a
// completely sourceless configuration returns ErrNoSources.
func (s *Scanner) Scan() (*Index, error) {
	var (
		descriptors []Descriptor
		warnings    []string
		seenIDs     = make(map[string]string) // id → source
		anySource   bool
	)

	sourcePaths := make(map[string]string, len(s.sources))

	// Walk sources in priority order so collisions resolve deterministically.
	ordered := make([]Source, len(s.sources))
	copy(ordered, s.sources)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Priority < ordered[j].Priority })

	for _, src := range ordered {
		sourcePaths[src.Name] = src.Path

		if _, err := os.Stat(src.Path); err != nil {
			warnings = append(warnings, fmt.Sprintf("source not found: %s (%s)", src.Name, src.Path))
			continue
		}
		anySource = true

		matches, err := doublestar.FilepathGlob(filepath.Join(src.Path, src.Pattern))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("bad pattern for source %s: %v", src.Name, err))
			continue
		}
		sort.Strings(matches)

		s.logger.Debug("scanning source",
			slog.String("source", src.Name),
			slog.Int("files", len(matches)))

		for _, path := range matches {
			desc, err := s.parseSkillFile(path, src)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("failed to parse %s: %v", path, err))
				continue
			}

			// Same skill name from a lower-priority source gets a suffixed ID
			// so both remain addressable.
			if prev, dup := seenIDs[desc.ID]; dup {
				desc.ID = desc.ID + "-" + src.Name
				s.logger.Debug("descriptor id collision",
					slog.String("id", desc.ID),
					slog.String("kept_source", prev))
			}
			seenIDs[desc.ID] = src.Name
			descriptors = append(descriptors, desc)
		}
	}

	if !anySource {
		return nil, ErrNoSources
	}

	idx := NewIndex(descriptors, sourcePaths, warnings)
	s.logger.Info("catalog scan complete",
		slog.Int("descriptors", idx.TotalCount),
		slog.Int("warnings", len(warnings)))
	return idx, nil
}

// parseSkillFile reads one skill document and builds its descriptor.
func (s *Scanner) parseSkillFile(path string, src Source) (Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, err
	}
	content := string(data)

	fm, err := ParseFrontMatter(content)
	if err != nil {
		return Descriptor{}, err
	}

	name := fm.Name
	if name == "" {
		name = filepath.Base(filepath.Dir(path))
	}

	summary := fm.Description
	if summary == "" {
		summary = FirstParagraph(content)
	}

	keywords := ExtractKeywords(content, name)

	return Descriptor{
		ID:             Slugify(name),
		Name:           name,
		Summary:        summary,
		Tags:           normalizeTags(keywords),
		TriggerPhrases: ExtractTriggers(content),
		Domains:        vocabulary.Classify(keywords, content),
		Source:         src.Name,
		Path:           path,
		Priority:       src.Priority,
		Version:        fm.Metadata["version"],
	}, nil
}

// Rebuilder ties the scanner, store, and provider together for out-of-band
// index rebuilds. Rebuild is externally serialized; callers must not
// interleave Rebuild with itself.
type Rebuilder struct {
	scanner  *Scanner
	store    *Store
	provider *Provider
	logger   *slog.Logger
}

// NewRebuilder creates a rebuilder. provider may be nil when only the
// persisted index matters (CLI one-shot rebuilds).
func NewRebuilder(scanner *Scanner, store *Store, provider *Provider, logger *slog.Logger) *Rebuilder {
	if logger == nil {
		logger = slog.Default().With(slog.String("component", "catalog-rebuilder"))
	}
	return &Rebuilder{scanner: scanner, store: store, provider: provider, logger: logger}
}

// Rebuild scans all sources, persists the snapshot, and swaps it into the
// provider. In-flight lookups keep the snapshot they started with.
func (r *Rebuilder) Rebuild() (*Index, error) {
	idx, err := r.scanner.Scan()
	if err != nil {
		return nil, err
	}
	if err := r.store.Save(idx); err != nil {
		return nil, err
	}
	if r.provider != nil {
		r.provider.Replace(idx)
	}
	r.logger.Info("index rebuilt",
		slog.Int("descriptors", idx.TotalCount),
		slog.String("path", r.store.Path()))
	return idx, nil
}
