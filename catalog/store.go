package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultIndexPath returns the persisted index location under the user cache
// directory. Falls back to a dot directory in $HOME when the platform cache
// dir cannot be resolved.
func DefaultIndexPath() string {
	if cache, err := os.UserCacheDir(); err == nil {
		return filepath.Join(cache, "skillforge", "index.json")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".skillforge", "index.json")
	}
	return filepath.Join(home, ".skillforge", "index.json")
}

// Store persists index snapshots as JSON keyed by descriptor fields.
type Store struct {
	path string
}

// NewStore creates a store at path. An empty path uses DefaultIndexPath.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultIndexPath()
	}
	return &Store{path: path}
}

// Path returns the index file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted index. Returns ErrIndexNotFound when no index
// file exists yet.
func (s *Store) Load() (*Index, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrIndexNotFound
		}
		return nil, fmt.Errorf("read index: %w", err)
	}

	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}
	return &idx, nil
}

// Save writes the index atomically: marshal to a temp file in the same
// directory, then rename over the target so concurrent readers never see a
// torn file.
func (s *Store) Save(idx *Index) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "index-*.json")
	if err != nil {
		return fmt.Errorf("create temp index: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp index: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace index: %w", err)
	}
	return nil
}
