// Package config provides configuration loading and management for Skillforge.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete Skillforge configuration
type Config struct {
	Catalog   CatalogConfig   `yaml:"catalog"`
	Triage    TriageConfig    `yaml:"triage"`
	Refine    RefineConfig    `yaml:"refine"`
	Consensus ConsensusConfig `yaml:"consensus"`
	NATS      NATSConfig      `yaml:"nats"`
	Ingest    IngestConfig    `yaml:"ingest"`
}

// CatalogConfig configures skill discovery and the index location
type CatalogConfig struct {
	// IndexPath is where the catalog index is persisted (default: user cache dir)
	IndexPath string `yaml:"index_path"`
	// Sources are extra skill source directories scanned in addition to the defaults
	Sources []SourceConfig `yaml:"sources"`
}

// SourceConfig describes one skill source directory
type SourceConfig struct {
	Name     string `yaml:"name"`
	Path     string `yaml:"path"`
	Pattern  string `yaml:"pattern"`
	Priority int    `yaml:"priority"`
}

// TriageConfig configures match scoring and routing thresholds
type TriageConfig struct {
	// ConfidenceFloor drops matches scoring below this value (default: 0.15)
	ConfidenceFloor float64 `yaml:"confidence_floor"`
	// HighConfidence is the reuse threshold (default: 0.80)
	HighConfidence float64 `yaml:"high_confidence"`
	// ModerateConfidence is the improvement threshold (default: 0.50)
	ModerateConfidence float64 `yaml:"moderate_confidence"`
}

// RefineConfig configures the refinement session bounds
type RefineConfig struct {
	// MaxRounds is the hard round ceiling (default: 7)
	MaxRounds int `yaml:"max_rounds"`
	// MinEmptyRounds is how many consecutive insight-free rounds signal convergence (default: 3)
	MinEmptyRounds int `yaml:"min_empty_rounds"`
	// MinLenses is how many distinct lenses must be applied before convergence counts (default: 5)
	MinLenses int `yaml:"min_lenses"`
}

// ConsensusConfig configures the evaluator panel loop
type ConsensusConfig struct {
	// ApprovalBar is the minimum average score for approval (default: 7.0)
	ApprovalBar float64 `yaml:"approval_bar"`
	// MaxRounds is the global review round budget (default: 5)
	MaxRounds int `yaml:"max_rounds"`
	// CriticalOnlyRound is the round from which only critical fixes are applied (default: 4)
	CriticalOnlyRound int `yaml:"critical_only_round"`
	// EvaluatorTimeout bounds each evaluator's review (default: 3m)
	EvaluatorTimeout time.Duration `yaml:"evaluator_timeout"`
}

// NATSConfig configures the NATS connection used for the evaluator panel
type NATSConfig struct {
	// URL is the NATS server URL (default: nats://localhost:4222)
	URL string `yaml:"url"`
}

// IngestConfig configures web reference ingestion
type IngestConfig struct {
	// Timeout bounds a single fetch (default: 30s)
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			IndexPath: "", // Resolved to the user cache dir
		},
		Triage: TriageConfig{
			ConfidenceFloor:    0.15,
			HighConfidence:     0.80,
			ModerateConfidence: 0.50,
		},
		Refine: RefineConfig{
			MaxRounds:      7,
			MinEmptyRounds: 3,
			MinLenses:      5,
		},
		Consensus: ConsensusConfig{
			ApprovalBar:       7.0,
			MaxRounds:         5,
			CriticalOnlyRound: 4,
			EvaluatorTimeout:  3 * time.Minute,
		},
		NATS: NATSConfig{
			URL: "nats://localhost:4222",
		},
		Ingest: IngestConfig{
			Timeout: 30 * time.Second,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Triage.ConfidenceFloor < 0 || c.Triage.ConfidenceFloor > 1 {
		return fmt.Errorf("triage.confidence_floor must be between 0 and 1")
	}
	if c.Triage.HighConfidence < c.Triage.ModerateConfidence {
		return fmt.Errorf("triage.high_confidence must be >= triage.moderate_confidence")
	}
	if c.Refine.MaxRounds < 1 {
		return fmt.Errorf("refine.max_rounds must be at least 1")
	}
	if c.Consensus.MaxRounds < 1 {
		return fmt.Errorf("consensus.max_rounds must be at least 1")
	}
	if c.Consensus.ApprovalBar < 0 || c.Consensus.ApprovalBar > 10 {
		return fmt.Errorf("consensus.approval_bar must be between 0 and 10")
	}
	if c.Consensus.EvaluatorTimeout <= 0 {
		return fmt.Errorf("consensus.evaluator_timeout must be positive")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Catalog
	if other.Catalog.IndexPath != "" {
		c.Catalog.IndexPath = other.Catalog.IndexPath
	}
	if len(other.Catalog.Sources) > 0 {
		c.Catalog.Sources = other.Catalog.Sources
	}

	// Triage
	if other.Triage.ConfidenceFloor != 0 {
		c.Triage.ConfidenceFloor = other.Triage.ConfidenceFloor
	}
	if other.Triage.HighConfidence != 0 {
		c.Triage.HighConfidence = other.Triage.HighConfidence
	}
	if other.Triage.ModerateConfidence != 0 {
		c.Triage.ModerateConfidence = other.Triage.ModerateConfidence
	}

	// Refine
	if other.Refine.MaxRounds != 0 {
		c.Refine.MaxRounds = other.Refine.MaxRounds
	}
	if other.Refine.MinEmptyRounds != 0 {
		c.Refine.MinEmptyRounds = other.Refine.MinEmptyRounds
	}
	if other.Refine.MinLenses != 0 {
		c.Refine.MinLenses = other.Refine.MinLenses
	}

	// Consensus
	if other.Consensus.ApprovalBar != 0 {
		c.Consensus.ApprovalBar = other.Consensus.ApprovalBar
	}
	if other.Consensus.MaxRounds != 0 {
		c.Consensus.MaxRounds = other.Consensus.MaxRounds
	}
	if other.Consensus.CriticalOnlyRound != 0 {
		c.Consensus.CriticalOnlyRound = other.Consensus.CriticalOnlyRound
	}
	if other.Consensus.EvaluatorTimeout != 0 {
		c.Consensus.EvaluatorTimeout = other.Consensus.EvaluatorTimeout
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}

	// Ingest
	if other.Ingest.Timeout != 0 {
		c.Ingest.Timeout = other.Ingest.Timeout
	}
}
