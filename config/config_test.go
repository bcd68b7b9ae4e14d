package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Triage.HighConfidence != 0.80 {
		t.Errorf("expected high confidence 0.80, got %f", cfg.Triage.HighConfidence)
	}
	if cfg.Triage.ModerateConfidence != 0.50 {
		t.Errorf("expected moderate confidence 0.50, got %f", cfg.Triage.ModerateConfidence)
	}
	if cfg.Refine.MaxRounds != 7 {
		t.Errorf("expected refine max rounds 7, got %d", cfg.Refine.MaxRounds)
	}
	if cfg.Consensus.ApprovalBar != 7.0 {
		t.Errorf("expected approval bar 7.0, got %f", cfg.Consensus.ApprovalBar)
	}
	if cfg.Consensus.MaxRounds != 5 {
		t.Errorf("expected consensus max rounds 5, got %d", cfg.Consensus.MaxRounds)
	}
	if cfg.Consensus.EvaluatorTimeout != 3*time.Minute {
		t.Errorf("expected evaluator timeout 3m, got %v", cfg.Consensus.EvaluatorTimeout)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "confidence floor too high",
			modify:  func(c *Config) { c.Triage.ConfidenceFloor = 1.5 },
			wantErr: true,
		},
		{
			name:    "inverted triage thresholds",
			modify:  func(c *Config) { c.Triage.HighConfidence = 0.3 },
			wantErr: true,
		},
		{
			name:    "zero refine rounds",
			modify:  func(c *Config) { c.Refine.MaxRounds = -1 },
			wantErr: true,
		},
		{
			name:    "approval bar above scale",
			modify:  func(c *Config) { c.Consensus.ApprovalBar = 11 },
			wantErr: true,
		},
		{
			name:    "negative evaluator timeout",
			modify:  func(c *Config) { c.Consensus.EvaluatorTimeout = -time.Second },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temp file with config
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
catalog:
  index_path: "/test/index.json"
  sources:
    - name: team
      path: "/srv/skills"
      pattern: "**/SKILL.md"
      priority: 5
triage:
  confidence_floor: 0.2
  high_confidence: 0.85
consensus:
  approval_bar: 8.0
  evaluator_timeout: 90s
nats:
  url: "nats://test:4222"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Catalog.IndexPath != "/test/index.json" {
		t.Errorf("expected index path /test/index.json, got %s", cfg.Catalog.IndexPath)
	}
	if len(cfg.Catalog.Sources) != 1 || cfg.Catalog.Sources[0].Name != "team" {
		t.Errorf("expected one source named team, got %+v", cfg.Catalog.Sources)
	}
	if cfg.Triage.ConfidenceFloor != 0.2 {
		t.Errorf("expected confidence floor 0.2, got %f", cfg.Triage.ConfidenceFloor)
	}
	if cfg.Triage.HighConfidence != 0.85 {
		t.Errorf("expected high confidence 0.85, got %f", cfg.Triage.HighConfidence)
	}
	// Unset fields keep their defaults.
	if cfg.Triage.ModerateConfidence != 0.50 {
		t.Errorf("expected moderate confidence to remain default, got %f", cfg.Triage.ModerateConfidence)
	}
	if cfg.Consensus.ApprovalBar != 8.0 {
		t.Errorf("expected approval bar 8.0, got %f", cfg.Consensus.ApprovalBar)
	}
	if cfg.Consensus.EvaluatorTimeout != 90*time.Second {
		t.Errorf("expected evaluator timeout 90s, got %v", cfg.Consensus.EvaluatorTimeout)
	}
	if cfg.NATS.URL != "nats://test:4222" {
		t.Errorf("expected NATS URL nats://test:4222, got %s", cfg.NATS.URL)
	}
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	override := &Config{
		Triage: TriageConfig{
			HighConfidence: 0.9,
		},
		Catalog: CatalogConfig{
			IndexPath: "/override/index.json",
		},
	}

	base.Merge(override)

	if base.Triage.HighConfidence != 0.9 {
		t.Errorf("expected high confidence 0.9, got %f", base.Triage.HighConfidence)
	}
	// Moderate threshold should remain from base since override didn't set it
	if base.Triage.ModerateConfidence != 0.50 {
		t.Errorf("expected moderate confidence to remain default, got %f", base.Triage.ModerateConfidence)
	}
	if base.Catalog.IndexPath != "/override/index.json" {
		t.Errorf("expected index path /override/index.json, got %s", base.Catalog.IndexPath)
	}
}

func TestConfigSaveToFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.yaml")

	cfg := DefaultConfig()
	cfg.NATS.URL = "nats://saved:4222"

	if err := cfg.SaveToFile(configPath); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	// Verify file was created
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("config file was not created")
	}

	// Load and verify
	loaded, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if loaded.NATS.URL != "nats://saved:4222" {
		t.Errorf("expected NATS URL nats://saved:4222, got %s", loaded.NATS.URL)
	}
}
