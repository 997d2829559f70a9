package strategyconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/harshul/nsequant/internal/contracts"
	"github.com/harshul/nsequant/internal/engine"
)

const validYAML = `meta:
  strategy_id: monthly-sharpe
  version: "1.0"
universe:
  max_size: 500
ranking:
  metric: sharpe_365
  smoothing_days: 5
portfolio:
  size: 15
  initial_value: 1.0
calendar:
  keep_anchor_row: false
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "strategy.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, yamlData, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Meta.StrategyID != "monthly-sharpe" {
		t.Errorf("expected strategy_id=monthly-sharpe, got %s", cfg.Meta.StrategyID)
	}
	if cfg.Universe.MaxSize != 500 {
		t.Errorf("expected max_size=500, got %d", cfg.Universe.MaxSize)
	}
	if cfg.Ranking.Metric != contracts.MetricSharpe365 {
		t.Errorf("expected metric=sharpe_365, got %s", cfg.Ranking.Metric)
	}
	if cfg.Ranking.SmoothingDays != 5 {
		t.Errorf("expected smoothing_days=5, got %d", cfg.Ranking.SmoothingDays)
	}
	if len(yamlData) == 0 {
		t.Error("expected raw yaml bytes")
	}
}

func TestLoadRejectsUnknownField(t *testing.T) {
	yaml := validYAML + "unknown_section:\n  foo: 1\n"
	if _, _, err := Load(writeConfig(t, yaml)); err == nil {
		t.Error("expected unknown field to fail")
	}
}

func TestHashDeterministic(t *testing.T) {
	cfg := Default()

	hash, err := Hash(cfg)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if len(hash) != 64 {
		t.Errorf("expected 64 char hash, got %d", len(hash))
	}

	hash2, _ := Hash(cfg)
	if hash != hash2 {
		t.Error("hash not deterministic")
	}

	cfg.Portfolio.Size = 10
	hash3, _ := Hash(cfg)
	if hash == hash3 {
		t.Error("expected different hash for different config")
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing strategy_id", func(c *Config) { c.Meta.StrategyID = "" }},
		{"zero universe", func(c *Config) { c.Universe.MaxSize = 0 }},
		{"bad metric", func(c *Config) { c.Ranking.Metric = "sortino_365" }},
		{"negative smoothing", func(c *Config) { c.Ranking.SmoothingDays = -1 }},
		{"zero portfolio", func(c *Config) { c.Portfolio.Size = 0 }},
		{"portfolio exceeds universe", func(c *Config) { c.Portfolio.Size = c.Universe.MaxSize + 1 }},
		{"zero initial value", func(c *Config) { c.Portfolio.InitialValue = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestWarn(t *testing.T) {
	cfg := Default()
	cfg.Portfolio.Size = 3
	cfg.Ranking.SmoothingDays = 60

	warnings := Warn(cfg)
	if len(warnings) != 2 {
		t.Errorf("expected 2 warnings, got %d", len(warnings))
	}

	if warnings := Warn(Default()); len(warnings) != 0 {
		t.Errorf("expected no warnings for default config, got %d", len(warnings))
	}
}

func TestStrategySnapshot(t *testing.T) {
	cfg := Default()
	yamlData := []byte(validYAML)

	snapshot, err := NewStrategySnapshot(cfg, yamlData)
	if err != nil {
		t.Fatalf("NewStrategySnapshot failed: %v", err)
	}

	if snapshot.StrategyID != cfg.Meta.StrategyID {
		t.Errorf("expected strategy_id=%s, got %s", cfg.Meta.StrategyID, snapshot.StrategyID)
	}
	if snapshot.ConfigYAML != validYAML {
		t.Error("expected raw yaml preserved in snapshot")
	}
	if len(snapshot.ConfigHash) != 64 {
		t.Errorf("expected 64 char hash, got %d", len(snapshot.ConfigHash))
	}
}

func TestEffectiveFor(t *testing.T) {
	base := Default()
	run := engine.Config{
		FromYear:        2019,
		ToYear:          2019,
		MaxUniverseSize: base.Universe.MaxSize,
		PortfolioSize:   10,
		Metric:          contracts.MetricSharpe90,
		SmoothingDays:   5,
		InitialValue:    base.Portfolio.InitialValue,
	}

	effective := base.EffectiveFor(run)
	if effective.Portfolio.Size != 10 {
		t.Errorf("expected portfolio size 10, got %d", effective.Portfolio.Size)
	}
	if effective.Ranking.Metric != contracts.MetricSharpe90 {
		t.Errorf("expected metric sharpe_90, got %s", effective.Ranking.Metric)
	}
	if base.Portfolio.Size != Default().Portfolio.Size {
		t.Error("base config must not be mutated")
	}

	// A persisted run's hash must reflect per-run overrides, not just the
	// strategy file the run started from.
	baseHash, err := Hash(base)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	overrideHash, err := Hash(effective)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if baseHash == overrideHash {
		t.Error("expected overridden parameters to change the config hash")
	}
}
