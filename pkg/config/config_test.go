package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalYAML = `
environment: test
server:
  port: 8080
`

func TestLoadAppliesDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if c.Scoring.UpperThreshold != 60 || c.Scoring.LowerThreshold != 40 {
		t.Fatalf("unexpected threshold defaults %v/%v", c.Scoring.UpperThreshold, c.Scoring.LowerThreshold)
	}
	if c.Scoring.Weights.Technical != 0.40 || c.Scoring.Weights.Astrology != 0.15 {
		t.Fatalf("unexpected weight defaults %+v", c.Scoring.Weights)
	}
	if c.Alerts.DefaultCooldown != 5*time.Minute {
		t.Fatalf("unexpected cooldown default %v", c.Alerts.DefaultCooldown)
	}
	if c.Risk.MaxKellyFraction != 0.25 || c.Risk.MinEdge != 0.005 {
		t.Fatalf("unexpected risk defaults %+v", c.Risk)
	}
	if c.Backtest.Annualization != 8760 || c.Backtest.RetrainSharpe != 1.5 {
		t.Fatalf("unexpected backtest defaults %+v", c.Backtest)
	}
	if c.Retrain.QueueName != "astropulse:retrain" {
		t.Fatalf("unexpected queue name %q", c.Retrain.QueueName)
	}
}

func TestLoadKeepsExplicitValues(t *testing.T) {
	c, err := Load(writeConfig(t, `
environment: production
scoring:
  weights:
    technical: 0.7
    social: 0.1
    fundamental: 0.1
    astrology: 0.1
  upper_threshold: 65
  lower_threshold: 35
risk:
  min_edge: 0.01
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Scoring.UpperThreshold != 65 || c.Scoring.Weights.Technical != 0.7 {
		t.Fatalf("explicit values overridden: %+v", c.Scoring)
	}
	if c.Risk.MinEdge != 0.01 {
		t.Fatalf("explicit risk value overridden: %v", c.Risk.MinEdge)
	}
	if c.Risk.MaxKellyFraction != 0.25 {
		t.Fatalf("unset risk value must still default: %v", c.Risk.MaxKellyFraction)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"missing environment", `server: {port: 1}`},
		{"inverted thresholds", `
environment: test
scoring:
  upper_threshold: 30
  lower_threshold: 70
`},
		{"negative weight", `
environment: test
scoring:
  weights:
    technical: -0.5
    social: 0.5
    fundamental: 0.5
    astrology: 0.5
`},
		{"kelly out of range", `
environment: test
risk:
  max_kelly_fraction: 1.5
`},
	}
	for _, c := range cases {
		if _, err := Load(writeConfig(t, c.yaml)); err == nil {
			t.Fatalf("%s: expected validation error", c.name)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("missing file must error")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis-prod:6379")
	t.Setenv("CLICKHOUSE_HOST", "ch-prod")

	c, err := LoadWithEnv(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Redis.Addr != "redis-prod:6379" {
		t.Fatalf("redis addr override not applied: %q", c.Redis.Addr)
	}
	if c.ClickHouse.Host != "ch-prod" {
		t.Fatalf("clickhouse host override not applied: %q", c.ClickHouse.Host)
	}
}
