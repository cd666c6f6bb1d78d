package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logger struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logger"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Scoring struct {
		// Pillar weights for the master score; renormalized if the sum
		// drifts from 1.
		Weights struct {
			Technical   float64 `yaml:"technical"`
			Social      float64 `yaml:"social"`
			Fundamental float64 `yaml:"fundamental"`
			Astrology   float64 `yaml:"astrology"`
		} `yaml:"weights"`
		UpperThreshold float64 `yaml:"upper_threshold"` // master score above -> BULLISH
		LowerThreshold float64 `yaml:"lower_threshold"` // master score below -> BEARISH
		// Metrics whose magnitude spans orders of magnitude get log-scaled.
		LogScaleKeys      []string      `yaml:"log_scale_keys"`
		LogScaleThreshold float64       `yaml:"log_scale_threshold"`
		BoundsWindow      time.Duration `yaml:"bounds_window"`
		BoundsRefresh     time.Duration `yaml:"bounds_refresh"`
		BoundsCacheTTL    time.Duration `yaml:"bounds_cache_ttl"`
	} `yaml:"scoring"`
	Alerts struct {
		DefaultCooldown time.Duration `yaml:"default_cooldown"`
		HistoryLimit    int           `yaml:"history_limit"`
		WebhookTimeout  time.Duration `yaml:"webhook_timeout"`
		NotifyTimeout   time.Duration `yaml:"notify_timeout"`
	} `yaml:"alerts"`
	Risk struct {
		MaxKellyFraction   float64 `yaml:"max_kelly_fraction"`
		MaxBalanceFraction float64 `yaml:"max_balance_fraction"`
		MinEdge            float64 `yaml:"min_edge"`
		DefaultVolatility  float64 `yaml:"default_volatility"`
		MinHistory         int     `yaml:"min_history"`
	} `yaml:"risk"`
	Backtest struct {
		Annualization float64       `yaml:"annualization"` // periods per year for Sharpe
		RetrainSharpe float64       `yaml:"retrain_sharpe"`
		HorizonBars   int           `yaml:"horizon_bars"`
		Timeout       time.Duration `yaml:"timeout"`
	} `yaml:"backtest"`
	Retrain struct {
		ServiceURL string        `yaml:"service_url"` // Python ML sidecar
		Timeout    time.Duration `yaml:"timeout"`
		Attempts   int           `yaml:"attempts"`
		QueueName  string        `yaml:"queue_name"`
		Workers    int           `yaml:"workers"`
	} `yaml:"retrain"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		MetricsTopic string   `yaml:"metrics_topic"` // raw metric batch ingress
		SignalsTopic string   `yaml:"signals_topic"` // evaluated signal egress
		AlertsTopic  string   `yaml:"alerts_topic"`  // alert event notifications
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("RETRAIN_SERVICE_URL"); v != "" {
		c.Retrain.ServiceURL = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Scoring.Weights.Technical == 0 && c.Scoring.Weights.Social == 0 &&
		c.Scoring.Weights.Fundamental == 0 && c.Scoring.Weights.Astrology == 0 {
		c.Scoring.Weights.Technical = 0.40
		c.Scoring.Weights.Social = 0.20
		c.Scoring.Weights.Fundamental = 0.25
		c.Scoring.Weights.Astrology = 0.15
	}
	if c.Scoring.UpperThreshold == 0 {
		c.Scoring.UpperThreshold = 60
	}
	if c.Scoring.LowerThreshold == 0 {
		c.Scoring.LowerThreshold = 40
	}
	if c.Scoring.LogScaleThreshold == 0 {
		c.Scoring.LogScaleThreshold = 1000
	}
	if c.Scoring.BoundsWindow == 0 {
		c.Scoring.BoundsWindow = 30 * 24 * time.Hour
	}
	if c.Scoring.BoundsRefresh == 0 {
		c.Scoring.BoundsRefresh = 6 * time.Hour
	}
	if c.Alerts.DefaultCooldown == 0 {
		c.Alerts.DefaultCooldown = 5 * time.Minute
	}
	if c.Alerts.HistoryLimit == 0 {
		c.Alerts.HistoryLimit = 500
	}
	if c.Alerts.WebhookTimeout == 0 {
		c.Alerts.WebhookTimeout = 5 * time.Second
	}
	if c.Alerts.NotifyTimeout == 0 {
		c.Alerts.NotifyTimeout = 10 * time.Second
	}
	if c.Risk.MaxKellyFraction == 0 {
		c.Risk.MaxKellyFraction = 0.25
	}
	if c.Risk.MaxBalanceFraction == 0 {
		c.Risk.MaxBalanceFraction = 0.10
	}
	if c.Risk.MinEdge == 0 {
		c.Risk.MinEdge = 0.005
	}
	if c.Risk.DefaultVolatility == 0 {
		c.Risk.DefaultVolatility = 0.05
	}
	if c.Risk.MinHistory == 0 {
		c.Risk.MinHistory = 10
	}
	if c.Backtest.Annualization == 0 {
		c.Backtest.Annualization = 365 * 24 // hourly bars
	}
	if c.Backtest.RetrainSharpe == 0 {
		c.Backtest.RetrainSharpe = 1.5
	}
	if c.Backtest.HorizonBars == 0 {
		c.Backtest.HorizonBars = 1
	}
	if c.Backtest.Timeout == 0 {
		c.Backtest.Timeout = 60 * time.Second
	}
	if c.Retrain.Timeout == 0 {
		c.Retrain.Timeout = 30 * time.Second
	}
	if c.Retrain.Attempts == 0 {
		c.Retrain.Attempts = 3
	}
	if c.Retrain.QueueName == "" {
		c.Retrain.QueueName = "astropulse:retrain"
	}
	if c.Retrain.Workers == 0 {
		c.Retrain.Workers = 1
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Scoring.UpperThreshold <= c.Scoring.LowerThreshold {
		return fmt.Errorf("scoring.upper_threshold must exceed scoring.lower_threshold")
	}
	if c.Scoring.UpperThreshold > 100 || c.Scoring.LowerThreshold < 0 {
		return fmt.Errorf("scoring thresholds must lie in [0,100]")
	}
	w := c.Scoring.Weights
	for name, v := range map[string]float64{
		"technical": w.Technical, "social": w.Social,
		"fundamental": w.Fundamental, "astrology": w.Astrology,
	} {
		if v < 0 {
			return fmt.Errorf("scoring.weights.%s must be non-negative", name)
		}
	}
	if c.Risk.MaxKellyFraction <= 0 || c.Risk.MaxKellyFraction > 1 {
		return fmt.Errorf("risk.max_kelly_fraction must be in (0,1]")
	}
	if c.Risk.MaxBalanceFraction <= 0 || c.Risk.MaxBalanceFraction > 1 {
		return fmt.Errorf("risk.max_balance_fraction must be in (0,1]")
	}
	return nil
}
