package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Appraise/internal/scoring"
)

type Config struct {
	Logging     LoggingConfig     `yaml:"logging"`
	Evaluation  EvaluationConfig  `yaml:"evaluation"`
	HuggingFace HuggingFaceConfig `yaml:"huggingface"`
	Enhancer    EnhancerConfig    `yaml:"enhancer"`
	Determinism DeterminismConfig `yaml:"determinism"`
	Scoring     ScoringConfig     `yaml:"scoring"`
	Hermes      HermesConfig      `yaml:"hermes"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// File receives logs instead of stderr when set.
	File string `yaml:"file"`
}

type EvaluationConfig struct {
	Workers                  int  `yaml:"workers"`
	FailFast                 bool `yaml:"fail_fast"`
	IgnoreNonModelCategories bool `yaml:"ignore_non_model_categories"`
}

type HuggingFaceConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
}

type EnhancerConfig struct {
	URL       string `yaml:"url"`
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type DeterminismConfig struct {
	Seed   int64 `yaml:"seed"`
	Strict bool  `yaml:"strict"`
}

type ScoringConfig struct {
	Weights    ScoringWeights `yaml:"weights"`
	SizeLower  int64          `yaml:"size_lower_bytes"`
	SizeUpper  int64          `yaml:"size_upper_bytes"`
	BusFactorK int            `yaml:"bus_factor_k"`
	Flake8Cap  int            `yaml:"flake8_cap"`
	MypyCap    int            `yaml:"mypy_cap"`
}

type ScoringWeights struct {
	Size              float64 `yaml:"size"`
	License           float64 `yaml:"license"`
	RampUp            float64 `yaml:"ramp_up"`
	BusFactor         float64 `yaml:"bus_factor"`
	DatasetAndCode    float64 `yaml:"dataset_and_code"`
	DatasetQuality    float64 `yaml:"dataset_quality"`
	CodeQuality       float64 `yaml:"code_quality"`
	PerformanceClaims float64 `yaml:"performance_claims"`
}

type HermesConfig struct {
	// URL enables NATS event publishing when set.
	URL string `yaml:"url"`
}

type MetricsConfig struct {
	// Addr enables the /metrics endpoint when set.
	Addr string `yaml:"addr"`
}

// Error marks a configuration problem detected before any work starts.
type Error struct {
	Err error
}

func (e *Error) Error() string { return "invalid config: " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

func (c *Config) EnhancerTimeout() time.Duration {
	return time.Duration(c.Enhancer.TimeoutMs) * time.Millisecond
}

// WeightSet converts the configured weights for the scorer.
func (c *Config) WeightSet() scoring.WeightSet {
	w := c.Scoring.Weights
	return scoring.WeightSet{
		Size:              w.Size,
		License:           w.License,
		RampUp:            w.RampUp,
		BusFactor:         w.BusFactor,
		DatasetAndCode:    w.DatasetAndCode,
		DatasetQuality:    w.DatasetQuality,
		CodeQuality:       w.CodeQuality,
		PerformanceClaims: w.PerformanceClaims,
	}
}

// Params converts the configured metric bounds for the scorer.
func (c *Config) Params() scoring.Params {
	return scoring.Params{
		SizeLower:  c.Scoring.SizeLower,
		SizeUpper:  c.Scoring.SizeUpper,
		BusFactorK: c.Scoring.BusFactorK,
		Flake8Cap:  c.Scoring.Flake8Cap,
		MypyCap:    c.Scoring.MypyCap,
	}
}

// Validate rejects settings that cannot produce a meaningful batch. Size
// bounds are left alone; a degenerate range still scores.
func (c *Config) Validate() error {
	if err := c.WeightSet().Validate(); err != nil {
		return &Error{Err: err}
	}
	if c.Evaluation.Workers < 0 {
		return &Error{Err: fmt.Errorf("workers must be >= 0, got %d", c.Evaluation.Workers)}
	}
	if c.Scoring.BusFactorK <= 0 {
		return &Error{Err: fmt.Errorf("bus_factor_k must be > 0, got %d", c.Scoring.BusFactorK)}
	}
	if c.Scoring.Flake8Cap <= 0 || c.Scoring.MypyCap <= 0 {
		return &Error{Err: errors.New("flake8_cap and mypy_cap must be > 0")}
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return &Error{Err: fmt.Errorf("unknown log format %q", c.Logging.Format)}
	}
	return nil
}

func Load(path string) (*Config, error) {
	weights := scoring.DefaultWeights()
	params := scoring.DefaultParams()
	cfg := &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		HuggingFace: HuggingFaceConfig{
			BaseURL: "https://huggingface.co",
		},
		Enhancer: EnhancerConfig{
			Model:     "gpt-4o-mini",
			TimeoutMs: 30000,
		},
		Scoring: ScoringConfig{
			Weights: ScoringWeights{
				Size:              weights.Size,
				License:           weights.License,
				RampUp:            weights.RampUp,
				BusFactor:         weights.BusFactor,
				DatasetAndCode:    weights.DatasetAndCode,
				DatasetQuality:    weights.DatasetQuality,
				CodeQuality:       weights.CodeQuality,
				PerformanceClaims: weights.PerformanceClaims,
			},
			SizeLower:  params.SizeLower,
			SizeUpper:  params.SizeUpper,
			BusFactorK: params.BusFactorK,
			Flake8Cap:  params.Flake8Cap,
			MypyCap:    params.MypyCap,
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("APPRAISE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("APPRAISE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("APPRAISE_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
	if v := os.Getenv("APPRAISE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Evaluation.Workers = n
		}
	}
	if v := os.Getenv("APPRAISE_HF_TOKEN"); v != "" {
		cfg.HuggingFace.Token = v
	}
	if v := os.Getenv("APPRAISE_HF_BASE_URL"); v != "" {
		cfg.HuggingFace.BaseURL = v
	}
	if v := os.Getenv("APPRAISE_ENHANCER_URL"); v != "" {
		cfg.Enhancer.URL = v
	}
	if v := os.Getenv("APPRAISE_ENHANCER_API_KEY"); v != "" {
		cfg.Enhancer.APIKey = v
	}
	if v := os.Getenv("APPRAISE_ENHANCER_MODEL"); v != "" {
		cfg.Enhancer.Model = v
	}
	if v := os.Getenv("APPRAISE_STRICT_DETERMINISM"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Determinism.Strict = b
		}
	}
	if v := os.Getenv("APPRAISE_NATS_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("APPRAISE_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
}
