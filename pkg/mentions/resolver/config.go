package resolver

import (
	"time"

	"github.com/seihyo/seihyo-cli/pkg/mentions"
)

// Config holds configuration for the resolution pipeline.
type Config struct {
	// Oracle provider configuration
	Oracle OracleConfig `json:"oracle" yaml:"oracle"`

	// Classification thresholds
	Thresholds ThresholdConfig `json:"thresholds" yaml:"thresholds"`

	// MaxPartialCandidates caps the partial-match fallback. The cap bounds
	// both arbitration cost and oracle prompt size.
	MaxPartialCandidates int `json:"max_partial_candidates" yaml:"max_partial_candidates"`
}

// OracleConfig configures the LLM-backed judgment oracle.
type OracleConfig struct {
	// Connection to an OpenAI-compatible chat completion endpoint.
	BaseURL string        `json:"base_url" yaml:"base_url"`
	Model   string        `json:"model" yaml:"model"`
	APIKey  string        `json:"api_key" yaml:"api_key"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxRetries bounds re-asks after a parse failure.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ThresholdConfig configures classification thresholds.
type ThresholdConfig struct {
	// Matched is the confidence at or above which a mention is confirmed.
	Matched float64 `json:"matched" yaml:"matched"`

	// NeedsReview is the confidence at or above which (but below Matched)
	// a mention is queued for human review.
	NeedsReview float64 `json:"needs_review" yaml:"needs_review"`
}

// DefaultConfig returns the default resolver configuration.
func DefaultConfig() Config {
	return Config{
		Oracle: OracleConfig{
			BaseURL:    "http://localhost:11434",
			Model:      "gemini-2.0-flash",
			Timeout:    30 * time.Second,
			MaxRetries: 1,
		},
		Thresholds: ThresholdConfig{
			Matched:     mentions.MatchedThreshold,
			NeedsReview: mentions.ReviewThreshold,
		},
		MaxPartialCandidates: 5,
	}
}

// Validate fills in defaults for unset fields.
func (c *Config) Validate() error {
	if c.Oracle.BaseURL == "" {
		c.Oracle.BaseURL = "http://localhost:11434"
	}
	if c.Oracle.Model == "" {
		c.Oracle.Model = "gemini-2.0-flash"
	}
	if c.Oracle.Timeout == 0 {
		c.Oracle.Timeout = 30 * time.Second
	}
	if c.Oracle.MaxRetries == 0 {
		c.Oracle.MaxRetries = 1
	}
	if c.Thresholds.Matched == 0 {
		c.Thresholds.Matched = mentions.MatchedThreshold
	}
	if c.Thresholds.NeedsReview == 0 {
		c.Thresholds.NeedsReview = mentions.ReviewThreshold
	}
	if c.MaxPartialCandidates == 0 {
		c.MaxPartialCandidates = 5
	}
	return nil
}
