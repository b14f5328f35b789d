// Package config provides CLI configuration management for the seihyo
// command-line tool. It supports loading configuration from YAML files and
// environment variables, with command-line flags layered on top by cmd.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/seihyo/seihyo-cli/pkg/db"
	"github.com/seihyo/seihyo-cli/pkg/mentions/resolver"
)

// OutputFormat defines the supported output formats for CLI results.
type OutputFormat string

const (
	// OutputFormatText is human-readable plain text output.
	OutputFormatText OutputFormat = "text"
	// OutputFormatJSON is JSON-formatted output for machine processing.
	OutputFormatJSON OutputFormat = "json"
)

// Default configuration values.
const (
	DefaultTimeout      = 10 * time.Minute
	DefaultOutputFormat = OutputFormatText
	DefaultConfigDir    = ".seihyo"
	DefaultConfigFile   = "config.yaml"
	DefaultRedisTTL     = 5 * time.Minute
)

// DatabaseConfig holds PostgreSQL connection settings from the config file.
// Unset fields fall back to db.DefaultConfig values, then DB_* environment
// variables override both.
type DatabaseConfig struct {
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	Database string `yaml:"database,omitempty"`
	User     string `yaml:"user,omitempty"`
	Password string `yaml:"password,omitempty"`
	SSLMode  string `yaml:"sslmode,omitempty"`
	MaxConns int32  `yaml:"max_conns,omitempty"`
	MinConns int32  `yaml:"min_conns,omitempty"`
}

// RedisConfig holds registry cache settings. The cache is optional; with
// Enabled false the resolver queries PostgreSQL directly.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled,omitempty"`
	Addr     string `yaml:"addr,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`

	// TTL is the cache entry lifetime as a duration string ("5m").
	TTL time.Duration `yaml:"-"`
}

// OracleConfig holds LLM arbitration endpoint settings from the config file.
type OracleConfig struct {
	BaseURL    string        `yaml:"base_url,omitempty"`
	Model      string        `yaml:"model,omitempty"`
	APIKey     string        `yaml:"api_key,omitempty"`
	Timeout    time.Duration `yaml:"-"`
	MaxRetries int           `yaml:"max_retries,omitempty"`
}

// ThresholdConfig holds classification confidence thresholds.
type ThresholdConfig struct {
	Matched     float64 `yaml:"matched,omitempty"`
	NeedsReview float64 `yaml:"needs_review,omitempty"`
}

// CLIConfig holds the CLI configuration settings.
type CLIConfig struct {
	// Timeout is the overall deadline for one command invocation.
	Timeout time.Duration `yaml:"timeout"`

	// OutputFormat specifies the default output format for commands.
	OutputFormat OutputFormat `yaml:"output_format"`

	// Debug enables verbose debug logging.
	Debug bool `yaml:"debug,omitempty"`

	// Database holds PostgreSQL connection settings.
	Database *DatabaseConfig `yaml:"database,omitempty"`

	// Redis holds registry cache settings.
	Redis *RedisConfig `yaml:"redis,omitempty"`

	// Oracle holds LLM arbitration endpoint settings.
	Oracle *OracleConfig `yaml:"oracle,omitempty"`

	// Thresholds holds classification confidence thresholds.
	Thresholds *ThresholdConfig `yaml:"thresholds,omitempty"`
}

// DefaultConfig returns a CLIConfig with default values.
func DefaultConfig() *CLIConfig {
	return &CLIConfig{
		Timeout:      DefaultTimeout,
		OutputFormat: DefaultOutputFormat,
	}
}

// ConfigDir returns the configuration directory path.
// Uses $SEIHYO_CONFIG_DIR if set, otherwise ~/.seihyo
func ConfigDir() (string, error) {
	if dir := os.Getenv("SEIHYO_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, DefaultConfigDir), nil
}

// ConfigPath returns the full path to the configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}

// LoadConfig loads the CLI configuration from file and environment variables.
// Configuration is loaded in this order (later sources override earlier):
// 1. Default values
// 2. Config file (~/.seihyo/config.yaml or $SEIHYO_CONFIG_DIR/config.yaml)
// 3. Environment variables (SEIHYO_*)
func LoadConfig() (*CLIConfig, error) {
	cfg := DefaultConfig()

	configPath, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("getting config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(cfg *CLIConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	// Durations come in as strings, so a temp struct carries them.
	type redisFile struct {
		RedisConfig `yaml:",inline"`
		TTL         string `yaml:"ttl"`
	}
	type oracleFile struct {
		OracleConfig `yaml:",inline"`
		Timeout      string `yaml:"timeout"`
	}
	type configFile struct {
		Timeout      string           `yaml:"timeout"`
		OutputFormat OutputFormat     `yaml:"output_format"`
		Debug        bool             `yaml:"debug"`
		Database     *DatabaseConfig  `yaml:"database"`
		Redis        *redisFile       `yaml:"redis"`
		Oracle       *oracleFile      `yaml:"oracle"`
		Thresholds   *ThresholdConfig `yaml:"thresholds"`
	}

	var fileCfg configFile
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	if fileCfg.Timeout != "" {
		timeout, err := time.ParseDuration(fileCfg.Timeout)
		if err != nil {
			return fmt.Errorf("parsing timeout: %w", err)
		}
		cfg.Timeout = timeout
	}
	if fileCfg.OutputFormat != "" {
		cfg.OutputFormat = fileCfg.OutputFormat
	}
	cfg.Debug = fileCfg.Debug
	if fileCfg.Database != nil {
		cfg.Database = fileCfg.Database
	}
	if fileCfg.Redis != nil {
		redis := fileCfg.Redis.RedisConfig
		if fileCfg.Redis.TTL != "" {
			ttl, err := time.ParseDuration(fileCfg.Redis.TTL)
			if err != nil {
				return fmt.Errorf("parsing redis ttl: %w", err)
			}
			redis.TTL = ttl
		}
		cfg.Redis = &redis
	}
	if fileCfg.Oracle != nil {
		oracle := fileCfg.Oracle.OracleConfig
		if fileCfg.Oracle.Timeout != "" {
			timeout, err := time.ParseDuration(fileCfg.Oracle.Timeout)
			if err != nil {
				return fmt.Errorf("parsing oracle timeout: %w", err)
			}
			oracle.Timeout = timeout
		}
		cfg.Oracle = &oracle
	}
	if fileCfg.Thresholds != nil {
		cfg.Thresholds = fileCfg.Thresholds
	}

	return nil
}

// loadFromEnv overlays environment variables onto the configuration.
// Database settings use the DB_* variables read by db.ConfigFromEnv; the
// SEIHYO_* variables cover everything else.
func loadFromEnv(cfg *CLIConfig) {
	if v := os.Getenv("SEIHYO_TIMEOUT"); v != "" {
		if timeout, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = timeout
		}
	}

	if v := os.Getenv("SEIHYO_OUTPUT_FORMAT"); v != "" {
		cfg.OutputFormat = OutputFormat(v)
	}

	if v := os.Getenv("SEIHYO_DEBUG"); v == "true" || v == "1" {
		cfg.Debug = true
	}

	if v := os.Getenv("SEIHYO_REDIS_ADDR"); v != "" {
		if cfg.Redis == nil {
			cfg.Redis = &RedisConfig{}
		}
		cfg.Redis.Enabled = true
		cfg.Redis.Addr = v
	}
	if cfg.Redis != nil {
		if v := os.Getenv("SEIHYO_REDIS_PASSWORD"); v != "" {
			cfg.Redis.Password = v
		}
		if v := os.Getenv("SEIHYO_REDIS_DB"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				cfg.Redis.DB = n
			}
		}
	}

	if v := os.Getenv("SEIHYO_ORACLE_BASE_URL"); v != "" {
		if cfg.Oracle == nil {
			cfg.Oracle = &OracleConfig{}
		}
		cfg.Oracle.BaseURL = v
	}
	if cfg.Oracle != nil {
		if v := os.Getenv("SEIHYO_ORACLE_MODEL"); v != "" {
			cfg.Oracle.Model = v
		}
		if v := os.Getenv("SEIHYO_ORACLE_API_KEY"); v != "" {
			cfg.Oracle.APIKey = v
		}
	}
}

// Validate checks that the configuration is valid.
func (c *CLIConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	if !c.OutputFormat.IsValid() {
		return fmt.Errorf("invalid output_format: %q (must be text or json)", c.OutputFormat)
	}

	if c.Thresholds != nil {
		if c.Thresholds.Matched < c.Thresholds.NeedsReview {
			return fmt.Errorf("matched threshold %.2f must not be below needs_review threshold %.2f",
				c.Thresholds.Matched, c.Thresholds.NeedsReview)
		}
	}

	return nil
}

// IsValid checks if the output format is valid.
func (f OutputFormat) IsValid() bool {
	switch f {
	case OutputFormatText, OutputFormatJSON:
		return true
	default:
		return false
	}
}

// String returns the string representation of the output format.
func (f OutputFormat) String() string {
	return string(f)
}

// DBConfig resolves the effective database configuration: db defaults,
// overlaid by the config file, overlaid by DB_* environment variables.
func (c *CLIConfig) DBConfig() *db.Config {
	dbCfg := db.ConfigFromEnv()

	if c.Database == nil {
		return dbCfg
	}

	// File values fill in only where the environment left defaults.
	defaults := db.DefaultConfig()
	if c.Database.Host != "" && dbCfg.Host == defaults.Host {
		dbCfg.Host = c.Database.Host
	}
	if c.Database.Port != 0 && dbCfg.Port == defaults.Port {
		dbCfg.Port = c.Database.Port
	}
	if c.Database.Database != "" && dbCfg.Database == defaults.Database {
		dbCfg.Database = c.Database.Database
	}
	if c.Database.User != "" && dbCfg.User == defaults.User {
		dbCfg.User = c.Database.User
	}
	if c.Database.Password != "" && dbCfg.Password == defaults.Password {
		dbCfg.Password = c.Database.Password
	}
	if c.Database.SSLMode != "" && dbCfg.SSLMode == defaults.SSLMode {
		dbCfg.SSLMode = c.Database.SSLMode
	}
	if c.Database.MaxConns != 0 {
		dbCfg.MaxConns = c.Database.MaxConns
	}
	if c.Database.MinConns != 0 {
		dbCfg.MinConns = c.Database.MinConns
	}

	return dbCfg
}

// ResolverConfig resolves the effective resolver configuration.
func (c *CLIConfig) ResolverConfig() resolver.Config {
	cfg := resolver.DefaultConfig()

	if c.Oracle != nil {
		if c.Oracle.BaseURL != "" {
			cfg.Oracle.BaseURL = c.Oracle.BaseURL
		}
		if c.Oracle.Model != "" {
			cfg.Oracle.Model = c.Oracle.Model
		}
		if c.Oracle.APIKey != "" {
			cfg.Oracle.APIKey = c.Oracle.APIKey
		}
		if c.Oracle.Timeout > 0 {
			cfg.Oracle.Timeout = c.Oracle.Timeout
		}
		if c.Oracle.MaxRetries > 0 {
			cfg.Oracle.MaxRetries = c.Oracle.MaxRetries
		}
	}

	if c.Thresholds != nil {
		if c.Thresholds.Matched > 0 {
			cfg.Thresholds.Matched = c.Thresholds.Matched
		}
		if c.Thresholds.NeedsReview > 0 {
			cfg.Thresholds.NeedsReview = c.Thresholds.NeedsReview
		}
	}

	return cfg
}

// RedisTTL returns the configured cache TTL or the default.
func (c *CLIConfig) RedisTTL() time.Duration {
	if c.Redis == nil || c.Redis.TTL <= 0 {
		return DefaultRedisTTL
	}
	return c.Redis.TTL
}

// SaveConfig saves the configuration to the config file.
func SaveConfig(cfg *CLIConfig) error {
	configDir, err := ConfigDir()
	if err != nil {
		return fmt.Errorf("getting config directory: %w", err)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(configDir, DefaultConfigFile)

	type redisFile struct {
		RedisConfig `yaml:",inline"`
		TTL         string `yaml:"ttl,omitempty"`
	}
	type oracleFile struct {
		OracleConfig `yaml:",inline"`
		Timeout      string `yaml:"timeout,omitempty"`
	}
	type configFile struct {
		Timeout      string           `yaml:"timeout"`
		OutputFormat OutputFormat     `yaml:"output_format"`
		Debug        bool             `yaml:"debug,omitempty"`
		Database     *DatabaseConfig  `yaml:"database,omitempty"`
		Redis        *redisFile       `yaml:"redis,omitempty"`
		Oracle       *oracleFile      `yaml:"oracle,omitempty"`
		Thresholds   *ThresholdConfig `yaml:"thresholds,omitempty"`
	}

	fileCfg := configFile{
		Timeout:      cfg.Timeout.String(),
		OutputFormat: cfg.OutputFormat,
		Debug:        cfg.Debug,
		Database:     cfg.Database,
		Thresholds:   cfg.Thresholds,
	}
	if cfg.Redis != nil {
		fileCfg.Redis = &redisFile{RedisConfig: *cfg.Redis}
		if cfg.Redis.TTL > 0 {
			fileCfg.Redis.TTL = cfg.Redis.TTL.String()
		}
	}
	if cfg.Oracle != nil {
		fileCfg.Oracle = &oracleFile{OracleConfig: *cfg.Oracle}
		if cfg.Oracle.Timeout > 0 {
			fileCfg.Oracle.Timeout = cfg.Oracle.Timeout.String()
		}
	}

	data, err := yaml.Marshal(&fileCfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}
