package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// EnvPrefix is prepended to every environment override, e.g. CHAINLIST_RPCS_CHECKER_TIMEOUT.
const EnvPrefix = "CHAINLIST_RPCS"

// Config holds all configuration for the application.
type Config struct {
	App           AppConfig         `mapstructure:"app"`
	Server        ServerConfig      `mapstructure:"server"`
	Logger        LoggerConfig      `mapstructure:"logger"`
	Checker       CheckerConfig     `mapstructure:"checker"`
	Cache         CacheConfig       `mapstructure:"cache"`
	Chainlist     ChainlistConfig   `mapstructure:"chainlist"`
	PreferredRPCs map[string]string `mapstructure:"preferred_rpcs"`
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggerConfig holds logging configuration.
// Output is "stdout" or "stderr". File, when set, receives a copy of every entry through a size-rotated writer.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Encoding   string `mapstructure:"encoding"`
	Output     string `mapstructure:"output"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// CheckerConfig holds settings related to the RPC probing process.
type CheckerConfig struct {
	// Timeout bounds each probe. Zero leaves the transport default in place.
	Timeout time.Duration `mapstructure:"timeout"`
	// RefetchInterval is how long a report stays fresh.
	RefetchInterval time.Duration `mapstructure:"refetch_interval"`
	// MaxConcurrency caps probes in flight per run. Zero means one per endpoint.
	MaxConcurrency int `mapstructure:"max_concurrency"`
}

// CacheConfig holds settings for the caching layer.
type CacheConfig struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

// ChainlistConfig holds configuration for the Chainlist data source.
type ChainlistConfig struct {
	URL             string        `mapstructure:"url"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
}

// setDefaults registers every key, which also makes it visible to AutomaticEnv.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "chainlist-rpcs")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.file", "")
	v.SetDefault("logger.max_size_mb", 10)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age_days", 14)
	v.SetDefault("checker.timeout", "1s")
	v.SetDefault("checker.refetch_interval", "60s")
	v.SetDefault("checker.max_concurrency", 0)
	v.SetDefault("cache.default_expiration", "30m")
	v.SetDefault("cache.cleanup_interval", "1h")
	v.SetDefault("chainlist.url", "https://chainid.network/chains.json")
	v.SetDefault("chainlist.refresh_interval", "15m")
	v.SetDefault("chainlist.request_timeout", "15s")
	v.SetDefault("preferred_rpcs", map[string]string{
		"1":     "https://eth.llamarpc.com",
		"56":    "https://binance.llamarpc.com",
		"137":   "https://polygon.llamarpc.com",
		"8453":  "https://base.llamarpc.com",
		"42161": "https://arbitrum.llamarpc.com",
	})
}

// Load reads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Warning: Config file not found in %s or '.', using defaults/env vars\n", configPath)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate reports every problem with c at once.
func (c Config) Validate() error {
	var err error
	if c.Server.Port == "" {
		err = multierr.Append(err, errors.New("server.port must not be empty"))
	}
	if c.Logger.Output != "" && c.Logger.Output != "stdout" && c.Logger.Output != "stderr" {
		err = multierr.Append(err, fmt.Errorf("logger.output must be stdout or stderr, got %q", c.Logger.Output))
	}
	if c.Checker.Timeout < 0 {
		err = multierr.Append(err, fmt.Errorf("checker.timeout must not be negative, got %v", c.Checker.Timeout))
	}
	if c.Checker.RefetchInterval < 0 {
		err = multierr.Append(err, fmt.Errorf("checker.refetch_interval must not be negative, got %v", c.Checker.RefetchInterval))
	}
	if c.Checker.MaxConcurrency < 0 {
		err = multierr.Append(err, fmt.Errorf("checker.max_concurrency must not be negative, got %d", c.Checker.MaxConcurrency))
	}
	if c.Chainlist.URL == "" {
		err = multierr.Append(err, errors.New("chainlist.url must not be empty"))
	}
	if c.Chainlist.RefreshInterval < 0 {
		err = multierr.Append(err, fmt.Errorf("chainlist.refresh_interval must not be negative, got %v", c.Chainlist.RefreshInterval))
	}
	for key := range c.PreferredRPCs {
		if _, parseErr := strconv.ParseInt(key, 10, 64); parseErr != nil {
			err = multierr.Append(err, fmt.Errorf("preferred_rpcs key %q is not a chain id", key))
		}
	}
	return err
}

func (c CheckerConfig) GetTimeout() time.Duration {
	return c.Timeout
}

func (c CheckerConfig) GetRefetchInterval() time.Duration {
	return c.RefetchInterval
}

func (c CacheConfig) GetDefaultExpiration() time.Duration {
	return c.DefaultExpiration
}

func (c CacheConfig) GetCleanupInterval() time.Duration {
	return c.CleanupInterval
}

// PreferredRPC returns the URL that should lead the endpoint list of chainID, if one is configured.
func (c Config) PreferredRPC(chainID int64) (string, bool) {
	url, ok := c.PreferredRPCs[strconv.FormatInt(chainID, 10)]
	return url, ok && url != ""
}
