// Package config loads run settings from flags, environment and an optional
// TOML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml"
	"github.com/spf13/viper"

	"github.com/LiaBanuta/capstone-software-dev/internal/domain"
)

const (
	// FileName is the config file looked up in the home and working directories.
	FileName = ".prsample"
	// EnvPrefix prefixes every environment override, e.g. PRSAMPLE_REPOSITORY.
	EnvPrefix = "prsample"

	dateLayout = "2006-01-02"
)

// Keys shared between flags, env and file.
const (
	KeyToken            = "token"
	KeyRepository       = "repository"
	KeySince            = "since"
	KeyUntil            = "until"
	KeyBackend          = "backend"
	KeyPageSize         = "page_size"
	KeyProgressInterval = "progress_interval"
	KeyMaxSample        = "max_sample"
	KeyConcurrency      = "concurrency"
	KeySkipEmpty        = "skip_empty"
	KeyCache            = "cache"
	KeyCacheDir         = "cache_dir"
	KeyOutput           = "output"
	KeyMetrics          = "metrics"
	KeyVerbose          = "verbose"
)

// Config holds every run setting.
type Config struct {
	Token            string   `mapstructure:"token" toml:"token" comment:"GitHub token. GITHUB_TOKEN takes precedence when set."`
	Repository       string   `mapstructure:"repository" toml:"repository" comment:"Repository to sample, as owner/name."`
	Since            string   `mapstructure:"since" toml:"since" comment:"Window start (YYYY-MM-DD, inclusive). Defaults to one year before until."`
	Until            string   `mapstructure:"until" toml:"until" comment:"Window end (YYYY-MM-DD, exclusive). Defaults to today."`
	Backend          string   `mapstructure:"backend" toml:"backend" comment:"Search backend: rest or graphql."`
	PageSize         int      `mapstructure:"page_size" toml:"page_size"`
	ProgressInterval int      `mapstructure:"progress_interval" toml:"progress_interval"`
	MaxSample        int      `mapstructure:"max_sample" toml:"max_sample" comment:"Sample cap for every metric without its own [metric.<name>] max_sample. 0 keeps each metric's default."`
	Concurrency      int      `mapstructure:"concurrency" toml:"concurrency" comment:"Metrics sampled at once. 1 keeps the run fully sequential."`
	SkipEmpty        bool     `mapstructure:"skip_empty" toml:"skip_empty"`
	Cache            bool     `mapstructure:"cache" toml:"cache" comment:"Keep an on-disk HTTP cache between runs."`
	CacheDir         string   `mapstructure:"cache_dir" toml:"cache_dir"`
	Output           string   `mapstructure:"output" toml:"output" comment:"text or json."`
	Verbose          bool     `mapstructure:"verbose" toml:"verbose"`
	Metrics          []string `mapstructure:"metrics" toml:"metrics"`

	Metric map[string]MetricConfig `mapstructure:"metric" toml:"metric"`
}

// MetricConfig overrides one metric's defaults.
type MetricConfig struct {
	MaxSample int    `mapstructure:"max_sample" toml:"max_sample,omitempty"`
	Policy    string `mapstructure:"policy" toml:"policy"`
}

// New returns a viper instance with defaults and environment bindings set.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyBackend, "rest")
	v.SetDefault(KeyPageSize, domain.MaxPageSize)
	v.SetDefault(KeyProgressInterval, 50)
	v.SetDefault(KeyConcurrency, 1)
	v.SetDefault(KeyOutput, "text")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv(KeyToken, "GITHUB_TOKEN", "PRSAMPLE_TOKEN")
	return v
}

// Load reads the config file into v and decodes the merged settings. An
// explicit file must exist; otherwise a missing file is not an error.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		home, err := homedir.Dir()
		if err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(FileName)
		v.SetConfigType("toml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks settings that do not depend on the metric catalogue.
func (c *Config) Validate() error {
	if c.Token == "" {
		return errors.New("GITHUB_TOKEN environment variable is not set")
	}
	if _, err := c.Repo(); err != nil {
		return err
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	switch c.Output {
	case "text", "json":
	default:
		return fmt.Errorf("unknown output format %q (want text or json)", c.Output)
	}
	return nil
}

// Repo parses the configured repository.
func (c *Config) Repo() (domain.Repository, error) {
	return domain.ParseRepository(c.Repository)
}

// Window resolves the sampling window. Until defaults to the start of today
// (UTC) and since to one year before until.
func (c *Config) Window(now time.Time) (since, until time.Time, err error) {
	if c.Until != "" {
		if until, err = time.Parse(dateLayout, c.Until); err != nil {
			return since, until, fmt.Errorf("invalid until date, please use YYYY-MM-DD: %w", err)
		}
	} else {
		y, m, d := now.UTC().Date()
		until = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	if c.Since != "" {
		if since, err = time.Parse(dateLayout, c.Since); err != nil {
			return since, until, fmt.Errorf("invalid since date, please use YYYY-MM-DD: %w", err)
		}
	} else {
		since = until.AddDate(-1, 0, 0)
	}
	if !since.Before(until) {
		return since, until, fmt.Errorf("since %s must be before until %s", since.Format(dateLayout), until.Format(dateLayout))
	}
	return since, until, nil
}

// Sample resolves the sample bounds for one metric. A positive per-metric
// max_sample beats the global one, which beats the metric's default.
func (c *Config) Sample(metric string, defaultMax int, defaultPolicy domain.CountingPolicy) (domain.SampleConfig, error) {
	sample := domain.SampleConfig{
		MaxSample:        defaultMax,
		PageSize:         c.PageSize,
		ProgressInterval: c.ProgressInterval,
		Policy:           defaultPolicy,
	}
	if c.MaxSample > 0 {
		sample.MaxSample = c.MaxSample
	}
	if override, ok := c.Metric[metric]; ok {
		if override.MaxSample > 0 {
			sample.MaxSample = override.MaxSample
		}
		if override.Policy != "" {
			policy, err := domain.ParseCountingPolicy(override.Policy)
			if err != nil {
				return sample, fmt.Errorf("metric %s: %w", metric, err)
			}
			sample.Policy = policy
		}
	}
	if err := sample.Validate(); err != nil {
		return sample, fmt.Errorf("metric %s: %w", metric, err)
	}
	return sample, nil
}

// WriteSample writes a sample config file selecting names, in order, with the
// given per-metric defaults.
func WriteSample(w io.Writer, names []string, metrics map[string]MetricConfig) error {
	sample := Config{
		Repository:       "microsoft/vscode",
		Since:            "2024-10-25",
		Until:            "2025-10-25",
		Backend:          "rest",
		PageSize:         domain.MaxPageSize,
		ProgressInterval: 50,
		Concurrency:      1,
		Output:           "text",
		Metrics:          names,
		Metric:           metrics,
	}
	if err := toml.NewEncoder(w).Order(toml.OrderPreserve).Encode(sample); err != nil {
		return fmt.Errorf("failed to encode sample config: %w", err)
	}
	return nil
}
