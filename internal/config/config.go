// Package config loads process settings from the environment, an optional
// config.yaml and a .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/baxromumarov/gig-crawler/internal/project"
	"github.com/baxromumarov/gig-crawler/internal/urlutil"
)

const EnvPrefix = "GIG"

const (
	SinkFile     = "file"
	SinkPostgres = "postgres"
	SinkRedis    = "redis"
)

// ConfigurationError reports input rejected before any crawl starts.
type ConfigurationError struct {
	Input  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Input == "" {
		return "invalid configuration: " + e.Reason
	}
	return fmt.Sprintf("invalid configuration %q: %s", e.Input, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Target is one platform and the listing pages crawled for it.
type Target struct {
	Platform project.Platform `json:"platform"`
	URLs     []string         `json:"urls"`
}

type Config struct {
	DatabaseURL       string
	RedisURL          string
	RedisPrefix       string
	OutputDir         string
	Sinks             []string
	Concurrency       int
	Pacing            time.Duration
	NavigationTimeout time.Duration
	UserAgent         string
	HostRate          time.Duration
	HostBurst         int
	HostLimits        map[project.Platform]time.Duration
	Schedule          string
	Retention         time.Duration
	Targets           []Target
	Port              string
	LogLevel          slog.Level
	LogFormat         string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database_url", "")
	v.SetDefault("redis_url", "")
	v.SetDefault("redis_prefix", "gig:projects")
	v.SetDefault("output_dir", "outputs")
	v.SetDefault("sinks", []string{SinkFile})
	v.SetDefault("concurrency", 10)
	v.SetDefault("pacing", "500ms")
	v.SetDefault("navigation_timeout", "60s")
	v.SetDefault("user_agent", "gig-crawler/1.0")
	v.SetDefault("host_rate", "1s")
	v.SetDefault("host_burst", 2)
	v.SetDefault("schedule", "@every 6h")
	v.SetDefault("retention", "720h")
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
}

// Load reads configuration. path names an explicit config file; when empty,
// config.yaml is looked up in . and ./config and may be absent.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, &ConfigurationError{Input: path, Reason: "cannot read config file", Err: err}
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabaseURL:       v.GetString("database_url"),
		RedisURL:          v.GetString("redis_url"),
		RedisPrefix:       v.GetString("redis_prefix"),
		OutputDir:         v.GetString("output_dir"),
		Sinks:             splitList(v.GetStringSlice("sinks")),
		Concurrency:       v.GetInt("concurrency"),
		Pacing:            v.GetDuration("pacing"),
		NavigationTimeout: v.GetDuration("navigation_timeout"),
		UserAgent:         v.GetString("user_agent"),
		HostRate:          v.GetDuration("host_rate"),
		HostBurst:         v.GetInt("host_burst"),
		Schedule:          v.GetString("schedule"),
		Retention:         v.GetDuration("retention"),
		Port:              v.GetString("port"),
		LogFormat:         strings.ToLower(v.GetString("log_format")),
	}

	limits, err := hostLimits(v)
	if err != nil {
		return nil, err
	}
	cfg.HostLimits = limits

	level := v.GetString("log_level")
	if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, &ConfigurationError{Input: level, Reason: "unknown log level", Err: err}
	}

	var rawTargets []struct {
		Platform string   `mapstructure:"platform"`
		URLs     []string `mapstructure:"urls"`
	}
	if err := v.UnmarshalKey("targets", &rawTargets); err != nil {
		return nil, &ConfigurationError{Input: "targets", Reason: "malformed target list", Err: err}
	}
	for _, raw := range rawTargets {
		t, err := ParseTarget(raw.Platform, raw.URLs)
		if err != nil {
			return nil, err
		}
		cfg.Targets = append(cfg.Targets, t)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Concurrency <= 0 {
		return &ConfigurationError{Input: fmt.Sprint(c.Concurrency), Reason: "concurrency must be positive"}
	}
	if c.Pacing < 0 {
		return &ConfigurationError{Input: c.Pacing.String(), Reason: "pacing must not be negative"}
	}
	if c.NavigationTimeout <= 0 {
		return &ConfigurationError{Input: c.NavigationTimeout.String(), Reason: "navigation timeout must be positive"}
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return &ConfigurationError{Input: c.LogFormat, Reason: "log format must be json or text"}
	}
	if len(c.Sinks) == 0 {
		return &ConfigurationError{Input: "sinks", Reason: "at least one sink is required"}
	}
	for _, s := range c.Sinks {
		switch s {
		case SinkFile:
		case SinkPostgres:
			if c.DatabaseURL == "" {
				return &ConfigurationError{Input: s, Reason: "database_url is required for the postgres sink"}
			}
		case SinkRedis:
			if c.RedisURL == "" {
				return &ConfigurationError{Input: s, Reason: "redis_url is required for the redis sink"}
			}
		default:
			return &ConfigurationError{Input: s, Reason: "unknown sink"}
		}
	}
	return nil
}

// HasSink reports whether the named sink is enabled.
func (c *Config) HasSink(name string) bool {
	return slices.Contains(c.Sinks, name)
}

// ParseTarget validates a platform name and its listing URLs. Every URL must
// be an absolute http(s) URL on the platform's host.
func ParseTarget(platform string, urls []string) (Target, error) {
	p, err := project.ParsePlatform(platform)
	if err != nil {
		return Target{}, &ConfigurationError{Input: platform, Reason: "unknown platform", Err: err}
	}
	if len(urls) == 0 {
		return Target{}, &ConfigurationError{Input: platform, Reason: "at least one listing URL is required"}
	}

	t := Target{Platform: p, URLs: make([]string, 0, len(urls))}
	for _, raw := range urls {
		u, err := urlutil.ValidateListingURL(p, raw)
		if err != nil {
			return Target{}, &ConfigurationError{Input: raw, Reason: err.Error(), Err: err}
		}
		t.URLs = append(t.URLs, u)
	}
	return t, nil
}

// hostLimits reads per-platform request intervals overriding host_rate,
// either as a YAML map or as GIG_HOST_LIMITS=lancers=2s,coconala=1s.
func hostLimits(v *viper.Viper) (map[project.Platform]time.Duration, error) {
	raw := v.GetStringMapString("host_limits")
	if len(raw) == 0 {
		raw = map[string]string{}
		for _, pair := range strings.Split(v.GetString("host_limits"), ",") {
			if pair = strings.TrimSpace(pair); pair == "" {
				continue
			}
			name, value, ok := strings.Cut(pair, "=")
			if !ok {
				return nil, &ConfigurationError{Input: pair, Reason: "host limit must be platform=duration"}
			}
			raw[strings.TrimSpace(name)] = strings.TrimSpace(value)
		}
	}

	out := make(map[project.Platform]time.Duration, len(raw))
	for name, value := range raw {
		p, err := project.ParsePlatform(name)
		if err != nil {
			return nil, &ConfigurationError{Input: name, Reason: "unknown platform in host_limits", Err: err}
		}
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return nil, &ConfigurationError{Input: value, Reason: "host limit must be a positive duration", Err: err}
		}
		out[p] = d
	}
	return out, nil
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.ToLower(strings.TrimSpace(part)); part != "" && !slices.Contains(out, part) {
				out = append(out, part)
			}
		}
	}
	return out
}
