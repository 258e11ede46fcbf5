package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Built-in defaults.
const (
	DefaultAPIURL         = "http://localhost:8080"
	DefaultPollInterval   = 20 * time.Second
	DefaultRequestTimeout = 30 * time.Second
	DefaultLogLevel       = "info"
)

// EnvPrefix is prepended to upper-cased key names to form environment
// overrides: api-url is read from NETMON_API_URL.
const EnvPrefix = "NETMON"

// Settings is the effective configuration after defaults, the config file
// and the environment have been merged, in increasing order of precedence.
type Settings struct {
	APIURL         string
	PollInterval   time.Duration
	RequestTimeout time.Duration
	LogLevel       string
}

// Resolve loads the config file and merges it with defaults and
// environment overrides.
func Resolve() (*Settings, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	return cfg.Resolve()
}

// Resolve merges c with defaults and environment overrides.
func (c *Config) Resolve() (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	file := make(map[string]any)
	for _, k := range Keys {
		v.SetDefault(k.Name, k.Default)
		if val := strings.TrimSpace(k.Get(c)); val != "" {
			file[k.Name] = val
		}
	}
	if err := v.MergeConfigMap(file); err != nil {
		return nil, fmt.Errorf("config: failed to merge file values: %w", err)
	}

	for _, k := range Keys {
		if k.Validate == nil {
			continue
		}
		if err := k.Validate(v.GetString(k.Name)); err != nil {
			return nil, fmt.Errorf("config: %s: %w", k.Name, err)
		}
	}

	return &Settings{
		APIURL:         strings.TrimRight(strings.TrimSpace(v.GetString("api-url")), "/"),
		PollInterval:   v.GetDuration("poll-interval"),
		RequestTimeout: v.GetDuration("request-timeout"),
		LogLevel:       strings.ToLower(strings.TrimSpace(v.GetString("log-level"))),
	}, nil
}

// Source reports where the effective value of key comes from: "env",
// "file" or "default".
func (c *Config) Source(spec *KeySpec) string {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	if env := v.BindEnv(spec.Name); env == nil && v.IsSet(spec.Name) {
		return "env"
	}
	if strings.TrimSpace(spec.Get(c)) != "" {
		return "file"
	}
	return "default"
}
