package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// KeySpec describes a single configuration key.
type KeySpec struct {
	// Name is the CLI-facing key name (e.g. "api-url").
	Name string

	// Description is a short human-readable explanation shown in help text.
	Description string

	// Default is the value used when neither the file nor the environment
	// provides one.
	Default string

	// Get returns the current value for this key from a loaded Config.
	Get func(cfg *Config) string

	// Set applies a value for this key to the given Config (in memory only;
	// the caller is responsible for calling Save).
	Set func(cfg *Config, value string)

	// Validate rejects malformed values before they are saved. May be nil.
	Validate func(value string) error
}

// Keys is the authoritative list of all supported configuration keys.
// To add a new option: add a field to Config and append a KeySpec here.
var Keys = []KeySpec{
	{
		Name:        "api-url",
		Description: "Base URL of the monitoring backend",
		Default:     DefaultAPIURL,
		Get:         func(cfg *Config) string { return cfg.APIURL },
		Set:         func(cfg *Config, v string) { cfg.APIURL = v },
		Validate:    validateURL,
	},
	{
		Name:        "poll-interval",
		Description: "Delay between telemetry polls (e.g. 20s)",
		Default:     DefaultPollInterval.String(),
		Get:         func(cfg *Config) string { return cfg.PollInterval },
		Set:         func(cfg *Config, v string) { cfg.PollInterval = v },
		Validate:    validatePositiveDuration,
	},
	{
		Name:        "request-timeout",
		Description: "Timeout for a single backend request (e.g. 30s)",
		Default:     DefaultRequestTimeout.String(),
		Get:         func(cfg *Config) string { return cfg.RequestTimeout },
		Set:         func(cfg *Config, v string) { cfg.RequestTimeout = v },
		Validate:    validatePositiveDuration,
	},
	{
		Name:        "log-level",
		Description: "Log verbosity: debug, info, warn or error",
		Default:     DefaultLogLevel,
		Get:         func(cfg *Config) string { return cfg.LogLevel },
		Set:         func(cfg *Config, v string) { cfg.LogLevel = v },
		Validate:    validateLogLevel,
	},
}

// EnvVar returns the environment variable that overrides this key,
// e.g. NETMON_POLL_INTERVAL for poll-interval.
func (k KeySpec) EnvVar() string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(k.Name, "-", "_"))
}

// NormalizeKey maps the spellings a user might type onto a key name:
// "API_URL", "api_url" (the config file field) and "NETMON_API_URL" (the
// environment variable) all become "api-url".
func NormalizeKey(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimPrefix(name, strings.ToLower(EnvPrefix)+"_")
	return strings.ReplaceAll(name, "_", "-")
}

// Lookup returns the KeySpec for the given name, or nil if not found.
// The name is normalized with NormalizeKey first.
func Lookup(name string) *KeySpec {
	normalized := NormalizeKey(name)
	for i := range Keys {
		if Keys[i].Name == normalized {
			return &Keys[i]
		}
	}
	return nil
}

// KeyNames returns the names of all registered keys.
func KeyNames() []string {
	names := make([]string, len(Keys))
	for i, k := range Keys {
		names[i] = k.Name
	}
	return names
}

// KeysHelp builds a formatted block listing all available keys and their
// descriptions, suitable for inclusion in Cobra Long help text.
func KeysHelp() string {
	if len(Keys) == 0 {
		return ""
	}

	// Find the longest key name for alignment.
	maxLen := 0
	for _, k := range Keys {
		if len(k.Name) > maxLen {
			maxLen = len(k.Name)
		}
	}

	var b strings.Builder
	b.WriteString("Available keys:\n")
	for _, k := range Keys {
		fmt.Fprintf(&b, "  %-*s   %s\n", maxLen, k.Name, k.Description)
	}
	return b.String()
}

func validateURL(v string) error {
	u, err := url.Parse(strings.TrimSpace(v))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%q is not an http(s) URL", v)
	}
	return nil
}

func validatePositiveDuration(v string) error {
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%q is not a duration (examples: 20s, 1m, 500ms)", v)
	}
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %s", d)
	}
	return nil
}

func validateLogLevel(v string) error {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("unknown log level %q (valid: debug, info, warn, error)", v)
}
