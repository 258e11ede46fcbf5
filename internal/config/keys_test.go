package config

import (
	"strings"
	"testing"
)

func TestLookup_Exists(t *testing.T) {
	spec := Lookup("api-url")
	if spec == nil {
		t.Fatal("expected to find key 'api-url', got nil")
	}
	if spec.Name != "api-url" {
		t.Errorf("expected Name %q, got %q", "api-url", spec.Name)
	}
}

func TestLookup_CaseInsensitive(t *testing.T) {
	spec := Lookup(" API-URL ")
	if spec == nil {
		t.Fatal("expected case-insensitive lookup to succeed")
	}
	if spec.Name != "api-url" {
		t.Errorf("expected Name %q, got %q", "api-url", spec.Name)
	}
}

func TestNormalizeKey(t *testing.T) {
	for _, in := range []string{"api-url", " API-URL ", "api_url", "NETMON_API_URL"} {
		if got := NormalizeKey(in); got != "api-url" {
			t.Errorf("NormalizeKey(%q) = %q, want api-url", in, got)
		}
	}
	if spec := Lookup("poll_interval"); spec == nil || spec.Name != "poll-interval" {
		t.Errorf("Lookup(poll_interval) = %+v", spec)
	}
}

func TestLookup_NotFound(t *testing.T) {
	spec := Lookup("nonexistent-key")
	if spec != nil {
		t.Errorf("expected nil for unknown key, got %+v", spec)
	}
}

func TestKeys_AllHaveGetAndSet(t *testing.T) {
	for _, k := range Keys {
		if k.Get == nil {
			t.Errorf("key %q has nil Get function", k.Name)
		}
		if k.Set == nil {
			t.Errorf("key %q has nil Set function", k.Name)
		}
		if k.Description == "" {
			t.Errorf("key %q has empty Description", k.Name)
		}
		if k.Validate != nil {
			if err := k.Validate(k.Default); err != nil {
				t.Errorf("key %q: default %q fails validation: %v", k.Name, k.Default, err)
			}
		}
	}
}

func TestKeys_GetSetRoundtrip(t *testing.T) {
	for _, k := range Keys {
		cfg := &Config{}
		k.Set(cfg, "test-value")
		got := k.Get(cfg)
		if got != "test-value" {
			t.Errorf("key %q: Set then Get = %q, want %q", k.Name, got, "test-value")
		}
	}
}

func TestKeyNames(t *testing.T) {
	names := KeyNames()
	if len(names) != len(Keys) {
		t.Fatalf("expected %d names, got %d", len(Keys), len(names))
	}
	for i, name := range names {
		if name != Keys[i].Name {
			t.Errorf("index %d: expected %q, got %q", i, Keys[i].Name, name)
		}
	}
}

func TestKeysHelp_ContainsAllKeys(t *testing.T) {
	help := KeysHelp()
	if !strings.Contains(help, "Available keys:") {
		t.Error("expected 'Available keys:' header in help output")
	}
	for _, k := range Keys {
		if !strings.Contains(help, k.Name) {
			t.Errorf("expected key %q in help output", k.Name)
		}
		if !strings.Contains(help, k.Description) {
			t.Errorf("expected description %q in help output", k.Description)
		}
	}
}

func TestValidators(t *testing.T) {
	tests := []struct {
		key   string
		value string
		ok    bool
	}{
		{"api-url", "http://localhost:8080", true},
		{"api-url", "https://noc.example.com/api", true},
		{"api-url", "localhost:8080", false},
		{"api-url", "ftp://noc.example.com", false},
		{"poll-interval", "20s", true},
		{"poll-interval", "1m30s", true},
		{"poll-interval", "0s", false},
		{"poll-interval", "twenty", false},
		{"request-timeout", "-5s", false},
		{"log-level", "DEBUG", true},
		{"log-level", "warn", true},
		{"log-level", "verbose", false},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			err := Lookup(tt.key).Validate(tt.value)
			if tt.ok && err != nil {
				t.Errorf("expected %q to be valid, got %v", tt.value, err)
			}
			if !tt.ok && err == nil {
				t.Errorf("expected %q to be rejected", tt.value)
			}
		})
	}
}
