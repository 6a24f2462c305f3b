package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// clearEnv unsets every override so tests start from the file.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvArticleMetaURL, EnvRatchetURL, EnvAnalyticsURL, EnvAccessStatsAddrs, EnvAccessStatsIndex, EnvRequestsPerSecond} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	configDir := filepath.Join(dir, ConfigDir)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(configDir, ConfigFile)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	path := Path()
	want := "/custom/config/processing/config.yml"
	if path != want {
		t.Errorf("Path() = %q, want %q", path, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	path = Path()
	want = filepath.Join(home, ".config", "processing", "config.yml")
	if path != want {
		t.Errorf("Path() = %q, want %q", path, want)
	}
}

func TestLoad_NotFound(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ArticleMeta.URL != "http://articlemeta.scielo.org" {
		t.Errorf("ArticleMeta.URL = %q, want default", cfg.ArticleMeta.URL)
	}
	if cfg.RequestsPerSecond != 10 {
		t.Errorf("RequestsPerSecond = %v, want 10", cfg.RequestsPerSecond)
	}
}

func TestLoad_Valid(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, t.TempDir(), `
articlemeta:
  url: http://am.example.org
ratchet:
  url: http://ratchet.example.org
  timeout_seconds: 5
accessstats:
  addresses: [http://es1:9200, http://es2:9200]
  index: scl-accesses
home_country: chile
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ArticleMeta.URL != "http://am.example.org" {
		t.Errorf("ArticleMeta.URL = %q, want http://am.example.org", cfg.ArticleMeta.URL)
	}
	if cfg.ArticleMeta.TimeoutSeconds != 60 {
		t.Errorf("ArticleMeta.TimeoutSeconds = %d, want default 60", cfg.ArticleMeta.TimeoutSeconds)
	}
	if cfg.Ratchet.TimeoutSeconds != 5 {
		t.Errorf("Ratchet.TimeoutSeconds = %d, want 5", cfg.Ratchet.TimeoutSeconds)
	}
	if got := strings.Join(cfg.AccessStats.Addresses, ","); got != "http://es1:9200,http://es2:9200" {
		t.Errorf("AccessStats.Addresses = %q", got)
	}
	if cfg.AccessStats.Index != "scl-accesses" {
		t.Errorf("AccessStats.Index = %q, want scl-accesses", cfg.AccessStats.Index)
	}
	if cfg.HomeCountry != "chile" {
		t.Errorf("HomeCountry = %q, want chile", cfg.HomeCountry)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, t.TempDir(), "ratchet:\n  url: http://from-file\n")

	t.Setenv(EnvRatchetURL, "http://from-env")
	t.Setenv(EnvAnalyticsURL, "http://analytics-env")
	t.Setenv(EnvAccessStatsAddrs, "http://a:9200, http://b:9200,")
	t.Setenv(EnvRequestsPerSecond, "2.5")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Ratchet.URL != "http://from-env" {
		t.Errorf("Ratchet.URL = %q, want http://from-env", cfg.Ratchet.URL)
	}
	if cfg.Analytics.URL != "http://analytics-env" {
		t.Errorf("Analytics.URL = %q, want http://analytics-env", cfg.Analytics.URL)
	}
	if len(cfg.AccessStats.Addresses) != 2 || cfg.AccessStats.Addresses[1] != "http://b:9200" {
		t.Errorf("AccessStats.Addresses = %v", cfg.AccessStats.Addresses)
	}
	if cfg.RequestsPerSecond != 2.5 {
		t.Errorf("RequestsPerSecond = %v, want 2.5", cfg.RequestsPerSecond)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{name: "invalid yaml", content: "articlemeta: [unclosed"},
		{name: "bad rate env", content: "", env: map[string]string{EnvRequestsPerSecond: "fast"}},
		{name: "non-positive rate", content: "requests_per_second: -1"},
		{name: "empty url", content: "articlemeta:\n  url: \"\"\n"},
		{name: "empty analytics url", content: "analytics:\n  url: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := writeConfig(t, t.TempDir(), tt.content)
			if _, err := Load(path); err == nil {
				t.Error("Load() should return error")
			}
		})
	}
}

func TestLoadDefault_Cached(t *testing.T) {
	ResetCache()
	defer ResetCache()
	clearEnv(t)

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	writeConfig(t, dir, "home_country: chile\n")

	first, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error = %v", err)
	}

	writeConfig(t, dir, "home_country: peru\n")
	second, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error = %v", err)
	}
	if second != first || second.HomeCountry != "chile" {
		t.Errorf("LoadDefault() reloaded the file, HomeCountry = %q", second.HomeCountry)
	}

	ResetCache()
	third, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error = %v", err)
	}
	if third.HomeCountry != "peru" {
		t.Errorf("HomeCountry after reset = %q, want peru", third.HomeCountry)
	}
}
