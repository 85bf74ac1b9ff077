package cli

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// TestLoadConfig_EmptyPath tests that no config file yields empty defaults
func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig(\"\") returned error: %v", err)
	}
	if !reflect.DeepEqual(cfg, &Config{}) {
		t.Errorf("LoadConfig(\"\") = %+v, want zero config", cfg)
	}
}

// TestLoadConfig_ValidFile tests YAML parsing of a defaults file
func TestLoadConfig_ValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `domain: ics-attack
layer_name: Control gaps
layer_description: Quarterly review
include_platforms:
  - Windows
  - Control Server
cache_dir: /tmp/attack-cache
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}

	if cfg.Domain != "ics-attack" {
		t.Errorf("Domain = %q, want ics-attack", cfg.Domain)
	}
	if cfg.LayerName != "Control gaps" {
		t.Errorf("LayerName = %q, want Control gaps", cfg.LayerName)
	}
	want := []string{"Windows", "Control Server"}
	if !reflect.DeepEqual(cfg.IncludePlatforms, want) {
		t.Errorf("IncludePlatforms = %v, want %v", cfg.IncludePlatforms, want)
	}
	if cfg.CacheDir != "/tmp/attack-cache" {
		t.Errorf("CacheDir = %q, want /tmp/attack-cache", cfg.CacheDir)
	}
}

// TestLoadConfig_BadYAML tests the parse error path
func TestLoadConfig_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("domain: [unclosed"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() returned nil error for invalid YAML")
	}
}

// TestLoadConfig_MissingFile tests the read error path
func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadConfig() returned nil error for a missing file")
	}
}
