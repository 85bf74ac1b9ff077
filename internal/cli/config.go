package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds optional run defaults loaded from a YAML file. Every field may
// be overridden by command-line flags.
type Config struct {
	Domain           string   `yaml:"domain"`
	LayerName        string   `yaml:"layer_name"`
	LayerDescription string   `yaml:"layer_description"`
	IncludePlatforms []string `yaml:"include_platforms"`
	ExcludePlatforms []string `yaml:"exclude_platforms"`
	CacheDir         string   `yaml:"cache_dir"`
}

// LoadConfig reads a defaults file. An empty path yields an empty config.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &cfg, nil
}
