// Package config loads the dressi configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dressi-app/dressi/internal/backend"
	"github.com/dressi-app/dressi/internal/queue"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when --config is not given.
const DefaultPath = "dressi.yaml"

// Config holds all dressi configuration.
type Config struct {
	// APIBaseURL is the external backend.
	APIBaseURL string `yaml:"api_base_url"`

	// StoreDir holds the persisted keys (liked outfits, saved keys, profile).
	StoreDir string `yaml:"store_dir"`

	// ImageCacheDir holds prefetched outfit images. Empty disables prefetch.
	ImageCacheDir string `yaml:"image_cache_dir"`

	// Port for `dressi serve`.
	Port string `yaml:"port"`

	LogLevel string `yaml:"log_level"`

	Swipe SwipeConfig `yaml:"swipe"`
}

// SwipeConfig sizes the swipe queue.
type SwipeConfig struct {
	Capacity     int  `yaml:"capacity"`
	Placeholders int  `yaml:"placeholders"`
	UseWeather   bool `yaml:"use_weather"`
}

// QueueOptions converts the swipe section for queue.New.
func (s SwipeConfig) QueueOptions() queue.Options {
	return queue.Options{Capacity: s.Capacity, Placeholders: s.Placeholders}
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	storeDir := ".dressi"
	if home, err := os.UserHomeDir(); err == nil {
		storeDir = filepath.Join(home, ".dressi")
	}
	return &Config{
		APIBaseURL:    backend.DefaultBaseURL,
		StoreDir:      storeDir,
		ImageCacheDir: filepath.Join(storeDir, "images"),
		Port:          "8888",
		LogLevel:      "info",
		Swipe: SwipeConfig{
			Capacity:     queue.DefaultCapacity,
			Placeholders: queue.DefaultPlaceholders,
			UseWeather:   true,
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate rejects queue sizes the swipe screen cannot start with.
func (c *Config) Validate() error {
	if c.Swipe.Capacity < 1 {
		return fmt.Errorf("invalid config: swipe.capacity must be at least 1, got %d", c.Swipe.Capacity)
	}
	if c.Swipe.Placeholders < 0 || c.Swipe.Placeholders > c.Swipe.Capacity {
		return fmt.Errorf("invalid config: swipe.placeholders must be between 0 and %d, got %d",
			c.Swipe.Capacity, c.Swipe.Placeholders)
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid config: port %q: %w", c.Port, err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DRESSI_API_BASE_URL"); v != "" {
		c.APIBaseURL = v
	}
	if v := os.Getenv("DRESSI_STORE_DIR"); v != "" {
		c.StoreDir = v
	}
	if v := os.Getenv("DRESSI_IMAGE_CACHE_DIR"); v != "" {
		c.ImageCacheDir = v
	}
	if v := os.Getenv("DRESSI_PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("DRESSI_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}
