// Package config loads the feed daemon's YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the daemon configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Watch  WatchConfig  `yaml:"watch"`
}

// ServerConfig controls the HTTP/websocket listener.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// WatchConfig controls directory scanning and feed pacing.
type WatchConfig struct {
	// Dir is the directory whose images are watched and served.
	Dir string `yaml:"dir"`
	// PollInterval is how often the directory is rescanned.
	PollInterval Duration `yaml:"poll_interval"`
	// ProcessInterval paces the broadcast of pending images, one per tick.
	ProcessInterval Duration `yaml:"process_interval"`
	// QueueSize bounds the pending queue between scanner and broadcaster.
	QueueSize int `yaml:"queue_size"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8882,
		},
		Watch: WatchConfig{
			Dir:             "downloads/image",
			PollInterval:    Duration{500 * time.Millisecond},
			ProcessInterval: Duration{100 * time.Millisecond},
			QueueSize:       50,
		},
	}
}

// Load reads a YAML config file, applying defaults for anything unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Duration wraps time.Duration with YAML-friendly string parsing, so the
// config can say "500ms" or "2s".
type Duration struct {
	time.Duration
}

// UnmarshalYAML accepts Go duration strings and bare integers (seconds).
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var secs int64
	if err := value.Decode(&secs); err == nil {
		d.Duration = time.Duration(secs) * time.Second
		return nil
	}

	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("invalid duration node: %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if parsed < 0 {
		return fmt.Errorf("negative duration %q not allowed", s)
	}
	d.Duration = parsed
	return nil
}

// MarshalYAML serializes the duration as a string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}
