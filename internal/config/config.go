// Package config loads and saves the joblog configuration file.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrNoConfig is returned when no joblog config file is found.
var ErrNoConfig = errors.New("no joblog config file found")

// Config is the parsed joblog configuration.
type Config struct {
	// LogDir is the base directory for suite logs. Empty means the store's
	// fallback directory is used.
	LogDir string `yaml:"logdir" toml:"logdir" json:"logdir"`
}

// Load finds and parses a joblog config file from the given directory.
// Returns the config and the file name it was loaded from.
func Load(dir string) (*Config, string, error) {
	candidates := []struct {
		name   string
		parser func([]byte, *Config) error
	}{
		{".joblog.yaml", parseYAML},
		{".joblog.yml", parseYAML},
		{".joblog.toml", parseTOML},
		{".joblog.json", parseJSON},
		{"joblog.yaml", parseYAML},
		{"joblog.yml", parseYAML},
		{"joblog.toml", parseTOML},
		{"joblog.json", parseJSON},
	}

	for _, c := range candidates {
		path := filepath.Join(dir, c.name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue // File doesn't exist, try next
		}

		var cfg Config
		if err := c.parser(data, &cfg); err != nil {
			return nil, c.name, fmt.Errorf("parse %s: %w", c.name, err)
		}
		return &cfg, c.name, nil
	}

	return nil, "", ErrNoConfig
}

// Save writes the config to path, choosing the format by file extension
// (.yaml/.yml, .toml, or .json).
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	case ".toml":
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(c)
		data = buf.Bytes()
	case ".json":
		data, err = json.MarshalIndent(c, "", "  ")
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func parseYAML(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Strict: error on unknown fields
	return decoder.Decode(cfg)
}

func parseTOML(data []byte, cfg *Config) error {
	_, err := toml.Decode(string(data), cfg)
	return err
}

func parseJSON(data []byte, cfg *Config) error {
	return json.Unmarshal(data, cfg)
}
