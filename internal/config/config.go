package config

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProjectConfig represents a pre-configured backend project in the config file.
type ProjectConfig struct {
	Name      string `yaml:"name"`
	Role      string `yaml:"role"` // "source" or "destination"
	Endpoint  string `yaml:"endpoint"`
	ProjectID string `yaml:"project_id"`
	APIKey    string `yaml:"api_key"`
	Insecure  bool   `yaml:"insecure"`
}

// Config holds all configuration (CLI flags + config file).
type Config struct {
	Listen   string          `yaml:"listen"`
	DataPath string          `yaml:"data"` // checkpoint database path; empty = in-memory
	Projects []ProjectConfig `yaml:"projects"`

	// internal: path to config file (from CLI flag)
	configFile string
}

// Parse reads CLI flags, then overlays config file values.
// CLI flags take precedence over config file values.
func Parse() *Config {
	c := &Config{}
	flag.StringVar(&c.configFile, "config", "", "Path to config file (YAML)")
	flag.StringVar(&c.Listen, "listen", "", "HTTP listen address")
	flag.StringVar(&c.DataPath, "data", "", "Checkpoint database path (empty = in-memory)")
	flag.Parse()

	// Load config file if specified
	if c.configFile != "" {
		if err := c.loadFile(c.configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config file: %v\n", err)
			os.Exit(1)
		}
	}

	// Apply defaults for anything still unset
	if c.Listen == "" {
		c.Listen = ":8080"
	}

	return c
}

// loadFile reads a YAML config file. Values from the file are only applied
// if the corresponding CLI flag was not explicitly set.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	if c.Listen == "" && file.Listen != "" {
		c.Listen = file.Listen
	}
	if c.DataPath == "" && file.DataPath != "" {
		c.DataPath = file.DataPath
	}

	// Projects always come from the config file
	c.Projects = file.Projects

	return nil
}
