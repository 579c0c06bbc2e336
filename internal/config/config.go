// Package config provides configuration loading and structs for lexis.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Processor ProcessorConfig `yaml:"processor"`
	Server    ServerConfig    `yaml:"server"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ProcessorConfig selects the model and the stopwords, and optionally pins tunables.
type ProcessorConfig struct {
	Model string `yaml:"model"`
	// Disable lists pipeline stages to skip. Left unset, parser and ner are skipped;
	// an explicit empty list runs every stage.
	Disable         []string  `yaml:"disable"`
	Stopwords       []string  `yaml:"stopwords"`
	StopwordsFile   string    `yaml:"stopwords_file"`
	StopwordsPreset string    `yaml:"stopwords_preset"`
	Overrides       Overrides `yaml:"overrides"`
}

// Overrides pin tunables for every call, ignoring the values callers pass.
type Overrides struct {
	NgramRange []int `yaml:"ngram_range,flow"`
	BatchSize  *int  `yaml:"batch_size"`
	Threads    *int  `yaml:"threads"`
	Lowercase  *bool `yaml:"lowercase"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// WatchConfig holds directory watch settings.
type WatchConfig struct {
	Directories []string      `yaml:"directories"`
	Extensions  []string      `yaml:"extensions"`
	Recursive   *bool         `yaml:"recursive"`
	Debounce    time.Duration `yaml:"debounce"`
	// Lemmatize emits lemma n-grams instead of token n-grams.
	Lemmatize bool `yaml:"lemmatize"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	if cfg.Processor.StopwordsFile != "" {
		cfg.Processor.StopwordsFile = expandPath(cfg.Processor.StopwordsFile, configDir)
	}
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	return &cfg, nil
}

// Validate checks shape errors that yaml decoding cannot catch.
func (c *Config) Validate() error {
	if r := c.Processor.Overrides.NgramRange; r != nil && len(r) != 2 {
		return fmt.Errorf("invalid config: processor.overrides.ngram_range needs two values, got %d", len(r))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid config: server.port %d out of range", c.Server.Port)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// "~/" paths are relative to the home directory; other relative paths are left alone.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || strings.HasPrefix(path, "../") || path == "." {
		return filepath.Join(configDir, path)
	}
	return ExpandHome(path)
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return path
}
