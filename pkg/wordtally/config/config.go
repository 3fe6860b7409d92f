// Package config loads the wordtally configuration from a YAML file.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/wordtally/pkg/wordtally/charset"
	"github.com/cognicore/wordtally/pkg/wordtally/internalerr"
)

// Config is the top-level configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Encoding EncodingConfig `yaml:"encoding"`
	Stats    StatsConfig    `yaml:"stats"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// StoreConfig holds the database file paths. The frequency table and
// the processed-files table live in separate files.
type StoreConfig struct {
	WordsDB    string `yaml:"words_db"`
	ProgressDB string `yaml:"progress_db"`
}

// IngestConfig selects which file extensions are ingested and which of
// those are stripped of markup first.
type IngestConfig struct {
	Extensions     []string `yaml:"extensions"`
	HTMLExtensions []string `yaml:"html_extensions"`
}

// EncodingConfig controls detection confidence and the fallback ladder.
type EncodingConfig struct {
	Confidence float64  `yaml:"confidence"`
	Fallbacks  []string `yaml:"fallbacks"`
}

// StatsConfig holds presentation defaults.
type StatsConfig struct {
	Limit int `yaml:"limit"`
}

// LoggingConfig selects log level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Store: StoreConfig{
			WordsDB:    "words.db",
			ProgressDB: "progress.db",
		},
		Ingest: IngestConfig{
			Extensions:     []string{".txt"},
			HTMLExtensions: []string{".html", ".htm"},
		},
		Encoding: EncodingConfig{
			Confidence: charset.DefaultConfidence,
			Fallbacks:  charset.DefaultFallbacks,
		},
		Stats: StatsConfig{
			Limit: 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the configuration from path, filling unset fields from
// Default. An empty or nonexistent path yields the defaults; a file
// that exists but does not parse or validate is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Store.WordsDB == "" || c.Store.ProgressDB == "" {
		return fmt.Errorf("%w: store paths must not be empty", internalerr.ErrInvalidConfig)
	}
	if c.Encoding.Confidence <= 0 || c.Encoding.Confidence > 1 {
		return fmt.Errorf("%w: encoding confidence must be in (0, 1]", internalerr.ErrInvalidConfig)
	}
	if len(c.Ingest.Extensions) == 0 {
		return fmt.Errorf("%w: at least one ingest extension required", internalerr.ErrInvalidConfig)
	}
	return nil
}

// normalize lowercases extensions and guarantees the leading dot.
func (c *Config) normalize() {
	c.Ingest.Extensions = normalizeExts(c.Ingest.Extensions)
	c.Ingest.HTMLExtensions = normalizeExts(c.Ingest.HTMLExtensions)
}

func normalizeExts(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}
