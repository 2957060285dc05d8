// Package config loads the YAML configuration shared by bidx and bidxd.
// Command-line flags override file values; file values override defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"bibleidx/internal/core/search"
	"bibleidx/internal/index/backend"
	"bibleidx/internal/logging"
)

type Config struct {
	Corpus     string `yaml:"corpus"`
	Database   string `yaml:"database"`
	Backend    string `yaml:"backend"`
	WordIndex  string `yaml:"word_index"`
	Listen     string `yaml:"listen"`
	LiveListen string `yaml:"live_listen"`

	Search Search `yaml:"search"`
	Watch  Watch  `yaml:"watch"`
	Log    Log    `yaml:"log"`
}

type Search struct {
	DebounceMS int    `yaml:"debounce_ms"`
	CacheSize  int    `yaml:"cache_size"`
	Limit      int    `yaml:"limit"`
	Mode       string `yaml:"mode"`
}

type Watch struct {
	Enabled    bool `yaml:"enabled"`
	DebounceMS int  `yaml:"debounce_ms"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const DataDir = ".bidx"

func Default() Config {
	return Config{
		Corpus:     "corpus",
		Database:   backend.DefaultPath(DataDir),
		Backend:    backend.SQLite,
		WordIndex:  backend.DefaultWordIndexPath(DataDir),
		Listen:     "127.0.0.1:7878",
		LiveListen: "127.0.0.1:7879",
		Search: Search{
			DebounceMS: int(search.DefaultDebounce / time.Millisecond),
			CacheSize:  64,
			Mode:       string(search.ModePhrase),
		},
		Watch: Watch{DebounceMS: 200},
		Log:   Log{Level: "info", Format: logging.FormatText},
	}
}

// Load reads path over the defaults. An empty path yields the defaults; a
// path that does not exist is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := decodeInto(&cfg, data); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := decodeInto(&cfg, data); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func decodeInto(cfg *Config, data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Corpus) == "" {
		return fmt.Errorf("corpus is required")
	}
	switch backend.NormalizeName(c.Backend) {
	case backend.SQLite:
		if strings.TrimSpace(c.Database) == "" {
			return fmt.Errorf("database is required for the sqlite backend")
		}
	case backend.Memory:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Search.DebounceMS < 0 || c.Watch.DebounceMS < 0 {
		return fmt.Errorf("debounce_ms must be >= 0")
	}
	if c.Search.CacheSize < 0 {
		return fmt.Errorf("search.cache_size must be >= 0")
	}
	if c.Search.Limit < 0 {
		return fmt.Errorf("search.limit must be >= 0")
	}
	if _, err := search.ParseMode(c.Search.Mode); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

func (s Search) Debounce() time.Duration { return time.Duration(s.DebounceMS) * time.Millisecond }

func (w Watch) Debounce() time.Duration { return time.Duration(w.DebounceMS) * time.Millisecond }
