package bidxcli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"bibleidx/internal/config"
)

// DefaultConfigPath is read when --config is not given and the file exists.
var DefaultConfigPath = filepath.Join(config.DataDir, "config.yaml")

type Options struct {
	ConfigPath string
	Corpus     string
	Database   string
	Backend    string
	WordIndex  string
	LogLevel   string
	Jsonl      bool

	// Config is the effective configuration: file values with flag
	// overrides applied. Prepare fills it in.
	Config config.Config
}

func (o *Options) Prepare() error {
	o.normalize()

	path := o.ConfigPath
	if path == "" {
		if _, err := os.Stat(DefaultConfigPath); err == nil {
			path = DefaultConfigPath
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if o.Corpus != "" {
		cfg.Corpus = o.Corpus
	}
	if o.Database != "" {
		cfg.Database = o.Database
	}
	if o.Backend != "" {
		cfg.Backend = o.Backend
	}
	if o.WordIndex != "" {
		cfg.WordIndex = o.WordIndex
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	o.Config = cfg
	return nil
}

func (o *Options) normalize() {
	o.ConfigPath = strings.TrimSpace(o.ConfigPath)
	o.Corpus = strings.TrimSpace(o.Corpus)
	o.Database = strings.TrimSpace(o.Database)
	o.Backend = strings.TrimSpace(o.Backend)
	o.WordIndex = strings.TrimSpace(o.WordIndex)
	o.LogLevel = strings.TrimSpace(o.LogLevel)
}

type optionsKey struct{}

func optionsFrom(cmd *cobra.Command) *Options {
	if cmd == nil {
		return nil
	}
	root := cmd.Root()
	if root == nil {
		root = cmd
	}
	v := root.Context().Value(optionsKey{})
	opts, _ := v.(*Options)
	return opts
}

func bindFlags(cmd *cobra.Command, opts *Options) {
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", opts.ConfigPath, "config file (default: "+DefaultConfigPath+" when present)")
	cmd.PersistentFlags().StringVar(&opts.Corpus, "corpus", opts.Corpus, "directory holding Books.json and the book documents")
	cmd.PersistentFlags().StringVarP(&opts.Database, "database", "d", opts.Database, "annotation database /path/to/file.db")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", opts.Backend, "annotation store backend: sqlite|memory")
	cmd.PersistentFlags().StringVar(&opts.WordIndex, "word-index", opts.WordIndex, "word index directory")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "log level: debug|info|warn|error")
	cmd.PersistentFlags().BoolVar(&opts.Jsonl, "jsonl", opts.Jsonl, "output as JSONL")
}

func ExecuteForTest(cmd *cobra.Command) (string, Options, error) {
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	err := cmd.Execute()

	opts := optionsFrom(cmd)
	if opts == nil {
		return out.String(), Options{}, err
	}
	return out.String(), *opts, err
}

func newDefaultOptions() *Options {
	return &Options{Config: config.Default()}
}

func withOptionsContext(cmd *cobra.Command, opts *Options) {
	cmd.SetContext(context.WithValue(context.Background(), optionsKey{}, opts))
}
