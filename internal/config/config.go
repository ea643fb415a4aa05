// Package config loads coursemark settings from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jcorbin/coursemark/internal/socutil"
	"github.com/jcorbin/coursemark/render/pdf"
	"github.com/jcorbin/coursemark/render/term"
)

// FileName is the config file looked for in the working directory and its
// parents.
const FileName = ".coursemark.yaml"

// Config holds every setting; zero sections are filled from Default.
type Config struct {
	Log     Log        `yaml:"log"`
	PDF     pdf.Config `yaml:"pdf"`
	Term    Term       `yaml:"term"`
	Workers int        `yaml:"workers"`
}

// Log configures the logger built by the logging package.
type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Term configures the terminal backend.
type Term struct {
	Width int `yaml:"width"`
}

// Default returns the settings used without a config file.
func Default() Config {
	return Config{
		Log:     Log{Level: "info"},
		PDF:     pdf.DefaultConfig(),
		Term:    Term{Width: term.DefaultWidth},
		Workers: 4,
	}
}

// Validate checks every section.
func (cfg Config) Validate() error {
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log: unknown level %q", cfg.Log.Level)
	}
	if err := cfg.PDF.Validate(); err != nil {
		return fmt.Errorf("pdf: %w", err)
	}
	if cfg.Term.Width < 1 {
		return fmt.Errorf("term: width %v must be positive", cfg.Term.Width)
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("workers %v must be positive", cfg.Workers)
	}
	return nil
}

// Decode reads YAML settings over the defaults, rejecting unknown keys.
// An empty document yields the defaults.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Load reads the named config file. If name is empty, FileName is searched
// for from the working directory up; finding none yields the defaults.
// The returned path is the file actually read, if any.
func Load(name string) (cfg Config, path string, rerr error) {
	path = name
	if path == "" {
		_, found, err := socutil.FindWDFile(FileName)
		if err != nil {
			return Config{}, "", err
		}
		if found == "" {
			return Default(), "", nil
		}
		path = found
	}

	f, err := os.Open(path)
	if err != nil {
		return Config{}, path, err
	}
	defer f.Close()

	cfg, err = Decode(f)
	if err != nil {
		return Config{}, path, fmt.Errorf("%v: %w", path, err)
	}
	return cfg, path, nil
}
