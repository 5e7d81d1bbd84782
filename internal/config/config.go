package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/agentic-research/usemodel/api"
	"github.com/agentic-research/usemodel/internal/rewrite"
	"github.com/agentic-research/usemodel/internal/source"
)

// DefaultFile is looked up in the working directory when no --config is given.
const DefaultFile = ".usemodel.yaml"

// DefaultExclude lists directories never worth rewriting.
var DefaultExclude = []string{"node_modules", ".git", "dist", "build"}

// Default returns the built-in configuration.
func Default() api.Config {
	return api.Config{
		StoreName:  rewrite.DefaultStoreName,
		Extensions: append([]string(nil), source.Extensions...),
		Exclude:    append([]string(nil), DefaultExclude...),
		Workers:    runtime.NumCPU(),
	}
}

// Load reads the YAML file at path on top of Default. If required is false
// a missing file is not an error.
func Load(path string, required bool) (api.Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := Decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode merges YAML data into cfg. Unknown keys are rejected; fields the
// document leaves out keep their current value.
func Decode(data []byte, cfg *api.Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		// An empty document is a valid config.
		if errors.Is(err, io.EOF) {
			return Validate(*cfg)
		}
		return fmt.Errorf("parse yaml: %w", err)
	}
	return Validate(*cfg)
}

// Validate checks the values a rewrite depends on.
func Validate(cfg api.Config) error {
	if !rewrite.IsIdentifier(cfg.StoreName) {
		return fmt.Errorf("store_name %q is not a valid identifier", cfg.StoreName)
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", cfg.Workers)
	}
	for _, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}
	return nil
}
