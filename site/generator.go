// Package site rebuilds the static site from the post sources.
package site

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"discord-blog/models"
)

// Generator renders the content root into the output root.
type Generator interface {
	Generate(ctx context.Context) error
}

// New builds the generator selected by cfg.Generator.Kind.
func New(cfg *models.Config) (Generator, error) {
	switch cfg.Generator.Kind {
	case "", "builtin":
		return NewBuiltinGenerator(cfg), nil
	case "exec":
		return NewExecGenerator(cfg.Generator.Command, cfg.DataDir, cfg.OutputDir, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unknown generator kind %q", cfg.Generator.Kind)
	}
}

// CleanOutputDir removes everything inside dir except the top-level entries
// named in retain. A missing dir is not an error.
func CleanOutputDir(dir string, retain []string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read output directory %s: %w", dir, err)
	}
	for _, e := range entries {
		if slices.Contains(retain, e.Name()) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("failed to clean %s: %w", e.Name(), err)
		}
	}
	return nil
}
