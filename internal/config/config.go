// Package config loads the compiler's two optional external inputs
// named by the CLI collaborator contract (§6.5): an external token
// table and a previous run's diff snapshot. Loading goes through an
// injectable FileReader so the CLI layer and tests can supply fakes
// instead of touching disk.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/somc-project/somc/internal/codec"
)

// FileReader reads a named file's contents. The default implementation
// wraps os.ReadFile; tests inject an in-memory fake.
type FileReader interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// LoadTokenTable reads an external token table (§6.5: "an optional
// external token table mapping custom-property names to raw values").
// JSON is assumed unless path ends in .yml or .yaml.
func LoadTokenTable(ctx context.Context, r FileReader, path string) (map[string]string, error) {
	data, err := r.ReadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("reading token table: %w", err)
	}

	table := make(map[string]string)
	if isYAML(path) {
		if err := yaml.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("parsing token table YAML: %w", err)
		}
		return table, nil
	}
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parsing token table JSON: %w", err)
	}
	return table, nil
}

// LoadDiffSnapshot reads a previous run's summary record for watch-mode
// callers to diff against (§6.5: "an optional diff snapshot"). The core
// only loads and exposes it; diffing itself is a CLI-layer concern
// outside this package's scope (§1).
func LoadDiffSnapshot(ctx context.Context, r FileReader, path string) (*codec.Summary, error) {
	data, err := r.ReadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("reading diff snapshot: %w", err)
	}

	var snap codec.Summary
	if isYAML(path) {
		if err := yaml.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("parsing diff snapshot YAML: %w", err)
		}
		return &snap, nil
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing diff snapshot JSON: %w", err)
	}
	return &snap, nil
}

func isYAML(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".yml") || strings.HasSuffix(lower, ".yaml")
}
