// Package config loads optional weight-profile overrides from a YAML
// file. Built-in profiles cover both modes; the file only needs to
// exist when an operator wants different weights.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/reelplan/reelplan/internal/domain/scoring"
	"github.com/reelplan/reelplan/internal/types"
)

type file struct {
	Profiles map[string]types.WeightProfile `yaml:"profiles"`
}

// LoadProfiles reads weight profiles keyed by mode name. An empty path
// returns an empty map (use built-ins). Every profile is validated
// eagerly; a bad file fails the run before any segment processing.
func LoadProfiles(path string) (map[string]types.WeightProfile, error) {
	if path == "" {
		return map[string]types.WeightProfile{}, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weight profiles: %w", err)
	}
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse weight profiles: %w", err)
	}
	for name, p := range f.Profiles {
		if p.Name == "" {
			p.Name = name
			f.Profiles[name] = p
		}
		if err := scoring.ValidateProfile(f.Profiles[name]); err != nil {
			return nil, err
		}
	}
	if f.Profiles == nil {
		f.Profiles = map[string]types.WeightProfile{}
	}
	return f.Profiles, nil
}
