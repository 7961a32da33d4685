// Package presets loads named channel-group presets from YAML. A preset is
// a set of channel names the frontend can add to a plot in one action.
package presets

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/datalog-visualizer/backend/internal/models"
)

// Load parses a presets YAML file.
func Load(filePath string) (*models.PresetList, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadFromReader(file)
}

// LoadFromReader parses presets from an io.Reader and validates them.
func LoadFromReader(r io.Reader) (*models.PresetList, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var list models.PresetList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parsing presets: %w", err)
	}

	if err := Validate(&list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Validate checks preset names are present and unique and that every preset
// names at least one channel.
func Validate(list *models.PresetList) error {
	seen := make(map[string]struct{}, len(list.Presets))
	for i, p := range list.Presets {
		if p.Name == "" {
			return fmt.Errorf("preset %d has no name", i)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("duplicate preset name: %s", p.Name)
		}
		seen[p.Name] = struct{}{}
		if len(p.Channels) == 0 {
			return fmt.Errorf("preset %q has no channels", p.Name)
		}
	}
	return nil
}
