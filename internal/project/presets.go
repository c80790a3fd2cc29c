package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/teardrop/internal/model"
)

// DefaultPresetsPath returns the default file path for custom presets.
func DefaultPresetsPath() string {
	return filepath.Join(DefaultConfigDir(), "presets.json")
}

// SaveCustomPresets saves custom presets to a JSON file.
func SaveCustomPresets(path string, presets []model.Preset) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(presets, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadCustomPresets loads custom presets from a JSON file.
// Returns an empty slice if the file does not exist.
func LoadCustomPresets(path string) ([]model.Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.Preset{}, nil
		}
		return nil, err
	}

	var presets []model.Preset
	if err := json.Unmarshal(data, &presets); err != nil {
		return nil, fmt.Errorf("failed to parse presets: %w", err)
	}

	for i := range presets {
		presets[i].IsBuiltIn = false
		if err := presets[i].Params.Validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", presets[i].Name, err)
		}
	}
	return presets, nil
}

// ExportPreset writes a single preset to a JSON file for sharing.
func ExportPreset(path string, preset model.Preset) error {
	preset.IsBuiltIn = false
	data, err := json.MarshalIndent(preset, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ImportPreset reads a single preset from a JSON file.
func ImportPreset(path string) (model.Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Preset{}, err
	}

	var preset model.Preset
	if err := json.Unmarshal(data, &preset); err != nil {
		return model.Preset{}, err
	}

	preset.IsBuiltIn = false
	if preset.Name == "" {
		return model.Preset{}, errors.New("imported preset has no name")
	}
	if err := preset.Params.Validate(); err != nil {
		return model.Preset{}, fmt.Errorf("preset %q: %w", preset.Name, err)
	}
	return preset, nil
}
