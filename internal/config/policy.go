package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ShareRange bounds a meal slot's share of the daily calories.
type ShareRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// TargetDefaults are the nutrition targets used when a request gives none.
type TargetDefaults struct {
	NumDays     int     `yaml:"num_days"`
	MinProtein  float64 `yaml:"min_protein"`
	MaxProtein  float64 `yaml:"max_protein"`
	MinCalories float64 `yaml:"min_calories"`
	MaxCalories float64 `yaml:"max_calories"`
	MinCarbs    float64 `yaml:"min_carbs"`
	MaxCarbs    float64 `yaml:"max_carbs"`
	MinFat      float64 `yaml:"min_fat"`
	MaxFat      float64 `yaml:"max_fat"`
}

// Policy is the optional YAML override of the engine tables. Zero-valued
// parts keep the built-in defaults.
type Policy struct {
	AlwaysRotate []string              `yaml:"always_rotate"`
	SlotShares   map[string]ShareRange `yaml:"slot_shares"`
	Targets      *TargetDefaults       `yaml:"targets"`
}

// LoadPolicy reads a policy file. An empty path returns an empty Policy.
func LoadPolicy(path string) (*Policy, error) {
	if path == "" {
		return &Policy{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse policy file %s: %w", path, err)
	}

	for slot, share := range p.SlotShares {
		if share.Min < 0 || share.Max < share.Min || share.Max > 1 {
			return nil, fmt.Errorf("policy slot %q: share range %.2f-%.2f is invalid", slot, share.Min, share.Max)
		}
	}
	return &p, nil
}
