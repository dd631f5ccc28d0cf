package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/meshwire/meshwire-go/registry"
)

// LinksConfig is the root of a link declaration file.
type LinksConfig struct {
	Links []LinkConfig `toml:"links"`
}

// LinkConfig declares one link: its name, its two endpoint names, the
// pathway capacity, and the declared payload type name for each direction.
// An empty reverse_type declares a one-way link.
type LinkConfig struct {
	Name        string `toml:"name"`
	Source      string `toml:"source"`
	Target      string `toml:"target"`
	Capacity    int    `toml:"capacity"`
	ForwardType string `toml:"forward_type"`
	ReverseType string `toml:"reverse_type"`
}

// Load reads and parses a link declaration file.
func Load(path string) (LinksConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LinksConfig{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	return Parse(data)
}

// Parse parses TOML link declarations.
func Parse(data []byte) (LinksConfig, error) {
	var cfg LinksConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return LinksConfig{}, fmt.Errorf("config parse failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the declarations fail-fast, before any pathway is built:
// missing fields, negative capacities, duplicate link names, a direction
// type declared twice within one link, and payload type names that are not
// present in reg.
func (c LinksConfig) Validate(reg registry.TypeRegistry) error {
	if len(c.Links) == 0 {
		return fmt.Errorf("config: no links declared")
	}

	seen := make(map[string]bool, len(c.Links))
	for i, l := range c.Links {
		if strings.TrimSpace(l.Name) == "" {
			return fmt.Errorf("config: link %d missing name", i)
		}
		if seen[l.Name] {
			return fmt.Errorf("config: link %q declared twice", l.Name)
		}
		seen[l.Name] = true

		if strings.TrimSpace(l.Source) == "" || strings.TrimSpace(l.Target) == "" {
			return fmt.Errorf("config: link %q missing source or target", l.Name)
		}
		if l.Source == l.Target {
			return fmt.Errorf("config: link %q source and target must differ", l.Name)
		}
		if l.Capacity < 0 {
			return fmt.Errorf("config: link %q capacity cannot be negative", l.Name)
		}
		if strings.TrimSpace(l.ForwardType) == "" {
			return fmt.Errorf("config: link %q missing forward_type", l.Name)
		}
		if l.ForwardType == l.ReverseType {
			return fmt.Errorf("config: link %q declares %s for both directions; a direction is selected by payload type",
				l.Name, l.ForwardType)
		}

		if !reg.IsRegistered(l.ForwardType) {
			return fmt.Errorf("config: link %q forward_type %s is not a registered payload type", l.Name, l.ForwardType)
		}
		if l.ReverseType != "" && !reg.IsRegistered(l.ReverseType) {
			return fmt.Errorf("config: link %q reverse_type %s is not a registered payload type", l.Name, l.ReverseType)
		}
	}

	return nil
}
