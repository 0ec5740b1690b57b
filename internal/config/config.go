// Package config handles YAML scenario configuration parsing.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"datacenter/internal/hardware"
	"datacenter/internal/problem"
)

// Config is the root configuration structure.
type Config struct {
	// Seed makes generation reproducible. Nil means seed from the clock.
	Seed         *int64           `yaml:"seed,omitempty"`
	ProblemTypes []string         `yaml:"problemTypes,omitempty"`
	Templates    TemplatesConfig  `yaml:"templates"`
	Datacenter   DatacenterConfig `yaml:"datacenter"`
	Replay       ReplayConfig     `yaml:"replay,omitempty"`
}

// TemplatesConfig names the component template for each slot kind. When the
// section is absent both templates are defaulted; a single missing template
// is left nil so population fails loudly.
type TemplatesConfig struct {
	Ram *TemplateConfig `yaml:"ram"`
	Hdd *TemplateConfig `yaml:"hdd"`
}

// TemplateConfig describes how components are built.
type TemplateConfig struct {
	Kind      string `yaml:"kind"`
	Grabbable *bool  `yaml:"grabbable,omitempty"` // default true
}

// IsGrabbable reports whether components get a manipulation handle.
func (t *TemplateConfig) IsGrabbable() bool {
	return t.Grabbable == nil || *t.Grabbable
}

// DatacenterConfig lists containers in declaration order.
type DatacenterConfig struct {
	Containers []ContainerConfig `yaml:"containers"`
}

// ContainerConfig groups servers.
type ContainerConfig struct {
	Name    string         `yaml:"name"`
	Servers []ServerConfig `yaml:"servers"`
}

// ServerConfig defines the slot layout of one server.
type ServerConfig struct {
	Name     string `yaml:"name"`
	RamSlots int    `yaml:"ramSlots"`
	HddSlots int    `yaml:"hddSlots"`
}

// ReplayConfig controls scripted action playback.
type ReplayConfig struct {
	// ActionsPerSecond paces replayed actions. Zero replays unpaced.
	ActionsPerSecond float64 `yaml:"actionsPerSecond"`
}

// Default returns four containers of two servers with four RAM and six HDD
// slots each.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func defaultDatacenter() DatacenterConfig {
	var dc DatacenterConfig
	for c := 0; c < 4; c++ {
		container := ContainerConfig{Name: fmt.Sprintf("ServerContainer%d", c)}
		for s := 0; s < 2; s++ {
			container.Servers = append(container.Servers, ServerConfig{
				Name:     fmt.Sprintf("Server%d", s),
				RamSlots: 4,
				HddSlots: 6,
			})
		}
		dc.Containers = append(dc.Containers, container)
	}
	return dc
}

func (c *Config) applyDefaults() {
	if c.Templates.Ram == nil && c.Templates.Hdd == nil {
		c.Templates.Ram = &TemplateConfig{Kind: string(hardware.KindRAM)}
		c.Templates.Hdd = &TemplateConfig{Kind: string(hardware.KindHDD)}
	}
	if len(c.Datacenter.Containers) == 0 {
		c.Datacenter = defaultDatacenter()
	}
}

// Validate checks names, slot counts, template kinds and problem types.
func (c *Config) Validate() error {
	var errs []error

	containers := make(map[string]bool)
	for i, container := range c.Datacenter.Containers {
		if container.Name == "" {
			errs = append(errs, fmt.Errorf("datacenter.containers[%d]: name is required", i))
		} else if containers[container.Name] {
			errs = append(errs, fmt.Errorf("datacenter.containers[%d]: duplicate container name %q", i, container.Name))
		}
		containers[container.Name] = true

		servers := make(map[string]bool)
		for j, server := range container.Servers {
			where := fmt.Sprintf("datacenter.containers[%d].servers[%d]", i, j)
			if server.Name == "" {
				errs = append(errs, fmt.Errorf("%s: name is required", where))
			} else if servers[server.Name] {
				errs = append(errs, fmt.Errorf("%s: duplicate server name %q in %s", where, server.Name, container.Name))
			}
			servers[server.Name] = true
			if server.RamSlots < 0 || server.HddSlots < 0 {
				errs = append(errs, fmt.Errorf("%s: slot counts must not be negative", where))
			}
		}
	}

	templates := []struct {
		name string
		tmpl *TemplateConfig
	}{{"ram", c.Templates.Ram}, {"hdd", c.Templates.Hdd}}
	for _, t := range templates {
		if t.tmpl == nil {
			continue
		}
		if _, err := hardware.ParseKind(t.tmpl.Kind); err != nil {
			errs = append(errs, fmt.Errorf("templates.%s: %w", t.name, err))
		}
	}

	if _, err := problem.DefaultRegistry().ParseTypes(c.ProblemTypes); err != nil {
		errs = append(errs, fmt.Errorf("problemTypes: %w", err))
	}

	if c.Replay.ActionsPerSecond < 0 {
		errs = append(errs, errors.New("replay.actionsPerSecond must not be negative"))
	}

	return errors.Join(errs...)
}

// LoadConfig reads and parses a YAML configuration file, filling in the
// default datacenter and templates when they are absent.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}
