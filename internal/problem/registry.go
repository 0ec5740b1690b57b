package problem

import (
	"fmt"

	"datacenter/internal/random"
	"datacenter/internal/topology"
)

// Factory builds a random problem of one type at a location.
type Factory func(loc topology.Location, rng random.Rand) (Type, error)

// Registration describes one problem type known to a Registry.
type Registration struct {
	Name             TypeName
	HardwareTypeName string
	TaskTypeName     string
	GenerateRandom   Factory
}

// Registry is the closed set of problem types, in registration order.
type Registry struct {
	entries []Registration
	byName  map[TypeName]int
}

// NewRegistry creates a registry from entries. A later entry with an
// already registered name replaces the earlier one in place.
func NewRegistry(entries ...Registration) *Registry {
	r := &Registry{byName: make(map[TypeName]int, len(entries))}
	for _, e := range entries {
		if i, ok := r.byName[e.Name]; ok {
			r.entries[i] = e
			continue
		}
		r.byName[e.Name] = len(r.entries)
		r.entries = append(r.entries, e)
	}
	return r
}

// DefaultRegistry returns every built-in problem type.
func DefaultRegistry() *Registry {
	return NewRegistry(
		Registration{
			Name:             InstallAdditionalRamType,
			HardwareTypeName: "Ram",
			TaskTypeName:     "Install additional ram",
			GenerateRandom:   GenerateInstallAdditionalRam,
		},
		Registration{
			Name:             UpgradeRamType,
			HardwareTypeName: "Ram",
			TaskTypeName:     "Upgrade ram",
			GenerateRandom:   GenerateUpgradeRam,
		},
		Registration{
			Name:             InstallAdditionalHddType,
			HardwareTypeName: "HDD",
			TaskTypeName:     "Install additional HDDs",
			GenerateRandom:   GenerateInstallAdditionalHdd,
		},
		Registration{
			Name:             ReplaceBrokenHddType,
			HardwareTypeName: "HDD",
			TaskTypeName:     "Replace broken HDDs",
			GenerateRandom:   GenerateReplaceBrokenHdd,
		},
	)
}

// Types returns the registered type names in registration order.
func (r *Registry) Types() []TypeName {
	names := make([]TypeName, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name
	}
	return names
}

// Registrations returns a copy of every registration in order.
func (r *Registry) Registrations() []Registration {
	return append([]Registration(nil), r.entries...)
}

// Lookup finds the registration for name.
func (r *Registry) Lookup(name TypeName) (Registration, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Registration{}, false
	}
	return r.entries[i], true
}

// ParseTypes resolves names against the registry, failing with
// ErrUnknownProblemType on the first unknown one.
func (r *Registry) ParseTypes(names []string) ([]TypeName, error) {
	out := make([]TypeName, 0, len(names))
	for _, name := range names {
		if _, ok := r.byName[TypeName(name)]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownProblemType, name)
		}
		out = append(out, TypeName(name))
	}
	return out, nil
}
