package problem

import (
	"fmt"

	"github.com/rs/zerolog"

	"datacenter/internal/random"
	"datacenter/internal/topology"
)

// Generator draws problem locations and types for a datacenter.
type Generator struct {
	dc       *topology.Datacenter
	registry *Registry
	logger   zerolog.Logger
}

// NewGenerator creates a generator over dc using the types in registry.
func NewGenerator(dc *topology.Datacenter, registry *Registry, logger zerolog.Logger) *Generator {
	return &Generator{dc: dc, registry: registry, logger: logger}
}

// AllProblemTypes returns every type the generator can produce.
func (g *Generator) AllProblemTypes() []TypeName {
	return g.registry.Types()
}

// GenerateLocation picks a container, then a server inside it.
func (g *Generator) GenerateLocation(rng random.Rand) (topology.Location, error) {
	containers := g.dc.Containers()
	if len(containers) == 0 {
		return topology.Location{}, ErrNoServerContainers
	}
	container := containers[rng.Intn(len(containers))]

	servers := container.Servers()
	if len(servers) == 0 {
		return topology.Location{}, fmt.Errorf("%w: %s", ErrNoServers, container.Name())
	}
	server := servers[rng.Intn(len(servers))]

	return topology.Location{Container: container, Server: server}, nil
}

// GenerateProblemType picks one of candidates and builds a random instance
// of it at loc.
func (g *Generator) GenerateProblemType(loc topology.Location, rng random.Rand, candidates []TypeName) (Type, error) {
	if len(candidates) == 0 {
		return nil, ErrNoProblemTypes
	}
	name := candidates[rng.Intn(len(candidates))]

	reg, ok := g.registry.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProblemType, name)
	}
	if reg.GenerateRandom == nil {
		return nil, fmt.Errorf("%w in %s", ErrNoGenerateRandomFactory, name)
	}

	t, err := reg.GenerateRandom(loc, rng)
	if err != nil {
		return nil, fmt.Errorf("generating %s: %w", name, err)
	}
	return t, nil
}

// GenerateProblem draws a location and then a problem type from the same
// source. A problem that leaves nothing to do at its server, such as drives
// to install into a server with a single drive slot, is rejected with
// ErrNoTargetSlots.
func (g *Generator) GenerateProblem(rng random.Rand, candidates []TypeName) (*HardwareProblem, error) {
	loc, err := g.GenerateLocation(rng)
	if err != nil {
		return nil, err
	}
	t, err := g.GenerateProblemType(loc, rng, candidates)
	if err != nil {
		return nil, err
	}
	if len(t.Activities()) == 0 {
		return nil, fmt.Errorf("%w: %s at %s", ErrNoTargetSlots, t.Name(), loc)
	}

	g.logger.Info().
		Str("location", loc.String()).
		Str("type", string(t.Name())).
		Int("activities", len(t.Activities())).
		Msg("generated hardware problem")

	return &HardwareProblem{Location: loc, Type: t}, nil
}
