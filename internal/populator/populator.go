// Package populator fills servers with hardware at scenario start.
package populator

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"datacenter/internal/eventbus"
	"datacenter/internal/hardware"
	"datacenter/internal/problem"
	"datacenter/internal/random"
	"datacenter/internal/topology"
)

var (
	// ErrMissingPrefabReference indicates a component template was not configured.
	ErrMissingPrefabReference = errors.New("component template is not set")
	// ErrInvalidPrefabType indicates a template of the wrong component kind.
	ErrInvalidPrefabType = errors.New("component template has the wrong kind")
)

// Template describes how new components of one kind are built.
type Template struct {
	Kind hardware.Kind
	// Grabbable components get a manipulation handle. Components without
	// one cannot be installed.
	Grabbable bool
}

// Populator creates components from templates and places them in servers.
type Populator struct {
	dc     *topology.Datacenter
	rng    random.Rand
	ram    *Template
	hdd    *Template
	logger zerolog.Logger
}

// New creates a populator for dc. Either template may be nil, in which case
// creating components of that kind fails with ErrMissingPrefabReference.
func New(dc *topology.Datacenter, rng random.Rand, ram, hdd *Template, logger zerolog.Logger) *Populator {
	return &Populator{dc: dc, rng: rng, ram: ram, hdd: hdd, logger: logger}
}

func (p *Populator) handle(tmpl *Template, kind hardware.Kind) (*hardware.Handle, error) {
	if tmpl == nil {
		return nil, fmt.Errorf("%s: %w", kind, ErrMissingPrefabReference)
	}
	if tmpl.Kind != kind {
		return nil, fmt.Errorf("%s template is %q: %w", kind, tmpl.Kind, ErrInvalidPrefabType)
	}
	if !tmpl.Grabbable {
		return nil, nil
	}
	return hardware.NewHandle(), nil
}

// CreateRamComponent builds a loose memory module.
func (p *Populator) CreateRamComponent(capacity int) (*hardware.RamComponent, error) {
	h, err := p.handle(p.ram, hardware.KindRAM)
	if err != nil {
		return nil, err
	}
	return hardware.NewRamComponent(capacity, h), nil
}

// CreateHddComponent builds a loose drive.
func (p *Populator) CreateHddComponent(broken bool) (*hardware.HddComponent, error) {
	h, err := p.handle(p.hdd, hardware.KindHDD)
	if err != nil {
		return nil, err
	}
	return hardware.NewHddComponent(broken, h), nil
}

// PopulateRam flips a coin between filling every other slot, starting at
// the second, and filling all slots. Every module gets the same capacity of
// 8, 16 or 32 GiB and becomes its slot's target.
func (p *Populator) PopulateRam(server *topology.Server) error {
	half := p.rng.Intn(2) == 0
	capacity := 1 << random.Between(p.rng, 3, 5)

	filled := 0
	for i, slot := range server.RamSlots() {
		if half && i%2 == 0 {
			continue
		}
		ram, err := p.CreateRamComponent(capacity)
		if err != nil {
			return err
		}
		if err := slot.SetComponent(ram); err != nil {
			return err
		}
		slot.SetTarget(ram)
		filled++
	}

	p.logger.Debug().
		Str("server", server.Name()).
		Bool("half", half).
		Int("capacity", capacity).
		Int("filled", filled).
		Msg("populated ram")
	return nil
}

// PopulateHdd fills a random, non-empty prefix of the drive slots with
// working drives, each becoming its slot's target. The count is drawn even
// when the server has no drive slots.
func (p *Populator) PopulateHdd(server *topology.Server) error {
	slots := server.HddSlots()
	count := min(random.Between(p.rng, 1, len(slots)), len(slots))

	for _, slot := range slots[:count] {
		hdd, err := p.CreateHddComponent(false)
		if err != nil {
			return err
		}
		if err := slot.SetComponent(hdd); err != nil {
			return err
		}
		slot.SetTarget(hdd)
	}

	p.logger.Debug().Str("server", server.Name()).Int("filled", count).Msg("populated hdd")
	return nil
}

// Populate fills both RAM and drive slots of server.
func (p *Populator) Populate(server *topology.Server) error {
	if err := p.PopulateRam(server); err != nil {
		return fmt.Errorf("populating %s: %w", server.Name(), err)
	}
	if err := p.PopulateHdd(server); err != nil {
		return fmt.Errorf("populating %s: %w", server.Name(), err)
	}
	return nil
}

// PopulateNonProblematicServers fills every server except the one the
// problem is located at.
func (p *Populator) PopulateNonProblematicServers(hp *problem.HardwareProblem) error {
	for _, server := range p.dc.Servers() {
		if server == hp.Location.Server {
			continue
		}
		if err := p.Populate(server); err != nil {
			return err
		}
	}
	return nil
}

// PopulateProblematicServer lets the problem lay out its own server.
func (p *Populator) PopulateProblematicServer(hp *problem.HardwareProblem) error {
	if err := hp.Type.PopulateServer(p); err != nil {
		return fmt.Errorf("populating %s: %w", hp.Location, err)
	}
	p.logger.Debug().Str("location", hp.Location.String()).Msg("populated problem server")
	return nil
}

// OnHardwareProblemGenerated populates the whole datacenter for the
// generated problem.
func (p *Populator) OnHardwareProblemGenerated(e eventbus.ProblemGenerated) error {
	if err := p.PopulateNonProblematicServers(e.Problem); err != nil {
		return err
	}
	return p.PopulateProblematicServer(e.Problem)
}
