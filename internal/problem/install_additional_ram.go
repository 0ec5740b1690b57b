package problem

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"

	"datacenter/internal/hardware"
	"datacenter/internal/random"
	"datacenter/internal/topology"
)

// InstallAdditionalRam asks the player to fill empty RAM slots with modules
// of a fixed capacity.
type InstallAdditionalRam struct {
	checklist
	location topology.Location
	slots    []*hardware.Slot[*hardware.RamComponent]
	targets  mapset.Set[*hardware.Slot[*hardware.RamComponent]]
	capacity int
	bySlot   map[*hardware.Slot[*hardware.RamComponent]]*Activity
}

// NewInstallAdditionalRam creates the problem with one install activity per
// target slot.
func NewInstallAdditionalRam(loc topology.Location, slots []*hardware.Slot[*hardware.RamComponent], capacity int) (*InstallAdditionalRam, error) {
	if err := checkSlots(slots); err != nil {
		return nil, err
	}
	p := &InstallAdditionalRam{
		location: loc,
		slots:    slots,
		targets:  mapset.New[*hardware.Slot[*hardware.RamComponent]](),
		capacity: capacity,
		bySlot:   make(map[*hardware.Slot[*hardware.RamComponent]]*Activity, len(slots)),
	}
	for _, slot := range slots {
		p.targets.Put(slot)
		p.bySlot[slot] = p.add(fmt.Sprintf("Install %d GiB RAM into %s.", capacity, slot.Name()))
	}
	return p, nil
}

// GenerateInstallAdditionalRam picks a power-of-two number of contiguous
// empty slots after a random number of filled ones, then a capacity of 8,
// 16 or 32 GiB.
func GenerateInstallAdditionalRam(loc topology.Location, rng random.Rand) (Type, error) {
	all := topology.ComponentSlots[*hardware.RamComponent](loc.Server)
	n := len(all)

	amount := 0
	switch {
	case n/2 >= 2:
		amount = random.PowerOfTwo(rng, 2, n/2)
	case n > 0:
		amount = 1
	}
	filled := random.Between(rng, 0, n-amount)
	capacity := 1 << random.Between(rng, 3, 5)

	return NewInstallAdditionalRam(loc, all[filled:filled+amount], capacity)
}

func (*InstallAdditionalRam) Name() TypeName           { return InstallAdditionalRamType }
func (*InstallAdditionalRam) HardwareTypeName() string { return "Ram" }
func (*InstallAdditionalRam) TaskTypeName() string     { return "Install additional ram" }

func (p *InstallAdditionalRam) Location() topology.Location { return p.location }

// Slots returns the slots that must receive a module.
func (p *InstallAdditionalRam) Slots() []*hardware.Slot[*hardware.RamComponent] {
	return append([]*hardware.Slot[*hardware.RamComponent](nil), p.slots...)
}

// Capacity returns the required module capacity in GiB.
func (p *InstallAdditionalRam) Capacity() int { return p.capacity }

func (p *InstallAdditionalRam) Message() string {
	server, container := locationNames(p.location)
	return fmt.Sprintf(
		"The client has ordered additional RAM for server '%s' in '%s'.\n\nInstall new RAM modules, each with capacity %d GiB, into %s.",
		server, container, p.capacity, joinSlotNames(p.slots))
}

// PopulateServer fills every non-target slot with a module of the problem's
// capacity and leaves the target slots empty. Every RAM slot then requires
// that capacity.
func (p *InstallAdditionalRam) PopulateServer(pop Populator) error {
	for _, slot := range topology.ComponentSlots[*hardware.RamComponent](p.location.Server) {
		if p.targets.Has(slot) {
			slot.Remove()
		} else {
			ram, err := pop.CreateRamComponent(p.capacity)
			if err != nil {
				return wrapPopulate(p.Name(), err)
			}
			if err := slot.SetComponent(ram); err != nil {
				return wrapPopulate(p.Name(), err)
			}
		}
		slot.SetRule(hardware.CapacityOf(p.capacity))
	}
	if err := pop.PopulateHdd(p.location.Server); err != nil {
		return wrapPopulate(p.Name(), err)
	}
	return nil
}

func (p *InstallAdditionalRam) OnRamComponentInstalled(e hardware.RamInstalled) error {
	if err := checkComponent(e.Component); err != nil {
		return err
	}
	if e.Component.Capacity != p.capacity {
		return nil
	}
	p.set(p.bySlot[e.Slot], true)
	return nil
}

func (p *InstallAdditionalRam) OnRamComponentRemoved(e hardware.RamRemoved) error {
	if err := checkComponent(e.Component); err != nil {
		return err
	}
	p.set(p.bySlot[e.Slot], false)
	return nil
}

func (p *InstallAdditionalRam) OnHddComponentInstalled(e hardware.HddInstalled) error {
	return checkComponent(e.Component)
}

func (p *InstallAdditionalRam) OnHddComponentRemoved(e hardware.HddRemoved) error {
	return checkComponent(e.Component)
}
