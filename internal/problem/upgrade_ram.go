package problem

import (
	"fmt"
	"math/bits"

	"github.com/zyedidia/generic/mapset"

	"datacenter/internal/hardware"
	"datacenter/internal/random"
	"datacenter/internal/topology"
)

// UpgradeRam asks the player to replace modules in some slots with modules
// of twice the capacity.
type UpgradeRam struct {
	checklist
	location  topology.Location
	slots     []*hardware.Slot[*hardware.RamComponent]
	targets   mapset.Set[*hardware.Slot[*hardware.RamComponent]]
	capacity  int
	originals map[*hardware.Slot[*hardware.RamComponent]]*hardware.RamComponent
	bySlot    map[*hardware.Slot[*hardware.RamComponent]]swapActivities
}

// NewUpgradeRam creates a remove and an install activity per target slot.
// All remove activities are listed before the install activities.
func NewUpgradeRam(loc topology.Location, slots []*hardware.Slot[*hardware.RamComponent], capacity int) (*UpgradeRam, error) {
	if err := checkSlots(slots); err != nil {
		return nil, err
	}
	p := &UpgradeRam{
		location:  loc,
		slots:     slots,
		targets:   mapset.New[*hardware.Slot[*hardware.RamComponent]](),
		capacity:  capacity,
		originals: make(map[*hardware.Slot[*hardware.RamComponent]]*hardware.RamComponent),
		bySlot:    make(map[*hardware.Slot[*hardware.RamComponent]]swapActivities, len(slots)),
	}
	for _, slot := range slots {
		p.targets.Put(slot)
		p.bySlot[slot] = swapActivities{
			remove: p.add(fmt.Sprintf("Remove the old %d GiB module from %s.", p.OldCapacity(), slot.Name())),
		}
	}
	for _, slot := range slots {
		acts := p.bySlot[slot]
		acts.install = p.add(fmt.Sprintf("Install a new %d GiB module into %s.", capacity, slot.Name()))
		p.bySlot[slot] = acts
	}
	return p, nil
}

// GenerateUpgradeRam draws a power-of-two number of slots, capped at the
// slot count, and takes the first slot of each equal partition of the slot
// list. The new capacity is 16, 32 or 64 GiB.
func GenerateUpgradeRam(loc topology.Location, rng random.Rand) (Type, error) {
	all := topology.ComponentSlots[*hardware.RamComponent](loc.Server)
	n := len(all)

	maxExp := bits.Len(uint(max(n-1, 0)))
	amount := min(1<<random.Between(rng, 0, maxExp), n)
	slots := make([]*hardware.Slot[*hardware.RamComponent], 0, amount)
	for i := 0; i < amount; i++ {
		slots = append(slots, all[i*n/amount])
	}
	capacity := 1 << random.Between(rng, 4, 6)

	return NewUpgradeRam(loc, slots, capacity)
}

func (*UpgradeRam) Name() TypeName           { return UpgradeRamType }
func (*UpgradeRam) HardwareTypeName() string { return "Ram" }
func (*UpgradeRam) TaskTypeName() string     { return "Upgrade ram" }

func (p *UpgradeRam) Location() topology.Location { return p.location }

func (p *UpgradeRam) Slots() []*hardware.Slot[*hardware.RamComponent] {
	return append([]*hardware.Slot[*hardware.RamComponent](nil), p.slots...)
}

// Capacity returns the capacity the target slots are upgraded to.
func (p *UpgradeRam) Capacity() int { return p.capacity }

// OldCapacity returns the capacity of the modules being replaced.
func (p *UpgradeRam) OldCapacity() int { return p.capacity / 2 }

func (p *UpgradeRam) Message() string {
	server, container := locationNames(p.location)
	return fmt.Sprintf(
		"The client has ordered a RAM upgrade of server '%s' in '%s'.\n\nReplace the old %d GiB RAM modules of %s with new %d GiB modules.",
		server, container, p.OldCapacity(), joinSlotNames(p.slots), p.capacity)
}

// PopulateServer fills every slot with an old-capacity module and records it
// as the slot's original. Target slots then require the new capacity and
// the rest keep requiring the old one.
func (p *UpgradeRam) PopulateServer(pop Populator) error {
	clear(p.originals)
	for _, slot := range topology.ComponentSlots[*hardware.RamComponent](p.location.Server) {
		ram, err := pop.CreateRamComponent(p.OldCapacity())
		if err != nil {
			return wrapPopulate(p.Name(), err)
		}
		if err := slot.SetComponent(ram); err != nil {
			return wrapPopulate(p.Name(), err)
		}
		p.originals[slot] = ram
		if p.targets.Has(slot) {
			slot.SetRule(hardware.CapacityOf(p.capacity))
		} else {
			slot.SetRule(hardware.CapacityOf(p.OldCapacity()))
		}
	}
	if err := pop.PopulateHdd(p.location.Server); err != nil {
		return wrapPopulate(p.Name(), err)
	}
	return nil
}

// Original returns the module the slot held after population.
func (p *UpgradeRam) Original(slot *hardware.Slot[*hardware.RamComponent]) (*hardware.RamComponent, bool) {
	ram, ok := p.originals[slot]
	return ram, ok
}

func (p *UpgradeRam) OnRamComponentInstalled(e hardware.RamInstalled) error {
	if err := checkComponent(e.Component); err != nil {
		return err
	}
	acts, ok := p.bySlot[e.Slot]
	if !ok {
		return nil
	}
	switch {
	case p.originals[e.Slot] == e.Component:
		p.set(acts.remove, false)
	case e.Component.Capacity == p.capacity:
		p.set(acts.install, true)
	}
	return nil
}

func (p *UpgradeRam) OnRamComponentRemoved(e hardware.RamRemoved) error {
	if err := checkComponent(e.Component); err != nil {
		return err
	}
	acts, ok := p.bySlot[e.Slot]
	if !ok {
		return nil
	}
	switch {
	case p.originals[e.Slot] == e.Component:
		p.set(acts.remove, true)
	case e.Component.Capacity == p.capacity:
		p.set(acts.install, false)
	}
	return nil
}

func (p *UpgradeRam) OnHddComponentInstalled(e hardware.HddInstalled) error {
	return checkComponent(e.Component)
}

func (p *UpgradeRam) OnHddComponentRemoved(e hardware.HddRemoved) error {
	return checkComponent(e.Component)
}
