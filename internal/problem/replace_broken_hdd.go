package problem

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"

	"datacenter/internal/hardware"
	"datacenter/internal/random"
	"datacenter/internal/topology"
)

type swapActivities struct {
	remove  *Activity
	install *Activity
}

// ReplaceBrokenHdd asks the player to swap broken drives for working ones.
type ReplaceBrokenHdd struct {
	checklist
	location topology.Location
	slots    []*hardware.Slot[*hardware.HddComponent]
	broken   mapset.Set[*hardware.Slot[*hardware.HddComponent]]
	bySlot   map[*hardware.Slot[*hardware.HddComponent]]swapActivities
}

// NewReplaceBrokenHdd creates a remove and an install activity per broken
// slot. All remove activities are listed before the install activities.
func NewReplaceBrokenHdd(loc topology.Location, slots []*hardware.Slot[*hardware.HddComponent]) (*ReplaceBrokenHdd, error) {
	if err := checkSlots(slots); err != nil {
		return nil, err
	}
	p := &ReplaceBrokenHdd{
		location: loc,
		slots:    slots,
		broken:   mapset.New[*hardware.Slot[*hardware.HddComponent]](),
		bySlot:   make(map[*hardware.Slot[*hardware.HddComponent]]swapActivities, len(slots)),
	}
	for _, slot := range slots {
		p.broken.Put(slot)
		p.bySlot[slot] = swapActivities{remove: p.add(fmt.Sprintf("Remove the broken HDD from %s.", slot.Name()))}
	}
	for _, slot := range slots {
		acts := p.bySlot[slot]
		acts.install = p.add(fmt.Sprintf("Install a replacement HDD into %s.", slot.Name()))
		p.bySlot[slot] = acts
	}
	return p, nil
}

// GenerateReplaceBrokenHdd splits the drive slots into two halves and picks
// one broken slot in each.
func GenerateReplaceBrokenHdd(loc topology.Location, rng random.Rand) (Type, error) {
	all := topology.ComponentSlots[*hardware.HddComponent](loc.Server)
	n := len(all)

	var slots []*hardware.Slot[*hardware.HddComponent]
	if n > 0 {
		size := (n + 1) / 2
		for lo := 0; lo < n; lo += size {
			group := all[lo:min(lo+size, n)]
			slots = append(slots, group[rng.Intn(len(group))])
		}
	}
	return NewReplaceBrokenHdd(loc, slots)
}

func (*ReplaceBrokenHdd) Name() TypeName           { return ReplaceBrokenHddType }
func (*ReplaceBrokenHdd) HardwareTypeName() string { return "HDD" }
func (*ReplaceBrokenHdd) TaskTypeName() string     { return "Replace broken HDDs" }

func (p *ReplaceBrokenHdd) Location() topology.Location { return p.location }

func (p *ReplaceBrokenHdd) Slots() []*hardware.Slot[*hardware.HddComponent] {
	return append([]*hardware.Slot[*hardware.HddComponent](nil), p.slots...)
}

func (p *ReplaceBrokenHdd) Message() string {
	server, container := locationNames(p.location)
	if len(p.slots) == 1 {
		return fmt.Sprintf(
			"An hard disk drive (HDD) has broken down in server '%s' in '%s'.\n\nReplace the HDD in %s with a new drive.",
			server, container, joinSlotNames(p.slots))
	}
	return fmt.Sprintf(
		"Multiple hard disk drives (HDDs) have broken down in server '%s' in '%s'.\n\nReplace the HDDs in %s with new drives.",
		server, container, joinSlotNames(p.slots))
}

// PopulateServer puts a drive in every slot. Drives in the broken slots are
// broken and those slots accept any working drive; every other slot expects
// the drive it was given.
func (p *ReplaceBrokenHdd) PopulateServer(pop Populator) error {
	for _, slot := range topology.ComponentSlots[*hardware.HddComponent](p.location.Server) {
		broken := p.broken.Has(slot)
		hdd, err := pop.CreateHddComponent(broken)
		if err != nil {
			return wrapPopulate(p.Name(), err)
		}
		if err := slot.SetComponent(hdd); err != nil {
			return wrapPopulate(p.Name(), err)
		}
		if broken {
			slot.SetRule(hardware.NonBroken())
		} else {
			slot.SetTarget(hdd)
		}
	}
	if err := pop.PopulateRam(p.location.Server); err != nil {
		return wrapPopulate(p.Name(), err)
	}
	return nil
}

func (p *ReplaceBrokenHdd) OnRamComponentInstalled(e hardware.RamInstalled) error {
	return checkComponent(e.Component)
}

func (p *ReplaceBrokenHdd) OnRamComponentRemoved(e hardware.RamRemoved) error {
	return checkComponent(e.Component)
}

func (p *ReplaceBrokenHdd) OnHddComponentInstalled(e hardware.HddInstalled) error {
	if err := checkComponent(e.Component); err != nil {
		return err
	}
	acts, ok := p.bySlot[e.Slot]
	if !ok {
		return nil
	}
	if e.Component.Broken {
		p.set(acts.install, false)
		p.set(acts.remove, false)
		return nil
	}
	p.set(acts.install, true)
	return nil
}

func (p *ReplaceBrokenHdd) OnHddComponentRemoved(e hardware.HddRemoved) error {
	if err := checkComponent(e.Component); err != nil {
		return err
	}
	acts, ok := p.bySlot[e.Slot]
	if !ok {
		return nil
	}
	if e.Component.Broken {
		p.set(acts.remove, true)
		return nil
	}
	p.set(acts.install, false)
	return nil
}
