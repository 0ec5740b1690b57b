package problem

import (
	"fmt"

	"datacenter/internal/hardware"
	"datacenter/internal/random"
	"datacenter/internal/topology"
)

// InstallAdditionalHdd asks the player to install drives into empty slots
// that follow the already filled ones.
type InstallAdditionalHdd struct {
	checklist
	location topology.Location
	slots    []*hardware.Slot[*hardware.HddComponent]
	bySlot   map[*hardware.Slot[*hardware.HddComponent]]*Activity
}

func NewInstallAdditionalHdd(loc topology.Location, slots []*hardware.Slot[*hardware.HddComponent]) (*InstallAdditionalHdd, error) {
	if err := checkSlots(slots); err != nil {
		return nil, err
	}
	p := &InstallAdditionalHdd{
		location: loc,
		slots:    slots,
		bySlot:   make(map[*hardware.Slot[*hardware.HddComponent]]*Activity, len(slots)),
	}
	for _, slot := range slots {
		p.bySlot[slot] = p.add(fmt.Sprintf("Install a new HDD into %s.", slot.Name()))
	}
	return p, nil
}

// GenerateInstallAdditionalHdd draws between min(2, n) and n/2 drives to
// install, placed after at least one filled slot.
func GenerateInstallAdditionalHdd(loc topology.Location, rng random.Rand) (Type, error) {
	all := topology.ComponentSlots[*hardware.HddComponent](loc.Server)
	n := len(all)

	amount := random.Between(rng, min(2, n), n/2)
	filled := random.Between(rng, 1, n-amount)

	lo := min(filled, n)
	hi := min(filled+amount, n)
	return NewInstallAdditionalHdd(loc, all[lo:hi])
}

func (*InstallAdditionalHdd) Name() TypeName           { return InstallAdditionalHddType }
func (*InstallAdditionalHdd) HardwareTypeName() string { return "HDD" }
func (*InstallAdditionalHdd) TaskTypeName() string     { return "Install additional HDDs" }

func (p *InstallAdditionalHdd) Location() topology.Location { return p.location }

func (p *InstallAdditionalHdd) Slots() []*hardware.Slot[*hardware.HddComponent] {
	return append([]*hardware.Slot[*hardware.HddComponent](nil), p.slots...)
}

func (p *InstallAdditionalHdd) Message() string {
	server, container := locationNames(p.location)
	return fmt.Sprintf(
		"The client has ordered additional HDD storage for server '%s' in '%s'.\n\nInstall new hard disk drives into %s.",
		server, container, joinSlotNames(p.slots))
}

// PopulateServer fills the slots before the first target with drives that
// become their slots' targets. Slots from the first target on are left as
// found and the target slots accept any drive.
func (p *InstallAdditionalHdd) PopulateServer(pop Populator) error {
	all := topology.ComponentSlots[*hardware.HddComponent](p.location.Server)

	first := len(all)
	for _, slot := range p.slots {
		if i := indexOf(all, slot); i >= 0 && i < first {
			first = i
		}
	}

	for _, slot := range all[:first] {
		hdd, err := pop.CreateHddComponent(false)
		if err != nil {
			return wrapPopulate(p.Name(), err)
		}
		if err := slot.SetComponent(hdd); err != nil {
			return wrapPopulate(p.Name(), err)
		}
		slot.SetTarget(hdd)
	}
	for _, slot := range p.slots {
		slot.SetRule(hardware.Present())
	}

	if err := pop.PopulateRam(p.location.Server); err != nil {
		return wrapPopulate(p.Name(), err)
	}
	return nil
}

func (p *InstallAdditionalHdd) OnRamComponentInstalled(e hardware.RamInstalled) error {
	return checkComponent(e.Component)
}

func (p *InstallAdditionalHdd) OnRamComponentRemoved(e hardware.RamRemoved) error {
	return checkComponent(e.Component)
}

func (p *InstallAdditionalHdd) OnHddComponentInstalled(e hardware.HddInstalled) error {
	if err := checkComponent(e.Component); err != nil {
		return err
	}
	p.set(p.bySlot[e.Slot], true)
	return nil
}

func (p *InstallAdditionalHdd) OnHddComponentRemoved(e hardware.HddRemoved) error {
	if err := checkComponent(e.Component); err != nil {
		return err
	}
	p.set(p.bySlot[e.Slot], false)
	return nil
}
