// Package problem generates hardware problems for a datacenter and tracks
// whether the player's installs and removals resolve them.
package problem

import (
	"errors"
	"fmt"
	"strings"

	"datacenter/internal/hardware"
	"datacenter/internal/topology"
)

var (
	ErrNoServerContainers      = errors.New("no server containers found")
	ErrNoServers               = errors.New("no servers found in server container")
	ErrNoProblemTypes          = errors.New("no hardware problem types found")
	ErrNoGenerateRandomFactory = errors.New("no GenerateRandom factory")
	ErrInvalidSlotReference    = errors.New("one or more slots are nil")
	ErrNullComponentInEvent    = errors.New("the component in the event is nil")
	ErrUnknownProblemType      = errors.New("unknown hardware problem type")
	ErrNoTargetSlots           = errors.New("problem has no target slots")
)

// TypeName tags a problem type variant.
type TypeName string

const (
	InstallAdditionalRamType TypeName = "InstallAdditionalRam"
	UpgradeRamType           TypeName = "UpgradeRam"
	InstallAdditionalHddType TypeName = "InstallAdditionalHdd"
	ReplaceBrokenHddType     TypeName = "ReplaceBrokenHdd"
)

// Populator creates components and fills servers. Problem types use it to
// lay out their server.
type Populator interface {
	CreateRamComponent(capacity int) (*hardware.RamComponent, error)
	CreateHddComponent(broken bool) (*hardware.HddComponent, error)
	PopulateRam(server *topology.Server) error
	PopulateHdd(server *topology.Server) error
}

// Type is a parametrized problem: what must change on a server and how to
// judge that it has.
type Type interface {
	Name() TypeName
	HardwareTypeName() string
	TaskTypeName() string
	Message() string
	Location() topology.Location

	// Activities lists the problem's checklist in display order.
	Activities() []*Activity
	// SetActivityListener registers fn to be called after any activity
	// changes completion state.
	SetActivityListener(fn func(*Activity))

	// PopulateServer fills the problem server so that it exhibits the problem.
	PopulateServer(p Populator) error

	OnRamComponentInstalled(e hardware.RamInstalled) error
	OnRamComponentRemoved(e hardware.RamRemoved) error
	OnHddComponentInstalled(e hardware.HddInstalled) error
	OnHddComponentRemoved(e hardware.HddRemoved) error
}

// HardwareProblem pairs a location with the problem found there.
type HardwareProblem struct {
	Location topology.Location
	Type     Type
}

// Message returns the player-facing description of the problem.
func (p *HardwareProblem) Message() string {
	return p.Type.Message()
}

func checkSlots[T hardware.Part](slots []*hardware.Slot[T]) error {
	for _, slot := range slots {
		if slot == nil {
			return ErrInvalidSlotReference
		}
	}
	return nil
}

func checkComponent[T hardware.Part](c T) error {
	var zero T
	if c == zero {
		return ErrNullComponentInEvent
	}
	return nil
}

// joinSlotNames renders slot names as "A, B and C".
func joinSlotNames[T hardware.Part](slots []*hardware.Slot[T]) string {
	names := make([]string, len(slots))
	for i, slot := range slots {
		names[i] = slot.Name()
	}
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}

func locationNames(loc topology.Location) (server, container string) {
	if loc.Server != nil {
		server = loc.Server.Name()
	}
	if loc.Container != nil {
		container = loc.Container.Name()
	}
	return server, container
}

func indexOf[T hardware.Part](slots []*hardware.Slot[T], slot *hardware.Slot[T]) int {
	for i, s := range slots {
		if s == slot {
			return i
		}
	}
	return -1
}

func wrapPopulate(name TypeName, err error) error {
	return fmt.Errorf("populating server for %s: %w", name, err)
}
