// Package hardware models the physical parts of a server: RAM modules, hard
// disk drives and the slots that hold them.
package hardware

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrMissingSlotFixture indicates a slot without a mount point.
	ErrMissingSlotFixture = errors.New("slot has no mount point")
	// ErrMissingManipulationHandle indicates a component that cannot be picked up.
	ErrMissingManipulationHandle = errors.New("component has no manipulation handle")
	// ErrNilComponent indicates a nil component was passed where one is required.
	ErrNilComponent = errors.New("component is nil")
)

// Kind names a family of hardware components.
type Kind string

const (
	KindRAM Kind = "ram"
	KindHDD Kind = "hdd"
)

// ParseKind converts a configuration string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindRAM, KindHDD:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown component kind %q", s)
}

// Handle is the part of a component the player grabs. Position names the
// mount point the component currently rests in, empty when it is loose.
type Handle struct {
	Position string
}

// NewHandle returns a handle for a loose component.
func NewHandle() *Handle {
	return &Handle{}
}

// Part is the constraint satisfied by every concrete component type.
type Part interface {
	comparable
	Kind() Kind
	core() *base
}

// holder is implemented by slots so a component can be taken out of the
// slot it currently occupies.
type holder interface {
	release()
}

type base struct {
	id     uuid.UUID
	handle *Handle
	owner  holder
}

func newBase(handle *Handle) base {
	return base{id: uuid.New(), handle: handle}
}

func (b *base) core() *base { return b }

// ID returns the unique identity of the component.
func (b *base) ID() uuid.UUID {
	return b.id
}

// Handle returns the manipulation handle, or ErrMissingManipulationHandle
// when the component was built without one.
func (b *base) Handle() (*Handle, error) {
	if b.handle == nil {
		return nil, ErrMissingManipulationHandle
	}
	return b.handle, nil
}

// Installed reports whether the component currently sits in a slot.
func (b *base) Installed() bool {
	return b.owner != nil
}

// RamComponent is a memory module.
type RamComponent struct {
	base
	Capacity int // GiB
}

// NewRamComponent creates a loose memory module.
func NewRamComponent(capacity int, handle *Handle) *RamComponent {
	return &RamComponent{base: newBase(handle), Capacity: capacity}
}

func (*RamComponent) Kind() Kind { return KindRAM }

// CapacityGiB returns the module capacity.
func (r *RamComponent) CapacityGiB() int { return r.Capacity }

func (r *RamComponent) String() string {
	return fmt.Sprintf("RAM(%d GiB)", r.Capacity)
}

// HddComponent is a hard disk drive.
type HddComponent struct {
	base
	Broken bool
}

// NewHddComponent creates a loose drive.
func NewHddComponent(broken bool, handle *Handle) *HddComponent {
	return &HddComponent{base: newBase(handle), Broken: broken}
}

func (*HddComponent) Kind() Kind { return KindHDD }

// IsBroken reports whether the drive is broken.
func (h *HddComponent) IsBroken() bool { return h.Broken }

func (h *HddComponent) String() string {
	if h.Broken {
		return "HDD(broken)"
	}
	return "HDD"
}
