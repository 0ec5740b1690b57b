package hardware

import "fmt"

// MountPoint is the attachment point a component snaps into.
type MountPoint struct {
	Name string
}

// NewMountPoint returns a mount point with the given name.
func NewMountPoint(name string) *MountPoint {
	return &MountPoint{Name: name}
}

// Slot holds at most one component of type T.
type Slot[T Part] struct {
	name      string
	mount     *MountPoint
	component T
	target    T
	rule      ValidityRule
}

// NewSlot creates an empty slot. A nil mount point is allowed but every
// attempt to install a component will fail with ErrMissingSlotFixture.
func NewSlot[T Part](name string, mount *MountPoint, rule ValidityRule) *Slot[T] {
	return &Slot[T]{name: name, mount: mount, rule: rule}
}

func (s *Slot[T]) Name() string {
	return s.name
}

func (s *Slot[T]) String() string {
	return s.name
}

// MountPoint returns the slot's mount point or ErrMissingSlotFixture.
func (s *Slot[T]) MountPoint() (*MountPoint, error) {
	if s.mount == nil {
		return nil, fmt.Errorf("slot %s: %w", s.name, ErrMissingSlotFixture)
	}
	return s.mount, nil
}

// Component returns the installed component, or the zero value when empty.
func (s *Slot[T]) Component() T {
	return s.component
}

// Empty reports whether no component is installed.
func (s *Slot[T]) Empty() bool {
	var zero T
	return s.component == zero
}

// SetComponent moves c into the slot. If c sits in another slot it is taken
// out of it first; a component already in this slot is left loose.
func (s *Slot[T]) SetComponent(c T) error {
	var zero T
	if c == zero {
		return fmt.Errorf("slot %s: %w", s.name, ErrNilComponent)
	}
	mount, err := s.MountPoint()
	if err != nil {
		return err
	}
	handle, err := c.core().Handle()
	if err != nil {
		return fmt.Errorf("slot %s: %w", s.name, err)
	}

	b := c.core()
	if b.owner == holder(s) {
		return nil
	}
	if b.owner != nil {
		b.owner.release()
	}
	if s.component != zero {
		s.detach()
	}

	handle.Position = mount.Name
	s.component = c
	b.owner = s
	return nil
}

// Remove takes the component out of the slot and returns it. It returns
// the zero value when the slot is empty.
func (s *Slot[T]) Remove() T {
	c := s.component
	s.detach()
	return c
}

func (s *Slot[T]) detach() {
	var zero T
	if s.component == zero {
		return
	}
	b := s.component.core()
	b.owner = nil
	if b.handle != nil {
		b.handle.Position = ""
	}
	s.component = zero
}

func (s *Slot[T]) release() {
	s.detach()
}

// Target returns the component the slot is expected to hold.
func (s *Slot[T]) Target() T {
	return s.target
}

func (s *Slot[T]) SetTarget(c T) {
	s.target = c
}

func (s *Slot[T]) Rule() ValidityRule {
	return s.rule
}

func (s *Slot[T]) SetRule(r ValidityRule) {
	s.rule = r
}

// IsComponentValid evaluates the slot's validity rule against its contents.
func (s *Slot[T]) IsComponentValid() bool {
	return evaluate(s.rule, s.component, s.target)
}

// SlotOf returns the slot currently holding c.
func SlotOf[T Part](c T) (*Slot[T], bool) {
	var zero T
	if c == zero {
		return nil, false
	}
	s, ok := c.core().owner.(*Slot[T])
	return s, ok
}
