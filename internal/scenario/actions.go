package scenario

import (
	"context"
	"errors"
	"fmt"

	"datacenter/internal/eventbus"
	"datacenter/internal/hardware"
	"datacenter/internal/problem"
	"datacenter/internal/ratelimit"
	"datacenter/internal/script"
	"datacenter/internal/topology"
)

type benchKey struct {
	server *topology.Server
	slot   string
}

// bench holds components taken out of a slot, keyed by where they came from.
type bench[T hardware.Part] map[benchKey]T

// Locate resolves a container and server by name. Empty names select the
// problem server.
func (s *Scenario) Locate(container, server string) (topology.Location, error) {
	if s.problem == nil {
		return topology.Location{}, ErrNotStarted
	}
	if container == "" && server == "" {
		return s.problem.Location, nil
	}
	loc, ok := s.dc.Find(container, server)
	if !ok {
		return topology.Location{}, fmt.Errorf("%w: %s/%s", ErrUnknownServer, container, server)
	}
	return loc, nil
}

// InstallRam places c into the named slot, publishing a removal for the
// slot c leaves and for any module it displaces before the installation.
func (s *Scenario) InstallRam(loc topology.Location, slot string, c *hardware.RamComponent) error {
	target, ok := loc.Server.RamSlot(slot)
	if !ok {
		return fmt.Errorf("%w: %s on %s", ErrUnknownSlot, slot, loc)
	}
	if c == nil {
		return hardware.ErrNilComponent
	}
	s.logger.Debug().Str("server", loc.String()).Str("slot", slot).Stringer("component", c).Msg("installing ram")
	return install(target, c, s.ramBench, loc.Server, s.bus.RamInstalled, s.bus.RamRemoved)
}

// InstallHdd is InstallRam for drives.
func (s *Scenario) InstallHdd(loc topology.Location, slot string, c *hardware.HddComponent) error {
	target, ok := loc.Server.HddSlot(slot)
	if !ok {
		return fmt.Errorf("%w: %s on %s", ErrUnknownSlot, slot, loc)
	}
	if c == nil {
		return hardware.ErrNilComponent
	}
	s.logger.Debug().Str("server", loc.String()).Str("slot", slot).Stringer("component", c).Msg("installing hdd")
	return install(target, c, s.hddBench, loc.Server, s.bus.HddInstalled, s.bus.HddRemoved)
}

// RemoveRam takes the module out of the named slot and puts it on the bench.
func (s *Scenario) RemoveRam(loc topology.Location, slot string) (*hardware.RamComponent, error) {
	from, ok := loc.Server.RamSlot(slot)
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrUnknownSlot, slot, loc)
	}
	return remove(from, s.ramBench, loc.Server, s.bus.RamRemoved)
}

// RemoveHdd takes the drive out of the named slot and puts it on the bench.
func (s *Scenario) RemoveHdd(loc topology.Location, slot string) (*hardware.HddComponent, error) {
	from, ok := loc.Server.HddSlot(slot)
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrUnknownSlot, slot, loc)
	}
	return remove(from, s.hddBench, loc.Server, s.bus.HddRemoved)
}

func install[T hardware.Part](
	slot *hardware.Slot[T],
	c T,
	b bench[T],
	server *topology.Server,
	installed *eventbus.Topic[hardware.InstalledEvent[T]],
	removed *eventbus.Topic[hardware.RemovedEvent[T]],
) error {
	var zero T
	if c == zero {
		return hardware.ErrNilComponent
	}
	from, moved := hardware.SlotOf(c)
	if moved && from == slot {
		return nil
	}
	displaced := slot.Component()

	if err := slot.SetComponent(c); err != nil {
		return err
	}
	for k, v := range b {
		if v == c {
			delete(b, k)
		}
	}

	var errs []error
	if moved {
		errs = append(errs, removed.Publish(hardware.RemovedEvent[T]{Component: c, Slot: from}))
	}
	if displaced != zero {
		b[benchKey{server, slot.Name()}] = displaced
		errs = append(errs, removed.Publish(hardware.RemovedEvent[T]{Component: displaced, Slot: slot}))
	}
	errs = append(errs, installed.Publish(hardware.InstalledEvent[T]{Component: c, Slot: slot}))
	return errors.Join(errs...)
}

func remove[T hardware.Part](
	slot *hardware.Slot[T],
	b bench[T],
	server *topology.Server,
	removed *eventbus.Topic[hardware.RemovedEvent[T]],
) (T, error) {
	var zero T
	c := slot.Remove()
	if c == zero {
		return zero, fmt.Errorf("%w: %s", ErrEmptySlot, slot.Name())
	}
	b[benchKey{server, slot.Name()}] = c
	return c, removed.Publish(hardware.RemovedEvent[T]{Component: c, Slot: slot})
}

// pick returns the component in the named slot, or the one last taken out
// of it.
func pick[T hardware.Part](slot *hardware.Slot[T], b bench[T], server *topology.Server) (T, bool) {
	var zero T
	if c := slot.Component(); c != zero {
		return c, true
	}
	c, ok := b[benchKey{server, slot.Name()}]
	return c, ok
}

// SetPower switches a server on or off. On the problem server, switching
// off completes the shut-off activity; switching on completes the turn-on
// activity once everything before it is done and every slot is valid.
func (s *Scenario) SetPower(loc topology.Location, online bool) error {
	if s.problem == nil {
		return ErrNotStarted
	}
	loc.Server.SetOnline(online)
	s.logger.Debug().Str("server", loc.String()).Bool("online", online).Msg("power switched")

	if loc.Server != s.problem.Location.Server {
		return nil
	}
	if !online {
		s.setActivity(s.shutOff, true)
		s.setActivity(s.turnOn, false)
		return nil
	}
	if s.shutOff.Completed() &&
		problem.AllCompleted(s.problem.Type.Activities()) &&
		loc.Server.AreAllComponentsValid() {
		s.setActivity(s.turnOn, true)
	}
	return nil
}

// Apply performs one scripted action.
func (s *Scenario) Apply(a script.Action) error {
	loc, err := s.Locate(a.Container, a.Server)
	if err != nil {
		return err
	}

	switch a.Op {
	case script.OpInstall:
		return s.applyInstall(loc, a)
	case script.OpRemove:
		if _, ok := loc.Server.RamSlot(a.Slot); ok {
			_, err := s.RemoveRam(loc, a.Slot)
			return err
		}
		_, err := s.RemoveHdd(loc, a.Slot)
		return err
	case script.OpPower:
		return s.SetPower(loc, a.Online)
	case script.OpTicket:
		fb, err := s.SubmitTicket(a.Answer)
		if err != nil {
			return err
		}
		s.logger.Info().Bool("ok", fb.OK).Msg(fb.Message)
		return nil
	case script.OpClose:
		fb, err := s.CloseTicket()
		if err != nil {
			return err
		}
		s.logger.Info().Bool("ok", fb.OK).Msg(fb.Message)
		return nil
	}
	return fmt.Errorf("%w: %q", script.ErrUnknownAction, a.Op)
}

func (s *Scenario) applyInstall(loc topology.Location, a script.Action) error {
	if _, ok := loc.Server.RamSlot(a.Slot); ok {
		c, err := s.ramFor(loc, a)
		if err != nil {
			return err
		}
		return s.InstallRam(loc, a.Slot, c)
	}
	if _, ok := loc.Server.HddSlot(a.Slot); ok {
		c, err := s.hddFor(loc, a)
		if err != nil {
			return err
		}
		return s.InstallHdd(loc, a.Slot, c)
	}
	return fmt.Errorf("%w: %s on %s", ErrUnknownSlot, a.Slot, loc)
}

func (s *Scenario) ramFor(loc topology.Location, a script.Action) (*hardware.RamComponent, error) {
	if a.Component != nil {
		if a.Component.Kind != hardware.KindRAM {
			return nil, fmt.Errorf("%w: %s into %s", ErrKindMismatch, a.Component.Kind, a.Slot)
		}
		return s.populator.CreateRamComponent(a.Component.Capacity)
	}
	from, ok := loc.Server.RamSlot(a.From)
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrUnknownSlot, a.From, loc)
	}
	c, ok := pick(from, s.ramBench, loc.Server)
	if !ok {
		return nil, fmt.Errorf("%w: nothing taken from %s", ErrNoComponent, a.From)
	}
	return c, nil
}

func (s *Scenario) hddFor(loc topology.Location, a script.Action) (*hardware.HddComponent, error) {
	if a.Component != nil {
		if a.Component.Kind != hardware.KindHDD {
			return nil, fmt.Errorf("%w: %s into %s", ErrKindMismatch, a.Component.Kind, a.Slot)
		}
		return s.populator.CreateHddComponent(a.Component.Broken)
	}
	from, ok := loc.Server.HddSlot(a.From)
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrUnknownSlot, a.From, loc)
	}
	c, ok := pick(from, s.hddBench, loc.Server)
	if !ok {
		return nil, fmt.Errorf("%w: nothing taken from %s", ErrNoComponent, a.From)
	}
	return c, nil
}

// Replay applies actions in order, waiting on pacer before each one. A nil
// pacer replays unpaced. after, when set, runs after every applied action.
// It stops at the first failing action.
func (s *Scenario) Replay(ctx context.Context, actions []script.Action, pacer *ratelimit.Pacer, after func(script.Action)) error {
	for i, a := range actions {
		if pacer != nil {
			if err := pacer.Wait(ctx); err != nil {
				return err
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Apply(a); err != nil {
			return fmt.Errorf("action %d (%s): %w", i, a, err)
		}
		if after != nil {
			after(a)
		}
	}
	return nil
}
