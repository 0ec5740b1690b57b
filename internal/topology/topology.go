// Package topology arranges servers into containers and a datacenter.
package topology

import (
	"fmt"

	"datacenter/internal/hardware"
)

// Server is an ordered collection of component slots with a power state.
type Server struct {
	name     string
	online   bool
	ramSlots []*hardware.Slot[*hardware.RamComponent]
	hddSlots []*hardware.Slot[*hardware.HddComponent]
}

// NewServer creates an online server without slots.
func NewServer(name string) *Server {
	return &Server{name: name, online: true}
}

// NewServerWithSlots creates an online server with mounted, empty slots
// named RamSlot0..n and HddSlot0..n.
func NewServerWithSlots(name string, ramSlots, hddSlots int) *Server {
	s := NewServer(name)
	for i := 0; i < ramSlots; i++ {
		slotName := fmt.Sprintf("RamSlot%d", i)
		s.AddRamSlot(hardware.NewSlot[*hardware.RamComponent](slotName, hardware.NewMountPoint(slotName), hardware.SameCapacity()))
	}
	for i := 0; i < hddSlots; i++ {
		slotName := fmt.Sprintf("HddSlot%d", i)
		s.AddHddSlot(hardware.NewSlot[*hardware.HddComponent](slotName, hardware.NewMountPoint(slotName), hardware.ExactMatch()))
	}
	return s
}

func (s *Server) Name() string { return s.name }

func (s *Server) String() string { return s.name }

func (s *Server) IsOnline() bool { return s.online }

func (s *Server) SetOnline(online bool) { s.online = online }

func (s *Server) AddRamSlot(slot *hardware.Slot[*hardware.RamComponent]) {
	s.ramSlots = append(s.ramSlots, slot)
}

func (s *Server) AddHddSlot(slot *hardware.Slot[*hardware.HddComponent]) {
	s.hddSlots = append(s.hddSlots, slot)
}

// RamSlots returns the RAM slots in declaration order.
func (s *Server) RamSlots() []*hardware.Slot[*hardware.RamComponent] {
	return append([]*hardware.Slot[*hardware.RamComponent](nil), s.ramSlots...)
}

// HddSlots returns the HDD slots in declaration order.
func (s *Server) HddSlots() []*hardware.Slot[*hardware.HddComponent] {
	return append([]*hardware.Slot[*hardware.HddComponent](nil), s.hddSlots...)
}

// ComponentSlots returns the server's slots for component type T in
// declaration order.
func ComponentSlots[T hardware.Part](s *Server) []*hardware.Slot[T] {
	var zero T
	switch any(zero).(type) {
	case *hardware.RamComponent:
		return any(s.RamSlots()).([]*hardware.Slot[T])
	case *hardware.HddComponent:
		return any(s.HddSlots()).([]*hardware.Slot[T])
	}
	return nil
}

// Components returns the installed components of type T in slot order.
func Components[T hardware.Part](s *Server) []T {
	var out []T
	for _, slot := range ComponentSlots[T](s) {
		if !slot.Empty() {
			out = append(out, slot.Component())
		}
	}
	return out
}

// RamSlot finds a RAM slot by name.
func (s *Server) RamSlot(name string) (*hardware.Slot[*hardware.RamComponent], bool) {
	return findSlot(s.ramSlots, name)
}

// HddSlot finds an HDD slot by name.
func (s *Server) HddSlot(name string) (*hardware.Slot[*hardware.HddComponent], bool) {
	return findSlot(s.hddSlots, name)
}

func findSlot[T hardware.Part](slots []*hardware.Slot[T], name string) (*hardware.Slot[T], bool) {
	for _, slot := range slots {
		if slot.Name() == name {
			return slot, true
		}
	}
	return nil, false
}

// InstalledRamCapacity sums the capacity of every installed memory module.
func (s *Server) InstalledRamCapacity() int {
	total := 0
	for _, ram := range Components[*hardware.RamComponent](s) {
		total += ram.Capacity
	}
	return total
}

// AreAllComponentsValid reports whether every RAM and HDD slot satisfies its
// validity rule. The power state is not considered.
func (s *Server) AreAllComponentsValid() bool {
	for _, slot := range s.ramSlots {
		if !slot.IsComponentValid() {
			return false
		}
	}
	for _, slot := range s.hddSlots {
		if !slot.IsComponentValid() {
			return false
		}
	}
	return true
}

// Container groups servers.
type Container struct {
	name    string
	servers []*Server
}

func NewContainer(name string, servers ...*Server) *Container {
	return &Container{name: name, servers: servers}
}

func (c *Container) Name() string { return c.name }

func (c *Container) String() string { return c.name }

func (c *Container) AddServer(s *Server) {
	c.servers = append(c.servers, s)
}

// Servers returns the servers in declaration order.
func (c *Container) Servers() []*Server {
	return append([]*Server(nil), c.servers...)
}

// Location identifies one server inside one container. Two locations are
// equal when they reference the same container and server.
type Location struct {
	Container *Container
	Server    *Server
}

func (l Location) String() string {
	if l.Container == nil || l.Server == nil {
		return "<nowhere>"
	}
	return l.Container.name + "/" + l.Server.name
}

// Datacenter is the root of the hierarchy.
type Datacenter struct {
	containers []*Container
}

func NewDatacenter(containers ...*Container) *Datacenter {
	return &Datacenter{containers: containers}
}

func (d *Datacenter) AddContainer(c *Container) {
	d.containers = append(d.containers, c)
}

// Containers returns the containers in declaration order.
func (d *Datacenter) Containers() []*Container {
	return append([]*Container(nil), d.containers...)
}

// Servers returns every server, depth first.
func (d *Datacenter) Servers() []*Server {
	var out []*Server
	for _, c := range d.containers {
		out = append(out, c.servers...)
	}
	return out
}

// Find returns the location of the named server in the named container.
func (d *Datacenter) Find(container, server string) (Location, bool) {
	for _, c := range d.containers {
		if c.name != container {
			continue
		}
		for _, s := range c.servers {
			if s.name == server {
				return Location{Container: c, Server: s}, true
			}
		}
	}
	return Location{}, false
}
