package problem

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datacenter/internal/hardware"
	"datacenter/internal/topology"
)

// fakePopulator creates components without templates and records which
// servers it was asked to fill.
type fakePopulator struct {
	ramFilled []*topology.Server
	hddFilled []*topology.Server
	failRam   error
}

func (f *fakePopulator) CreateRamComponent(capacity int) (*hardware.RamComponent, error) {
	if f.failRam != nil {
		return nil, f.failRam
	}
	return hardware.NewRamComponent(capacity, hardware.NewHandle()), nil
}

func (f *fakePopulator) CreateHddComponent(broken bool) (*hardware.HddComponent, error) {
	return hardware.NewHddComponent(broken, hardware.NewHandle()), nil
}

func (f *fakePopulator) PopulateRam(server *topology.Server) error {
	f.ramFilled = append(f.ramFilled, server)
	return nil
}

func (f *fakePopulator) PopulateHdd(server *topology.Server) error {
	f.hddFilled = append(f.hddFilled, server)
	return nil
}

func newLocation(ramSlots, hddSlots int) topology.Location {
	server := topology.NewServerWithSlots("Server0", ramSlots, hddSlots)
	return topology.Location{
		Container: topology.NewContainer("ServerContainer0", server),
		Server:    server,
	}
}

func newDatacenter(containers, servers, ramSlots, hddSlots int) *topology.Datacenter {
	dc := topology.NewDatacenter()
	for c := 0; c < containers; c++ {
		container := topology.NewContainer(fmt.Sprintf("ServerContainer%d", c))
		for s := 0; s < servers; s++ {
			container.AddServer(topology.NewServerWithSlots(fmt.Sprintf("Server%d", s), ramSlots, hddSlots))
		}
		dc.AddContainer(container)
	}
	return dc
}

// install moves c into slot and returns the event the interaction layer
// would publish.
func installRam(t *testing.T, slot *hardware.Slot[*hardware.RamComponent], c *hardware.RamComponent) hardware.RamInstalled {
	t.Helper()
	require.NoError(t, slot.SetComponent(c))
	return hardware.RamInstalled{Component: c, Slot: slot}
}

func removeRam(slot *hardware.Slot[*hardware.RamComponent]) hardware.RamRemoved {
	return hardware.RamRemoved{Component: slot.Remove(), Slot: slot}
}

func installHdd(t *testing.T, slot *hardware.Slot[*hardware.HddComponent], c *hardware.HddComponent) hardware.HddInstalled {
	t.Helper()
	require.NoError(t, slot.SetComponent(c))
	return hardware.HddInstalled{Component: c, Slot: slot}
}

func removeHdd(slot *hardware.Slot[*hardware.HddComponent]) hardware.HddRemoved {
	return hardware.HddRemoved{Component: slot.Remove(), Slot: slot}
}

func completion(activities []*Activity) []bool {
	out := make([]bool, len(activities))
	for i, a := range activities {
		out[i] = a.Completed()
	}
	return out
}

func TestJoinSlotNames(t *testing.T) {
	server := topology.NewServerWithSlots("Server0", 3, 0)
	slots := server.RamSlots()

	tests := []struct {
		name  string
		slots []*hardware.Slot[*hardware.RamComponent]
		want  string
	}{
		{"none", nil, ""},
		{"one", slots[:1], "RamSlot0"},
		{"two", slots[:2], "RamSlot0 and RamSlot1"},
		{"three", slots, "RamSlot0, RamSlot1 and RamSlot2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, joinSlotNames(tt.slots))
		})
	}
}

func TestConstructors_RejectNilSlots(t *testing.T) {
	loc := newLocation(2, 2)
	ram := append(loc.Server.RamSlots()[:1], nil)
	hdd := append(loc.Server.HddSlots()[:1], nil)

	_, err := NewInstallAdditionalRam(loc, ram, 8)
	assert.ErrorIs(t, err, ErrInvalidSlotReference)
	_, err = NewUpgradeRam(loc, ram, 16)
	assert.ErrorIs(t, err, ErrInvalidSlotReference)
	_, err = NewInstallAdditionalHdd(loc, hdd)
	assert.ErrorIs(t, err, ErrInvalidSlotReference)
	_, err = NewReplaceBrokenHdd(loc, hdd)
	assert.ErrorIs(t, err, ErrInvalidSlotReference)
}

func TestHandlers_RejectNilComponent(t *testing.T) {
	loc := newLocation(4, 4)
	ramSlot := loc.Server.RamSlots()[0]
	hddSlot := loc.Server.HddSlots()[0]

	iar, err := NewInstallAdditionalRam(loc, loc.Server.RamSlots()[:1], 8)
	require.NoError(t, err)
	ur, err := NewUpgradeRam(loc, loc.Server.RamSlots()[:1], 16)
	require.NoError(t, err)
	iah, err := NewInstallAdditionalHdd(loc, loc.Server.HddSlots()[:1])
	require.NoError(t, err)
	rbh, err := NewReplaceBrokenHdd(loc, loc.Server.HddSlots()[:1])
	require.NoError(t, err)

	for _, p := range []Type{iar, ur, iah, rbh} {
		t.Run(string(p.Name()), func(t *testing.T) {
			assert.ErrorIs(t, p.OnRamComponentInstalled(hardware.RamInstalled{Slot: ramSlot}), ErrNullComponentInEvent)
			assert.ErrorIs(t, p.OnRamComponentRemoved(hardware.RamRemoved{Slot: ramSlot}), ErrNullComponentInEvent)
			assert.ErrorIs(t, p.OnHddComponentInstalled(hardware.HddInstalled{Slot: hddSlot}), ErrNullComponentInEvent)
			assert.ErrorIs(t, p.OnHddComponentRemoved(hardware.HddRemoved{Slot: hddSlot}), ErrNullComponentInEvent)
			for _, a := range p.Activities() {
				assert.False(t, a.Completed())
			}
		})
	}
}

func TestActivityListener(t *testing.T) {
	loc := newLocation(4, 0)
	slot := loc.Server.RamSlots()[0]
	p, err := NewInstallAdditionalRam(loc, []*hardware.Slot[*hardware.RamComponent]{slot}, 8)
	require.NoError(t, err)

	var changed []bool
	p.SetActivityListener(func(a *Activity) {
		changed = append(changed, a.Completed())
	})

	ram := hardware.NewRamComponent(8, hardware.NewHandle())
	require.NoError(t, p.OnRamComponentInstalled(installRam(t, slot, ram)))
	// A second install event for an already completed activity is not a change.
	require.NoError(t, p.OnRamComponentInstalled(hardware.RamInstalled{Component: ram, Slot: slot}))
	require.NoError(t, p.OnRamComponentRemoved(removeRam(slot)))

	assert.Equal(t, []bool{true, false}, changed)
}

func TestAllCompleted(t *testing.T) {
	a, b := NewActivity("a"), NewActivity("b")
	assert.False(t, AllCompleted([]*Activity{a, b}))

	assert.True(t, a.SetCompleted(true))
	assert.False(t, a.SetCompleted(true))
	b.SetCompleted(true)
	assert.True(t, AllCompleted([]*Activity{a, b}))
	assert.True(t, AllCompleted(nil))
}
