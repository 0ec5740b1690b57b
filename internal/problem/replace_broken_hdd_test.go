package problem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datacenter/internal/hardware"
	"datacenter/internal/random"
)

func TestGenerateReplaceBrokenHdd(t *testing.T) {
	tests := []struct {
		name     string
		hddSlots int
		draws    []int
		want     string
	}{
		{"six slots", 6, []int{2, 0}, "HddSlot2 and HddSlot3"},
		{"five slots", 5, []int{0, 1}, "HddSlot0 and HddSlot4"},
		{"one slot", 1, []int{0}, "HddSlot0"},
		{"no slots", 0, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := random.NewSequence(tt.draws...)
			got, err := GenerateReplaceBrokenHdd(newLocation(0, tt.hddSlots), seq)
			require.NoError(t, err)
			assert.Equal(t, len(tt.draws), seq.Drawn())
			assert.Equal(t, tt.want, joinSlotNames(got.(*ReplaceBrokenHdd).Slots()))
		})
	}
}

func TestReplaceBrokenHdd_Message(t *testing.T) {
	loc := newLocation(0, 4)
	slots := loc.Server.HddSlots()

	one, err := NewReplaceBrokenHdd(loc, slots[:1])
	require.NoError(t, err)
	assert.Equal(t,
		"An hard disk drive (HDD) has broken down in server 'Server0' in 'ServerContainer0'.\n\nReplace the HDD in HddSlot0 with a new drive.",
		one.Message())

	two, err := NewReplaceBrokenHdd(loc, []*hardware.Slot[*hardware.HddComponent]{slots[0], slots[3]})
	require.NoError(t, err)
	assert.Equal(t,
		"Multiple hard disk drives (HDDs) have broken down in server 'Server0' in 'ServerContainer0'.\n\nReplace the HDDs in HddSlot0 and HddSlot3 with new drives.",
		two.Message())
}

func TestReplaceBrokenHdd_PopulateServer(t *testing.T) {
	loc := newLocation(2, 4)
	slots := loc.Server.HddSlots()
	p, err := NewReplaceBrokenHdd(loc, []*hardware.Slot[*hardware.HddComponent]{slots[1]})
	require.NoError(t, err)
	require.NoError(t, p.PopulateServer(&fakePopulator{}))

	for i, slot := range slots {
		require.False(t, slot.Empty())
		if i == 1 {
			assert.True(t, slot.Component().IsBroken())
			assert.Equal(t, hardware.NonBroken(), slot.Rule())
			assert.False(t, slot.IsComponentValid())
		} else {
			assert.False(t, slot.Component().IsBroken())
			assert.True(t, slot.IsComponentValid())
		}
	}

	require.NoError(t, slots[1].SetComponent(hardware.NewHddComponent(false, hardware.NewHandle())))
	assert.True(t, loc.Server.AreAllComponentsValid())
}

func TestReplaceBrokenHdd_Events(t *testing.T) {
	loc := newLocation(0, 2)
	slot := loc.Server.HddSlots()[0]
	p, err := NewReplaceBrokenHdd(loc, []*hardware.Slot[*hardware.HddComponent]{slot})
	require.NoError(t, err)
	require.NoError(t, p.PopulateServer(&fakePopulator{}))

	acts := p.Activities()
	require.Len(t, acts, 2)
	assert.Equal(t, "Remove the broken HDD from HddSlot0.", acts[0].Name)
	assert.Equal(t, "Install a replacement HDD into HddSlot0.", acts[1].Name)

	broken := slot.Component()
	require.NoError(t, p.OnHddComponentRemoved(removeHdd(slot)))
	assert.Equal(t, []bool{true, false}, completion(p.Activities()), "removing the broken drive")

	working := hardware.NewHddComponent(false, hardware.NewHandle())
	require.NoError(t, p.OnHddComponentInstalled(installHdd(t, slot, working)))
	assert.Equal(t, []bool{true, true}, completion(p.Activities()), "installing a working drive")

	require.NoError(t, p.OnHddComponentRemoved(removeHdd(slot)))
	assert.Equal(t, []bool{true, false}, completion(p.Activities()), "removing the working drive")

	require.NoError(t, p.OnHddComponentInstalled(installHdd(t, slot, broken)))
	assert.Equal(t, []bool{false, false}, completion(p.Activities()), "reinstalling the broken drive")
}

func TestReplaceBrokenHdd_IgnoresOtherSlots(t *testing.T) {
	loc := newLocation(0, 2)
	slots := loc.Server.HddSlots()
	p, err := NewReplaceBrokenHdd(loc, slots[:1])
	require.NoError(t, err)
	require.NoError(t, p.PopulateServer(&fakePopulator{}))

	require.NoError(t, p.OnHddComponentRemoved(removeHdd(slots[1])))
	assert.Equal(t, []bool{false, false}, completion(p.Activities()))
}
