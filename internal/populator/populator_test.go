package populator

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datacenter/internal/eventbus"
	"datacenter/internal/hardware"
	"datacenter/internal/problem"
	"datacenter/internal/random"
	"datacenter/internal/topology"
)

var _ problem.Populator = (*Populator)(nil)

func templates() (*Template, *Template) {
	return &Template{Kind: hardware.KindRAM, Grabbable: true}, &Template{Kind: hardware.KindHDD, Grabbable: true}
}

func newDatacenter() *topology.Datacenter {
	dc := topology.NewDatacenter()
	for c := 0; c < 2; c++ {
		container := topology.NewContainer(fmt.Sprintf("ServerContainer%d", c))
		for s := 0; s < 2; s++ {
			container.AddServer(topology.NewServerWithSlots(fmt.Sprintf("Server%d", s), 4, 6))
		}
		dc.AddContainer(container)
	}
	return dc
}

func filledSlots[T hardware.Part](slots []*hardware.Slot[T]) []int {
	var out []int
	for i, slot := range slots {
		if !slot.Empty() {
			out = append(out, i)
		}
	}
	return out
}

func TestCreateComponent_Templates(t *testing.T) {
	ram, hdd := templates()

	tests := []struct {
		name   string
		ram    *Template
		hdd    *Template
		ramErr error
		hddErr error
	}{
		{"configured", ram, hdd, nil, nil},
		{"missing", nil, nil, ErrMissingPrefabReference, ErrMissingPrefabReference},
		{"swapped", hdd, ram, ErrInvalidPrefabType, ErrInvalidPrefabType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(topology.NewDatacenter(), random.New(0), tt.ram, tt.hdd, zerolog.Nop())

			r, err := p.CreateRamComponent(16)
			if tt.ramErr != nil {
				assert.ErrorIs(t, err, tt.ramErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, 16, r.Capacity)
			}

			h, err := p.CreateHddComponent(true)
			if tt.hddErr != nil {
				assert.ErrorIs(t, err, tt.hddErr)
			} else {
				require.NoError(t, err)
				assert.True(t, h.IsBroken())
			}
		})
	}
}

func TestCreateComponent_NotGrabbable(t *testing.T) {
	p := New(topology.NewDatacenter(), random.New(0), &Template{Kind: hardware.KindRAM}, nil, zerolog.Nop())

	ram, err := p.CreateRamComponent(8)
	require.NoError(t, err)
	_, err = ram.Handle()
	assert.ErrorIs(t, err, hardware.ErrMissingManipulationHandle)

	server := topology.NewServerWithSlots("Server0", 2, 0)
	err = p.PopulateRam(server)
	assert.ErrorIs(t, err, hardware.ErrMissingManipulationHandle)
}

func TestPopulateRam(t *testing.T) {
	tests := []struct {
		name     string
		draws    []int
		filled   []int
		capacity int
	}{
		{"half mode", []int{0, 0}, []int{1, 3}, 8},
		{"all slots", []int{1, 2}, []int{0, 1, 2, 3}, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ram, hdd := templates()
			p := New(topology.NewDatacenter(), random.NewSequence(tt.draws...), ram, hdd, zerolog.Nop())
			server := topology.NewServerWithSlots("Server0", 4, 0)

			require.NoError(t, p.PopulateRam(server))

			slots := server.RamSlots()
			assert.Equal(t, tt.filled, filledSlots(slots))
			for _, i := range tt.filled {
				assert.Equal(t, tt.capacity, slots[i].Component().Capacity)
				assert.Same(t, slots[i].Component(), slots[i].Target())
			}
			assert.True(t, server.AreAllComponentsValid())
		})
	}
}

func TestPopulateHdd(t *testing.T) {
	ram, hdd := templates()
	p := New(topology.NewDatacenter(), random.NewSequence(2), ram, hdd, zerolog.Nop())
	server := topology.NewServerWithSlots("Server0", 0, 6)

	require.NoError(t, p.PopulateHdd(server))

	slots := server.HddSlots()
	assert.Equal(t, []int{0, 1, 2}, filledSlots(slots))
	for _, slot := range slots[:3] {
		assert.False(t, slot.Component().IsBroken())
	}
	assert.True(t, server.AreAllComponentsValid())
}

func TestPopulateHdd_NoSlotsStillDraws(t *testing.T) {
	ram, hdd := templates()
	seq := random.NewSequence(0)
	p := New(topology.NewDatacenter(), seq, ram, hdd, zerolog.Nop())

	require.NoError(t, p.PopulateHdd(topology.NewServerWithSlots("Server0", 4, 0)))
	assert.Equal(t, 1, seq.Drawn())
}

func TestPopulate_SeededSource(t *testing.T) {
	t.Run("seed 1 fills every other ram slot", func(t *testing.T) {
		ram, hdd := templates()
		p := New(topology.NewDatacenter(), random.New(1), ram, hdd, zerolog.Nop())
		server := topology.NewServerWithSlots("Server0", 4, 0)

		require.NoError(t, p.PopulateRam(server))
		assert.Equal(t, []int{1, 3}, filledSlots(server.RamSlots()))
		assert.Equal(t, 16, server.InstalledRamCapacity())
	})

	t.Run("seed 0 fills all ram slots", func(t *testing.T) {
		ram, hdd := templates()
		p := New(topology.NewDatacenter(), random.New(0), ram, hdd, zerolog.Nop())
		server := topology.NewServerWithSlots("Server0", 4, 0)

		require.NoError(t, p.PopulateRam(server))
		assert.Equal(t, []int{0, 1, 2, 3}, filledSlots(server.RamSlots()))
	})

	t.Run("seed 8 fills all drive slots", func(t *testing.T) {
		ram, hdd := templates()
		p := New(topology.NewDatacenter(), random.New(8), ram, hdd, zerolog.Nop())
		server := topology.NewServerWithSlots("Server0", 0, 8)

		require.NoError(t, p.PopulateHdd(server))
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, filledSlots(server.HddSlots()))
	})
}

func TestOnHardwareProblemGenerated(t *testing.T) {
	dc := newDatacenter()
	ram, hdd := templates()
	rng := random.New(7)
	p := New(dc, rng, ram, hdd, zerolog.Nop())

	loc, ok := dc.Find("ServerContainer1", "Server0")
	require.True(t, ok)
	target := loc.Server.RamSlots()[1:3]
	iar, err := problem.NewInstallAdditionalRam(loc, target, 16)
	require.NoError(t, err)
	hp := &problem.HardwareProblem{Location: loc, Type: iar}

	bus := eventbus.New(zerolog.Nop())
	bus.HardwareProblemGenerated.Subscribe(p.OnHardwareProblemGenerated)
	require.NoError(t, bus.HardwareProblemGenerated.Publish(eventbus.ProblemGenerated{Problem: hp}))

	for _, server := range dc.Servers() {
		assert.NotEmpty(t, topology.Components[*hardware.RamComponent](server), server.Name())
		assert.NotEmpty(t, topology.Components[*hardware.HddComponent](server), server.Name())
	}

	slots := loc.Server.RamSlots()
	assert.Equal(t, []int{0, 3}, filledSlots(slots))
	assert.Equal(t, 32, loc.Server.InstalledRamCapacity())
	assert.False(t, loc.Server.AreAllComponentsValid())
}
