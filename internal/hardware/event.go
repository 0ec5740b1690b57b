package hardware

// InstalledEvent reports that Component was placed into Slot.
type InstalledEvent[T Part] struct {
	Component T
	Slot      *Slot[T]
}

// RemovedEvent reports that Component was taken out of Slot.
type RemovedEvent[T Part] struct {
	Component T
	Slot      *Slot[T]
}

type (
	RamInstalled = InstalledEvent[*RamComponent]
	RamRemoved   = RemovedEvent[*RamComponent]
	HddInstalled = InstalledEvent[*HddComponent]
	HddRemoved   = RemovedEvent[*HddComponent]
)
