package eventbus

import (
	"github.com/rs/zerolog"

	"datacenter/internal/hardware"
	"datacenter/internal/problem"
)

// ProblemGenerated carries a freshly generated hardware problem.
type ProblemGenerated struct {
	Problem *problem.HardwareProblem
}

// TicketAccepted is raised when the player files a correct ticket.
type TicketAccepted struct {
	Problem *problem.HardwareProblem
}

// TicketFinished is raised when the player closes the ticket after
// completing every activity.
type TicketFinished struct {
	Problem *problem.HardwareProblem
}

// ActivityChanged reports a completion change of one activity.
type ActivityChanged struct {
	Activity  *problem.Activity
	Completed bool
}

// Bus holds one topic per event kind. It lives as long as its scenario.
type Bus struct {
	HardwareProblemGenerated      *Topic[ProblemGenerated]
	AfterHardwareProblemGenerated *Topic[ProblemGenerated]
	RamInstalled                  *Topic[hardware.RamInstalled]
	RamRemoved                    *Topic[hardware.RamRemoved]
	HddInstalled                  *Topic[hardware.HddInstalled]
	HddRemoved                    *Topic[hardware.HddRemoved]
	TicketAccepted                *Topic[TicketAccepted]
	TicketFinished                *Topic[TicketFinished]
	ActivityChanged               *Topic[ActivityChanged]

	logger zerolog.Logger
}

// New creates a bus with empty topics.
func New(logger zerolog.Logger) *Bus {
	return &Bus{
		HardwareProblemGenerated:      NewTopic[ProblemGenerated]("HardwareProblemGenerated"),
		AfterHardwareProblemGenerated: NewTopic[ProblemGenerated]("AfterHardwareProblemGenerated"),
		RamInstalled:                  NewTopic[hardware.RamInstalled]("RamComponentInstalled"),
		RamRemoved:                    NewTopic[hardware.RamRemoved]("RamComponentRemoved"),
		HddInstalled:                  NewTopic[hardware.HddInstalled]("HddComponentInstalled"),
		HddRemoved:                    NewTopic[hardware.HddRemoved]("HddComponentRemoved"),
		TicketAccepted:                NewTopic[TicketAccepted]("TicketAccepted"),
		TicketFinished:                NewTopic[TicketFinished]("TicketFinished"),
		ActivityChanged:               NewTopic[ActivityChanged]("ActivityChanged"),
		logger:                        logger,
	}
}

// AttachProblem subscribes the problem's four install/remove handlers.
func (b *Bus) AttachProblem(t problem.Type) Subscriptions {
	b.logger.Debug().Str("type", string(t.Name())).Msg("attaching problem handlers")
	return Subscriptions{
		b.RamInstalled.Subscribe(t.OnRamComponentInstalled),
		b.RamRemoved.Subscribe(t.OnRamComponentRemoved),
		b.HddInstalled.Subscribe(t.OnHddComponentInstalled),
		b.HddRemoved.Subscribe(t.OnHddComponentRemoved),
	}
}

// Close drops every subscriber. The bus stays usable but empty.
func (b *Bus) Close() {
	b.HardwareProblemGenerated.reset()
	b.AfterHardwareProblemGenerated.reset()
	b.RamInstalled.reset()
	b.RamRemoved.reset()
	b.HddInstalled.reset()
	b.HddRemoved.reset()
	b.TicketAccepted.reset()
	b.TicketFinished.reset()
	b.ActivityChanged.reset()
	b.logger.Debug().Msg("event bus closed")
}
