// Package scenario wires a datacenter, its event bus, the problem generator,
// the populator and the ticket desk into one playable session.
package scenario

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"datacenter/internal/config"
	"datacenter/internal/eventbus"
	"datacenter/internal/hardware"
	"datacenter/internal/populator"
	"datacenter/internal/problem"
	"datacenter/internal/random"
	"datacenter/internal/ticket"
	"datacenter/internal/topology"
)

var (
	ErrNotStarted     = errors.New("scenario has not been started")
	ErrAlreadyStarted = errors.New("scenario has already been started")
	ErrUnknownServer  = errors.New("unknown server")
	ErrUnknownSlot    = errors.New("unknown slot")
	ErrEmptySlot      = errors.New("slot is empty")
	ErrNoComponent    = errors.New("no component to install")
	ErrKindMismatch   = errors.New("component does not fit slot")
)

const (
	ShutOffActivity = "Shut the server off."
	TurnOnActivity  = "Turn the server on."
)

// Scenario is one session: a generated problem on a populated datacenter.
// It is not safe for concurrent use.
type Scenario struct {
	dc        *topology.Datacenter
	bus       *eventbus.Bus
	registry  *problem.Registry
	generator *problem.Generator
	populator *populator.Populator
	desk      *ticket.Desk
	rng       random.Rand
	types     []problem.TypeName
	logger    zerolog.Logger

	subs    eventbus.Subscriptions
	problem *problem.HardwareProblem
	shutOff *problem.Activity
	turnOn  *problem.Activity

	ramBench bench[*hardware.RamComponent]
	hddBench bench[*hardware.HddComponent]
}

// New builds a scenario from cfg. rng drives both generation and
// population, so the same seed reproduces the same session.
func New(cfg *config.Config, rng random.Rand, logger zerolog.Logger) (*Scenario, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	registry := problem.DefaultRegistry()
	types, err := registry.ParseTypes(cfg.ProblemTypes)
	if err != nil {
		return nil, err
	}

	dc := BuildDatacenter(cfg.Datacenter)
	bus := eventbus.New(logger)
	s := &Scenario{
		dc:        dc,
		bus:       bus,
		registry:  registry,
		generator: problem.NewGenerator(dc, registry, logger),
		populator: populator.New(dc, rng, template(cfg.Templates.Ram), template(cfg.Templates.Hdd), logger),
		desk:      ticket.NewDesk(bus, dc, registry, logger),
		rng:       rng,
		types:     types,
		logger:    logger,
		ramBench:  make(bench[*hardware.RamComponent]),
		hddBench:  make(bench[*hardware.HddComponent]),
	}
	if len(s.types) == 0 {
		s.types = s.generator.AllProblemTypes()
	}

	s.subs = eventbus.Subscriptions{
		bus.HardwareProblemGenerated.Subscribe(s.populator.OnHardwareProblemGenerated),
		bus.HardwareProblemGenerated.Subscribe(s.desk.OnHardwareProblemGenerated),
		bus.AfterHardwareProblemGenerated.Subscribe(s.onAfterHardwareProblemGenerated),
	}
	return s, nil
}

func template(tc *config.TemplateConfig) *populator.Template {
	if tc == nil {
		return nil
	}
	return &populator.Template{Kind: hardware.Kind(tc.Kind), Grabbable: tc.IsGrabbable()}
}

// BuildDatacenter creates containers and servers in declaration order.
func BuildDatacenter(cfg config.DatacenterConfig) *topology.Datacenter {
	dc := topology.NewDatacenter()
	for _, cc := range cfg.Containers {
		container := topology.NewContainer(cc.Name)
		for _, sc := range cc.Servers {
			container.AddServer(topology.NewServerWithSlots(sc.Name, sc.RamSlots, sc.HddSlots))
		}
		dc.AddContainer(container)
	}
	return dc
}

func (s *Scenario) Datacenter() *topology.Datacenter { return s.dc }

func (s *Scenario) Bus() *eventbus.Bus { return s.bus }

func (s *Scenario) Desk() *ticket.Desk { return s.desk }

func (s *Scenario) Registry() *problem.Registry { return s.registry }

// ProblemTypes returns the candidates the generator draws from.
func (s *Scenario) ProblemTypes() []problem.TypeName {
	return append([]problem.TypeName(nil), s.types...)
}

// Problem returns the generated problem, or nil before Start.
func (s *Scenario) Problem() *problem.HardwareProblem { return s.problem }

// Start generates the problem, populates the datacenter and attaches the
// problem's handlers. It can be called once.
func (s *Scenario) Start() (*problem.HardwareProblem, error) {
	if s.problem != nil {
		return nil, ErrAlreadyStarted
	}

	hp, err := s.generator.GenerateProblem(s.rng, s.types)
	if err != nil {
		return nil, err
	}
	s.problem = hp
	s.shutOff = problem.NewActivity(ShutOffActivity)
	s.turnOn = problem.NewActivity(TurnOnActivity)
	hp.Type.SetActivityListener(s.onActivityChanged)

	e := eventbus.ProblemGenerated{Problem: hp}
	if err := s.bus.HardwareProblemGenerated.Publish(e); err != nil {
		return hp, fmt.Errorf("handling generated problem: %w", err)
	}
	if err := s.bus.AfterHardwareProblemGenerated.Publish(e); err != nil {
		return hp, fmt.Errorf("handling generated problem: %w", err)
	}

	s.logger.Info().Str("location", hp.Location.String()).Msg(hp.Message())
	return hp, nil
}

func (s *Scenario) onAfterHardwareProblemGenerated(e eventbus.ProblemGenerated) error {
	s.subs = append(s.subs, s.bus.AttachProblem(e.Problem.Type)...)
	return nil
}

// Activities returns the maintenance checklist: shut off, the problem's own
// activities, turn on.
func (s *Scenario) Activities() []*problem.Activity {
	if s.problem == nil {
		return nil
	}
	activities := []*problem.Activity{s.shutOff}
	activities = append(activities, s.problem.Type.Activities()...)
	return append(activities, s.turnOn)
}

func (s *Scenario) onActivityChanged(a *problem.Activity) {
	s.logger.Info().Str("activity", a.Name).Bool("completed", a.Completed()).Msg("activity changed")
	if err := s.bus.ActivityChanged.Publish(eventbus.ActivityChanged{Activity: a, Completed: a.Completed()}); err != nil {
		s.logger.Warn().Err(err).Str("activity", a.Name).Msg("activity change handlers failed")
	}
	if !a.Completed() && a != s.turnOn && a != s.shutOff {
		s.setActivity(s.turnOn, false)
	}
}

func (s *Scenario) setActivity(a *problem.Activity, done bool) {
	if a.SetCompleted(done) {
		s.onActivityChanged(a)
	}
}

// SubmitTicket checks a filled-in ticket against the problem.
func (s *Scenario) SubmitTicket(a ticket.Answer) (ticket.Feedback, error) {
	if s.problem == nil {
		return ticket.Feedback{}, ErrNotStarted
	}
	return s.desk.Submit(a)
}

// CloseTicket finishes the ticket once the whole checklist is complete.
func (s *Scenario) CloseTicket() (ticket.Feedback, error) {
	if s.problem == nil {
		return ticket.Feedback{}, ErrNotStarted
	}
	return s.desk.Close(s.Activities())
}

// Resolved reports whether the ticket has been closed.
func (s *Scenario) Resolved() bool {
	return s.problem != nil && s.desk.Finished()
}

// Close detaches every handler. The scenario must not be used afterwards.
func (s *Scenario) Close() {
	s.subs.UnsubscribeAll()
	s.subs = nil
	s.bus.Close()
	s.logger.Debug().Msg("scenario closed")
}
