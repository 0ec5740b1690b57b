// Package ticket implements the help-desk ticket the player files for a
// generated problem and closes once maintenance is done.
package ticket

import (
	"errors"

	"github.com/rs/zerolog"
	"github.com/zyedidia/generic/mapset"

	"datacenter/internal/eventbus"
	"datacenter/internal/problem"
	"datacenter/internal/topology"
)

var (
	ErrNoProblem       = errors.New("no hardware problem has been generated")
	ErrNotAccepted     = errors.New("ticket has not been accepted")
	ErrAlreadyAccepted = errors.New("ticket has already been accepted")
	ErrAlreadyFinished = errors.New("ticket has already been finished")
)

const (
	MsgAccepted   = "The ticket is accepted, you filled it in correctly. Take a look at the tablet on your left hip to see what you should do next."
	MsgRejected   = "The ticket is rejected, you did not fill it in correctly. Try again."
	MsgFinished   = "Good job! You have completed your tasks and fixed the problem. The data center experience is complete."
	MsgIncomplete = "It looks like some of your tasks are not yet completed. See if there are any activities that are not yet completed."
)

// Answer is one filled-in ticket form.
type Answer struct {
	Container    string `json:"container"`
	Server       string `json:"server"`
	HardwareType string `json:"hardwareType"`
	TaskType     string `json:"taskType"`
}

// Options are the choices offered by each field of the form.
type Options struct {
	Containers    []string `json:"containers"`
	Servers       []string `json:"servers"`
	HardwareTypes []string `json:"hardwareTypes"`
	TaskTypes     []string `json:"taskTypes"`
}

// Feedback is shown to the player after submitting or closing.
type Feedback struct {
	OK      bool
	Message string
}

// Desk checks submitted tickets against the generated problem.
type Desk struct {
	bus      *eventbus.Bus
	dc       *topology.Datacenter
	registry *problem.Registry
	logger   zerolog.Logger

	problem  *problem.HardwareProblem
	expected Answer
	accepted bool
	finished bool
}

// NewDesk creates a desk. It learns the problem from
// OnHardwareProblemGenerated.
func NewDesk(bus *eventbus.Bus, dc *topology.Datacenter, registry *problem.Registry, logger zerolog.Logger) *Desk {
	return &Desk{bus: bus, dc: dc, registry: registry, logger: logger}
}

// OnHardwareProblemGenerated records the expected answer and resets the
// ticket state.
func (d *Desk) OnHardwareProblemGenerated(e eventbus.ProblemGenerated) error {
	hp := e.Problem
	if hp == nil || hp.Type == nil {
		return ErrNoProblem
	}
	d.problem = hp
	d.expected = AnswerFor(hp)
	d.accepted = false
	d.finished = false
	return nil
}

// AnswerFor returns the correct ticket for hp.
func AnswerFor(hp *problem.HardwareProblem) Answer {
	return Answer{
		Container:    hp.Location.Container.Name(),
		Server:       hp.Location.Server.Name(),
		HardwareType: hp.Type.HardwareTypeName(),
		TaskType:     hp.Type.TaskTypeName(),
	}
}

// Options lists container names, server names, hardware type names and task
// type names, each deduplicated in declaration or registration order.
func (d *Desk) Options() Options {
	var opts Options
	var containers, servers []string
	for _, c := range d.dc.Containers() {
		containers = append(containers, c.Name())
		for _, s := range c.Servers() {
			servers = append(servers, s.Name())
		}
	}
	opts.Containers = dedupe(containers)
	opts.Servers = dedupe(servers)

	var hardware, tasks []string
	for _, r := range d.registry.Registrations() {
		hardware = append(hardware, r.HardwareTypeName)
		tasks = append(tasks, r.TaskTypeName)
	}
	opts.HardwareTypes = dedupe(hardware)
	opts.TaskTypes = dedupe(tasks)
	return opts
}

func dedupe(values []string) []string {
	seen := mapset.New[string]()
	out := make([]string, 0, len(values))
	for _, v := range values {
		if seen.Has(v) {
			continue
		}
		seen.Put(v)
		out = append(out, v)
	}
	return out
}

// Expected returns the correct answer for the current problem.
func (d *Desk) Expected() (Answer, error) {
	if d.problem == nil {
		return Answer{}, ErrNoProblem
	}
	return d.expected, nil
}

func (d *Desk) Accepted() bool { return d.accepted }

func (d *Desk) Finished() bool { return d.finished }

// Submit compares a with the expected answer. A correct answer accepts the
// ticket and publishes TicketAccepted.
func (d *Desk) Submit(a Answer) (Feedback, error) {
	switch {
	case d.problem == nil:
		return Feedback{}, ErrNoProblem
	case d.finished:
		return Feedback{}, ErrAlreadyFinished
	case d.accepted:
		return Feedback{}, ErrAlreadyAccepted
	}

	if a != d.expected {
		d.logger.Info().Interface("answer", a).Msg("ticket rejected")
		return Feedback{OK: false, Message: MsgRejected}, nil
	}

	d.accepted = true
	d.logger.Info().Interface("answer", a).Msg("ticket accepted")
	err := d.bus.TicketAccepted.Publish(eventbus.TicketAccepted{Problem: d.problem})
	return Feedback{OK: true, Message: MsgAccepted}, err
}

// Close finishes the ticket when every activity is complete and publishes
// TicketFinished.
func (d *Desk) Close(activities []*problem.Activity) (Feedback, error) {
	switch {
	case d.problem == nil:
		return Feedback{}, ErrNoProblem
	case d.finished:
		return Feedback{}, ErrAlreadyFinished
	case !d.accepted:
		return Feedback{}, ErrNotAccepted
	}

	if !problem.AllCompleted(activities) {
		d.logger.Info().Msg("ticket close refused, activities incomplete")
		return Feedback{OK: false, Message: MsgIncomplete}, nil
	}

	d.finished = true
	d.logger.Info().Msg("ticket finished")
	err := d.bus.TicketFinished.Publish(eventbus.TicketFinished{Problem: d.problem})
	return Feedback{OK: true, Message: MsgFinished}, err
}
