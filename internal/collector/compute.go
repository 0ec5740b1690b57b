package collector

import (
	"time"

	"datacenter/internal/problem"
)

// ActivityStatus is the final state of one checklist entry.
type ActivityStatus struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
	// Changes counts completion flips seen during the session.
	Changes int `json:"changes"`
}

// Summary describes a finished or abandoned session.
type Summary struct {
	Location     string
	ProblemType  string
	HardwareType string
	TaskType     string
	Message      string

	Activities []ActivityStatus
	Completed  int
	Changes    int

	TicketAccepted bool
	TicketFinished bool
	AcceptedAt     time.Duration
	FinishedAt     time.Duration

	Duration time.Duration
}

// Compute builds a summary from the problem, its checklist and the recorded
// events. hp may be nil when no problem was generated. Pure function, no
// side effects.
func Compute(hp *problem.HardwareProblem, activities []*problem.Activity, events []Event, duration time.Duration) *Summary {
	s := &Summary{Duration: duration}
	if hp != nil && hp.Type != nil {
		s.Location = hp.Location.String()
		s.ProblemType = string(hp.Type.Name())
		s.HardwareType = hp.Type.HardwareTypeName()
		s.TaskType = hp.Type.TaskTypeName()
		s.Message = hp.Message()
	}

	changes := make(map[string]int)
	for _, e := range events {
		switch e.Kind {
		case KindActivity:
			s.Changes++
			changes[e.Activity]++
		case KindTicketAccepted:
			if !s.TicketAccepted {
				s.TicketAccepted = true
				s.AcceptedAt = e.At
			}
		case KindTicketFinished:
			if !s.TicketFinished {
				s.TicketFinished = true
				s.FinishedAt = e.At
			}
		}
	}

	s.Activities = make([]ActivityStatus, 0, len(activities))
	for _, a := range activities {
		if a.Completed() {
			s.Completed++
		}
		s.Activities = append(s.Activities, ActivityStatus{
			Name:      a.Name,
			Completed: a.Completed(),
			Changes:   changes[a.Name],
		})
	}
	return s
}
