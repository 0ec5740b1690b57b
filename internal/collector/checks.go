package collector

import (
	"fmt"
	"strconv"
	"time"
)

// CheckResult is the outcome of one pass/fail criterion.
type CheckResult struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// CheckResults contains every check of a session.
type CheckResults struct {
	Passed  bool          `json:"passed"`
	Results []CheckResult `json:"results"`
}

// Check evaluates whether the session resolved its problem: the ticket was
// accepted, every activity completed and the ticket closed.
func (s *Summary) Check() *CheckResults {
	r := &CheckResults{Passed: true, Results: make([]CheckResult, 0, 3)}

	r.add("ticket.accepted", s.TicketAccepted, "true", strconv.FormatBool(s.TicketAccepted))
	r.add("activities.completed", s.Completed == len(s.Activities),
		fmt.Sprintf("%d/%d", len(s.Activities), len(s.Activities)),
		fmt.Sprintf("%d/%d", s.Completed, len(s.Activities)))
	r.add("ticket.finished", s.TicketFinished, "true", strconv.FormatBool(s.TicketFinished))

	return r
}

func (r *CheckResults) add(name string, passed bool, expected, actual string) {
	if !passed {
		r.Passed = false
	}
	r.Results = append(r.Results, CheckResult{
		Name:     name,
		Passed:   passed,
		Expected: expected,
		Actual:   actual,
	})
}

// Violations returns only the failed checks.
func (r *CheckResults) Violations() []CheckResult {
	violations := make([]CheckResult, 0)
	for _, result := range r.Results {
		if !result.Passed {
			violations = append(violations, result)
		}
	}
	return violations
}

// FormatDuration formats a duration for display.
func FormatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return d.Round(time.Second).String()
}
