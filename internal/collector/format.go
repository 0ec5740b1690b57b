package collector

import (
	"encoding/json"
	"fmt"
	"io"
)

// FormatText writes the summary in human-readable format.
func FormatText(w io.Writer, s *Summary, checks *CheckResults) {
	if s.ProblemType == "" {
		fmt.Fprintln(w, "No problem generated")
		return
	}

	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Datacenter - Scenario Summary")
	fmt.Fprintln(w, "=============================")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Location:   %s\n", s.Location)
	fmt.Fprintf(w, "Problem:    %s (%s / %s)\n", s.ProblemType, s.HardwareType, s.TaskType)
	fmt.Fprintf(w, "Message:    %s\n", s.Message)
	fmt.Fprintf(w, "Duration:   %s\n", FormatDuration(s.Duration))
	fmt.Fprintf(w, "Progress:   %d/%d activities, %d changes\n", s.Completed, len(s.Activities), s.Changes)
	fmt.Fprintf(w, "Ticket:     %s\n", ticketState(s))
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Activities:")
	for _, a := range s.Activities {
		mark := " "
		if a.Completed {
			mark = "x"
		}
		fmt.Fprintf(w, "  [%s] %s\n", mark, a.Name)
	}

	if checks != nil && len(checks.Results) > 0 {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Checks:")
		for _, result := range checks.Results {
			symbol := "✓"
			if !result.Passed {
				symbol = "✗"
			}
			fmt.Fprintf(w, "  %s %s (expected: %s, actual: %s)\n",
				symbol, result.Name, result.Expected, result.Actual)
		}
	}
}

func ticketState(s *Summary) string {
	switch {
	case s.TicketFinished:
		return fmt.Sprintf("finished after %s", FormatDuration(s.FinishedAt))
	case s.TicketAccepted:
		return fmt.Sprintf("accepted after %s", FormatDuration(s.AcceptedAt))
	}
	return "open"
}

// FormatJSON writes the summary in JSON format.
func FormatJSON(w io.Writer, s *Summary, checks *CheckResults) {
	output := struct {
		Location     string           `json:"location"`
		ProblemType  string           `json:"problemType"`
		HardwareType string           `json:"hardwareType"`
		TaskType     string           `json:"taskType"`
		Message      string           `json:"message"`
		Duration     string           `json:"duration"`
		Completed    int              `json:"completed"`
		Changes      int              `json:"changes"`
		Accepted     bool             `json:"ticketAccepted"`
		Finished     bool             `json:"ticketFinished"`
		Activities   []ActivityStatus `json:"activities"`
		Checks       *CheckResults    `json:"checks,omitempty"`
	}{
		Location:     s.Location,
		ProblemType:  s.ProblemType,
		HardwareType: s.HardwareType,
		TaskType:     s.TaskType,
		Message:      s.Message,
		Duration:     FormatDuration(s.Duration),
		Completed:    s.Completed,
		Changes:      s.Changes,
		Accepted:     s.TicketAccepted,
		Finished:     s.TicketFinished,
		Activities:   s.Activities,
		Checks:       checks,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(output) // stdout errors are unrecoverable
}
