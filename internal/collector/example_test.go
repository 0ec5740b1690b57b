package collector_test

import (
	"fmt"
	"os"
	"time"

	"datacenter/internal/collector"
)

func ExampleNewCollector() {
	c := collector.NewCollector()

	// Typically reported from bus handlers registered with Subscribe.
	c.Report(collector.Event{Kind: collector.KindActivity, Activity: "Shut the server off.", Completed: true})
	c.Report(collector.Event{Kind: collector.KindTicketAccepted})

	c.Close()

	events := c.Events()
	fmt.Printf("Collected %d events\n", len(events))
	// Output: Collected 2 events
}

func ExampleSummary_Check() {
	s := &collector.Summary{
		Activities:     make([]collector.ActivityStatus, 4),
		Completed:      3,
		TicketAccepted: true,
	}

	for _, v := range s.Check().Violations() {
		fmt.Printf("%s: expected %s, got %s\n", v.Name, v.Expected, v.Actual)
	}
	// Output:
	// activities.completed: expected 4/4, got 3/4
	// ticket.finished: expected true, got false
}

func ExampleFormatText() {
	events := []collector.Event{
		{Kind: collector.KindTicketAccepted, At: 2 * time.Second},
	}

	s := collector.Compute(nil, nil, events, 30*time.Second)
	collector.FormatText(os.Stdout, s, nil)
	// Output: No problem generated
}

func ExampleCollector_DroppedEvents() {
	c := collector.NewCollector()
	c.Close()

	if dropped := c.DroppedEvents(); dropped > 0 {
		fmt.Printf("Warning: %d events dropped\n", dropped)
	} else {
		fmt.Println("No events dropped")
	}
	// Output: No events dropped
}
