// Package collector records scenario events and summarizes a session.
package collector

import (
	"sync"
	"sync/atomic"
	"time"

	"datacenter/internal/eventbus"
)

// EventKind tags a recorded event.
type EventKind string

const (
	KindActivity       EventKind = "activity"
	KindTicketAccepted EventKind = "ticket_accepted"
	KindTicketFinished EventKind = "ticket_finished"
)

// Event is one recorded occurrence. At is the offset from the collector's
// start.
type Event struct {
	Kind      EventKind
	Activity  string
	Completed bool
	At        time.Duration
}

// Collector buffers events reported from bus handlers.
type Collector struct {
	events    []Event
	ch        chan Event
	done      chan struct{}
	mu        sync.Mutex
	sendMu    sync.RWMutex
	closed    bool
	dropped   atomic.Int64
	startTime time.Time
	endTime   time.Time
}

// NewCollector creates a Collector and starts its collection goroutine.
func NewCollector() *Collector {
	c := &Collector{
		events:    make([]Event, 0),
		ch:        make(chan Event, 1024),
		done:      make(chan struct{}),
		startTime: time.Now(),
	}
	go c.collect()
	return c
}

func (c *Collector) collect() {
	for event := range c.ch {
		c.mu.Lock()
		c.events = append(c.events, event)
		c.mu.Unlock()
	}
	close(c.done)
}

// Report records an event. It never blocks: when the buffer is full or the
// collector is closed the event is counted as dropped.
func (c *Collector) Report(event Event) {
	if event.At == 0 {
		event.At = time.Since(c.startTime)
	}

	c.sendMu.RLock()
	defer c.sendMu.RUnlock()
	if c.closed {
		c.dropped.Add(1)
		return
	}
	select {
	case c.ch <- event:
	default:
		c.dropped.Add(1)
	}
}

// Subscribe records activity changes and ticket progress published on bus.
func (c *Collector) Subscribe(bus *eventbus.Bus) eventbus.Subscriptions {
	return eventbus.Subscriptions{
		bus.ActivityChanged.Subscribe(func(e eventbus.ActivityChanged) error {
			c.Report(Event{Kind: KindActivity, Activity: e.Activity.Name, Completed: e.Completed})
			return nil
		}),
		bus.TicketAccepted.Subscribe(func(eventbus.TicketAccepted) error {
			c.Report(Event{Kind: KindTicketAccepted})
			return nil
		}),
		bus.TicketFinished.Subscribe(func(eventbus.TicketFinished) error {
			c.Report(Event{Kind: KindTicketFinished})
			return nil
		}),
	}
}

// Close stops accepting events and waits for buffered ones to be stored.
// Calling it twice is harmless.
func (c *Collector) Close() {
	c.sendMu.Lock()
	if c.closed {
		c.sendMu.Unlock()
		return
	}
	c.closed = true
	c.endTime = time.Now()
	close(c.ch)
	c.sendMu.Unlock()
	<-c.done
}

// Events returns a copy of collected events.
func (c *Collector) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]Event, len(c.events))
	copy(result, c.events)
	return result
}

// DroppedEvents returns how many events could not be recorded.
func (c *Collector) DroppedEvents() int64 {
	return c.dropped.Load()
}

// Duration returns the session length, measured up to now while the
// collector is still open.
func (c *Collector) Duration() time.Duration {
	c.sendMu.RLock()
	defer c.sendMu.RUnlock()
	if !c.endTime.IsZero() {
		return c.endTime.Sub(c.startTime)
	}
	return time.Since(c.startTime)
}
