package problem

// Activity is one checkable step shown to the player.
type Activity struct {
	Name      string
	completed bool
}

// NewActivity returns an incomplete activity.
func NewActivity(name string) *Activity {
	return &Activity{Name: name}
}

func (a *Activity) Completed() bool {
	return a.completed
}

// SetCompleted updates the completion flag and reports whether it changed.
func (a *Activity) SetCompleted(done bool) bool {
	if a.completed == done {
		return false
	}
	a.completed = done
	return true
}

// AllCompleted reports whether every activity is complete.
func AllCompleted(activities []*Activity) bool {
	for _, a := range activities {
		if !a.completed {
			return false
		}
	}
	return true
}

type checklist struct {
	activities []*Activity
	listener   func(*Activity)
}

func (c *checklist) add(name string) *Activity {
	a := NewActivity(name)
	c.activities = append(c.activities, a)
	return a
}

func (c *checklist) set(a *Activity, done bool) {
	if a == nil || !a.SetCompleted(done) {
		return
	}
	if c.listener != nil {
		c.listener(a)
	}
}

func (c *checklist) Activities() []*Activity {
	return append([]*Activity(nil), c.activities...)
}

func (c *checklist) SetActivityListener(fn func(*Activity)) {
	c.listener = fn
}
