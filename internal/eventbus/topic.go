// Package eventbus is the in-process publish/subscribe hub of one scenario.
package eventbus

import (
	"errors"
	"sync"
)

// Handler receives events of type E. A returned error is reported by
// Publish but does not stop delivery to later subscribers.
type Handler[E any] func(E) error

// Topic fans events of one kind out to its subscribers in subscription
// order.
type Topic[E any] struct {
	mu       sync.Mutex
	name     string
	nextID   uint64
	handlers []entry[E]
}

type entry[E any] struct {
	id      uint64
	handler Handler[E]
}

// NewTopic returns a topic without subscribers.
func NewTopic[E any](name string) *Topic[E] {
	return &Topic[E]{name: name}
}

func (t *Topic[E]) Name() string {
	return t.name
}

// Subscribe appends h to the subscriber list.
func (t *Topic[E]) Subscribe(h Handler[E]) *Subscription {
	t.mu.Lock()
	t.nextID++
	id := t.nextID
	t.handlers = append(t.handlers, entry[E]{id: id, handler: h})
	t.mu.Unlock()

	return &Subscription{cancel: func() { t.unsubscribe(id) }}
}

func (t *Topic[E]) unsubscribe(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, e := range t.handlers {
		if e.id == id {
			t.handlers = append(t.handlers[:i:i], t.handlers[i+1:]...)
			return
		}
	}
}

// Publish calls every current subscriber with e and joins their errors.
// Subscribers added or removed by a handler take effect on the next Publish.
func (t *Topic[E]) Publish(e E) error {
	t.mu.Lock()
	handlers := t.handlers
	t.mu.Unlock()

	var errs []error
	for _, h := range handlers {
		if err := h.handler(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of subscribers.
func (t *Topic[E]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.handlers)
}

func (t *Topic[E]) reset() {
	t.mu.Lock()
	t.handlers = nil
	t.mu.Unlock()
}

// Subscription removes one handler from its topic.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Unsubscribe detaches the handler. Calling it more than once is a no-op.
func (s *Subscription) Unsubscribe() {
	s.once.Do(s.cancel)
}

// Subscriptions is a group detached together.
type Subscriptions []*Subscription

// UnsubscribeAll detaches every subscription in the group.
func (ss Subscriptions) UnsubscribeAll() {
	for _, s := range ss {
		s.Unsubscribe()
	}
}
