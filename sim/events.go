package sim

import "github.com/milk9111/thinghittr/things"

// Event is a generic simulation event payload.
type Event struct {
	Type string
	Data any
}

const (
	EventCollision = "collision"
	EventDespawn   = "despawn"
	EventReload    = "reload"
)

// CollisionEvent is pushed after a hit callback runs.
type CollisionEvent struct {
	Thing    *things.Thing
	Other    *things.Thing
	Callback string
	Frame    int
}

// DespawnEvent is pushed when a dead thing is removed.
type DespawnEvent struct {
	Thing *things.Thing
	Frame int
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}
