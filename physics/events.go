package physics

import "github.com/milk9111/hopper/level"

// OverlapEvent records a report-only contact that began during a step.
type OverlapEvent struct {
	A, B level.Body
	fn   level.OverlapFunc
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []OverlapEvent
}

// Push adds an event.
func (q *EventQueue) Push(evt OverlapEvent) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []OverlapEvent {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Len reports how many events are waiting.
func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}
