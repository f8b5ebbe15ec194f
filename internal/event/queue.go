package event

import "sync"

// Queue holds decoded events in one FIFO sequence per stream. Readers push
// from their own goroutines; the scheduler pops from the control loop. No
// bound is imposed: memory only grows if the consumer stops draining.
type Queue struct {
	mu      sync.Mutex
	streams map[Stream][]Event
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{streams: make(map[Stream][]Event)}
}

// Push appends ev to the end of its stream's sequence.
func (q *Queue) Push(ev Event) {
	q.mu.Lock()
	q.streams[ev.Stream] = append(q.streams[ev.Stream], ev)
	q.mu.Unlock()
}

// Pop removes and returns the oldest event of stream s.
func (q *Queue) Pop(s Stream) (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	pending := q.streams[s]
	if len(pending) == 0 {
		return Event{}, false
	}
	ev := pending[0]
	pending[0] = Event{}
	if len(pending) == 1 {
		delete(q.streams, s)
	} else {
		q.streams[s] = pending[1:]
	}
	return ev, true
}

// Len returns the number of pending events for stream s.
func (q *Queue) Len(s Stream) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.streams[s])
}
