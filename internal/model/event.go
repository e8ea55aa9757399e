package model

// Event is the durable record of one committed transaction, seen from a
// distance: when it happened, which entity set it off, and which entities
// transitioned how. Its key is the millisecond timestamp; the engine forces
// timestamps to strictly increase so keys are unique and a range scan reads
// history in order.
type Event struct {
	Timestamp   int64
	Originator  ID
	Transitions []Transition
}

// Transition lists the operations applied to one entity, in order of
// occurrence within the transaction.
type Transition struct {
	Entity ID
	Ops    []Operation
}

func (e *Event) UniqueID() ID { return EventID(e.Timestamp) }

// Cardinality is the number of entities the transaction touched.
func (e *Event) Cardinality() int { return len(e.Transitions) }

// History is the bounded, ascending list of event timestamps that touched
// one entity. Not user-facing; it backs the CLI and cache invalidation.
type History struct {
	Subject ID
	// Events holds at most maxHistoryLength timestamps, oldest first.
	Events []int64
}

// maxHistoryLength bounds per-entity history; older events fall off.
const maxHistoryLength = 1000

func (h *History) UniqueID() ID { return HistoryID(h.Subject) }

// Append records an event timestamp, dropping the oldest past the bound.
func (h *History) Append(timestamp int64) {
	if len(h.Events) >= maxHistoryLength {
		h.Events = append(h.Events[:0], h.Events[1:]...)
	}
	h.Events = append(h.Events, timestamp)
}
