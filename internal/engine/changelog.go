package engine

import "github.com/trackline/trackline/internal/model"

// Changelog is the outcome of one committed transaction: per touched
// entity, the operations applied to it, the snapshot it had before and the
// snapshot that was persisted. Entries appear in order of first touch.
//
// Collaborators derive everything from it: notification fan-out diffs
// before against after, caches invalidate by entity ID, the event log
// entry written alongside is its durable projection.
type Changelog struct {
	// Timestamp is the event-log key the transaction committed under.
	// Zero when the transaction turned out to be a complete no-op and no
	// event was written.
	Timestamp int64

	// Originator is the entity the change put first; report-style changes
	// put the acting user first.
	Originator model.ID

	Entries []Entry
}

// Entry records what happened to one entity.
type Entry struct {
	Entity model.ID

	// Ops lists the operations applied, in order of occurrence.
	Ops []model.Operation

	// Before is the pristine loaded snapshot, nil for created entities.
	Before model.Entity

	// After is the snapshot that was persisted. Nil when every operation
	// on this entity turned out to be a no-op; nothing was written then.
	After model.Entity
}

// Changed reports whether the entry persisted a new snapshot.
func (e *Entry) Changed() bool { return e.After != nil }

// Created reports whether the entry brought a new entity into existence.
func (e *Entry) Created() bool { return e.Before == nil && e.After != nil }

// ChangedCount is the number of entries that persisted a new snapshot.
func (c *Changelog) ChangedCount() int {
	n := 0
	for i := range c.Entries {
		if c.Entries[i].Changed() {
			n++
		}
	}
	return n
}
