package model

import "time"

// Entity is the common surface of all persisted domain objects. Entities
// are value snapshots: the rule engine clones a loaded snapshot, mutates
// the clone and bumps its revision exactly once per successful operation.
type Entity interface {
	// UniqueID derives the storage key deterministically from the
	// entity's own fields.
	UniqueID() ID
	// Revision is the optimistic-concurrency counter. It strictly
	// increases with every successful mutation and survives codec
	// round-trips bit-for-bit.
	Revision() int32
}

// Rec is the embedded base of every entity, holding the revision counter.
type Rec struct {
	Rev int32
}

func (r Rec) Revision() int32 { return r.Rev }

// SameDay reports whether two millisecond timestamps fall on the same UTC
// calendar day. Daily rate limits roll over on this boundary.
func SameDay(a, b int64) bool {
	ta := time.UnixMilli(a).UTC()
	tb := time.UnixMilli(b).UTC()
	return ta.Year() == tb.Year() && ta.YearDay() == tb.YearDay()
}
