package engine

import (
	"fmt"

	"github.com/trackline/trackline/internal/codec"
	"github.com/trackline/trackline/internal/model"
	"github.com/trackline/trackline/internal/store"
)

// txEntry accumulates the outcome of all Puts for one entity within a
// transaction. before is fixed at first touch; after moves forward with
// every Put that actually advanced the revision.
type txEntry struct {
	id     model.ID
	ops    []model.Operation
	before model.Entity
	after  model.Entity
}

// runTx is the Tx a Change runs against: the memoizing DAO for reads plus
// the changed-entity ledger Put writes into. Nothing reaches the store
// until Run persists the after-images at the end.
type runTx struct {
	*DAO
	entries map[string]*txEntry
	order   []string
}

func newRunTx(dao *DAO) *runTx {
	x := &runTx{DAO: dao, entries: make(map[string]*txEntry)}
	dao.changed = x.lookup
	return x
}

// lookup feeds mutated snapshots back into DAO reads so a Change observes
// its own effects.
func (x *runTx) lookup(id model.ID) (model.Entity, bool) {
	if e, ok := x.entries[string(id.Bytes())]; ok && e.after != nil {
		return e.after, true
	}
	return nil, false
}

// Put records an operation's outcome for one entity. A snapshot whose
// revision did not move past the last recorded one is a no-op: the
// operation still lands in the changelog, but nothing is written.
func (x *runTx) Put(op model.Operation, e model.Entity) error {
	if e == nil {
		return fmt.Errorf("put of nil entity for operation %s", op.String())
	}
	id := e.UniqueID()
	key := string(id.Bytes())
	entry := x.entries[key]
	if entry == nil {
		before, _ := x.pristine(id)
		entry = &txEntry{id: id, before: before}
		x.entries[key] = entry
		x.order = append(x.order, key)
	}
	entry.ops = append(entry.ops, op)
	switch {
	case entry.after != nil:
		if e.Revision() > entry.after.Revision() {
			entry.after = e
		}
	case entry.before != nil && e.Revision() == entry.before.Revision():
		// unchanged snapshot, no-op
	default:
		entry.after = e
	}
	return nil
}

func encodeEntity(e model.Entity) ([]byte, error) {
	switch v := e.(type) {
	case *model.User:
		return codec.EncodeUser(v), nil
	case *model.Product:
		return codec.EncodeProduct(v), nil
	case *model.Area:
		return codec.EncodeArea(v), nil
	case *model.Version:
		return codec.EncodeVersion(v), nil
	case *model.Task:
		return codec.EncodeTask(v), nil
	case *model.Poll:
		return codec.EncodePoll(v), nil
	case *model.Site:
		return codec.EncodeSite(v), nil
	}
	return nil, fmt.Errorf("cannot encode entity %s", e.UniqueID().String())
}

// Run applies a change atomically.
//
// It opens the single write transaction, resolves and mutates through the
// memoizing DAO, and on success persists every changed after-image, one
// event record keyed by a strictly increasing millisecond timestamp, and
// the per-entity history appends, then commits. Any error aborts the whole
// transaction; the store is untouched then.
//
// A change whose every Put turned out to be a no-op commits nothing and
// writes no event; the returned changelog still lists the no-op entries
// with a zero timestamp.
func Run(db store.DB, change Change, clock Clock, limits *Limits) (*Changelog, error) {
	wtx, err := db.Write()
	if err != nil {
		return nil, err
	}
	dao := NewDAO(wtx)
	x := newRunTx(dao)
	t := NewTracker(clock, limits)
	if err := change(t, x); err != nil {
		wtx.Abort()
		return nil, err
	}

	log := &Changelog{}
	if len(x.order) > 0 {
		log.Originator = x.entries[x.order[0]].id
	}
	var transitions []model.Transition
	for _, key := range x.order {
		e := x.entries[key]
		log.Entries = append(log.Entries, Entry{
			Entity: e.id,
			Ops:    e.ops,
			Before: e.before,
			After:  e.after,
		})
		if e.after == nil {
			continue
		}
		data, err := encodeEntity(e.after)
		if err != nil {
			wtx.Abort()
			return nil, err
		}
		if err := wtx.Put(e.id.Bytes(), data); err != nil {
			wtx.Abort()
			return nil, err
		}
		transitions = append(transitions, model.Transition{Entity: e.id, Ops: e.ops})
	}
	if len(transitions) == 0 {
		wtx.Abort()
		return log, nil
	}

	// The event timestamp is the wall clock pushed past the last committed
	// event key, so keys strictly increase even within one millisecond and
	// across restarts.
	ts := t.clock()
	if last := db.LastEventKey(); last != nil {
		lt, err := model.IDFromStored(last).EventTimestamp()
		if err != nil {
			wtx.Abort()
			return nil, err
		}
		if ts <= lt {
			ts = lt + 1
		}
	}
	log.Timestamp = ts
	event := &model.Event{
		Timestamp:   ts,
		Originator:  log.Originator,
		Transitions: transitions,
	}
	if err := wtx.Put(model.EventID(ts).Bytes(), codec.EncodeEvent(event)); err != nil {
		wtx.Abort()
		return nil, err
	}
	for _, tr := range transitions {
		h, err := dao.History(tr.Entity)
		if IsUnknownEntity(err) {
			h = &model.History{Subject: tr.Entity}
		} else if err != nil {
			wtx.Abort()
			return nil, err
		}
		h.Append(ts)
		if err := wtx.Put(model.HistoryID(tr.Entity).Bytes(), codec.EncodeHistory(h)); err != nil {
			wtx.Abort()
			return nil, err
		}
	}

	// Recorded before the commit: a failed commit then leaves a gap in the
	// event keys, never a duplicate.
	db.RecordEventKey(model.EventID(ts).Bytes())
	if err := wtx.Commit(); err != nil {
		return nil, err
	}
	return log, nil
}
