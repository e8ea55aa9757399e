// Package engine is the transactional core of the tracker.
//
// The Tracker is the pure rule engine: one method per business action,
// taking already-resolved entities, running guards, and returning fresh
// snapshots. A Change wraps one or more actions as a deferred unit of work
// bound only to entity keys; Run applies a Change inside a single write
// transaction, resolving keys through the memoizing DAO, recording a
// Changelog entry per touched entity, persisting every after-image through
// the codec, and appending exactly one Event under a strictly increasing
// timestamp key.
//
// Any guard or resolution failure aborts the whole transaction; nothing is
// persisted and the changelog built so far is discarded.
package engine
