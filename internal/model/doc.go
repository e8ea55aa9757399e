// Package model defines the identifier and entity model of the tracker.
//
// Identifiers are immutable ASCII byte sequences with lexicographic
// ordering. They compose into typed storage keys (ID) laid out so that a
// prefix scan over one product enumerates its children in sequence order.
//
// Entities are value snapshots: a mutation produces a new snapshot with the
// revision counter bumped exactly once. The model package holds no business
// rules and no storage concerns; those live in internal/engine and
// internal/codec respectively.
package model
