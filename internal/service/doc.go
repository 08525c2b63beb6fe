// Package service contains the progression engine, the only component that
// writes a learner's records.
//
// The Engine composes the pure transitions in internal/domain (sequencer,
// streak, ratelimit, leveling) with a store.Repository. Every operation reads
// the records it needs, reads "today" from the injected calendar at call time,
// computes the new records and writes them back whole. Multi-record writes go
// through one atomic batch.
//
// Events are emitted only after a write has been committed. A failing handler
// is logged and never undoes the write.
package service
