// Package store defines the persistence contract of the progression engine.
//
// The engine sees storage as a per-user key-value collaborator (RecordStore)
// holding a handful of whole JSON records under fixed keys. Repository layers
// typed access and tolerant decoding on top of it. Concrete backends live in
// internal/platform.
package store
