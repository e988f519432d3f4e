// Package memory provides the low-level RCU-style reclamation
// primitives that let gateway.Gateway run Snapshot() from a second
// goroutine while the single-writer matching engine keeps mutating
// the book: RetireRing holds Order records the engine has released
// but a concurrent Reader might still be observing, GlobalEpoch/
// ReaderEpoch mark when a read section is open, and
// AdvanceEpochAndReclaim is the periodic drain that hands records
// back to pool.OrderPool once no reader can still see them. Pool[T]
// is a separate, ordinary typed pool used where nothing needs epoch
// protection (the WAL's scratch append buffers).
//
// The memory package is dependency-free and forms the foundation
// for concurrent object reuse and RCU-style epoch advancement.
package memory
