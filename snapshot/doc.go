// Package snapshot persists and restores the resting book. Writer
// dumps every resting order to a gob-encoded snapshot file tagged
// with an entry-WAL sequence number, and Load re-inserts those orders
// into an empty book. Reader is a thin wrapper over a memory epoch
// that gateway.Gateway enters around each Snapshot() walk.
//
// The package does no matching and does not read or write the
// entry WAL itself.
package snapshot
