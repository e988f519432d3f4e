package gateway

import (
	"path/filepath"
	"time"

	"obsidian/snapshot"
)

// StartSnapshotJob periodically writes a snapshot of the book to dir
// and truncates the entry WAL up to the snapshotted sequence, bounding
// how much of the entry WAL a future Bootstrap needs to replay
// (SPEC_FULL §3.2). Runs until the process exits; callers that need a
// controlled shutdown should not rely on this goroutine stopping.
func (g *Gateway) StartSnapshotJob(dir string, interval time.Duration) {
	w := &snapshot.Writer{Dir: dir}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			g.mu.Lock()
			seq := g.seq.Current()
			err := w.Write(seq, g.book)
			g.mu.Unlock()

			if err != nil {
				continue
			}
			_ = g.entryWAL.TruncateBefore(seq)
		}
	}()
}

// SnapshotPath is the conventional snapshot file location under dir,
// for callers wiring Bootstrap.
func SnapshotPath(dir string) string {
	return filepath.Join(dir, "snapshot.bin")
}
