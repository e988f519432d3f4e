package exit

import "testing"

func TestWALPutNewThenGet(t *testing.T) {
	w, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer w.Close()

	if err := w.PutNew(1, []byte("payload-1")); err != nil {
		t.Fatalf("PutNew: %v", err)
	}

	rec, err := w.Get(1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.State != StateNew || string(rec.Payload) != "payload-1" {
		t.Fatalf("Get(1) = %+v, want State=New Payload=payload-1", rec)
	}
}

func TestWALUpdateStateAdvancesRecord(t *testing.T) {
	w, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer w.Close()

	if err := w.PutNew(1, []byte("x")); err != nil {
		t.Fatalf("PutNew: %v", err)
	}
	if err := w.UpdateState(1, StateFailed, 3); err != nil {
		t.Fatalf("UpdateState: %v", err)
	}

	rec, err := w.Get(1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.State != StateFailed || rec.Retries != 3 {
		t.Fatalf("Get(1) = %+v, want State=Failed Retries=3", rec)
	}
	if string(rec.Payload) != "x" {
		t.Fatalf("UpdateState lost the payload: %q", rec.Payload)
	}
}

func TestWALDeleteRemovesRecord(t *testing.T) {
	w, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer w.Close()

	if err := w.PutNew(1, []byte("x")); err != nil {
		t.Fatalf("PutNew: %v", err)
	}
	if err := w.Delete(1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := w.Get(1); err == nil {
		t.Fatalf("Get(1) after Delete succeeded, want an error")
	}
}

func TestWALScanByStateOnlyVisitsMatchingRecords(t *testing.T) {
	w, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer w.Close()

	for i := uint64(1); i <= 5; i++ {
		if err := w.PutNew(i, []byte("x")); err != nil {
			t.Fatalf("PutNew(%d): %v", i, err)
		}
	}
	if err := w.UpdateState(2, StateFailed, 1); err != nil {
		t.Fatalf("UpdateState(2): %v", err)
	}
	if err := w.UpdateState(4, StateFailed, 1); err != nil {
		t.Fatalf("UpdateState(4): %v", err)
	}

	var newSeqs, failedSeqs []uint64
	if err := w.ScanByState(StateNew, func(seq uint64, rec Record) error {
		newSeqs = append(newSeqs, seq)
		return nil
	}); err != nil {
		t.Fatalf("ScanByState(New): %v", err)
	}
	if err := w.ScanByState(StateFailed, func(seq uint64, rec Record) error {
		failedSeqs = append(failedSeqs, seq)
		return nil
	}); err != nil {
		t.Fatalf("ScanByState(Failed): %v", err)
	}

	if len(newSeqs) != 3 {
		t.Fatalf("New seqs = %v, want 3 entries", newSeqs)
	}
	if len(failedSeqs) != 2 || failedSeqs[0] != 2 || failedSeqs[1] != 4 {
		t.Fatalf("Failed seqs = %v, want [2 4]", failedSeqs)
	}
}

func TestWALScanVisitsInTradeSequenceOrder(t *testing.T) {
	w, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer w.Close()

	for _, seq := range []uint64{30, 10, 20} {
		if err := w.PutNew(seq, []byte("x")); err != nil {
			t.Fatalf("PutNew(%d): %v", seq, err)
		}
	}

	var seen []uint64
	if err := w.ScanByState(StateNew, func(seq uint64, rec Record) error {
		seen = append(seen, seq)
		return nil
	}); err != nil {
		t.Fatalf("ScanByState: %v", err)
	}

	want := []uint64{10, 20, 30}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("seen = %v, want %v", seen, want)
		}
	}
}
