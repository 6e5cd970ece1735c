package score

import "testing"

func TestTrackerReset(t *testing.T) {
	tr := NewTracker()
	tr.Reset()
	tr.Update(40)

	first := tr.SessionID()
	tr.Reset()

	if tr.Value() != 0 {
		t.Errorf("Reset should clear score, got %d", tr.Value())
	}
	if tr.SessionID() == "" || tr.SessionID() == first {
		t.Errorf("Reset should start a new session, got %q (was %q)", tr.SessionID(), first)
	}
}

func TestTrackerUpdateOverwrites(t *testing.T) {
	tr := NewTracker()
	tr.Reset()

	tr.Update(10)
	tr.Update(7) // not enforced monotonic
	if tr.Value() != 7 {
		t.Errorf("Value() = %d, expected 7", tr.Value())
	}
}

func TestTrackerFinalize(t *testing.T) {
	tr := NewTracker()
	tr.Reset()
	tr.Update(10)

	fin := tr.Finalize(12)
	if fin.Score != 12 || tr.Value() != 12 {
		t.Errorf("Finalize should freeze 12, got final=%d live=%d", fin.Score, tr.Value())
	}
	if fin.SessionID != tr.SessionID() {
		t.Errorf("Final session %q does not match tracker session %q", fin.SessionID, tr.SessionID())
	}
}

func TestTrackerFinalizeWithoutReset(t *testing.T) {
	tr := NewTracker()
	fin := tr.Finalize(3)
	if fin.SessionID == "" {
		t.Error("Finalize without a session should still produce a session id")
	}
}
