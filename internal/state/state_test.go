package state

import "testing"

func openTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestPlayerState_Defaults(t *testing.T) {
	m := openTestManager(t)

	s, err := m.GetPlayerState()
	if err != nil {
		t.Fatalf("GetPlayerState: %v", err)
	}
	if s.Volume != 1.0 || s.Muted || s.Backend != "" {
		t.Errorf("defaults = %+v", s)
	}
}

func TestPlayerState_RoundTrip(t *testing.T) {
	m := openTestManager(t)

	want := PlayerState{Volume: 0.6, Muted: true, Backend: "embedded", Quality: "8 Mbps 1080p"}
	if err := m.SavePlayerState(want); err != nil {
		t.Fatalf("SavePlayerState: %v", err)
	}

	got, err := m.GetPlayerState()
	if err != nil {
		t.Fatalf("GetPlayerState: %v", err)
	}
	if *got != want {
		t.Errorf("got %+v, want %+v", *got, want)
	}

	// Overwrite keeps a single row.
	want.Volume = 0.9
	if err := m.SavePlayerState(want); err != nil {
		t.Fatalf("SavePlayerState: %v", err)
	}
	got, _ = m.GetPlayerState()
	if got.Volume != 0.9 {
		t.Errorf("volume after overwrite = %v", got.Volume)
	}
}

func TestClientID_StableAcrossCalls(t *testing.T) {
	m := openTestManager(t)

	first, err := m.ClientID()
	if err != nil {
		t.Fatalf("ClientID: %v", err)
	}
	if first == "" {
		t.Fatal("ClientID empty")
	}

	second, err := m.ClientID()
	if err != nil {
		t.Fatalf("ClientID: %v", err)
	}
	if first != second {
		t.Errorf("ClientID changed: %q then %q", first, second)
	}
}

func TestPendingScrobbles(t *testing.T) {
	m := openTestManager(t)

	if err := m.QueuePendingScrobble("42"); err != nil {
		t.Fatalf("QueuePendingScrobble: %v", err)
	}
	if err := m.QueuePendingScrobble("43"); err != nil {
		t.Fatalf("QueuePendingScrobble: %v", err)
	}

	pending, err := m.GetPendingScrobbles()
	if err != nil {
		t.Fatalf("GetPendingScrobbles: %v", err)
	}
	if len(pending) != 2 || pending[0].RatingKey != "42" {
		t.Fatalf("pending = %+v", pending)
	}

	if err := m.UpdatePendingScrobbleAttempt(pending[0].ID, "network down"); err != nil {
		t.Fatalf("UpdatePendingScrobbleAttempt: %v", err)
	}
	pending, _ = m.GetPendingScrobbles()
	if pending[0].Attempts != 1 || pending[0].LastError != "network down" {
		t.Errorf("after attempt: %+v", pending[0])
	}

	if err := m.DeletePendingScrobble(pending[0].ID); err != nil {
		t.Fatalf("DeletePendingScrobble: %v", err)
	}
	pending, _ = m.GetPendingScrobbles()
	if len(pending) != 1 || pending[0].RatingKey != "43" {
		t.Errorf("after delete: %+v", pending)
	}
}
