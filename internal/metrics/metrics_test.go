package metrics

import (
	"encoding/json"
	"testing"
)

func TestCollector_Sessions(t *testing.T) {
	c := New()

	c.SessionOpened()
	if got := c.Snapshot().SessionsActive; got != 1 {
		t.Errorf("active = %d, want 1", got)
	}
	c.SessionClosed()
	c.SessionOpened()
	c.SessionClosed()

	snap := c.Snapshot()
	if snap.SessionsActive != 0 {
		t.Errorf("active = %d, want 0", snap.SessionsActive)
	}
	if snap.SessionsTotal != 2 {
		t.Errorf("total = %d, want 2", snap.SessionsTotal)
	}
}

func TestCollector_Messages(t *testing.T) {
	c := New()

	c.MessageReceived(5)
	c.MessageReceived(100)
	c.MessageSent(20)

	snap := c.Snapshot()
	if snap.MessagesIn != 2 || snap.MessagesOut != 1 {
		t.Errorf("messages in/out = %d/%d, want 2/1", snap.MessagesIn, snap.MessagesOut)
	}
	if snap.BytesIn != 105 {
		t.Errorf("bytes in = %d, want 105", snap.BytesIn)
	}
	if snap.BytesOut != 20 {
		t.Errorf("bytes out = %d, want 20", snap.BytesOut)
	}
}

func TestCollector_Endings(t *testing.T) {
	c := New()

	c.PeerQuit()
	c.PeerQuit()
	c.PeerDropped()

	snap := c.Snapshot()
	if snap.PeerQuits != 2 {
		t.Errorf("peer quits = %d, want 2", snap.PeerQuits)
	}
	if snap.PeerDrops != 1 {
		t.Errorf("peer drops = %d, want 1", snap.PeerDrops)
	}
}

func TestCollector_Errors(t *testing.T) {
	c := New()

	c.RecordError("first error")
	c.RecordError("second error")

	snap := c.Snapshot()
	if snap.ErrorsTotal != 2 {
		t.Errorf("errors = %d, want 2", snap.ErrorsTotal)
	}
	if snap.LastErrorMessage != "second error" {
		t.Errorf("snap error msg = %q", snap.LastErrorMessage)
	}
	if snap.LastError == "" {
		t.Error("expected error timestamp")
	}
}

func TestCollector_JSON(t *testing.T) {
	c := New()
	c.SessionOpened()
	c.MessageSent(42)

	raw := c.JSON()
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		t.Fatalf("JSON parse error: %v", err)
	}
	if snap.SessionsActive != 1 {
		t.Errorf("JSON active = %d", snap.SessionsActive)
	}
	if snap.BytesOut != 42 {
		t.Errorf("JSON bytes out = %d", snap.BytesOut)
	}
}

func TestNilCollector_NoOps(t *testing.T) {
	var c *Collector

	// None of these should panic.
	c.SessionOpened()
	c.SessionClosed()
	c.MessageReceived(100)
	c.MessageSent(100)
	c.PeerQuit()
	c.PeerDropped()
	c.RecordError("test")

	if snap := c.Snapshot(); snap != (Snapshot{}) {
		t.Errorf("nil snapshot should be zero, got %+v", snap)
	}

	if c.JSON() == "" {
		t.Error("nil JSON should return valid JSON")
	}
}
