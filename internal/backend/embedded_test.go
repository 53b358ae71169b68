package backend

import (
	"testing"
	"time"
)

func TestAwaitPumpStop_Stopped(t *testing.T) {
	done := make(chan struct{})
	close(done)

	if !awaitPumpStop(done, time.Second) {
		t.Error("closed pump channel reported as timeout")
	}
}

func TestAwaitPumpStop_Timeout(t *testing.T) {
	done := make(chan struct{})

	if awaitPumpStop(done, 10*time.Millisecond) {
		t.Error("open pump channel reported as stopped")
	}
}

func TestMapEmbeddedProperty_MirrorsIPCMapping(t *testing.T) {
	if ev := mapEmbeddedProperty("time-pos", 12.5); len(ev) != 1 {
		t.Fatalf("got %+v", ev)
	} else if tu := ev[0].(TimeUpdate); tu.PositionMs != 12500 {
		t.Errorf("PositionMs = %d, want 12500", tu.PositionMs)
	}

	if ev := mapEmbeddedProperty("duration", nil); ev != nil {
		t.Errorf("null duration produced %+v", ev)
	}
}
