package snapshot

import (
	"context"
	"testing"
	"time"
)

type fakePinger struct {
	reachable map[string]bool
}

func (f fakePinger) Ping(ctx context.Context, address string) (bool, error) {
	return f.reachable[address], nil
}

func TestVerifyLiveness_ForcesUnreachableOffline(t *testing.T) {
	lastSeen := time.Now().Add(-time.Minute)
	statuses := map[string]DeviceStatus{
		"10.0.0.1": {Online: true, LastSeen: lastSeen},
		"10.0.0.2": {Online: true, LastSeen: lastSeen},
		"10.0.0.3": {Online: false, LastSeen: lastSeen},
	}
	pinger := fakePinger{reachable: map[string]bool{"10.0.0.1": true}}

	VerifyLiveness(context.Background(), pinger, statuses)

	if !statuses["10.0.0.1"].Online {
		t.Error("reachable device should remain online")
	}
	if statuses["10.0.0.2"].Online {
		t.Error("unreachable device should be forced offline")
	}
	if !statuses["10.0.0.2"].LastSeen.Equal(lastSeen) {
		t.Error("LastSeen should be preserved when forced offline")
	}
	if statuses["10.0.0.3"].Online {
		t.Error("already-offline device should stay untouched")
	}
}
