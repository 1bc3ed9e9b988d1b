package orchestrator

import (
	"testing"
	"time"

	"github.com/fleetwatch/fleetwatch/pkg/engine"
	"github.com/fleetwatch/fleetwatch/pkg/inventory"
)

func TestNew_AppliesDefaults(t *testing.T) {
	o := New(Config{}, &inventory.Inventory{}, engine.New(), nil)
	if o.cfg.PollInterval != 10*time.Second {
		t.Errorf("expected default poll interval, got %v", o.cfg.PollInterval)
	}
}

func TestFindResult_ReturnsZeroValueWhenMissing(t *testing.T) {
	r := findResult(nil, "edge1")
	if r.Switch.Name != "" || r.Reachable() {
		t.Errorf("expected zero-value result for an unknown switch, got %+v", r)
	}
}

func TestBuildSwitchStatuses_RecordsErrorAndConnectivity(t *testing.T) {
	inv := &inventory.Inventory{
		Switches: []inventory.Switch{{Name: "edge1", Host: "10.0.0.1"}, {Name: "edge2", Host: "10.0.0.2"}},
	}

	statuses := buildSwitchStatuses(inv, nil)
	if len(statuses) != 2 {
		t.Fatalf("expected one status per configured switch, got %d", len(statuses))
	}
	for _, s := range statuses {
		if s.Connected {
			t.Errorf("expected %s to be marked unreachable with no results", s.Name)
		}
	}
}

func TestDevicesFromSnapshot_NilIsNil(t *testing.T) {
	if got := devicesFromSnapshot(nil); got != nil {
		t.Errorf("expected nil for a nil snapshot, got %v", got)
	}
}
