package snapshot

import (
	"testing"
	"time"

	"github.com/fleetwatch/fleetwatch/pkg/inventory"
	"github.com/fleetwatch/fleetwatch/pkg/routeros"
)

func TestBuild_MismatchDetection(t *testing.T) {
	inv := &inventory.Inventory{
		Devices: []inventory.Device{{Name: "srv", Address: "10.0.0.5", ExpectedSpeed: "1Gbps"}},
	}
	results := []SwitchResult{
		{
			Switch: inventory.Switch{Name: "edge1"},
			Data: &routeros.SwitchData{
				Identity: "edge1",
				Arp:      []routeros.ArpEntry{{IP: "10.0.0.5", MAC: "AA:AA:AA:AA:AA:AA"}},
				BridgeHosts: []routeros.BridgeHost{
					{MAC: "AA:AA:AA:AA:AA:AA", Interface: "ether3"},
				},
				Interfaces: []routeros.InterfaceInfo{
					{Name: "ether3", Running: true, FullDuplex: true, NegotiatedSpeed: "100Mbps"},
				},
				UplinkPorts: map[string]string{},
			},
		},
	}

	statuses, _ := Build(DefaultConfig(), inv, results, nil, time.Now())

	status, ok := statuses["10.0.0.5"]
	if !ok {
		t.Fatal("expected a status for 10.0.0.5")
	}
	if !status.Online {
		t.Error("expected device online")
	}
	if status.SwitchName != "edge1" || status.PortName != "ether3" {
		t.Errorf("unexpected attribution: switch=%q port=%q", status.SwitchName, status.PortName)
	}
	if status.ActualSpeed != "100Mbps" {
		t.Errorf("ActualSpeed = %q, want 100Mbps", status.ActualSpeed)
	}
	if status.SpeedMatch {
		t.Error("expected speed mismatch")
	}
}

func TestBuild_UplinkFiltering(t *testing.T) {
	inv := &inventory.Inventory{
		Devices: []inventory.Device{{Name: "srv", Address: "10.0.0.5", ExpectedSpeed: "1Gbps"}},
	}

	switchA := SwitchResult{
		Switch: inventory.Switch{Name: "A"},
		Data: &routeros.SwitchData{
			Identity:    "A",
			Arp:         []routeros.ArpEntry{{IP: "10.0.0.5", MAC: "AA:AA:AA:AA:AA:AA"}},
			BridgeHosts: []routeros.BridgeHost{{MAC: "AA:AA:AA:AA:AA:AA", Interface: "ether1"}},
			Interfaces:  []routeros.InterfaceInfo{{Name: "ether1", Running: true, FullDuplex: true}},
			UplinkPorts: map[string]string{"ether1": "edge2"},
		},
	}
	switchB := SwitchResult{
		Switch: inventory.Switch{Name: "B"},
		Data: &routeros.SwitchData{
			Identity:    "B",
			BridgeHosts: []routeros.BridgeHost{{MAC: "AA:AA:AA:AA:AA:AA", Interface: "ether5"}},
			Interfaces:  []routeros.InterfaceInfo{{Name: "ether5", Running: true, FullDuplex: true}},
			UplinkPorts: map[string]string{},
		},
	}

	for _, order := range [][]SwitchResult{{switchA, switchB}, {switchB, switchA}} {
		statuses, _ := Build(DefaultConfig(), inv, order, nil, time.Now())
		status := statuses["10.0.0.5"]
		if status.SwitchName != "B" || status.PortName != "ether5" {
			t.Errorf("expected attribution to (B, ether5) regardless of order, got (%s, %s)", status.SwitchName, status.PortName)
		}
	}
}

func TestBuild_PinnedAttribution(t *testing.T) {
	inv := &inventory.Inventory{
		Devices: []inventory.Device{{
			Name: "pinned", Address: "10.0.0.6", ExpectedSpeed: "1Gbps",
			ExpectedSwitch: "edge2", ExpectedPort: "ether10",
		}},
	}
	results := []SwitchResult{
		{
			Switch: inventory.Switch{Name: "edge2"},
			Data: &routeros.SwitchData{
				Identity: "edge2",
				Arp:      []routeros.ArpEntry{{IP: "10.0.0.6", MAC: "BB:BB:BB:BB:BB:BB"}},
				BridgeHosts: []routeros.BridgeHost{
					{MAC: "BB:BB:BB:BB:BB:BB", Interface: "ether2"},
				},
				Interfaces: []routeros.InterfaceInfo{
					{Name: "ether2", Running: true, FullDuplex: true, NegotiatedSpeed: "1Gbps"},
					{Name: "ether10", Running: true, FullDuplex: true, NegotiatedSpeed: "1Gbps"},
				},
				UplinkPorts: map[string]string{},
			},
		},
	}

	statuses, _ := Build(DefaultConfig(), inv, results, nil, time.Now())
	status := statuses["10.0.0.6"]
	if status.PortName != "ether10" {
		t.Errorf("pin should win, got port_name=%q", status.PortName)
	}
	if status.ActualSpeed != "1Gbps" || !status.SpeedMatch {
		t.Errorf("expected speed read from pinned port: %+v", status)
	}
}

func TestBuild_EmptyConfig(t *testing.T) {
	inv := &inventory.Inventory{}
	statuses, ports := Build(DefaultConfig(), inv, nil, nil, time.Now())
	if len(statuses) != 0 || len(ports) != 0 {
		t.Errorf("expected empty snapshot, got %d statuses, %d ports", len(statuses), len(ports))
	}
}

func TestBuild_LastSeenCarriedOver(t *testing.T) {
	inv := &inventory.Inventory{
		Devices: []inventory.Device{{Name: "srv", Address: "10.0.0.5", ExpectedSpeed: "1Gbps"}},
	}
	past := time.Now().Add(-time.Hour)
	previous := map[string]DeviceStatus{"10.0.0.5": {LastSeen: past}}

	statuses, _ := Build(DefaultConfig(), inv, nil, previous, time.Now())
	if !statuses["10.0.0.5"].LastSeen.Equal(past) {
		t.Errorf("LastSeen should be carried over when device is absent this cycle")
	}
}

func TestHasIssues(t *testing.T) {
	tests := []struct {
		name string
		p    PortErrors
		want bool
	}{
		{"clean", PortErrors{FullDuplex: true}, false},
		{"half duplex", PortErrors{FullDuplex: false}, true},
		{"rx errors", PortErrors{FullDuplex: true, RxErrors: 1}, true},
		{"tx pause only", PortErrors{FullDuplex: true, TxPause: 5}, false},
		{"rx pause", PortErrors{FullDuplex: true, RxPause: 1}, true},
	}
	for _, tt := range tests {
		if got := computeHasIssues(tt.p); got != tt.want {
			t.Errorf("%s: computeHasIssues = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPortErrors_TotalErrors(t *testing.T) {
	p := PortErrors{
		RxDropped: 1, TxDropped: 1, RxErrors: 1, TxErrors: 1,
		RxFcsErrors: 1, TxFcsErrors: 1, RxPause: 1, TxPause: 1, RxFragment: 1,
		RxBytes: 1000, TxBytes: 1000,
	}
	if got := p.TotalErrors(); got != 9 {
		t.Errorf("TotalErrors() = %d, want 9 (bytes excluded)", got)
	}
}
