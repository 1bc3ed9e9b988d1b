package inventory

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_EmptyDir(t *testing.T) {
	dir := t.TempDir()
	inv, err := Load(dir)
	if err != nil {
		t.Fatalf("Load on empty dir should not error: %v", err)
	}
	if len(inv.Switches) != 0 || len(inv.Devices) != 0 {
		t.Errorf("expected empty inventory, got %+v", inv)
	}
}

func TestLoad_MissingTopLevelKey(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "switches.yaml", "unrelated_key: []\n")
	writeFile(t, dir, "devices.yaml", "unrelated_key: []\n")

	inv, err := Load(dir)
	if err != nil {
		t.Fatalf("Load should not error: %v", err)
	}
	if len(inv.Switches) != 0 || len(inv.Devices) != 0 {
		t.Errorf("expected empty lists when top-level key missing, got %+v", inv)
	}
}

func TestLoad_Populated(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "switches.yaml", `
switches:
  - name: edge1
    host: 10.0.0.1
    username: admin
    password: secret
    port: 8728
`)
	writeFile(t, dir, "devices.yaml", `
devices:
  - name: srv
    ip: 10.0.0.5
    expected_speed: 1Gbps
  - name: pinned
    ip: 10.0.0.6
    expected_speed: 1Gbps
    switch: edge2
    port: ether10
`)

	inv, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(inv.Switches) != 1 || inv.Switches[0].Name != "edge1" {
		t.Errorf("unexpected switches: %+v", inv.Switches)
	}
	if len(inv.Devices) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(inv.Devices))
	}
	if inv.Devices[0].Pinned() {
		t.Error("srv should not be pinned")
	}
	if !inv.Devices[1].Pinned() {
		t.Error("pinned device should report Pinned() true")
	}
}

func TestRouterSwitch(t *testing.T) {
	inv := &Inventory{}
	if _, ok := inv.RouterSwitch(); ok {
		t.Error("empty inventory should have no router switch")
	}

	inv.Switches = []Switch{{Name: "edge1"}, {Name: "edge2"}}
	sw, ok := inv.RouterSwitch()
	if !ok || sw.Name != "edge1" {
		t.Errorf("expected first switch edge1, got %+v ok=%v", sw, ok)
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}
