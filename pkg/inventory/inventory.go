// Package inventory loads the declarative switch and device inventory from
// YAML files and resolves device addresses to IPs.
package inventory

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/fleetwatch/fleetwatch/pkg/util"
)

// Device is one configured endpoint the fleet monitor tracks.
type Device struct {
	Name           string `yaml:"name"`
	Address        string `yaml:"ip"`
	ExpectedSpeed  string `yaml:"expected_speed"`
	MAC            string `yaml:"mac,omitempty"`
	ExpectedSwitch string `yaml:"switch,omitempty"`
	ExpectedPort   string `yaml:"port,omitempty"`
}

// Pinned reports whether this device's attribution is pinned to a specific
// switch/port rather than auto-discovered.
func (d Device) Pinned() bool {
	return d.ExpectedSwitch != "" && d.ExpectedPort != ""
}

// Switch is one configured RouterOS switch to poll.
type Switch struct {
	Name           string `yaml:"name"`
	Host           string `yaml:"host"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	ManagementPort int    `yaml:"port"`
}

// Inventory is the full set of configured switches and devices, loaded once
// at process start.
type Inventory struct {
	Switches []Switch
	Devices  []Device
}

type switchesFile struct {
	Switches []Switch `yaml:"switches"`
}

type devicesFile struct {
	Devices []Device `yaml:"devices"`
}

// Load reads switches.yaml and devices.yaml from dir. A missing file, or a
// present file missing its top-level key, yields an empty list rather than
// an error — the engine still starts and simply produces an empty snapshot.
func Load(dir string) (*Inventory, error) {
	switches, err := loadSwitches(filepath.Join(dir, "switches.yaml"))
	if err != nil {
		return nil, err
	}
	devices, err := loadDevices(filepath.Join(dir, "devices.yaml"))
	if err != nil {
		return nil, err
	}
	return &Inventory{Switches: switches, Devices: devices}, nil
}

func loadSwitches(path string) ([]Switch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var f switchesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, util.NewValidationError("parsing " + path + ": " + err.Error())
	}
	return f.Switches, nil
}

func loadDevices(path string) ([]Device, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var f devicesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, util.NewValidationError("parsing " + path + ": " + err.Error())
	}
	return f.Devices, nil
}

// RouterSwitch returns the switch designated as the router for liveness
// verification: the first configured switch. It must be able to reach
// every subnet the monitored devices live on.
func (inv *Inventory) RouterSwitch() (Switch, bool) {
	if len(inv.Switches) == 0 {
		return Switch{}, false
	}
	return inv.Switches[0], true
}
