// Package engine holds the published snapshot, the previous-cycle state
// needed for event detection, and the read-only query API the external
// HTTP collaborator consumes.
package engine

import (
	"time"

	"github.com/fleetwatch/fleetwatch/pkg/snapshot"
)

// Snapshot is the fully-joined device+port+switch view produced at the end
// of one cycle and atomically published. It is immutable once built:
// readers always see either the pre-swap or the post-swap value in its
// entirety, never a partial one.
type Snapshot struct {
	Devices     map[string]snapshot.DeviceStatus // keyed by resolved IP
	Ports       []snapshot.PortErrors
	Switches    []snapshot.SwitchStatus
	PublishedAt time.Time
}

// SystemStatus is the aggregate counts exposed to the HTTP collaborator.
type SystemStatus struct {
	TotalDevices      int
	OnlineDevices     int
	OfflineDevices    int
	MismatchedSpeeds  int
	TotalPorts        int
	PortsWithErrors   int
	SwitchesConnected int
	SwitchesTotal     int
	LastPollAt        time.Time
}
