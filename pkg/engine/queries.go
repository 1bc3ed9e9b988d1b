package engine

import (
	"net"
	"sort"

	"github.com/fleetwatch/fleetwatch/pkg/snapshot"
)

// GetAllDevices returns every monitored device, sorted by IP for a stable
// listing order.
func (e *Engine) GetAllDevices() []snapshot.DeviceStatus {
	return e.filterDevices(func(snapshot.DeviceStatus) bool { return true })
}

// GetMismatchedDevices returns online devices whose actual speed does not
// match their configured expected speed.
func (e *Engine) GetMismatchedDevices() []snapshot.DeviceStatus {
	return e.filterDevices(func(d snapshot.DeviceStatus) bool {
		return d.Online && d.ActualSpeed != "" && !d.SpeedMatch
	})
}

// GetMatchedDevices returns online devices whose actual speed matches,
// in dotted-quad numeric IP order.
func (e *Engine) GetMatchedDevices() []snapshot.DeviceStatus {
	return e.filterDevices(func(d snapshot.DeviceStatus) bool {
		return d.Online && d.SpeedMatch
	})
}

// GetOfflineDevices returns every device currently marked offline.
func (e *Engine) GetOfflineDevices() []snapshot.DeviceStatus {
	return e.filterDevices(func(d snapshot.DeviceStatus) bool {
		return !d.Online
	})
}

// filterDevices keeps every device (keyed by its resolved IP) matching
// keep, sorted by that resolved IP in dotted-quad numeric order.
func (e *Engine) filterDevices(keep func(snapshot.DeviceStatus) bool) []snapshot.DeviceStatus {
	snap := e.Snapshot()
	if snap == nil {
		return nil
	}
	type keyedDevice struct {
		ip     string
		status snapshot.DeviceStatus
	}
	out := make([]keyedDevice, 0, len(snap.Devices))
	for ip, d := range snap.Devices {
		if keep(d) {
			out = append(out, keyedDevice{ip: ip, status: d})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return lessIP(out[i].ip, out[j].ip)
	})

	statuses := make([]snapshot.DeviceStatus, len(out))
	for i, kd := range out {
		statuses[i] = kd.status
	}
	return statuses
}

// lessIP orders two resolved-IP keys in dotted-quad numeric order, e.g.
// "10.0.0.2" before "10.0.0.10". A key that doesn't parse as an IPv4
// literal (possible when DNS resolution failed this cycle) sorts after
// every key that does, falling back to a plain string comparison between
// two such keys.
func lessIP(a, b string) bool {
	ipA, okA := parseIPv4(a)
	ipB, okB := parseIPv4(b)
	if okA && okB {
		for i := range ipA {
			if ipA[i] != ipB[i] {
				return ipA[i] < ipB[i]
			}
		}
		return false
	}
	if okA != okB {
		return okA
	}
	return a < b
}

func parseIPv4(s string) ([4]byte, bool) {
	ip := net.ParseIP(s)
	if ip == nil {
		return [4]byte{}, false
	}
	v4 := ip.To4()
	if v4 == nil {
		return [4]byte{}, false
	}
	return [4]byte{v4[0], v4[1], v4[2], v4[3]}, true
}

// GetAllPorts returns every interface observed on every switch this cycle.
func (e *Engine) GetAllPorts() []snapshot.PortErrors {
	snap := e.Snapshot()
	if snap == nil {
		return nil
	}
	out := make([]snapshot.PortErrors, len(snap.Ports))
	copy(out, snap.Ports)
	return out
}

// GetPortsWithErrors returns ports flagged by HasIssues.
func (e *Engine) GetPortsWithErrors() []snapshot.PortErrors {
	snap := e.Snapshot()
	if snap == nil {
		return nil
	}
	out := make([]snapshot.PortErrors, 0)
	for _, p := range snap.Ports {
		if p.HasIssues {
			out = append(out, p)
		}
	}
	return out
}

// GetHealthyPorts returns ports whose link is up, sorted by switch name
// ascending and then by total traffic (rx+tx bytes) descending, so the
// busiest healthy links on each switch surface first.
func (e *Engine) GetHealthyPorts() []snapshot.PortErrors {
	snap := e.Snapshot()
	if snap == nil {
		return nil
	}
	out := make([]snapshot.PortErrors, 0)
	for _, p := range snap.Ports {
		if p.LinkStatus == "up" {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SwitchName != out[j].SwitchName {
			return out[i].SwitchName < out[j].SwitchName
		}
		return (out[i].RxBytes + out[i].TxBytes) > (out[j].RxBytes + out[j].TxBytes)
	})
	return out
}

// GetSwitchStatuses returns the reachability status of every configured
// switch this cycle.
func (e *Engine) GetSwitchStatuses() []snapshot.SwitchStatus {
	snap := e.Snapshot()
	if snap == nil {
		return nil
	}
	out := make([]snapshot.SwitchStatus, len(snap.Switches))
	copy(out, snap.Switches)
	return out
}

// GetSystemStatus aggregates the current snapshot into summary counts for
// a dashboard or health endpoint.
func (e *Engine) GetSystemStatus() SystemStatus {
	snap := e.Snapshot()
	if snap == nil {
		return SystemStatus{}
	}

	status := SystemStatus{
		TotalDevices:  len(snap.Devices),
		TotalPorts:    len(snap.Ports),
		SwitchesTotal: len(snap.Switches),
		LastPollAt:    snap.PublishedAt,
	}
	for _, d := range snap.Devices {
		if d.Online {
			status.OnlineDevices++
		} else {
			status.OfflineDevices++
		}
		if d.Online && d.ActualSpeed != "" && !d.SpeedMatch {
			status.MismatchedSpeeds++
		}
	}
	for _, p := range snap.Ports {
		if p.HasIssues {
			status.PortsWithErrors++
		}
	}
	for _, s := range snap.Switches {
		if s.Connected {
			status.SwitchesConnected++
		}
	}
	return status
}
