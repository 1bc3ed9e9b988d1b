package snapshot

import (
	"strings"
	"time"

	"github.com/fleetwatch/fleetwatch/pkg/inventory"
	"github.com/fleetwatch/fleetwatch/pkg/routeros"
)

// Config tunes builder behavior that is kept as a site-specific hook
// rather than a hard-coded rule.
type Config struct {
	// UnmanagedSwitchTags lists case-insensitive substrings of a neighbor
	// identity that mark it as an unmanaged switch whose uplinks should
	// not be labeled with that identity in PortErrors.DeviceName.
	UnmanagedSwitchTags []string
}

// DefaultConfig returns the builder configuration matching the original
// deployment's single unmanaged-switch tag.
func DefaultConfig() Config {
	return Config{UnmanagedSwitchTags: []string{"basic_switch"}}
}

// SwitchResult is one switch's outcome for the cycle: either Data from a
// successful FetchAll, or Err from a failed connect/fetch.
type SwitchResult struct {
	Switch inventory.Switch
	Data   *routeros.SwitchData
	Err    error
}

// Reachable reports whether this switch produced usable data this cycle.
func (r SwitchResult) Reachable() bool {
	return r.Err == nil && r.Data != nil
}

// Build joins inventory with this cycle's per-switch RouterOS data into a
// fresh device/port view. previous carries DeviceStatus.LastSeen forward
// across cycles, keyed by resolved IP. now is this cycle's timestamp,
// stamped into LastSeen for every device seen this cycle.
func Build(cfg Config, inv *inventory.Inventory, results []SwitchResult, previous map[string]DeviceStatus, now time.Time) (map[string]DeviceStatus, []PortErrors) {
	statuses, deviceConfig := seed(inv, previous)

	macToIP, ipToMAC := buildIndex(inv, results)

	var ports []PortErrors
	for _, r := range results {
		if !r.Reachable() {
			continue
		}
		ports = append(ports, attribute(cfg, r, statuses, deviceConfig, macToIP, ipToMAC, now)...)
	}

	return statuses, ports
}

// seed is Pass A: one zeroed DeviceStatus per inventory device, keyed by
// resolved IP, with LastSeen carried over from the previous cycle.
func seed(inv *inventory.Inventory, previous map[string]DeviceStatus) (map[string]DeviceStatus, map[string]inventory.Device) {
	statuses := make(map[string]DeviceStatus, len(inv.Devices))
	deviceConfig := make(map[string]inventory.Device, len(inv.Devices))

	for _, d := range inv.Devices {
		ip := inventory.ResolveAddress(d.Address)
		status := DeviceStatus{
			Name:           d.Name,
			DisplayAddress: d.Address,
			ExpectedSpeed:  d.ExpectedSpeed,
		}
		if prev, ok := previous[ip]; ok {
			status.LastSeen = prev.LastSeen
		}
		statuses[ip] = status
		deviceConfig[ip] = d
	}

	return statuses, deviceConfig
}

// buildIndex is Pass B: the global MAC<->IP index, built in strict
// precedence order inventory < DHCP < ARP. ARP is overlaid unconditionally
// (always wins); DHCP is overlaid only where neither the MAC nor the IP has
// an ARP entry, so it never overwrites an ARP-sourced pairing.
func buildIndex(inv *inventory.Inventory, results []SwitchResult) (macToIP, ipToMAC map[string]string) {
	macToIP = make(map[string]string)
	ipToMAC = make(map[string]string)

	for _, d := range inv.Devices {
		if d.MAC == "" {
			continue
		}
		mac := strings.ToUpper(d.MAC)
		ip := inventory.ResolveAddress(d.Address)
		macToIP[mac] = ip
		ipToMAC[ip] = mac
	}

	arpMAC := make(map[string]bool)
	arpIP := make(map[string]bool)
	for _, r := range results {
		if !r.Reachable() {
			continue
		}
		for _, a := range r.Data.Arp {
			macToIP[a.MAC] = a.IP
			ipToMAC[a.IP] = a.MAC
			arpMAC[a.MAC] = true
			arpIP[a.IP] = true
		}
	}

	for _, r := range results {
		if !r.Reachable() {
			continue
		}
		for _, lease := range r.Data.Dhcp {
			if arpMAC[lease.MAC] || arpIP[lease.IP] {
				continue
			}
			macToIP[lease.MAC] = lease.IP
			ipToMAC[lease.IP] = lease.MAC
		}
	}

	return macToIP, ipToMAC
}

// attribute is Pass C for one switch: device attribution plus the port
// error rows for its interfaces.
func attribute(cfg Config, r SwitchResult, statuses map[string]DeviceStatus, deviceConfig map[string]inventory.Device, macToIP, ipToMAC map[string]string, now time.Time) []PortErrors {
	identity := r.Data.Identity
	if identity == "" {
		identity = r.Switch.Name
	}

	macToPort := make(map[string]string, len(r.Data.BridgeHosts))
	for _, bh := range r.Data.BridgeHosts {
		macToPort[bh.MAC] = bh.Interface
	}

	portInfo := make(map[string]routeros.InterfaceInfo, len(r.Data.Interfaces))
	for _, iface := range r.Data.Interfaces {
		portInfo[iface.Name] = iface
	}

	for mac, port := range macToPort {
		ip, ok := macToIP[mac]
		if !ok {
			continue
		}
		status, ok := statuses[ip]
		if !ok {
			continue
		}

		status.MAC = mac
		status.Online = true
		status.LastSeen = now

		device := deviceConfig[ip]
		switch {
		case device.Pinned() && device.ExpectedSwitch == identity:
			status.SwitchName = identity
			status.PortName = device.ExpectedPort
			applySpeed(&status, portInfo[device.ExpectedPort])
		case !device.Pinned():
			_, isUplink := r.Data.UplinkPorts[port]
			if !isUplink && status.PortName == "" {
				status.SwitchName = identity
				status.PortName = port
				applySpeed(&status, portInfo[port])
			}
		}

		statuses[ip] = status
	}

	portToDevice := buildPortToDevice(cfg, identity, r.Data.UplinkPorts, statuses)

	ports := make([]PortErrors, 0, len(r.Data.Interfaces))
	for _, iface := range r.Data.Interfaces {
		pe := PortErrors{
			SwitchName:      identity,
			PortName:        iface.Name,
			DeviceName:      portToDevice[iface.Name],
			NegotiatedSpeed: routeros.NormalizeSpeed(iface.NegotiatedSpeed),
			FullDuplex:      iface.FullDuplex,
			RxBytes:         iface.RxBytes,
			TxBytes:         iface.TxBytes,
			RxDropped:       iface.RxDropped,
			TxDropped:       iface.TxDropped,
			RxErrors:        iface.RxErrors,
			TxErrors:        iface.TxErrors,
			RxFcsErrors:     iface.RxFcsErrors,
			TxFcsErrors:     iface.TxFcsErrors,
			RxPause:         iface.RxPause,
			TxPause:         iface.TxPause,
			RxFragment:      iface.RxFragment,
		}
		if iface.Running {
			pe.LinkStatus = "up"
		} else {
			pe.LinkStatus = "down"
		}
		pe.HasIssues = computeHasIssues(pe)
		ports = append(ports, pe)
	}

	return ports
}

func applySpeed(status *DeviceStatus, info routeros.InterfaceInfo) {
	status.ActualSpeed = routeros.NormalizeSpeed(info.NegotiatedSpeed)
	status.SpeedMatch = status.ActualSpeed != "" && status.ActualSpeed == routeros.NormalizeSpeed(status.ExpectedSpeed)
}

// buildPortToDevice labels each port on this switch with the name shown in
// PortErrors.DeviceName: neighbor identities first (excluding unmanaged-
// switch tags), then overwritten by any device attributed to this switch,
// since a known endpoint living on an uplink port is more informative than
// the neighbor identity.
func buildPortToDevice(cfg Config, identity string, uplinkPorts map[string]string, statuses map[string]DeviceStatus) map[string]string {
	portToDevice := make(map[string]string, len(uplinkPorts))

	for port, peerIdentity := range uplinkPorts {
		if isUnmanagedSwitch(cfg, peerIdentity) {
			continue
		}
		portToDevice[port] = peerIdentity
	}

	for _, status := range statuses {
		if status.SwitchName == identity && status.PortName != "" {
			portToDevice[status.PortName] = status.Name
		}
	}

	return portToDevice
}

func isUnmanagedSwitch(cfg Config, identity string) bool {
	lower := strings.ToLower(identity)
	for _, tag := range cfg.UnmanagedSwitchTags {
		if strings.Contains(lower, strings.ToLower(tag)) {
			return true
		}
	}
	return false
}
