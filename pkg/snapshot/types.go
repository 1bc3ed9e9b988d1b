// Package snapshot joins per-switch RouterOS data with the configured
// inventory into the device/port view the engine publishes each cycle.
package snapshot

import "time"

// DeviceStatus is the derived, per-inventory-device view, keyed by the
// device's resolved IP.
//
// Invariants: SpeedMatch implies ActualSpeed == normalize(ExpectedSpeed)
// and ActualSpeed != "". Online implies MAC != "". SwitchName != "" iff
// PortName != "". LastSeen only ever advances; it is never cleared on a
// transient offline cycle.
type DeviceStatus struct {
	Name           string
	DisplayAddress string
	MAC            string
	ExpectedSpeed  string
	ActualSpeed    string
	SwitchName     string
	PortName       string
	SpeedMatch     bool
	Online         bool
	LastSeen       time.Time
}

// PortErrors is the derived, per-ethernet-interface-per-switch-per-cycle view.
//
// Invariant: HasIssues is the exact disjunction of the error counters and
// duplex flag below — not a heuristic.
type PortErrors struct {
	SwitchName      string
	PortName        string
	DeviceName      string // attributed endpoint or neighbor identity, if any
	LinkStatus      string // "up" or "down"
	NegotiatedSpeed string

	FullDuplex bool

	RxBytes     int64
	TxBytes     int64
	RxDropped   int64
	TxDropped   int64
	RxErrors    int64
	TxErrors    int64
	RxFcsErrors int64
	TxFcsErrors int64
	RxPause     int64
	TxPause     int64
	RxFragment  int64

	HasIssues bool
}

// TotalErrors sums the nine counters the event detector's port-error trend
// tracks. Bytes are excluded; they are volume, not error, counters.
func (p PortErrors) TotalErrors() int64 {
	return p.RxDropped + p.TxDropped + p.RxErrors + p.TxErrors +
		p.RxFcsErrors + p.TxFcsErrors + p.RxPause + p.TxPause + p.RxFragment
}

// computeHasIssues applies the exact invariant from the data model: any of
// the eight listed counters above zero, or the link is not running full
// duplex. Note tx_pause is part of TotalErrors but deliberately excluded
// here — only rx_pause contributes to HasIssues.
func computeHasIssues(p PortErrors) bool {
	return p.RxDropped > 0 || p.TxDropped > 0 || p.RxErrors > 0 || p.TxErrors > 0 ||
		p.RxFcsErrors > 0 || p.TxFcsErrors > 0 || p.RxPause > 0 || p.RxFragment > 0 ||
		!p.FullDuplex
}

// SwitchStatus reports whether a configured switch answered this cycle.
type SwitchStatus struct {
	Name      string // learned identity, falls back to configured name
	Host      string
	Connected bool
	Error     string
	LastCheck time.Time
}
