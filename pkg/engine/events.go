package engine

import (
	"time"

	"github.com/fleetwatch/fleetwatch/pkg/snapshot"
)

const (
	EventDeviceOffline        = "device_offline"
	EventDeviceOnline         = "device_online"
	EventSpeedMismatch        = "device_speed_mismatch"
	EventPortErrorsRising     = "port_errors_rising"
	trendHistoryLen           = 3
	trendNotificationCooldown = 30 * time.Minute
)

// Event is one notification-worthy transition produced by DetectEvents.
// Data holds one of the payload types below, matched to EventType.
type Event struct {
	EventType string
	Timestamp time.Time
	Data      interface{}
}

// DevicePayload backs device_offline, device_online, and
// device_speed_mismatch events.
type DevicePayload struct {
	Action        string    `json:"action,omitempty"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	MAC           string    `json:"mac,omitempty"`
	SwitchName    string    `json:"switch_name,omitempty"`
	PortName      string    `json:"port_name,omitempty"`
	ExpectedSpeed string    `json:"expected_speed,omitempty"`
	ActualSpeed   string    `json:"actual_speed,omitempty"`
	LastSeen      time.Time `json:"last_seen,omitempty"`
}

// PortTrendPayload backs port_errors_rising events.
type PortTrendPayload struct {
	Action          string  `json:"action"`
	SwitchName      string  `json:"switch_name"`
	PortName        string  `json:"port_name"`
	DeviceName      string  `json:"device_name,omitempty"`
	ErrorHistory    []int64 `json:"error_history"`
	CooldownMinutes int     `json:"cooldown_minutes"`
}

func devicePayload(action, ip string, dev snapshot.DeviceStatus) DevicePayload {
	return DevicePayload{
		Action:        action,
		Name:          dev.Name,
		Address:       ip,
		MAC:           dev.MAC,
		SwitchName:    dev.SwitchName,
		PortName:      dev.PortName,
		ExpectedSpeed: dev.ExpectedSpeed,
		ActualSpeed:   dev.ActualSpeed,
		LastSeen:      dev.LastSeen,
	}
}

// detector remembers the previous cycle's online/mismatch state and each
// port's recent error-total history, so DetectEvents can tell transitions
// from steady state.
type detector struct {
	prevOnline     map[string]struct{} // set of IPs that were online last cycle
	prevMismatched map[string]bool

	portHistory  map[string][]int64   // keyed by "switch|port"
	lastNotified map[string]time.Time // keyed by "switch|port"
}

func newDetector() *detector {
	return &detector{
		prevOnline:     make(map[string]struct{}),
		prevMismatched: make(map[string]bool),
		portHistory:    make(map[string][]int64),
		lastNotified:   make(map[string]time.Time),
	}
}

func portKey(switchName, portName string) string {
	return switchName + "|" + portName
}

// detect runs the four independent checks in the mandated order: offline
// transitions, online transitions, mismatch transitions, then port error
// trend notifications. Each check is compared against the state remembered
// from the prior call, then that state is replaced with this cycle's.
func (d *detector) detect(snap *Snapshot, now time.Time) []Event {
	prevOnline := d.prevOnline
	// device_online is suppressed whenever the previous cycle's online set
	// was empty — not only on the very first cycle, but any time a cycle
	// follows one where every device read offline — so a fleet-wide outage
	// recovering doesn't flood one device_online per device.
	suppressOnline := len(prevOnline) == 0
	nextOnline := make(map[string]struct{}, len(snap.Devices))

	var events, onlineEvents []Event
	for ip, dev := range snap.Devices {
		_, wasOnline := prevOnline[ip]
		if dev.Online {
			nextOnline[ip] = struct{}{}
		}

		if wasOnline && !dev.Online {
			events = append(events, Event{
				EventType: EventDeviceOffline,
				Timestamp: now,
				Data:      devicePayload(EventDeviceOffline, ip, dev),
			})
		} else if !wasOnline && dev.Online && !suppressOnline {
			onlineEvents = append(onlineEvents, Event{
				EventType: EventDeviceOnline,
				Timestamp: now,
				Data:      devicePayload(EventDeviceOnline, ip, dev),
			})
		}
	}
	d.prevOnline = nextOnline

	events = append(events, onlineEvents...)
	events = append(events, d.detectMismatch(snap, now)...)
	events = append(events, d.detectPortTrend(snap, now)...)

	return events
}

// detectMismatch fires mismatch_detected when a device newly disagrees with
// its configured expected speed, and mismatch_fixed when a previously
// mismatched device now agrees. Unlike presence transitions, this runs on
// the first cycle too: a device mismatched from the very first reading is
// still news.
func (d *detector) detectMismatch(snap *Snapshot, now time.Time) []Event {
	prevMismatched := d.prevMismatched
	nextMismatched := make(map[string]bool, len(snap.Devices))

	var events []Event
	for ip, dev := range snap.Devices {
		if !dev.Online || dev.ActualSpeed == "" {
			continue
		}
		isMismatched := !dev.SpeedMatch
		nextMismatched[ip] = isMismatched

		wasMismatched := prevMismatched[ip]
		if isMismatched && !wasMismatched {
			events = append(events, Event{
				EventType: EventSpeedMismatch,
				Timestamp: now,
				Data:      devicePayload("mismatch_detected", ip, dev),
			})
		} else if !isMismatched && wasMismatched {
			events = append(events, Event{
				EventType: EventSpeedMismatch,
				Timestamp: now,
				Data:      devicePayload("mismatch_fixed", ip, dev),
			})
		}
	}
	d.prevMismatched = nextMismatched
	return events
}

// detectPortTrend tracks the last three TotalErrors() readings per port. A
// strictly increasing sequence of three readings fires port_errors_rising,
// subject to a 30-minute cooldown per port that is set only when a
// notification actually fires — a window that stops rising does not reset
// or extend the cooldown on its own.
func (d *detector) detectPortTrend(snap *Snapshot, now time.Time) []Event {
	var events []Event

	for _, p := range snap.Ports {
		key := portKey(p.SwitchName, p.PortName)
		total := p.TotalErrors()

		history := append(d.portHistory[key], total)
		if len(history) > trendHistoryLen {
			history = history[len(history)-trendHistoryLen:]
		}
		d.portHistory[key] = history

		if !strictlyIncreasing(history) {
			continue
		}
		if last, ok := d.lastNotified[key]; ok && now.Sub(last) < trendNotificationCooldown {
			continue
		}

		d.lastNotified[key] = now
		events = append(events, Event{
			EventType: EventPortErrorsRising,
			Timestamp: now,
			Data: PortTrendPayload{
				Action:          "errors_increasing",
				SwitchName:      p.SwitchName,
				PortName:        p.PortName,
				DeviceName:      p.DeviceName,
				ErrorHistory:    append([]int64(nil), history...),
				CooldownMinutes: int(trendNotificationCooldown / time.Minute),
			},
		})
	}

	return events
}

func strictlyIncreasing(history []int64) bool {
	if len(history) < trendHistoryLen {
		return false
	}
	for i := 1; i < len(history); i++ {
		if history[i] <= history[i-1] {
			return false
		}
	}
	return true
}
