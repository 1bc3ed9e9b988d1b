// Package orchestrator runs the poll cycle: fan out to every configured
// switch concurrently, join the results into a snapshot, verify liveness,
// publish, detect events, and notify.
package orchestrator

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"

	"github.com/fleetwatch/fleetwatch/pkg/engine"
	"github.com/fleetwatch/fleetwatch/pkg/inventory"
	"github.com/fleetwatch/fleetwatch/pkg/metrics"
	"github.com/fleetwatch/fleetwatch/pkg/notify"
	"github.com/fleetwatch/fleetwatch/pkg/routeros"
	"github.com/fleetwatch/fleetwatch/pkg/snapshot"
	"github.com/fleetwatch/fleetwatch/pkg/util"
)

const defaultPoolSize = 16

// Config tunes the orchestrator's runtime behavior.
type Config struct {
	PollInterval time.Duration
	PoolSize     int
	SnapshotCfg  snapshot.Config
}

// Orchestrator owns the ticker loop and the single goroutine that mutates
// engine state between cycles.
type Orchestrator struct {
	cfg  Config
	inv  *inventory.Inventory
	eng  *engine.Engine
	sink *notify.Sink
	pool pond.ResultPool[snapshot.SwitchResult]
	busy atomic.Bool
}

// New builds an Orchestrator for the given inventory. sink may be nil to
// disable outbound notifications.
func New(cfg Config, inv *inventory.Inventory, eng *engine.Engine, sink *notify.Sink) *Orchestrator {
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Second
	}

	return &Orchestrator{
		cfg:  cfg,
		inv:  inv,
		eng:  eng,
		sink: sink,
		pool: pond.NewResultPool[snapshot.SwitchResult](poolSize),
	}
}

// Run ticks immediately and then every PollInterval until ctx is canceled.
// It also services the engine's refresh-request channel for on-demand
// collections triggered by the read API.
func (o *Orchestrator) Run(ctx context.Context) {
	ticker := time.NewTicker(o.cfg.PollInterval)
	defer ticker.Stop()

	o.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.tick(ctx)
		case <-o.eng.RefreshRequests():
			o.tick(ctx)
		}
	}
}

// Once runs a single collection cycle synchronously and returns the
// resulting snapshot, for one-shot CLI invocations outside the poll loop.
func (o *Orchestrator) Once(ctx context.Context) *engine.Snapshot {
	o.tick(ctx)
	return o.eng.Snapshot()
}

// tick runs one collection cycle, dropping the tick entirely if the prior
// cycle is still in flight rather than queuing up concurrent cycles.
func (o *Orchestrator) tick(ctx context.Context) {
	if !o.busy.CompareAndSwap(false, true) {
		util.Debug("skipping poll tick: previous cycle still running")
		return
	}
	defer o.busy.Store(false)

	start := time.Now()
	o.collect(ctx)
	metrics.PollDuration.Observe(time.Since(start).Seconds())
}

func (o *Orchestrator) collect(ctx context.Context) {
	results := o.queryAllSwitches(ctx)

	previous := devicesFromSnapshot(o.eng.Snapshot())
	now := time.Now()
	statuses, ports := snapshot.Build(o.cfg.SnapshotCfg, o.inv, results, previous, now)

	if router, ok := o.inv.RouterSwitch(); ok {
		if routerResult := findResult(results, router.Name); routerResult.Reachable() {
			if client, err := routeros.Connect(ctx, router.Name, routeros.FormatAddress(router.Host, router.ManagementPort), router.Username, router.Password); err == nil {
				snapshot.VerifyLiveness(ctx, client, statuses)
				client.Close()
				// A device forced offline was stamped with now in Build;
				// give it back the LastSeen carried over from the previous cycle.
				for ip, st := range statuses {
					if !st.Online && st.LastSeen.Equal(now) {
						st.LastSeen = previous[ip].LastSeen
						statuses[ip] = st
					}
				}
			}
		}
	}

	switchStatuses := buildSwitchStatuses(o.inv, results)

	snap := &engine.Snapshot{
		Devices:     statuses,
		Ports:       ports,
		Switches:    switchStatuses,
		PublishedAt: time.Now(),
	}
	o.eng.Publish(snap)

	events := o.eng.DetectEvents(snap, snap.PublishedAt)
	for _, e := range events {
		o.sink.Send(ctx, e.EventType, e.Data)
	}

	o.updateMetrics(switchStatuses)
}

func (o *Orchestrator) queryAllSwitches(ctx context.Context) []snapshot.SwitchResult {
	group := o.pool.NewGroupContext(ctx)

	for _, sw := range o.inv.Switches {
		sw := sw
		group.SubmitErr(func() (snapshot.SwitchResult, error) {
			return queryOneSwitch(ctx, sw), nil
		})
	}

	results, err := group.Wait()
	if err != nil {
		util.Errorf("poll cycle: unexpected pool error: %v", err)
	}
	return results
}

func queryOneSwitch(ctx context.Context, sw inventory.Switch) snapshot.SwitchResult {
	address := routeros.FormatAddress(sw.Host, sw.ManagementPort)
	client, err := routeros.Connect(ctx, sw.Name, address, sw.Username, sw.Password)
	if err != nil {
		util.WithSwitch(sw.Name).Warnf("connect failed: %v", err)
		metrics.PollErrorsTotal.WithLabelValues(sw.Name).Inc()
		return snapshot.SwitchResult{Switch: sw, Err: err}
	}
	defer client.Close()

	data, err := client.FetchAll(ctx)
	if err != nil {
		util.WithSwitch(sw.Name).Warnf("fetch failed: %v", err)
		metrics.PollErrorsTotal.WithLabelValues(sw.Name).Inc()
		return snapshot.SwitchResult{Switch: sw, Err: err}
	}

	return snapshot.SwitchResult{Switch: sw, Data: data}
}

func findResult(results []snapshot.SwitchResult, switchName string) snapshot.SwitchResult {
	for _, r := range results {
		if r.Switch.Name == switchName {
			return r
		}
	}
	return snapshot.SwitchResult{}
}

func buildSwitchStatuses(inv *inventory.Inventory, results []snapshot.SwitchResult) []snapshot.SwitchStatus {
	now := time.Now()
	statuses := make([]snapshot.SwitchStatus, 0, len(inv.Switches))
	for _, sw := range inv.Switches {
		r := findResult(results, sw.Name)
		name := sw.Name
		if r.Reachable() && r.Data.Identity != "" {
			name = r.Data.Identity
		}
		status := snapshot.SwitchStatus{
			Name:      name,
			Host:      sw.Host,
			Connected: r.Reachable(),
			LastCheck: now,
		}
		if r.Err != nil {
			status.Error = r.Err.Error()
		}
		statuses = append(statuses, status)
	}
	return statuses
}

func devicesFromSnapshot(snap *engine.Snapshot) map[string]snapshot.DeviceStatus {
	if snap == nil {
		return nil
	}
	return snap.Devices
}

func (o *Orchestrator) updateMetrics(switchStatuses []snapshot.SwitchStatus) {
	status := o.eng.GetSystemStatus()

	reachability := make([]metrics.SwitchHealth, 0, len(switchStatuses))
	for _, s := range switchStatuses {
		reachability = append(reachability, metrics.SwitchHealth{Name: s.Name, Connected: s.Connected})
	}
	metrics.Update(status, reachability)
}
