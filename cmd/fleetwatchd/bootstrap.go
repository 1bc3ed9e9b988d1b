package main

import (
	"fmt"

	"github.com/fleetwatch/fleetwatch/pkg/config"
	"github.com/fleetwatch/fleetwatch/pkg/engine"
	"github.com/fleetwatch/fleetwatch/pkg/inventory"
	"github.com/fleetwatch/fleetwatch/pkg/notify"
	"github.com/fleetwatch/fleetwatch/pkg/orchestrator"
	"github.com/fleetwatch/fleetwatch/pkg/snapshot"
	"github.com/fleetwatch/fleetwatch/pkg/util"
)

// setup loads the environment-sourced configuration and inventory, and
// wires an Engine/Orchestrator pair ready to run. Shared by "run" and
// "once" so both commands see identical collection behavior.
func setup() (config.Config, *engine.Engine, *orchestrator.Orchestrator, error) {
	cfg := config.FromEnv()

	inv, err := inventory.Load(cfg.ConfigDir)
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("%w: %v", errConfigInvalid, err)
	}
	util.WithField("switches", len(inv.Switches)).WithField("devices", len(inv.Devices)).Info("loaded inventory")

	eng := engine.New()

	var sink *notify.Sink
	if webhookURL != "" {
		sink = notify.NewSink(webhookURL, nil)
	}

	orch := orchestrator.New(orchestrator.Config{
		PollInterval: cfg.PollInterval,
		SnapshotCfg:  snapshot.DefaultConfig(),
	}, inv, eng, sink)

	return cfg, eng, orch, nil
}
