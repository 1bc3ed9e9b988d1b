package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fleetwatch/fleetwatch/pkg/cli"
	"github.com/fleetwatch/fleetwatch/pkg/engine"
)

func newOnceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run a single collection cycle and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			_, eng, orch, err := setup()
			if err != nil {
				return err
			}

			orch.Once(ctx)

			printDeviceTable(eng)
			fmt.Println()
			printPortTable(eng)
			fmt.Println()
			printSwitchTable(eng)

			switches := eng.GetSwitchStatuses()
			anyReachable := false
			for _, s := range switches {
				if s.Connected {
					anyReachable = true
					break
				}
			}
			if len(switches) > 0 && !anyReachable {
				return errPollFailed
			}
			return nil
		},
	}
}

func printDeviceTable(eng *engine.Engine) {
	table := cli.NewTable("DEVICE", "ADDRESS", "SWITCH", "PORT", "SPEED", "STATUS")
	for _, d := range eng.GetAllDevices() {
		status := cli.Green("online")
		if !d.Online {
			status = cli.Red("offline")
		} else if d.ActualSpeed != "" && !d.SpeedMatch {
			status = cli.Yellow("mismatch")
		}
		speed := d.ActualSpeed
		if d.ExpectedSpeed != "" {
			speed = fmt.Sprintf("%s (want %s)", d.ActualSpeed, d.ExpectedSpeed)
		}
		table.Row(d.Name, d.DisplayAddress, d.SwitchName, d.PortName, speed, status)
	}
	table.Flush()
}

func printPortTable(eng *engine.Engine) {
	table := cli.NewTable("SWITCH", "PORT", "DEVICE", "LINK", "SPEED", "ISSUES")
	for _, p := range eng.GetAllPorts() {
		issues := cli.Green("clean")
		if p.HasIssues {
			issues = cli.Red(fmt.Sprintf("%d errors", p.TotalErrors()))
		}
		table.Row(p.SwitchName, p.PortName, p.DeviceName, p.LinkStatus, p.NegotiatedSpeed, issues)
	}
	table.Flush()
}

func printSwitchTable(eng *engine.Engine) {
	table := cli.NewTable("SWITCH", "HOST", "STATUS", "ERROR")
	for _, s := range eng.GetSwitchStatuses() {
		status := cli.Green("connected")
		if !s.Connected {
			status = cli.Red("unreachable")
		}
		table.Row(s.Name, s.Host, status, s.Error)
	}
	table.Flush()
}
