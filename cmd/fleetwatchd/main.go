package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fleetwatch/fleetwatch/pkg/version"
)

// Sentinel errors for exit code mapping. RunE handlers return these instead
// of calling os.Exit directly, so deferred cleanup (closed switch sessions,
// flushed logs) runs before the process exits.
var (
	errConfigInvalid = errors.New("invalid configuration")
	errPollFailed    = errors.New("poll cycle failed")
)

var (
	webhookURL  string
	metricsAddr string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fleetwatchd",
		Short: "Switch-fleet device and port monitor",
		Long: `fleetwatchd polls a fleet of RouterOS switches for connected-device
presence, negotiated link speed, and port error counters, and exposes
summary counts of the joined view as Prometheus metrics.

  fleetwatchd run                  # start the poll loop and metrics endpoint
  fleetwatchd once                 # run a single collection and print it
  fleetwatchd version               # print version information`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	}

	rootCmd.PersistentFlags().StringVar(&webhookURL, "webhook-url", "", "webhook URL to POST detected events to (disabled if empty)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", ":9090", "bind address for the Prometheus metrics endpoint")

	rootCmd.AddCommand(
		newRunCmd(),
		newOnceCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				if version.Version == "dev" {
					fmt.Println("fleetwatchd dev build (use -ldflags for version info)")
				} else {
					fmt.Printf("fleetwatchd %s (%s)\n", version.Version, version.GitCommit)
				}
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errPollFailed) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
