package snapshot

import (
	"context"

	"github.com/fleetwatch/fleetwatch/pkg/util"
)

// Pinger is the subset of *routeros.Client the liveness verifier needs.
// Declared here, satisfied there — callers pass the router's session.
type Pinger interface {
	Ping(ctx context.Context, address string) (bool, error)
}

// VerifyLiveness re-pings every device marked online through router, the
// switch designated to reach every monitored subnet. Any IP whose ping
// does not return a received response is forced offline for this cycle.
// VerifyLiveness does not change LastSeen; Build has already set it to the
// cycle time for every device seen this cycle, and the orchestrator puts the
// previous cycle's value back for devices forced offline here. Call sites
// skip this step entirely (fail open) when the router switch itself could
// not be reached this cycle.
func VerifyLiveness(ctx context.Context, router Pinger, statuses map[string]DeviceStatus) {
	for ip, status := range statuses {
		if !status.Online {
			continue
		}
		ok, err := router.Ping(ctx, ip)
		if err != nil {
			util.WithField("ip", ip).Debugf("liveness ping: %v", err)
		}
		if !ok {
			status.Online = false
			statuses[ip] = status
		}
	}
}
