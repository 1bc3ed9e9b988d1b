package routeros

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	goros "github.com/go-routeros/routeros/v3"

	"github.com/fleetwatch/fleetwatch/pkg/util"
)

const (
	connectTimeout = 5 * time.Second
	queryTimeout   = 10 * time.Second
)

// Client is a single scoped RouterOS API session. It is not reused across
// poll cycles: Connect, fetch, Close. A crashed or wedged session only ever
// affects the one switch and cycle that opened it.
type Client struct {
	name    string
	address string

	mu   sync.Mutex
	conn *goros.Client
}

// Connect dials a RouterOS switch and authenticates. name is the switch's
// configured name (for error/log context), address is host:port.
func Connect(ctx context.Context, name, address, username, password string) (*Client, error) {
	conn, err := goros.DialTimeout(address, username, password, connectTimeout)
	if err != nil {
		return nil, util.NewSwitchError(name, address, "connect", err)
	}
	return &Client{name: name, address: address, conn: conn}, nil
}

// Close releases the underlying session. Safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// run executes one command and logs-and-returns on failure; callers treat a
// failed query as "yields empty for this table", never as a fatal error for
// the whole FetchAll. ctx's deadline is checked before the query is issued,
// so a cycle that has already timed out stops dialing into further tables
// instead of running them anyway.
func (c *Client) run(ctx context.Context, sentence ...string) (*goros.Reply, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil, util.ErrNotConnected
	}
	return c.conn.Run(sentence...)
}

// FetchAll collects identity, ARP, DHCP leases, bridge host table, interface
// counters and neighbor-derived uplink ports in one scoped session. Each
// sub-query failure is logged and yields an empty result for that table;
// only a failed Connect (already happened before FetchAll is called) aborts
// the whole switch for this cycle.
func (c *Client) FetchAll(ctx context.Context) (*SwitchData, error) {
	data := &SwitchData{
		UplinkPorts: make(map[string]string),
	}

	data.Identity = c.fetchIdentity(ctx)
	data.Arp = c.fetchArp(ctx)
	data.Dhcp = c.fetchDhcpLeases(ctx)
	data.BridgeHosts = c.fetchBridgeHosts(ctx)
	data.UplinkPorts = c.fetchUplinkPorts(ctx)
	data.Interfaces = c.fetchInterfaces(ctx)

	return data, nil
}

func (c *Client) fetchIdentity(ctx context.Context) string {
	reply, err := c.run(ctx, "/system/identity/print")
	if err != nil || len(reply.Re) == 0 {
		if err != nil {
			util.WithSwitch(c.name).Warnf("fetching system identity: %v", err)
		}
		return c.name
	}
	if name := reply.Re[0].Map["name"]; name != "" {
		return name
	}
	return c.name
}

func (c *Client) fetchArp(ctx context.Context) []ArpEntry {
	reply, err := c.run(ctx, "/ip/arp/print")
	if err != nil {
		util.WithSwitch(c.name).Warnf("fetching arp table: %v", err)
		return nil
	}
	var entries []ArpEntry
	for _, re := range reply.Re {
		addr, mac := re.Map["address"], re.Map["mac-address"]
		if addr == "" || mac == "" {
			continue
		}
		entries = append(entries, ArpEntry{
			IP:        addr,
			MAC:       strings.ToUpper(mac),
			Interface: re.Map["interface"],
		})
	}
	return entries
}

func (c *Client) fetchDhcpLeases(ctx context.Context) []DhcpLease {
	reply, err := c.run(ctx, "/ip/dhcp-server/lease/print")
	if err != nil {
		// Absence of a DHCP server on this switch is not an error.
		util.WithSwitch(c.name).Debugf("fetching dhcp leases: %v", err)
		return nil
	}
	var leases []DhcpLease
	for _, re := range reply.Re {
		addr, mac := re.Map["address"], re.Map["mac-address"]
		if addr == "" || mac == "" {
			continue
		}
		leases = append(leases, DhcpLease{IP: addr, MAC: strings.ToUpper(mac)})
	}
	return leases
}

func (c *Client) fetchBridgeHosts(ctx context.Context) []BridgeHost {
	reply, err := c.run(ctx, "/interface/bridge/host/print")
	if err != nil {
		util.WithSwitch(c.name).Warnf("fetching bridge host table: %v", err)
		return nil
	}
	var hosts []BridgeHost
	for _, re := range reply.Re {
		mac, iface := re.Map["mac-address"], re.Map["on-interface"]
		if mac == "" || iface == "" {
			continue
		}
		hosts = append(hosts, BridgeHost{
			MAC:       strings.ToUpper(mac),
			Interface: iface,
			Bridge:    re.Map["bridge"],
		})
	}
	return hosts
}

// fetchUplinkPorts reads ip/neighbor: any row with a non-empty identity
// marks its interface as an uplink. The interface field may be a
// comma-joined list (e.g. "ether3,bridge"); the physical port is the first
// segment. A port that resolves to the literal "bridge" is discarded.
func (c *Client) fetchUplinkPorts(ctx context.Context) map[string]string {
	uplinks := make(map[string]string)
	reply, err := c.run(ctx, "/ip/neighbor/print")
	if err != nil {
		util.WithSwitch(c.name).Debugf("fetching neighbor table: %v", err)
		return uplinks
	}
	for _, re := range reply.Re {
		identity := re.Map["identity"]
		if identity == "" {
			continue
		}
		segments := util.SplitCommaSeparated(re.Map["interface"])
		if len(segments) == 0 {
			continue
		}
		port := segments[0]
		if port == "bridge" {
			continue
		}
		uplinks[port] = identity
	}
	return uplinks
}

func (c *Client) fetchInterfaces(ctx context.Context) []InterfaceInfo {
	reply, err := c.run(ctx, "/interface/ethernet/print")
	if err != nil {
		util.WithSwitch(c.name).Warnf("fetching ethernet interfaces: %v", err)
		return nil
	}
	var infos []InterfaceInfo
	for _, re := range reply.Re {
		name := re.Map["name"]
		if name == "" {
			continue
		}
		info := InterfaceInfo{
			Name:       name,
			Type:       re.Map["type"],
			Running:    re.Map["running"] == "true",
			FullDuplex: true,
		}

		info.RxBytes = parseCounter(re.Map["rx-bytes"])
		info.TxBytes = parseCounter(re.Map["tx-bytes"])
		info.RxDropped = parseCounter(re.Map["rx-overflow"])
		info.TxDropped = parseCounter(re.Map["tx-drop-packet"])
		info.RxErrors = parseCounter(re.Map["rx-error-events"])
		info.TxErrors = parseCounter(re.Map["tx-underrun"])
		info.RxFcsErrors = parseCounter(re.Map["rx-fcs-error"])
		info.TxFcsErrors = parseCounter(re.Map["tx-collision"]) + parseCounter(re.Map["tx-late-collision"])
		info.RxPause = parseCounter(re.Map["rx-pause"])
		info.TxPause = parseCounter(re.Map["tx-pause"])
		info.RxFragment = parseCounter(re.Map["rx-fragment"])

		if info.Running {
			rate, fullDuplex, ok := c.monitorOnce(ctx, name)
			if ok {
				info.NegotiatedSpeed = rate
				info.FullDuplex = fullDuplex
			}
		}

		infos = append(infos, info)
	}
	return infos
}

// monitorOnce issues the one-shot /interface/ethernet/monitor call used to
// read negotiated rate and duplex, since neither is exposed on the static
// interface row. Both default to (absent, true) when the reply omits them.
func (c *Client) monitorOnce(ctx context.Context, name string) (rate string, fullDuplex bool, ok bool) {
	reply, err := c.run(ctx, "/interface/ethernet/monitor", "=numbers="+name, "=once=")
	if err != nil || len(reply.Re) == 0 {
		if err != nil {
			util.WithSwitch(c.name).WithPort(name).Debugf("monitor-once: %v", err)
		}
		return "", true, false
	}
	m := reply.Re[0].Map
	fullDuplex = true
	if v, present := m["full-duplex"]; present {
		fullDuplex = v == "true"
	}
	return m["rate"], fullDuplex, true
}

func parseCounter(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Ping issues a router-side /ping for address and reports whether any
// result row shows a received response. Used only by the liveness
// verifier, against the session opened to the designated router switch.
func (c *Client) Ping(ctx context.Context, address string) (bool, error) {
	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) <= 0 {
		return false, context.DeadlineExceeded
	}
	reply, err := c.run(ctx, "/ping", "=address="+address, "=count=1")
	if err != nil {
		return false, util.NewQueryError(c.name, "/ping", err)
	}
	for _, re := range reply.Re {
		if received := re.Map["received"]; received != "" && received != "0" {
			return true, nil
		}
		if t := re.Map["time"]; t != "" {
			return true, nil
		}
	}
	return false, nil
}

// Name returns the switch name this client was opened against.
func (c *Client) Name() string { return c.name }

// Address returns the host:port this client was opened against.
func (c *Client) Address() string { return c.address }

// FormatAddress joins a host and management port into a dial address,
// defaulting to RouterOS's standard API port 8728.
func FormatAddress(host string, port int) string {
	if port == 0 {
		port = 8728
	}
	return fmt.Sprintf("%s:%d", host, port)
}
