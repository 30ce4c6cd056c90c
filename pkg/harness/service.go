package harness

import (
	"context"
	"log/slog"
	"strings"

	"github.com/glustolibs/go-gd2/pkg/remote"
)

// Commands used to control the glusterd2 unit on the nodes. Start skips
// nodes where the daemon already runs.
const (
	glusterdStartCmd   = "pgrep glusterd2 || systemctl start glusterd2"
	glusterdStopCmd    = "systemctl stop glusterd2"
	glusterdRestartCmd = "systemctl restart glusterd2"
	glusterdStatusCmd  = "systemctl status glusterd2"
	glusterdPidCmd     = "pidof glusterd2"
)

// StartGlusterd starts glusterd2 on the given servers (all configured
// servers when none are given).
func (cl *Cluster) StartGlusterd(ctx context.Context, servers ...string) error {
	return cl.operateGlusterd(ctx, "start", glusterdStartCmd, servers)
}

// StopGlusterd stops glusterd2 on the given servers.
func (cl *Cluster) StopGlusterd(ctx context.Context, servers ...string) error {
	return cl.operateGlusterd(ctx, "stop", glusterdStopCmd, servers)
}

// RestartGlusterd restarts glusterd2 on the given servers.
func (cl *Cluster) RestartGlusterd(ctx context.Context, servers ...string) error {
	return cl.operateGlusterd(ctx, "restart", glusterdRestartCmd, servers)
}

func (cl *Cluster) operateGlusterd(ctx context.Context, op, cmd string, servers []string) error {
	if len(servers) == 0 {
		servers = cl.Config.Servers
	}
	results := remote.RunParallel(ctx, cl.Runner, servers, cmd)

	var failed []string
	for _, res := range results {
		if res.Err != nil {
			slog.Error("glusterd2 operation failed", "op", op, "server", res.Host, "error", res.Err)
			failed = append(failed, res.Host)
		}
	}
	if len(failed) > 0 {
		return configErrorf("unable to %s glusterd2 on %s", op, strings.Join(failed, ", "))
	}
	return nil
}

// GlusterdState classifies the daemon state on a node.
type GlusterdState int

const (
	// GlusterdRunning: the unit is active.
	GlusterdRunning GlusterdState = iota
	// GlusterdStopped: neither the unit nor a process is present.
	GlusterdStopped
	// GlusterdStale: the unit is inactive but a glusterd2 process is alive.
	GlusterdStale
)

// IsGlusterdRunning checks the glusterd2 unit on every server and reports
// the worst state found.
func (cl *Cluster) IsGlusterdRunning(ctx context.Context, servers ...string) (GlusterdState, error) {
	if len(servers) == 0 {
		servers = cl.Config.Servers
	}
	statusResults := remote.RunParallel(ctx, cl.Runner, servers, glusterdStatusCmd)
	pidResults := remote.RunParallel(ctx, cl.Runner, servers, glusterdPidCmd)

	state := GlusterdRunning
	for i, res := range statusResults {
		if res.Err == nil {
			continue
		}
		slog.Error("glusterd2 is not running", "server", res.Host)
		found := GlusterdStopped
		if pidResults[i].Err == nil {
			slog.Error("glusterd2 pid is alive but unit is not running", "server", res.Host)
			found = GlusterdStale
		}
		// States are ordered by badness; never downgrade.
		if found > state {
			state = found
		}
	}
	return state, nil
}

// GlusterdPIDs returns the glusterd2 pids per node. The bool result is
// true only if exactly one glusterd2 process runs on every node.
func (cl *Cluster) GlusterdPIDs(ctx context.Context, servers ...string) (bool, map[string][]string, error) {
	if len(servers) == 0 {
		servers = cl.Config.Servers
	}
	results := remote.RunParallel(ctx, cl.Runner, servers, glusterdPidCmd)

	ok := true
	pids := make(map[string][]string, len(servers))
	for _, res := range results {
		if res.Err != nil {
			slog.Error("no glusterd2 process found", "server", res.Host, "error", res.Err)
			pids[res.Host] = []string{"-1"}
			ok = false
			continue
		}
		fields := strings.Fields(strings.TrimSpace(res.Stdout))
		if len(fields) == 0 {
			pids[res.Host] = []string{"-1"}
			ok = false
			continue
		}
		if len(fields) > 1 {
			slog.Error("more than one glusterd2 process found", "server", res.Host, "pids", fields)
			ok = false
		}
		pids[res.Host] = fields
	}
	return ok, pids, nil
}
