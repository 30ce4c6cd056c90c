package harness

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/glustolibs/go-gd2/pkg/remote"
)

// InjectLogMsg appends msg to every *.log file under the given dirs and to
// the given files on each node. Used to mark where a test run starts and
// ends inside the gluster logs.
func (cl *Cluster) InjectLogMsg(ctx context.Context, nodes []string, msg string, dirs, files []string) error {
	var parts []string
	if len(dirs) > 0 {
		parts = append(parts, fmt.Sprintf(
			"for dir in %s ; do for file in `find ${dir} -type f -name '*.log'`; do echo \"%s\" >> ${file} ; done ; done ;",
			strings.Join(dirs, " "), msg))
	}
	if len(files) > 0 {
		parts = append(parts, fmt.Sprintf(
			"for file in %s ; do echo \"%s\" >> ${file} ; done ;",
			strings.Join(files, " "), msg))
	}
	if len(parts) == 0 {
		return nil
	}

	cmd := strings.Join(parts, " ")
	results := remote.RunParallel(ctx, cl.Runner, nodes, cmd)

	var failed []string
	for _, res := range results {
		if res.Err != nil {
			slog.Error("failed to inject log message", "node", res.Host, "error", res.Err)
			failed = append(failed, res.Host)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to inject log message on %s", strings.Join(failed, ", "))
	}
	return nil
}

// MarkGlusterLogs writes msg into the configured gluster log locations on
// servers and, when the harness drives glusterfs mounts, on clients too.
func (cl *Cluster) MarkGlusterLogs(ctx context.Context, msg string, withClients bool) error {
	cfg := cl.Config
	if err := cl.InjectLogMsg(ctx, cfg.Servers, msg, cfg.Gluster.ServerLogs.Dirs, cfg.Gluster.ServerLogs.Files); err != nil {
		return err
	}
	if withClients && len(cfg.Clients) > 0 {
		return cl.InjectLogMsg(ctx, cfg.Clients, msg, cfg.Gluster.ClientLogs.Dirs, cfg.Gluster.ClientLogs.Files)
	}
	return nil
}
