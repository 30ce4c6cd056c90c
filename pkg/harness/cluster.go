// Package harness drives a glusterd2 cluster for test automation: it loads
// the topology config, sets volumes up and tears them down, mounts them on
// clients, controls the glusterd2 service and injects faults at the brick
// level. REST operations go through pkg/gd2, node-level operations through
// pkg/remote.
package harness

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/glustolibs/go-gd2/pkg/gd2"
	"github.com/glustolibs/go-gd2/pkg/remote"
)

// authFilePath is where glusterd2 keeps the REST signing secret on a node.
const authFilePath = "/var/lib/glusterd2/auth"

// Cluster binds the topology config, the management-node REST client and
// the remote runner together.
type Cluster struct {
	Config *Config
	Runner remote.Runner

	client *gd2.Client
	mnode  string
}

// AuthSecretProvider fetches the REST signing secret from the glusterd2
// auth file on the node, the way glustercli does when no secret is given.
func AuthSecretProvider(r remote.Runner) gd2.SecretProvider {
	return func(ctx context.Context, host string) ([]byte, error) {
		stdout, _, err := r.Run(ctx, host, "cat "+authFilePath)
		if err != nil {
			return nil, err
		}
		return []byte(strings.TrimSpace(stdout)), nil
	}
}

// New creates a Cluster. The first configured server becomes the
// management node all REST calls go to.
func New(cfg *Config, runner remote.Runner, opts ...gd2.Option) (*Cluster, error) {
	if cfg == nil || len(cfg.Servers) == 0 {
		return nil, configErrorf("at least one server is required")
	}
	mnode := cfg.Servers[0]
	opts = append([]gd2.Option{gd2.WithSecretProvider(AuthSecretProvider(runner))}, opts...)
	return &Cluster{
		Config: cfg,
		Runner: runner,
		client: gd2.New(mnode, opts...),
		mnode:  mnode,
	}, nil
}

// Client returns the REST client bound to the management node.
func (cl *Cluster) Client() *gd2.Client {
	return cl.client
}

// MgmtNode returns the management node host.
func (cl *Cluster) MgmtNode() string {
	return cl.mnode
}

// RunID returns a timestamp string identifying one harness run, used to
// mark gluster logs.
func RunID() string {
	return time.Now().Format("15_04_02_01_2006")
}

// FormBricks forms n "peerid:path" brick strings for a volume, walking the
// servers round-robin and rooting each brick under the server's brick_root.
func (cl *Cluster) FormBricks(ctx context.Context, volname string, n int, servers []string) ([]string, error) {
	if n <= 0 {
		return nil, configErrorf("brick count must be positive")
	}
	if len(servers) == 0 {
		servers = cl.Config.Servers
	}

	peerIDs := make(map[string]string, len(servers))
	for _, server := range servers {
		id, err := cl.client.PeerID(ctx, server)
		if err != nil {
			return nil, fmt.Errorf("form bricks: %w", err)
		}
		peerIDs[server] = id
	}

	bricks := make([]string, 0, n)
	for i := 0; i < n; i++ {
		server := servers[i%len(servers)]
		info, ok := cl.Config.ServersInfo[server]
		if !ok || info.BrickRoot == "" {
			return nil, configErrorf("server %q has no brick_root", server)
		}
		path := fmt.Sprintf("%s/%s_brick%d", strings.TrimRight(info.BrickRoot, "/"), volname, i)
		bricks = append(bricks, peerIDs[server]+":"+path)
	}
	return bricks, nil
}

// RegisterDevices hands every device listed in servers_info to glusterd2
// for brick provisioning. Devices glusterd2 already knows are skipped.
func (cl *Cluster) RegisterDevices(ctx context.Context) error {
	for _, server := range cl.Config.Servers {
		info := cl.Config.ServersInfo[server]
		if len(info.Devices) == 0 {
			continue
		}
		peerID, err := cl.client.PeerID(ctx, server)
		if err != nil {
			return fmt.Errorf("register devices on %s: %w", server, err)
		}
		known, err := cl.client.PeerDevices(ctx, peerID)
		if err != nil {
			return fmt.Errorf("list devices on %s: %w", server, err)
		}
		for _, device := range info.Devices {
			if slices.ContainsFunc(known, func(d gd2.Device) bool { return d.Device == device }) {
				continue
			}
			if _, err := cl.client.AddDevice(ctx, peerID, device); err != nil {
				return fmt.Errorf("add device %s on %s: %w", device, server, err)
			}
			slog.Info("device registered", "server", server, "device", device)
		}
	}
	return nil
}

// SetupVolume creates and starts a volume from its configuration and
// applies any configured options.
func (cl *Cluster) SetupVolume(ctx context.Context, vol VolumeConfig, force bool) error {
	exists, err := cl.client.VolumeExists(ctx, vol.Name)
	if err != nil {
		return err
	}
	if exists {
		slog.Info("volume already exists", "volume", vol.Name)
		return nil
	}

	count, err := vol.VolType.BrickCount()
	if err != nil {
		return err
	}

	bricks, err := cl.FormBricks(ctx, vol.Name, count, vol.Servers)
	if err != nil {
		return err
	}

	replica := vol.VolType.ReplicaCount
	if vol.VolType.Type == "distributed" {
		replica = 0
	}
	if _, err := cl.client.CreateVolume(ctx, gd2.VolumeCreateReq{
		Name:         vol.Name,
		Bricks:       bricks,
		ReplicaCount: replica,
		ArbiterCount: vol.VolType.ArbiterCount,
		Transport:    vol.VolType.Transport,
		Options:      vol.Options,
		Force:        force,
	}); err != nil {
		return fmt.Errorf("create volume %s: %w", vol.Name, err)
	}
	slog.Info("volume created", "volume", vol.Name, "type", vol.VolType.Type, "bricks", len(bricks))

	if err := cl.client.StartVolume(ctx, vol.Name, false); err != nil {
		return fmt.Errorf("start volume %s: %w", vol.Name, err)
	}

	if len(vol.Options) > 0 {
		if err := cl.client.SetVolumeOptions(ctx, vol.Name, vol.Options, gd2.OptionFlags{AllowAdvanced: true}); err != nil {
			return fmt.Errorf("set options on %s: %w", vol.Name, err)
		}
	}
	return nil
}

// CleanupVolume deletes the volume's snapshots, stops and deletes the
// volume, and removes its brick directories from the nodes. Returns nil
// when the volume does not exist.
func (cl *Cluster) CleanupVolume(ctx context.Context, volname string) error {
	vol, err := cl.client.VolumeInfo(ctx, volname)
	if err != nil {
		if gd2.IsNotFound(err) {
			slog.Info("volume does not exist, nothing to clean up", "volume", volname)
			return nil
		}
		return err
	}

	if err := cl.deleteVolumeSnapshots(ctx, volname); err != nil {
		return err
	}

	if vol.State == "Started" || vol.State == "started" {
		if err := cl.client.StopVolume(ctx, volname); err != nil {
			return fmt.Errorf("stop volume %s: %w", volname, err)
		}
	}
	if err := cl.client.DeleteVolume(ctx, volname); err != nil {
		return fmt.Errorf("delete volume %s: %w", volname, err)
	}

	return cl.DeleteBrickDirs(ctx, gd2.AllBricks(vol))
}

func (cl *Cluster) deleteVolumeSnapshots(ctx context.Context, volname string) error {
	lists, err := cl.client.Snapshots(ctx)
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}
	for _, list := range lists {
		if list.Name != volname {
			continue
		}
		for _, snap := range list.Snaps {
			name := snap.SnapInfo.Name
			// Active snapshots cannot be deleted.
			if err := cl.client.DeactivateSnapshot(ctx, name); err != nil && !gd2.IsNotFound(err) {
				slog.Debug("snapshot deactivate failed, deleting anyway", "snapshot", name, "error", err)
			}
			if err := cl.client.DeleteSnapshot(ctx, name); err != nil {
				return fmt.Errorf("delete snapshot %s: %w", name, err)
			}
			slog.Info("snapshot deleted", "snapshot", name, "volume", volname)
		}
	}
	return nil
}

// DeleteBrickDirs removes the given "host:path" brick directories on
// their nodes.
func (cl *Cluster) DeleteBrickDirs(ctx context.Context, bricks []string) error {
	var failed []string
	for _, brick := range bricks {
		host, path, ok := strings.Cut(brick, ":")
		if !ok {
			return configErrorf("brick %q is not host:path", brick)
		}
		if _, _, err := cl.Runner.Run(ctx, host, "rm -rf "+path); err != nil {
			slog.Error("unable to delete brick dir", "host", host, "path", path, "error", err)
			failed = append(failed, brick)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to delete brick dirs: %s", strings.Join(failed, ", "))
	}
	return nil
}
