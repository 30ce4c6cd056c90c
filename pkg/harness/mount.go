package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/glustolibs/go-gd2/pkg/remote"
)

// Mount is one mount of a volume on a client node.
type Mount struct {
	Protocol   string
	Server     string
	Client     string
	VolName    string
	Mountpoint string
	Options    string

	runner remote.Runner
}

// NewMount builds a Mount from its config entry.
func (cl *Cluster) NewMount(cfg MountConfig) (*Mount, error) {
	if cfg.VolName == "" {
		return nil, configErrorf("mount needs a volname")
	}
	protocol := cfg.Protocol
	if protocol == "" {
		protocol = "glusterfs"
	}
	server := cfg.Server
	if server == "" {
		server = cl.mnode
	}
	if cfg.Client == "" {
		return nil, configErrorf("mount of %s needs a client", cfg.VolName)
	}
	mountpoint := cfg.Mountpoint
	if mountpoint == "" {
		mountpoint = defaultMountpoint(cfg.VolName, protocol)
	}
	return &Mount{
		Protocol:   protocol,
		Server:     server,
		Client:     cfg.Client,
		VolName:    cfg.VolName,
		Mountpoint: mountpoint,
		Options:    cfg.Options,
		runner:     cl.Runner,
	}, nil
}

// MountsFromConfig builds Mount objects for a volume and protocol.
func (cl *Cluster) MountsFromConfig(volname, protocol string) ([]*Mount, error) {
	cfgs := cl.Config.MountsFor(volname, protocol, cl.mnode)
	mounts := make([]*Mount, 0, len(cfgs))
	for _, cfg := range cfgs {
		// num_of_mounts > 1 expands into suffixed mountpoints.
		n := cfg.NumMounts
		if n <= 1 {
			n = 1
		}
		for i := 1; i <= n; i++ {
			out := cfg
			if n > 1 {
				out.Mountpoint = fmt.Sprintf("%s_%d", cfg.Mountpoint, i)
			}
			m, err := cl.NewMount(out)
			if err != nil {
				return nil, err
			}
			mounts = append(mounts, m)
		}
	}
	return mounts, nil
}

// IsMounted reports whether the volume is mounted at the mountpoint on
// the client.
func (m *Mount) IsMounted(ctx context.Context) bool {
	cmd := fmt.Sprintf("mount | grep %s | grep %s | grep \"%s\"", m.VolName, m.Mountpoint, m.Server)
	_, _, err := m.runner.Run(ctx, m.Client, cmd)
	return err == nil
}

// Mount mounts the volume on the client. Mounting an already-mounted
// volume is a no-op.
func (m *Mount) Mount(ctx context.Context) error {
	if m.IsMounted(ctx) {
		slog.Debug("volume already mounted", "volume", m.VolName, "mountpoint", m.Mountpoint)
		return nil
	}

	mkdir := fmt.Sprintf("test -d %s || mkdir -p %s", m.Mountpoint, m.Mountpoint)
	if _, _, err := m.runner.Run(ctx, m.Client, mkdir); err != nil {
		return fmt.Errorf("create mountpoint %s on %s: %w", m.Mountpoint, m.Client, err)
	}

	if _, _, err := m.runner.Run(ctx, m.Client, m.mountCmd()); err != nil {
		return fmt.Errorf("mount %s on %s: %w", m.VolName, m.Client, err)
	}
	slog.Info("volume mounted", "volume", m.VolName, "client", m.Client, "mountpoint", m.Mountpoint)
	return nil
}

func (m *Mount) mountCmd() string {
	options := ""
	if m.Options != "" {
		options = "-o " + m.Options + " "
	}
	return fmt.Sprintf("mount -t %s %s%s:/%s %s", m.Protocol, options, m.Server, m.VolName, m.Mountpoint)
}

// Unmount unmounts the mountpoint, escalating from a plain umount to
// forced and lazy unmounts.
func (m *Mount) Unmount(ctx context.Context) error {
	cmd := fmt.Sprintf("umount %s || umount -f %s || umount -l %s", m.Mountpoint, m.Mountpoint, m.Mountpoint)
	if _, _, err := m.runner.Run(ctx, m.Client, cmd); err != nil {
		return fmt.Errorf("unmount %s on %s: %w", m.Mountpoint, m.Client, err)
	}
	slog.Info("volume unmounted", "volume", m.VolName, "client", m.Client, "mountpoint", m.Mountpoint)
	return nil
}

// MountAll mounts every given mount, failing on the first error.
func MountAll(ctx context.Context, mounts []*Mount) error {
	for _, m := range mounts {
		if err := m.Mount(ctx); err != nil {
			return err
		}
	}
	return nil
}

// UnmountAll unmounts every given mount, failing on the first error.
func UnmountAll(ctx context.Context, mounts []*Mount) error {
	for _, m := range mounts {
		if err := m.Unmount(ctx); err != nil {
			return err
		}
	}
	return nil
}
