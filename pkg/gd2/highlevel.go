package gd2

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"
)

const (
	peerPollInterval  = 3 * time.Second
	peerPollAttempts  = 20
	brickPollInterval = 10 * time.Second
)

// IsPeerConnected reports whether every given server is in the pool and
// online.
func (c *Client) IsPeerConnected(ctx context.Context, servers ...string) (bool, error) {
	for _, server := range servers {
		peerID, err := c.PeerID(ctx, server)
		if err != nil {
			return false, err
		}
		peer, err := c.Peer(ctx, peerID)
		if err != nil {
			return false, err
		}
		if !peer.Online {
			slog.Error("peer is not connected", "server", server)
			return false, nil
		}
	}
	return true, nil
}

// ProbePeers probes every server not yet in the pool. With validate set it
// waits until all probed peers report online.
func (c *Client) ProbePeers(ctx context.Context, servers []string, validate bool) error {
	inPool, err := c.PoolNodes(ctx)
	if err != nil {
		return fmt.Errorf("get pool nodes: %w", err)
	}

	var probed []string
	for _, server := range servers {
		if server == c.host || slices.Contains(inPool, server) {
			continue
		}
		if _, err := c.PeerProbe(ctx, server); err != nil {
			return fmt.Errorf("probe %s: %w", server, err)
		}
		slog.Info("peer probed", "server", server)
		probed = append(probed, server)
	}

	if !validate || len(probed) == 0 {
		return nil
	}

	for attempt := 0; attempt < peerPollAttempts; attempt++ {
		ok, err := c.IsPeerConnected(ctx, probed...)
		if err == nil && ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(peerPollInterval):
		}
	}
	return fmt.Errorf("peers %v did not reach connected state", probed)
}

// DetachPeers detaches every given server from the pool. With validate set
// it waits until the servers are gone from the pool list.
func (c *Client) DetachPeers(ctx context.Context, servers []string, validate bool) error {
	for _, server := range servers {
		if server == c.host {
			continue
		}
		peerID, err := c.PeerID(ctx, server)
		if err != nil {
			return err
		}
		if err := c.PeerDetach(ctx, peerID); err != nil {
			return fmt.Errorf("detach %s: %w", server, err)
		}
		slog.Info("peer detached", "server", server)
	}

	if !validate {
		return nil
	}

	for attempt := 0; attempt < peerPollAttempts; attempt++ {
		nodes, err := c.PoolNodes(ctx)
		if err != nil {
			return err
		}
		stale := false
		for _, server := range servers {
			if slices.Contains(nodes, server) {
				stale = true
				break
			}
		}
		if !stale {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(peerPollInterval):
		}
	}
	return fmt.Errorf("some of %v are still in the pool after detach", servers)
}

// VolumeExists reports whether the named volume exists.
func (c *Client) VolumeExists(ctx context.Context, volname string) (bool, error) {
	_, err := c.VolumeInfo(ctx, volname)
	if err == nil {
		return true, nil
	}
	if IsNotFound(err) {
		return false, nil
	}
	return false, err
}

// AllBricks returns every brick of the volume as "host:path" strings.
func AllBricks(vol *Volume) []string {
	var bricks []string
	for _, subvol := range vol.Subvols {
		for _, brick := range subvol.Bricks {
			bricks = append(bricks, brick.Host+":"+brick.Path)
		}
	}
	return bricks
}

// Subvols returns the volume's subvolumes as lists of "host:path" strings.
func Subvols(vol *Volume) [][]string {
	subvols := make([][]string, 0, len(vol.Subvols))
	for _, subvol := range vol.Subvols {
		paths := make([]string, 0, len(subvol.Bricks))
		for _, brick := range subvol.Bricks {
			paths = append(paths, brick.Host+":"+brick.Path)
		}
		subvols = append(subvols, paths)
	}
	return subvols
}

// BricksPerSubvol returns the brick count of the first subvolume, or zero
// for a volume without subvolumes.
func BricksPerSubvol(vol *Volume) int {
	if len(vol.Subvols) == 0 {
		return 0
	}
	return len(vol.Subvols[0].Bricks)
}

// IsDistribute reports whether the volume is a plain distribute volume.
func IsDistribute(vol *Volume) bool {
	return vol.Type == "Distribute" || vol.Type == "distribute"
}

// ReplicaCount returns the replica count of the first subvolume, or zero
// for a plain distribute volume.
func ReplicaCount(vol *Volume) int {
	if len(vol.Subvols) == 0 {
		return 0
	}
	return vol.Subvols[0].ReplicaCount
}

// VolumeTypeInfo summarizes the layout of a volume.
type VolumeTypeInfo struct {
	Type         string
	DistCount    int
	ReplicaCount int
	ArbiterCount int
}

// TypeInfo derives the layout counts from the volume's subvolumes.
func TypeInfo(vol *Volume) VolumeTypeInfo {
	info := VolumeTypeInfo{
		Type:      vol.Type,
		DistCount: len(vol.Subvols),
	}
	if len(vol.Subvols) > 0 {
		info.ReplicaCount = vol.Subvols[0].ReplicaCount
		info.ArbiterCount = vol.Subvols[0].ArbiterCount
	}
	return info
}

func brickID(status BrickStatus) string {
	return status.Info.Host + ":" + status.Info.Path
}

// OnlineBricks returns the "host:path" bricks whose processes are online.
func (c *Client) OnlineBricks(ctx context.Context, volname string) ([]string, error) {
	return c.bricksByState(ctx, volname, true)
}

// OfflineBricks returns the "host:path" bricks whose processes are offline.
func (c *Client) OfflineBricks(ctx context.Context, volname string) ([]string, error) {
	return c.bricksByState(ctx, volname, false)
}

func (c *Client) bricksByState(ctx context.Context, volname string, online bool) ([]string, error) {
	statuses, err := c.BrickStatus(ctx, volname)
	if err != nil {
		return nil, err
	}
	var bricks []string
	for _, status := range statuses {
		if status.Online == online {
			bricks = append(bricks, brickID(status))
		}
	}
	return bricks, nil
}

// AreBricksOnline reports whether every listed "host:path" brick is online.
func (c *Client) AreBricksOnline(ctx context.Context, volname string, bricks []string) (bool, error) {
	online, err := c.OnlineBricks(ctx, volname)
	if err != nil {
		return false, err
	}
	for _, brick := range bricks {
		if !slices.Contains(online, brick) {
			slog.Debug("brick offline", "volume", volname, "brick", brick)
			return false, nil
		}
	}
	return true, nil
}

// AreBricksOffline reports whether every listed "host:path" brick is offline.
func (c *Client) AreBricksOffline(ctx context.Context, volname string, bricks []string) (bool, error) {
	offline, err := c.OfflineBricks(ctx, volname)
	if err != nil {
		return false, err
	}
	for _, brick := range bricks {
		if !slices.Contains(offline, brick) {
			slog.Debug("brick online", "volume", volname, "brick", brick)
			return false, nil
		}
	}
	return true, nil
}

// DefaultBrickTimeout bounds WaitForBricksOnline when no timeout is given.
const DefaultBrickTimeout = 300 * time.Second

// WaitForBricksOnline polls the brick status every 10 seconds until all
// bricks of the volume are online or the timeout expires. A non-positive
// timeout means DefaultBrickTimeout.
func (c *Client) WaitForBricksOnline(ctx context.Context, volname string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultBrickTimeout
	}
	vol, err := c.VolumeInfo(ctx, volname)
	if err != nil {
		return err
	}
	bricks := AllBricks(vol)

	deadline := time.Now().Add(timeout)
	for {
		ok, err := c.AreBricksOnline(ctx, volname, bricks)
		if err == nil && ok {
			slog.Info("all bricks online", "volume", volname)
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("bricks of volume %s not online after %s", volname, timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(brickPollInterval):
		}
	}
}

// EnableAndValidateVolumeOptions enables each option and reads it back to
// confirm the daemon applied it.
func (c *Client) EnableAndValidateVolumeOptions(ctx context.Context, volname string, options []string) error {
	for _, option := range options {
		if err := c.SetVolumeOptions(ctx, volname, map[string]string{option: "on"}, OptionFlags{AllowAdvanced: true}); err != nil {
			return fmt.Errorf("enable %s on %s: %w", option, volname, err)
		}
		opt, err := c.VolumeOption(ctx, volname, option)
		if err != nil {
			return fmt.Errorf("read back %s on %s: %w", option, volname, err)
		}
		if opt.Name != option || opt.Value != "on" {
			return fmt.Errorf("option %s not enabled on %s (value %q)", option, volname, opt.Value)
		}
		slog.Info("volume option enabled", "volume", volname, "option", option)
	}
	return nil
}
