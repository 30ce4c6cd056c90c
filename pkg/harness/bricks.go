package harness

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/glustolibs/go-gd2/pkg/gd2"
)

// OnlineMethod selects how BringBricksOnline revives bricks.
type OnlineMethod string

const (
	// OnlineGlusterdRestart restarts glusterd2 on each brick's node.
	OnlineGlusterdRestart OnlineMethod = "glusterd_restart"
	// OnlineVolumeForceStart force-starts the volume, reviving all bricks.
	OnlineVolumeForceStart OnlineMethod = "volume_start_force"
	// OnlineAny picks one of the methods at random.
	OnlineAny OnlineMethod = ""
)

const brickSettleDelay = 10 * time.Second

// BringBricksOffline kills the brick processes of the given "host:path"
// bricks by terminating the pid recorded in the brick's pid file.
func (cl *Cluster) BringBricksOffline(ctx context.Context, bricks []string) error {
	var failed []string
	for _, brick := range bricks {
		host, path, ok := strings.Cut(brick, ":")
		if !ok {
			return configErrorf("brick %q is not host:path", brick)
		}

		peerID, err := cl.client.PeerID(ctx, host)
		if err != nil {
			return fmt.Errorf("bring brick %s offline: %w", brick, err)
		}

		// Brick pid files are named <peerid><path with / replaced by ->.pid.
		pidPattern := peerID + strings.ReplaceAll(path, "/", "-")
		killCmd := fmt.Sprintf(
			"pid=`ps -ef | grep -ve 'grep' | grep -e '%s.pid' | awk '{print $2}'` && kill -15 $pid || kill -9 $pid",
			pidPattern)
		if _, _, err := cl.Runner.Run(ctx, host, killCmd); err != nil {
			slog.Error("unable to kill brick", "brick", brick, "error", err)
			failed = append(failed, brick)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to bring bricks offline: %s", strings.Join(failed, ", "))
	}
	slog.Info("bricks brought offline", "bricks", bricks)
	return nil
}

// BringBricksOnline revives the given "host:path" bricks of a volume using
// the chosen method.
func (cl *Cluster) BringBricksOnline(ctx context.Context, volname string, bricks []string, method OnlineMethod) error {
	if method == OnlineAny {
		methods := []OnlineMethod{OnlineGlusterdRestart, OnlineVolumeForceStart}
		method = methods[rand.Intn(len(methods))]
	}

	switch method {
	case OnlineGlusterdRestart:
		var failed []string
		for _, brick := range bricks {
			host, _, ok := strings.Cut(brick, ":")
			if !ok {
				return configErrorf("brick %q is not host:path", brick)
			}
			if err := cl.RestartGlusterd(ctx, host); err != nil {
				slog.Error("unable to restart glusterd2", "host", host, "error", err)
				failed = append(failed, brick)
			}
		}
		if len(failed) > 0 {
			return fmt.Errorf("failed to bring bricks online: %s", strings.Join(failed, ", "))
		}

	case OnlineVolumeForceStart:
		if err := cl.client.StartVolume(ctx, volname, true); err != nil {
			return fmt.Errorf("force start volume %s: %w", volname, err)
		}

	default:
		return configErrorf("invalid method %q to bring bricks online", method)
	}

	slog.Info("bricks brought online, waiting for processes to settle",
		"volume", volname, "method", method)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(brickSettleDelay):
	}
	return nil
}

// VerifyVolumeProcessesOnline checks that every brick process of the
// volume is online.
func (cl *Cluster) VerifyVolumeProcessesOnline(ctx context.Context, volname string) (bool, error) {
	vol, err := cl.client.VolumeInfo(ctx, volname)
	if err != nil {
		return false, err
	}
	bricks := gd2.AllBricks(vol)
	if len(bricks) == 0 {
		return false, fmt.Errorf("volume %s has no bricks", volname)
	}
	return cl.client.AreBricksOnline(ctx, volname, bricks)
}
