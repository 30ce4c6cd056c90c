package gd2

import (
	"context"
	"net/http"
)

// SnapCreateReq describes a snapshot to create.
type SnapCreateReq struct {
	VolName     string
	SnapName    string
	Description string
	// Timestamp appends a timestamp to the snapshot name on the server.
	Timestamp bool
	Force     bool
}

// CreateSnapshot creates a snapshot of a volume.
func (c *Client) CreateSnapshot(ctx context.Context, req SnapCreateReq) (*Snap, error) {
	body := struct {
		SnapName    string `json:"snapname"`
		VolName     string `json:"volname"`
		Description string `json:"description,omitempty"`
		Timestamp   bool   `json:"timestamp"`
		Force       bool   `json:"force,omitempty"`
	}{
		SnapName:    req.SnapName,
		VolName:     req.VolName,
		Description: req.Description,
		Timestamp:   req.Timestamp,
		Force:       req.Force,
	}
	var snap Snap
	if err := c.do(ctx, http.MethodPost, "/v1/snapshots", http.StatusCreated, body, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// ActivateSnapshot activates a snapshot, starting its brick processes.
func (c *Client) ActivateSnapshot(ctx context.Context, snapname string, force bool) error {
	req := struct {
		Force bool `json:"force"`
	}{Force: force}
	return c.do(ctx, http.MethodPost, "/v1/snapshots/"+snapname+"/activate", http.StatusOK, req, nil)
}

// DeactivateSnapshot deactivates a snapshot.
func (c *Client) DeactivateSnapshot(ctx context.Context, snapname string) error {
	return c.do(ctx, http.MethodPost, "/v1/snapshots/"+snapname+"/deactivate", http.StatusOK, nil, nil)
}

// CloneSnapshot creates a writable volume from a snapshot.
func (c *Client) CloneSnapshot(ctx context.Context, snapname, clonename string) (*Volume, error) {
	req := struct {
		CloneName string `json:"clonename"`
	}{CloneName: clonename}
	var vol Volume
	if err := c.do(ctx, http.MethodPost, "/v1/snapshots/"+snapname+"/clone", http.StatusCreated, req, &vol); err != nil {
		return nil, err
	}
	return &vol, nil
}

// RestoreSnapshot restores the parent volume to a snapshot. The volume
// must be stopped; see RestoreSnapshotComplete.
func (c *Client) RestoreSnapshot(ctx context.Context, snapname string) (*Volume, error) {
	var vol Volume
	if err := c.do(ctx, http.MethodPost, "/v1/snapshots/"+snapname+"/restore", http.StatusCreated, nil, &vol); err != nil {
		return nil, err
	}
	return &vol, nil
}

// RestoreSnapshotComplete stops the volume, restores the snapshot and
// starts the volume again.
func (c *Client) RestoreSnapshotComplete(ctx context.Context, volname, snapname string) error {
	if err := c.StopVolume(ctx, volname); err != nil {
		return err
	}
	if _, err := c.RestoreSnapshot(ctx, snapname); err != nil {
		return err
	}
	return c.StartVolume(ctx, volname, false)
}

// SnapshotInfo fetches info for a single snapshot.
func (c *Client) SnapshotInfo(ctx context.Context, snapname string) (*Snap, error) {
	var snap Snap
	if err := c.do(ctx, http.MethodGet, "/v1/snapshots/"+snapname, http.StatusOK, nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Snapshots lists snapshots grouped by parent volume.
func (c *Client) Snapshots(ctx context.Context) ([]VolumeSnapList, error) {
	var lists []VolumeSnapList
	if err := c.do(ctx, http.MethodGet, "/v1/snapshots", http.StatusOK, nil, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// SnapshotNames flattens the snapshot list into names.
func (c *Client) SnapshotNames(ctx context.Context) ([]string, error) {
	lists, err := c.Snapshots(ctx)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, list := range lists {
		for _, snap := range list.Snaps {
			names = append(names, snap.SnapInfo.Name)
		}
	}
	return names, nil
}

// SnapshotStatus fetches the brick status of a snapshot.
func (c *Client) SnapshotStatus(ctx context.Context, snapname string) ([]SnapStatus, error) {
	var status []SnapStatus
	if err := c.do(ctx, http.MethodGet, "/v1/snapshots/"+snapname+"/status", http.StatusOK, nil, &status); err != nil {
		return nil, err
	}
	return status, nil
}

// DeleteSnapshot deletes a snapshot.
func (c *Client) DeleteSnapshot(ctx context.Context, snapname string) error {
	return c.do(ctx, http.MethodDelete, "/v1/snapshots/"+snapname, http.StatusNoContent, nil, nil)
}
