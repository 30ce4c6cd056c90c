package gd2

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// VolumeCreateReq describes a volume to create. Bricks are given as
// "peerid:path" strings; the request body with its subvolume grouping is
// derived from the counts.
type VolumeCreateReq struct {
	Name         string
	Bricks       []string
	ReplicaCount int
	ArbiterCount int
	Transport    string
	Options      map[string]string
	Metadata     map[string]string
	Force        bool
}

type brickReq struct {
	PeerID string `json:"peerid"`
	Path   string `json:"path"`
	Type   string `json:"type,omitempty"`
}

type subvolReq struct {
	Type         string     `json:"type"`
	Bricks       []brickReq `json:"bricks"`
	ReplicaCount int        `json:"replica,omitempty"`
	ArbiterCount int        `json:"arbiter,omitempty"`
}

type volCreateBody struct {
	Name      string            `json:"name"`
	Subvols   []subvolReq       `json:"subvols"`
	Transport string            `json:"transport"`
	Options   map[string]string `json:"options"`
	Force     bool              `json:"force"`
	Metadata  map[string]string `json:"metadata"`
	Flags     map[string]bool   `json:"flags"`
}

func validatePeerID(peerID string) error {
	if _, err := uuid.Parse(peerID); err != nil {
		return fmt.Errorf("%w: peer id %q is not a UUID", ErrInvalidInput, peerID)
	}
	return nil
}

// parseBricks validates "peerid:path" brick strings.
func parseBricks(bricks []string) ([]brickReq, error) {
	if len(bricks) == 0 {
		return nil, fmt.Errorf("%w: bricks cannot be empty", ErrInvalidInput)
	}
	reqs := make([]brickReq, 0, len(bricks))
	for _, brick := range bricks {
		peerID, path, ok := strings.Cut(brick, ":")
		if !ok || path == "" {
			return nil, fmt.Errorf("%w: brick %q must be of the form <peerid>:<path>", ErrInvalidInput, brick)
		}
		if err := validatePeerID(peerID); err != nil {
			return nil, err
		}
		reqs = append(reqs, brickReq{PeerID: peerID, Path: path})
	}
	return reqs, nil
}

// buildVolumeCreateBody groups bricks into subvolumes. Replicated volumes
// take replica+arbiter bricks per subvolume, with the third brick marked
// arbiter when an arbiter count is set.
func buildVolumeCreateBody(req VolumeCreateReq) (*volCreateBody, error) {
	bricks, err := parseBricks(req.Bricks)
	if err != nil {
		return nil, err
	}

	transport := req.Transport
	if transport == "" {
		transport = "tcp"
	}
	switch transport {
	case "tcp", "rdma", "tcp,rdma":
	default:
		return nil, fmt.Errorf("%w: transport %q not supported", ErrInvalidInput, transport)
	}

	var subvols []subvolReq
	if req.ReplicaCount > 0 {
		size := req.ReplicaCount + req.ArbiterCount
		if req.ArbiterCount > 0 && size < 3 {
			return nil, fmt.Errorf("%w: arbiter volumes need at least 3 bricks per subvolume", ErrInvalidInput)
		}
		if len(bricks)%size != 0 {
			return nil, fmt.Errorf("%w: %d bricks cannot form subvolumes of size %d",
				ErrInvalidInput, len(bricks), size)
		}
		for i := 0; i < len(bricks)/size; i++ {
			group := bricks[i*size : (i+1)*size]
			if req.ArbiterCount > 0 {
				group[2].Type = "arbiter"
			}
			subvols = append(subvols, subvolReq{
				Type:         "replicate",
				Bricks:       group,
				ReplicaCount: req.ReplicaCount,
				ArbiterCount: req.ArbiterCount,
			})
		}
	} else {
		subvols = []subvolReq{{Type: "distribute", Bricks: bricks}}
	}

	options := req.Options
	if options == nil {
		options = map[string]string{}
	}
	metadata := req.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}

	return &volCreateBody{
		Name:      req.Name,
		Subvols:   subvols,
		Transport: transport,
		Options:   options,
		Force:     req.Force,
		Metadata:  metadata,
		Flags:     map[string]bool{"create-brick-dir": true},
	}, nil
}

// CreateVolume creates a volume from the given request.
func (c *Client) CreateVolume(ctx context.Context, req VolumeCreateReq) (*Volume, error) {
	body, err := buildVolumeCreateBody(req)
	if err != nil {
		return nil, err
	}
	var vol Volume
	if err := c.do(ctx, http.MethodPost, "/v1/volumes", http.StatusCreated, body, &vol); err != nil {
		return nil, err
	}
	return &vol, nil
}

// StartVolume starts a volume. With force, bricks are started even if
// some fail.
func (c *Client) StartVolume(ctx context.Context, volname string, force bool) error {
	req := struct {
		ForceStartBricks bool `json:"force-start-bricks"`
	}{
		ForceStartBricks: force,
	}
	return c.do(ctx, http.MethodPost, "/v1/volumes/"+volname+"/start", http.StatusOK, req, nil)
}

// StopVolume stops a volume.
func (c *Client) StopVolume(ctx context.Context, volname string) error {
	return c.do(ctx, http.MethodPost, "/v1/volumes/"+volname+"/stop", http.StatusOK, nil, nil)
}

// DeleteVolume deletes a stopped volume. Brick directories are left in
// place; see harness.Cluster.CleanupVolume for full teardown.
func (c *Client) DeleteVolume(ctx context.Context, volname string) error {
	return c.do(ctx, http.MethodDelete, "/v1/volumes/"+volname, http.StatusNoContent, nil, nil)
}

// Volumes lists all volumes.
func (c *Client) Volumes(ctx context.Context) ([]Volume, error) {
	var vols []Volume
	if err := c.do(ctx, http.MethodGet, "/v1/volumes", http.StatusOK, nil, &vols); err != nil {
		return nil, err
	}
	return vols, nil
}

// VolumeNames lists the names of all volumes.
func (c *Client) VolumeNames(ctx context.Context) ([]string, error) {
	vols, err := c.Volumes(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(vols))
	for _, vol := range vols {
		names = append(names, vol.Name)
	}
	return names, nil
}

// VolumeInfo fetches the info of a single volume.
func (c *Client) VolumeInfo(ctx context.Context, volname string) (*Volume, error) {
	var vol Volume
	if err := c.do(ctx, http.MethodGet, "/v1/volumes/"+volname, http.StatusOK, nil, &vol); err != nil {
		return nil, err
	}
	return &vol, nil
}

// VolumeStatus fetches the status of a volume.
func (c *Client) VolumeStatus(ctx context.Context, volname string) (map[string]any, error) {
	var status map[string]any
	if err := c.do(ctx, http.MethodGet, "/v1/volumes/"+volname+"/status", http.StatusOK, nil, &status); err != nil {
		return nil, err
	}
	return status, nil
}

// BrickStatus fetches the per-brick runtime status of a volume.
func (c *Client) BrickStatus(ctx context.Context, volname string) ([]BrickStatus, error) {
	var status []BrickStatus
	if err := c.do(ctx, http.MethodGet, "/v1/volumes/"+volname+"/bricks", http.StatusOK, nil, &status); err != nil {
		return nil, err
	}
	return status, nil
}

// ExpandVolume adds bricks to a volume.
func (c *Client) ExpandVolume(ctx context.Context, volname string, bricks []string, replicaCount int, force bool) (*Volume, error) {
	brickReqs, err := parseBricks(bricks)
	if err != nil {
		return nil, err
	}
	req := struct {
		ReplicaCount int             `json:"ReplicaCount"`
		Bricks       []brickReq      `json:"Bricks"`
		Force        bool            `json:"Force"`
		Flags        map[string]bool `json:"Flags"`
	}{
		ReplicaCount: replicaCount,
		Bricks:       brickReqs,
		Force:        force,
		Flags:        map[string]bool{"create-brick-dir": true},
	}
	var vol Volume
	if err := c.do(ctx, http.MethodPost, "/v1/volumes/"+volname+"/expand", http.StatusOK, req, &vol); err != nil {
		return nil, err
	}
	return &vol, nil
}

// OptionFlags control which classes of options SetVolumeOptions may touch.
type OptionFlags struct {
	AllowAdvanced     bool
	AllowExperimental bool
	AllowDeprecated   bool
}

// SetVolumeOptions sets options on a volume.
func (c *Client) SetVolumeOptions(ctx context.Context, volname string, options map[string]string, flags OptionFlags) error {
	if len(options) == 0 {
		return fmt.Errorf("%w: cannot set empty options", ErrInvalidInput)
	}
	req := struct {
		Options           map[string]string `json:"options"`
		AllowAdvanced     bool              `json:"allow-advanced-options"`
		AllowExperimental bool              `json:"allow-experimental-options"`
		AllowDeprecated   bool              `json:"allow-deprecated-options"`
	}{
		Options:           options,
		AllowAdvanced:     flags.AllowAdvanced,
		AllowExperimental: flags.AllowExperimental,
		AllowDeprecated:   flags.AllowDeprecated,
	}
	return c.do(ctx, http.MethodPost, "/v1/volumes/"+volname+"/options", http.StatusCreated, req, nil)
}

// ResetVolumeOptions resets the given options to their defaults. With all
// set, every modified option is reset.
func (c *Client) ResetVolumeOptions(ctx context.Context, volname string, options []string, force, all bool) error {
	req := struct {
		Options []string `json:"options"`
		Force   bool     `json:"force"`
		All     bool     `json:"all"`
	}{
		Options: options,
		Force:   force,
		All:     all,
	}
	return c.do(ctx, http.MethodDelete, "/v1/volumes/"+volname+"/options", http.StatusOK, req, nil)
}

// VolumeOptions fetches all options of a volume.
func (c *Client) VolumeOptions(ctx context.Context, volname string) ([]VolumeOption, error) {
	var opts []VolumeOption
	if err := c.do(ctx, http.MethodGet, "/v1/volumes/"+volname+"/options", http.StatusOK, nil, &opts); err != nil {
		return nil, err
	}
	return opts, nil
}

// VolumeOption fetches a single option of a volume.
func (c *Client) VolumeOption(ctx context.Context, volname, option string) (*VolumeOption, error) {
	var opt VolumeOption
	path := "/v1/volumes/" + volname + "/options/" + option
	if err := c.do(ctx, http.MethodGet, path, http.StatusOK, nil, &opt); err != nil {
		return nil, err
	}
	return &opt, nil
}
