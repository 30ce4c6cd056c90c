package gd2

// Peer describes a node in the trusted storage pool.
type Peer struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	PeerAddresses   []string          `json:"peer-addresses"`
	ClientAddresses []string          `json:"client-addresses"`
	Online          bool              `json:"online"`
	PID             int               `json:"pid,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// Brick identifies one brick of a volume.
type Brick struct {
	Host     string `json:"host,omitempty"`
	PeerID   string `json:"peerid"`
	Path     string `json:"path"`
	Type     string `json:"type,omitempty"`
	VolumeID string `json:"volume-id,omitempty"`
}

// Subvol is one subvolume of a volume.
type Subvol struct {
	Name         string  `json:"name,omitempty"`
	Type         string  `json:"type"`
	Bricks       []Brick `json:"bricks"`
	ReplicaCount int     `json:"replica,omitempty"`
	ArbiterCount int     `json:"arbiter,omitempty"`
}

// Volume is the glusterd2 view of a volume.
type Volume struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Type         string            `json:"type"`
	State        string            `json:"state"`
	Transport    string            `json:"transport"`
	DistCount    int               `json:"distribute-count,omitempty"`
	ReplicaCount int               `json:"replica-count,omitempty"`
	ArbiterCount int               `json:"arbiter-count,omitempty"`
	Options      map[string]string `json:"options,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	Subvols      []Subvol          `json:"subvols"`
}

// BrickStatus is the runtime state of one brick process.
type BrickStatus struct {
	Info   Brick `json:"info"`
	Online bool  `json:"online"`
	PID    int   `json:"pid"`
	Port   int   `json:"port"`
	Size   struct {
		Capacity uint64 `json:"capacity"`
		Used     uint64 `json:"used"`
		Free     uint64 `json:"free"`
	} `json:"size"`
}

// SnapInfo describes a single snapshot.
type SnapInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created-at,omitempty"`
	ParentVol   string `json:"parent-volume,omitempty"`
}

// Snap wraps snapshot info together with its volume representation.
type Snap struct {
	SnapInfo SnapInfo `json:"snapinfo"`
	VolInfo  *Volume  `json:"volinfo,omitempty"`
}

// VolumeSnapList groups the snapshots of one parent volume, as returned
// by GET /v1/snapshots.
type VolumeSnapList struct {
	Name  string `json:"name"`
	Snaps []Snap `json:"snaps"`
}

// SnapStatus is the runtime state of a snapshot's brick processes.
type SnapStatus struct {
	Brick  BrickStatus `json:"brick"`
	Online bool        `json:"online"`
}

// Device is a block device managed by glusterd2 on a peer.
type Device struct {
	Device        string `json:"device"`
	State         string `json:"state"`
	PeerID        string `json:"peerid,omitempty"`
	TotalSize     uint64 `json:"total-size,omitempty"`
	UsedSize      uint64 `json:"used-size,omitempty"`
	AvailableSize uint64 `json:"available-size,omitempty"`
}

// VolumeOption is one volume option with its current value.
type VolumeOption struct {
	Name         string `json:"name"`
	Value        string `json:"value"`
	DefaultValue string `json:"default-value,omitempty"`
	Modified     bool   `json:"modified,omitempty"`
}

// Device states accepted by EditDevice.
const (
	DeviceEnabled  = "enabled"
	DeviceDisabled = "disabled"
)
