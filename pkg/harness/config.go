package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ConfigError indicates an unusable or incomplete cluster configuration.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return "config: " + e.Msg
}

func configErrorf(format string, args ...any) error {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// ServerInfo describes one storage server.
type ServerInfo struct {
	Host      string   `yaml:"host"`
	BrickRoot string   `yaml:"brick_root"`
	Devices   []string `yaml:"devices"`
}

// ClientInfo describes one client machine used for mounts.
type ClientInfo struct {
	Host      string `yaml:"host"`
	Platform  string `yaml:"platform,omitempty"`
	SuperUser string `yaml:"super_user,omitempty"`
}

// VolType is a volume type definition with its layout counts.
type VolType struct {
	Type         string `yaml:"type"`
	DistCount    int    `yaml:"dist_count,omitempty"`
	ReplicaCount int    `yaml:"replica_count,omitempty"`
	ArbiterCount int    `yaml:"arbiter_count,omitempty"`
	Transport    string `yaml:"transport,omitempty"`
}

// VolumeConfig describes one volume the harness may set up.
type VolumeConfig struct {
	Name    string            `yaml:"name"`
	Servers []string          `yaml:"servers,omitempty"`
	VolType VolType           `yaml:"voltype"`
	Options map[string]string `yaml:"options,omitempty"`
}

// MountConfig describes one mount of a volume on a client.
type MountConfig struct {
	Protocol   string `yaml:"protocol"`
	Server     string `yaml:"server,omitempty"`
	Client     string `yaml:"client,omitempty"`
	VolName    string `yaml:"volname,omitempty"`
	Mountpoint string `yaml:"mountpoint,omitempty"`
	Options    string `yaml:"options,omitempty"`
	NumMounts  int    `yaml:"num_of_mounts,omitempty"`
}

// LogsInfo lists log dirs and files of interest on a set of nodes.
type LogsInfo struct {
	Dirs  []string `yaml:"dirs,omitempty"`
	Files []string `yaml:"files,omitempty"`
}

// GlusterConfig groups the gluster-specific configuration.
type GlusterConfig struct {
	VolumeTypes       map[string]VolType `yaml:"volume_types,omitempty"`
	Volumes           []VolumeConfig     `yaml:"volumes,omitempty"`
	Mounts            []MountConfig      `yaml:"mounts,omitempty"`
	VolumeCreateForce bool               `yaml:"volume_create_force,omitempty"`
	ServerLogs        LogsInfo           `yaml:"server_gluster_logs_info,omitempty"`
	ClientLogs        LogsInfo           `yaml:"client_gluster_logs_info,omitempty"`
}

// SSHConfig holds how the harness reaches the nodes.
type SSHConfig struct {
	User    string `yaml:"user,omitempty"`
	KeyFile string `yaml:"keyfile,omitempty"`
	Port    int    `yaml:"port,omitempty"`
}

// Config is the cluster topology configuration read from the -c YAML file.
type Config struct {
	Servers     []string              `yaml:"servers"`
	Clients     []string              `yaml:"clients"`
	ServersInfo map[string]ServerInfo `yaml:"servers_info"`
	ClientsInfo map[string]ClientInfo `yaml:"clients_info"`
	Gluster     GlusterConfig         `yaml:"gluster,omitempty"`
	SSH         SSHConfig             `yaml:"ssh,omitempty"`
}

// DefaultVolumeTypes is used when the config does not define a volume type.
var DefaultVolumeTypes = map[string]VolType{
	"distributed": {
		Type:      "distributed",
		DistCount: 4,
		Transport: "tcp",
	},
	"replicated": {
		Type:         "replicated",
		ReplicaCount: 2,
		ArbiterCount: 1,
		Transport:    "tcp",
	},
	"distributed-replicated": {
		Type:         "distributed-replicated",
		DistCount:    2,
		ReplicaCount: 3,
		Transport:    "tcp",
	},
}

var defaultGlusterLogDir = "/var/log/glusterd2"

// Load reads and validates a cluster config file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates a cluster config.
func Parse(raw []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.Servers) == 0 {
		return configErrorf("'servers' not defined in the config")
	}
	if len(c.ServersInfo) == 0 {
		return configErrorf("'servers_info' not defined in the config")
	}
	for _, server := range c.Servers {
		if _, ok := c.ServersInfo[server]; !ok {
			return configErrorf("server %q has no entry in servers_info", server)
		}
	}
	for _, client := range c.Clients {
		if _, ok := c.ClientsInfo[client]; !ok {
			return configErrorf("client %q has no entry in clients_info", client)
		}
	}
	for i, vol := range c.Gluster.Volumes {
		if vol.VolType.Type == "" {
			return configErrorf("volume #%d has no voltype", i)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Gluster.VolumeTypes == nil {
		c.Gluster.VolumeTypes = map[string]VolType{}
	}
	for name, vt := range DefaultVolumeTypes {
		if _, ok := c.Gluster.VolumeTypes[name]; !ok {
			c.Gluster.VolumeTypes[name] = vt
		}
	}
	if len(c.Gluster.ServerLogs.Dirs) == 0 {
		c.Gluster.ServerLogs.Dirs = []string{defaultGlusterLogDir}
	}
	if len(c.Gluster.ClientLogs.Dirs) == 0 {
		c.Gluster.ClientLogs.Dirs = []string{defaultGlusterLogDir}
	}
	if c.SSH.User == "" {
		c.SSH.User = "root"
	}
}

// VolumeFor returns the volume configuration for a volume type, either
// defined in the config or synthesized from the volume type table with
// the documented defaults (name testvol_<type>, all servers).
func (c *Config) VolumeFor(voltype string) (VolumeConfig, error) {
	for _, vol := range c.Gluster.Volumes {
		if vol.VolType.Type == voltype {
			out := vol
			if out.Name == "" {
				out.Name = "testvol_" + voltype
			}
			if len(out.Servers) == 0 {
				out.Servers = c.Servers
			}
			return out, nil
		}
	}

	vt, ok := c.Gluster.VolumeTypes[voltype]
	if !ok {
		return VolumeConfig{}, configErrorf("unknown volume type %q", voltype)
	}
	return VolumeConfig{
		Name:    "testvol_" + voltype,
		Servers: c.Servers,
		VolType: vt,
	}, nil
}

// MountsFor returns the mount configurations for a volume and protocol.
// When the config defines none, every client gets one mount with the
// default mountpoint /mnt/<volname>_<protocol>.
func (c *Config) MountsFor(volname, protocol, mnode string) []MountConfig {
	var mounts []MountConfig
	for _, m := range c.Gluster.Mounts {
		if m.Protocol != protocol {
			continue
		}
		if m.VolName != "" && m.VolName != volname {
			continue
		}
		out := m
		out.VolName = volname
		if out.Server == "" {
			out.Server = mnode
		}
		if out.Mountpoint == "" {
			out.Mountpoint = defaultMountpoint(volname, protocol)
		}
		if out.Client == "" && len(c.Clients) > 0 {
			out.Client = c.Clients[0]
		}
		mounts = append(mounts, out)
	}

	if len(mounts) == 0 {
		for _, client := range c.Clients {
			mounts = append(mounts, MountConfig{
				Protocol:   protocol,
				Server:     mnode,
				Client:     client,
				VolName:    volname,
				Mountpoint: defaultMountpoint(volname, protocol),
			})
		}
	}
	return mounts
}

func defaultMountpoint(volname, protocol string) string {
	return "/mnt/" + volname + "_" + protocol
}

// BrickCount computes how many bricks a volume of this type needs.
func (vt VolType) BrickCount() (int, error) {
	switch vt.Type {
	case "distributed":
		if vt.DistCount == 0 {
			return 0, configErrorf("distributed volume needs dist_count")
		}
		return vt.DistCount, nil
	case "replicated":
		if vt.ReplicaCount == 0 {
			return 0, configErrorf("replicated volume needs replica_count")
		}
		return vt.ReplicaCount + vt.ArbiterCount, nil
	case "distributed-replicated":
		if vt.DistCount == 0 || vt.ReplicaCount == 0 {
			return 0, configErrorf("distributed-replicated volume needs dist_count and replica_count")
		}
		return vt.DistCount * (vt.ReplicaCount + vt.ArbiterCount), nil
	default:
		return 0, configErrorf("unknown volume type %q", vt.Type)
	}
}
