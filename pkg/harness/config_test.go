package harness

import (
	"errors"
	"testing"
)

const minimalConfig = `
servers:
  - localhost
  - 127.0.0.1
clients:
  - client1
servers_info:
  localhost:
    host: localhost
    brick_root: /bricks
  127.0.0.1:
    host: 127.0.0.1
    brick_root: /bricks
clients_info:
  client1:
    host: client1
`

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalConfig))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if cfg.SSH.User != "root" {
		t.Errorf("ssh user = %q, want root", cfg.SSH.User)
	}
	if len(cfg.Gluster.ServerLogs.Dirs) != 1 || cfg.Gluster.ServerLogs.Dirs[0] != "/var/log/glusterd2" {
		t.Errorf("server log dirs = %v", cfg.Gluster.ServerLogs.Dirs)
	}

	for _, name := range []string{"distributed", "replicated", "distributed-replicated"} {
		if _, ok := cfg.Gluster.VolumeTypes[name]; !ok {
			t.Errorf("default volume type %q missing", name)
		}
	}
	vt := cfg.Gluster.VolumeTypes["replicated"]
	if vt.ReplicaCount != 2 || vt.ArbiterCount != 1 {
		t.Errorf("replicated defaults = %+v", vt)
	}
}

func TestParseKeepsConfiguredVolumeTypes(t *testing.T) {
	raw := minimalConfig + `
gluster:
  volume_types:
    replicated:
      type: replicated
      replica_count: 3
`
	cfg, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	vt := cfg.Gluster.VolumeTypes["replicated"]
	if vt.ReplicaCount != 3 || vt.ArbiterCount != 0 {
		t.Errorf("replicated = %+v, config should win over defaults", vt)
	}
	if _, ok := cfg.Gluster.VolumeTypes["distributed"]; !ok {
		t.Error("missing types should still be filled in")
	}
}

func TestParseRejectsIncomplete(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"no servers_info", "servers:\n  - localhost\n"},
		{"server without info", `
servers:
  - localhost
  - other
servers_info:
  localhost:
    host: localhost
`},
		{"client without info", minimalConfig + "\nclients:\n  - client2\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.raw))
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("err = %v, want *ConfigError", err)
			}
		})
	}
}

func TestVolumeFor(t *testing.T) {
	cfg, err := Parse([]byte(minimalConfig))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	vol, err := cfg.VolumeFor("distributed")
	if err != nil {
		t.Fatalf("volume for distributed: %v", err)
	}
	if vol.Name != "testvol_distributed" {
		t.Errorf("name = %q", vol.Name)
	}
	if len(vol.Servers) != 2 {
		t.Errorf("servers = %v, want all servers", vol.Servers)
	}
	if vol.VolType.DistCount != 4 {
		t.Errorf("dist count = %d, want 4", vol.VolType.DistCount)
	}

	if _, err := cfg.VolumeFor("striped"); err == nil {
		t.Fatal("unknown volume type should fail")
	}
}

func TestVolumeForPrefersConfiguredVolume(t *testing.T) {
	raw := minimalConfig + `
gluster:
  volumes:
    - name: myvol
      voltype:
        type: replicated
        replica_count: 2
`
	cfg, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	vol, err := cfg.VolumeFor("replicated")
	if err != nil {
		t.Fatalf("volume for replicated: %v", err)
	}
	if vol.Name != "myvol" {
		t.Errorf("name = %q, want myvol", vol.Name)
	}
	if len(vol.Servers) != 2 {
		t.Errorf("servers = %v, want defaulted to all", vol.Servers)
	}
}

func TestMountsForDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalConfig))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	mounts := cfg.MountsFor("testvol", "glusterfs", "localhost")
	if len(mounts) != 1 {
		t.Fatalf("mounts = %+v, want one per client", mounts)
	}
	m := mounts[0]
	if m.Client != "client1" || m.Server != "localhost" {
		t.Errorf("mount = %+v", m)
	}
	if m.Mountpoint != "/mnt/testvol_glusterfs" {
		t.Errorf("mountpoint = %q", m.Mountpoint)
	}
}

func TestBrickCount(t *testing.T) {
	cases := []struct {
		vt   VolType
		want int
		ok   bool
	}{
		{VolType{Type: "distributed", DistCount: 4}, 4, true},
		{VolType{Type: "replicated", ReplicaCount: 2, ArbiterCount: 1}, 3, true},
		{VolType{Type: "distributed-replicated", DistCount: 2, ReplicaCount: 3}, 6, true},
		{VolType{Type: "distributed"}, 0, false},
		{VolType{Type: "replicated"}, 0, false},
		{VolType{Type: "striped", DistCount: 2}, 0, false},
	}
	for _, tc := range cases {
		got, err := tc.vt.BrickCount()
		if tc.ok && (err != nil || got != tc.want) {
			t.Errorf("%+v: got %d, %v; want %d", tc.vt, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Errorf("%+v: expected an error", tc.vt)
		}
	}
}
