package harness

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestNewMountDefaults(t *testing.T) {
	cl := newTestCluster(t, &fakeRunner{}, func(w http.ResponseWriter, r *http.Request) {})

	m, err := cl.NewMount(MountConfig{VolName: "testvol", Client: "client1"})
	if err != nil {
		t.Fatalf("new mount: %v", err)
	}
	if m.Protocol != "glusterfs" {
		t.Errorf("protocol = %q, want glusterfs", m.Protocol)
	}
	if m.Server != "localhost" {
		t.Errorf("server = %q, want management node", m.Server)
	}
	if m.Mountpoint != "/mnt/testvol_glusterfs" {
		t.Errorf("mountpoint = %q", m.Mountpoint)
	}

	if _, err := cl.NewMount(MountConfig{Client: "client1"}); err == nil {
		t.Fatal("mount without volname should fail")
	}
	if _, err := cl.NewMount(MountConfig{VolName: "testvol"}); err == nil {
		t.Fatal("mount without client should fail")
	}
}

func TestMountCmd(t *testing.T) {
	m := &Mount{
		Protocol:   "glusterfs",
		Server:     "server1",
		VolName:    "testvol",
		Mountpoint: "/mnt/testvol_glusterfs",
	}
	want := "mount -t glusterfs server1:/testvol /mnt/testvol_glusterfs"
	if got := m.mountCmd(); got != want {
		t.Fatalf("cmd = %q, want %q", got, want)
	}

	m.Options = "acl"
	want = "mount -t glusterfs -o acl server1:/testvol /mnt/testvol_glusterfs"
	if got := m.mountCmd(); got != want {
		t.Fatalf("cmd with options = %q, want %q", got, want)
	}
}

func TestMountAlreadyMountedIsNoop(t *testing.T) {
	runner := &fakeRunner{
		respond: func(host, cmd string) (string, string, error) {
			// The is-mounted grep chain succeeds.
			return "server1:/testvol on /mnt/testvol_glusterfs", "", nil
		},
	}
	m := &Mount{
		Protocol:   "glusterfs",
		Server:     "server1",
		Client:     "client1",
		VolName:    "testvol",
		Mountpoint: "/mnt/testvol_glusterfs",
		runner:     runner,
	}
	if err := m.Mount(context.Background()); err != nil {
		t.Fatalf("mount: %v", err)
	}
	cmds := runner.commands()
	if len(cmds) != 1 {
		t.Fatalf("commands = %v, want only the mount check", cmds)
	}
}

func TestMountRunsMkdirAndMount(t *testing.T) {
	runner := &fakeRunner{
		respond: func(host, cmd string) (string, string, error) {
			if strings.HasPrefix(cmd, "mount | grep") {
				return "", "", fmt.Errorf("exit 1")
			}
			return "", "", nil
		},
	}
	m := &Mount{
		Protocol:   "glusterfs",
		Server:     "server1",
		Client:     "client1",
		VolName:    "testvol",
		Mountpoint: "/mnt/testvol_glusterfs",
		runner:     runner,
	}
	if err := m.Mount(context.Background()); err != nil {
		t.Fatalf("mount: %v", err)
	}
	cmds := runner.commands()
	if len(cmds) != 3 {
		t.Fatalf("commands = %v, want check, mkdir, mount", cmds)
	}
	if !strings.Contains(cmds[1], "mkdir -p /mnt/testvol_glusterfs") {
		t.Errorf("mkdir cmd = %q", cmds[1])
	}
	if cmds[2] != m.mountCmd() {
		t.Errorf("mount cmd = %q", cmds[2])
	}
}

func TestUnmountEscalates(t *testing.T) {
	runner := &fakeRunner{}
	m := &Mount{
		Client:     "client1",
		VolName:    "testvol",
		Mountpoint: "/mnt/testvol_glusterfs",
		runner:     runner,
	}
	if err := m.Unmount(context.Background()); err != nil {
		t.Fatalf("unmount: %v", err)
	}
	cmds := runner.commands()
	want := "umount /mnt/testvol_glusterfs || umount -f /mnt/testvol_glusterfs || umount -l /mnt/testvol_glusterfs"
	if len(cmds) != 1 || cmds[0] != want {
		t.Fatalf("commands = %v, want %q", cmds, want)
	}
}

func TestMountsFromConfigNumMounts(t *testing.T) {
	raw := minimalConfig + `
gluster:
  mounts:
    - protocol: glusterfs
      client: client1
      num_of_mounts: 3
`
	cfg, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cl, err := New(cfg, &fakeRunner{})
	if err != nil {
		t.Fatalf("new cluster: %v", err)
	}

	mounts, err := cl.MountsFromConfig("testvol", "glusterfs")
	if err != nil {
		t.Fatalf("mounts from config: %v", err)
	}
	if len(mounts) != 3 {
		t.Fatalf("mounts = %d, want 3", len(mounts))
	}
	for i, m := range mounts {
		want := fmt.Sprintf("/mnt/testvol_glusterfs_%d", i+1)
		if m.Mountpoint != want {
			t.Errorf("mountpoint %d = %q, want %q", i, m.Mountpoint, want)
		}
	}
}
