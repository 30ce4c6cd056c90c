package gd2

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

const (
	peer1 = "24e75b61-0c0e-4d27-9b1d-bbb9e64ae5a4"
	peer2 = "6c1b3e52-2a65-45a8-9a5a-9d9e9b7a1a01"
	peer3 = "f64d7d58-7b9e-4f0f-8c2f-64e1c2a9d9b2"
)

func TestBuildVolumeCreateBodyDistribute(t *testing.T) {
	body, err := buildVolumeCreateBody(VolumeCreateReq{
		Name:   "testvol_distributed",
		Bricks: []string{peer1 + ":/bricks/b1", peer2 + ":/bricks/b2"},
	})
	if err != nil {
		t.Fatalf("build body: %v", err)
	}
	if len(body.Subvols) != 1 {
		t.Fatalf("subvols = %d, want 1", len(body.Subvols))
	}
	sv := body.Subvols[0]
	if sv.Type != "distribute" {
		t.Errorf("subvol type = %q, want distribute", sv.Type)
	}
	if len(sv.Bricks) != 2 {
		t.Errorf("bricks = %d, want 2", len(sv.Bricks))
	}
	if body.Transport != "tcp" {
		t.Errorf("transport = %q, want tcp default", body.Transport)
	}
	if !body.Flags["create-brick-dir"] {
		t.Error("create-brick-dir flag not set")
	}
}

func TestBuildVolumeCreateBodyReplicate(t *testing.T) {
	bricks := []string{
		peer1 + ":/bricks/b1", peer2 + ":/bricks/b2",
		peer1 + ":/bricks/b3", peer2 + ":/bricks/b4",
	}
	body, err := buildVolumeCreateBody(VolumeCreateReq{
		Name:         "testvol_replicated",
		Bricks:       bricks,
		ReplicaCount: 2,
	})
	if err != nil {
		t.Fatalf("build body: %v", err)
	}
	if len(body.Subvols) != 2 {
		t.Fatalf("subvols = %d, want 2", len(body.Subvols))
	}
	for i, sv := range body.Subvols {
		if sv.Type != "replicate" {
			t.Errorf("subvol %d type = %q, want replicate", i, sv.Type)
		}
		if sv.ReplicaCount != 2 || len(sv.Bricks) != 2 {
			t.Errorf("subvol %d: replica %d, %d bricks", i, sv.ReplicaCount, len(sv.Bricks))
		}
	}
}

func TestBuildVolumeCreateBodyArbiter(t *testing.T) {
	bricks := []string{
		peer1 + ":/bricks/b1", peer2 + ":/bricks/b2", peer3 + ":/bricks/b3",
	}
	body, err := buildVolumeCreateBody(VolumeCreateReq{
		Name:         "testvol_arbiter",
		Bricks:       bricks,
		ReplicaCount: 2,
		ArbiterCount: 1,
	})
	if err != nil {
		t.Fatalf("build body: %v", err)
	}
	if len(body.Subvols) != 1 {
		t.Fatalf("subvols = %d, want 1", len(body.Subvols))
	}
	sv := body.Subvols[0]
	if sv.ArbiterCount != 1 {
		t.Errorf("arbiter count = %d, want 1", sv.ArbiterCount)
	}
	if sv.Bricks[2].Type != "arbiter" {
		t.Errorf("third brick type = %q, want arbiter", sv.Bricks[2].Type)
	}
	if sv.Bricks[0].Type != "" || sv.Bricks[1].Type != "" {
		t.Error("data bricks should carry no type")
	}
}

func TestBuildVolumeCreateBodyRejects(t *testing.T) {
	cases := []struct {
		name string
		req  VolumeCreateReq
	}{
		{"no bricks", VolumeCreateReq{Name: "v"}},
		{"malformed brick", VolumeCreateReq{Name: "v", Bricks: []string{"not-a-brick"}}},
		{"bad peer id", VolumeCreateReq{Name: "v", Bricks: []string{"nope:/bricks/b1"}}},
		{"bad transport", VolumeCreateReq{
			Name:      "v",
			Bricks:    []string{peer1 + ":/bricks/b1"},
			Transport: "carrier-pigeon",
		}},
		{"uneven subvol", VolumeCreateReq{
			Name:         "v",
			Bricks:       []string{peer1 + ":/bricks/b1", peer2 + ":/bricks/b2", peer3 + ":/bricks/b3"},
			ReplicaCount: 2,
		}},
		{"arbiter too small", VolumeCreateReq{
			Name:         "v",
			Bricks:       []string{peer1 + ":/bricks/b1"},
			ReplicaCount: 1,
			ArbiterCount: 1,
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := buildVolumeCreateBody(tc.req); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestCreateVolumeRequest(t *testing.T) {
	var got volCreateBody
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/volumes" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		writeJSON(t, w, http.StatusCreated, Volume{Name: got.Name, State: "Created"})
	})

	vol, err := c.CreateVolume(context.Background(), VolumeCreateReq{
		Name:         "testvol_replicated",
		Bricks:       []string{peer1 + ":/bricks/b1", peer2 + ":/bricks/b2"},
		ReplicaCount: 2,
	})
	if err != nil {
		t.Fatalf("create volume: %v", err)
	}
	if vol.Name != "testvol_replicated" {
		t.Fatalf("volume name = %q", vol.Name)
	}
	if got.Name != "testvol_replicated" || len(got.Subvols) != 1 {
		t.Fatalf("daemon saw body %+v", got)
	}
}

func TestStartVolumeForce(t *testing.T) {
	var got struct {
		ForceStartBricks bool `json:"force-start-bricks"`
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/volumes/testvol/start" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		writeJSON(t, w, http.StatusOK, Volume{Name: "testvol", State: "Started"})
	})

	if err := c.StartVolume(context.Background(), "testvol", true); err != nil {
		t.Fatalf("start volume: %v", err)
	}
	if !got.ForceStartBricks {
		t.Fatal("force-start-bricks not set")
	}
}

func TestExpandVolumeRequest(t *testing.T) {
	// The expand endpoint takes capitalized keys, unlike the rest of
	// the API. Decode into a raw map so a struct tag change here would
	// not silently keep the test green.
	var got map[string]json.RawMessage
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/volumes/testvol/expand" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		writeJSON(t, w, http.StatusOK, Volume{Name: "testvol", DistCount: 3})
	})

	vol, err := c.ExpandVolume(context.Background(), "testvol",
		[]string{peer3 + ":/bricks/b3"}, 0, true)
	if err != nil {
		t.Fatalf("expand volume: %v", err)
	}
	if vol.DistCount != 3 {
		t.Fatalf("dist count = %d, want 3", vol.DistCount)
	}
	for _, key := range []string{"ReplicaCount", "Bricks", "Force", "Flags"} {
		if _, ok := got[key]; !ok {
			t.Errorf("body missing key %q, got %v", key, got)
		}
	}
	var bricks []brickReq
	if err := json.Unmarshal(got["Bricks"], &bricks); err != nil {
		t.Fatalf("decode bricks: %v", err)
	}
	if len(bricks) != 1 || bricks[0].PeerID != peer3 || bricks[0].Path != "/bricks/b3" {
		t.Fatalf("bricks = %+v", bricks)
	}
}

func TestResetVolumeOptionsRequest(t *testing.T) {
	var got struct {
		Options []string `json:"options"`
		Force   bool     `json:"force"`
		All     bool     `json:"all"`
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/v1/volumes/testvol/options" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	})

	err := c.ResetVolumeOptions(context.Background(), "testvol",
		[]string{"performance.write-behind"}, true, false)
	if err != nil {
		t.Fatalf("reset options: %v", err)
	}
	if len(got.Options) != 1 || got.Options[0] != "performance.write-behind" {
		t.Fatalf("options = %v", got.Options)
	}
	if !got.Force || got.All {
		t.Fatalf("force = %t all = %t", got.Force, got.All)
	}
}

func TestSetVolumeOptionsEmpty(t *testing.T) {
	c := New("server1", WithSecret(testSecret))
	err := c.SetVolumeOptions(context.Background(), "testvol", nil, OptionFlags{})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestVolumeNames(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, []Volume{{Name: "vol1"}, {Name: "vol2"}})
	})
	names, err := c.VolumeNames(context.Background())
	if err != nil {
		t.Fatalf("volume names: %v", err)
	}
	if len(names) != 2 || names[0] != "vol1" || names[1] != "vol2" {
		t.Fatalf("names = %v", names)
	}
}

func TestVolumeExists(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/volumes/present" {
			writeJSON(t, w, http.StatusOK, Volume{Name: "present"})
			return
		}
		http.Error(w, "not found", http.StatusNotFound)
	})

	ok, err := c.VolumeExists(context.Background(), "present")
	if err != nil || !ok {
		t.Fatalf("present: ok=%t err=%v", ok, err)
	}
	ok, err = c.VolumeExists(context.Background(), "absent")
	if err != nil {
		t.Fatalf("absent should not error: %v", err)
	}
	if ok {
		t.Fatal("absent volume reported as existing")
	}
}
