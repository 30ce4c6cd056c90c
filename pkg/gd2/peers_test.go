package gd2

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestPeerValidatesID(t *testing.T) {
	c := New("server1", WithSecret(testSecret))
	if _, err := c.Peer(context.Background(), "not-a-uuid"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if err := c.PeerDetach(context.Background(), "not-a-uuid"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestPeerIDByName(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, []Peer{
			{ID: peer1, Name: "server1", Online: true},
			{ID: peer2, Name: "localhost", Online: true},
		})
	})

	id, err := c.PeerID(context.Background(), "localhost")
	if err != nil {
		t.Fatalf("peer id: %v", err)
	}
	if id != peer2 {
		t.Fatalf("id = %s, want %s", id, peer2)
	}
}

func TestPeerIDByClientAddress(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, []Peer{
			{ID: peer1, Name: "server1", ClientAddresses: []string{"10.0.0.1:24007"}},
			{ID: peer2, Name: "server2", ClientAddresses: []string{"127.0.0.1:24007"}},
		})
	})

	id, err := c.PeerID(context.Background(), "localhost")
	if err != nil {
		t.Fatalf("peer id: %v", err)
	}
	if id != peer2 {
		t.Fatalf("id = %s, want %s", id, peer2)
	}
}

func TestPeerIDNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, []Peer{
			{ID: peer1, Name: "server1"},
		})
	})

	_, err := c.PeerID(context.Background(), "localhost")
	if !errors.Is(err, ErrPeerNotFound) {
		t.Fatalf("err = %v, want ErrPeerNotFound", err)
	}
}

func TestPoolNodes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, []Peer{
			{ID: peer1, Name: "server1"},
			{ID: peer2, Name: "server2"},
		})
	})

	nodes, err := c.PoolNodes(context.Background())
	if err != nil {
		t.Fatalf("pool nodes: %v", err)
	}
	if len(nodes) != 2 || nodes[0] != "server1" || nodes[1] != "server2" {
		t.Fatalf("nodes = %v", nodes)
	}
}

func TestEditPeerSendsZone(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/peers/"+peer1 {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		writeJSON(t, w, http.StatusCreated, Peer{
			ID:       peer1,
			Name:     "server1",
			Metadata: map[string]string{"zone": "a"},
		})
	})

	peer, err := c.EditPeer(context.Background(), peer1, "a")
	if err != nil {
		t.Fatalf("edit peer: %v", err)
	}
	if peer.Metadata["zone"] != "a" {
		t.Fatalf("zone = %q, want a", peer.Metadata["zone"])
	}
}
