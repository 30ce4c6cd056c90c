package gd2

import (
	"context"
	"fmt"
	"net"
	"net/http"
)

// PeerProbe adds the server at addr to the trusted storage pool.
func (c *Client) PeerProbe(ctx context.Context, addr string) (*Peer, error) {
	req := struct {
		Addresses []string          `json:"addresses"`
		Metadata  map[string]string `json:"metadata,omitempty"`
	}{
		Addresses: []string{addr},
	}
	var peer Peer
	if err := c.do(ctx, http.MethodPost, "/v1/peers", http.StatusCreated, req, &peer); err != nil {
		return nil, err
	}
	return &peer, nil
}

// Peers lists all peers in the pool.
func (c *Client) Peers(ctx context.Context) ([]Peer, error) {
	var peers []Peer
	if err := c.do(ctx, http.MethodGet, "/v1/peers", http.StatusOK, nil, &peers); err != nil {
		return nil, err
	}
	return peers, nil
}

// Peer fetches a single peer by id.
func (c *Client) Peer(ctx context.Context, peerID string) (*Peer, error) {
	if err := validatePeerID(peerID); err != nil {
		return nil, err
	}
	var peer Peer
	if err := c.do(ctx, http.MethodGet, "/v1/peers/"+peerID, http.StatusOK, nil, &peer); err != nil {
		return nil, err
	}
	return &peer, nil
}

// PeerDetach removes the peer with the given id from the pool.
func (c *Client) PeerDetach(ctx context.Context, peerID string) error {
	if err := validatePeerID(peerID); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, "/v1/peers/"+peerID, http.StatusNoContent, nil, nil)
}

// EditPeer updates the zone metadata of a peer.
func (c *Client) EditPeer(ctx context.Context, peerID, zone string) (*Peer, error) {
	if err := validatePeerID(peerID); err != nil {
		return nil, err
	}
	req := struct {
		Metadata map[string]string `json:"metadata"`
	}{
		Metadata: map[string]string{"zone": zone},
	}
	var peer Peer
	if err := c.do(ctx, http.MethodPost, "/v1/peers/"+peerID, http.StatusCreated, req, &peer); err != nil {
		return nil, err
	}
	return &peer, nil
}

// PeerID resolves a server hostname or address to its peer id by matching
// the server's IPs against the client addresses in the pool list.
func (c *Client) PeerID(ctx context.Context, server string) (string, error) {
	addrs, err := net.DefaultResolver.LookupHost(ctx, server)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", server, err)
	}

	peers, err := c.Peers(ctx)
	if err != nil {
		return "", err
	}

	want := make(map[string]bool, len(addrs)+1)
	want[server] = true
	for _, a := range addrs {
		want[a] = true
	}

	for _, peer := range peers {
		if peer.Name == server {
			return peer.ID, nil
		}
		for _, ca := range peer.ClientAddresses {
			host, _, err := net.SplitHostPort(ca)
			if err != nil {
				host = ca
			}
			if want[host] {
				return peer.ID, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrPeerNotFound, server)
}

// PoolNodes returns the names of all nodes in the pool.
func (c *Client) PoolNodes(ctx context.Context) ([]string, error) {
	peers, err := c.Peers(ctx)
	if err != nil {
		return nil, err
	}
	nodes := make([]string, 0, len(peers))
	for _, peer := range peers {
		nodes = append(nodes, peer.Name)
	}
	return nodes, nil
}
