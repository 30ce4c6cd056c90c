package gd2

import (
	"context"
	"fmt"
	"net/http"
)

// AddDevice registers a block device on a peer for brick provisioning.
func (c *Client) AddDevice(ctx context.Context, peerID, device string) (*Device, error) {
	if err := validatePeerID(peerID); err != nil {
		return nil, err
	}
	if device == "" {
		return nil, fmt.Errorf("%w: device cannot be empty", ErrInvalidInput)
	}
	req := struct {
		Device string `json:"Device"`
	}{Device: device}
	var dev Device
	if err := c.do(ctx, http.MethodPost, "/v1/devices/"+peerID, http.StatusCreated, req, &dev); err != nil {
		return nil, err
	}
	return &dev, nil
}

// Devices lists all devices in the cluster.
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	var devs []Device
	if err := c.do(ctx, http.MethodGet, "/v1/devices", http.StatusOK, nil, &devs); err != nil {
		return nil, err
	}
	return devs, nil
}

// PeerDevices lists the devices registered on one peer.
func (c *Client) PeerDevices(ctx context.Context, peerID string) ([]Device, error) {
	if err := validatePeerID(peerID); err != nil {
		return nil, err
	}
	var devs []Device
	if err := c.do(ctx, http.MethodGet, "/v1/devices/"+peerID, http.StatusOK, nil, &devs); err != nil {
		return nil, err
	}
	return devs, nil
}

// DeviceInfo fetches a single device on a peer.
func (c *Client) DeviceInfo(ctx context.Context, peerID, device string) (*Device, error) {
	if err := validatePeerID(peerID); err != nil {
		return nil, err
	}
	if device == "" {
		return nil, fmt.Errorf("%w: device cannot be empty", ErrInvalidInput)
	}
	var dev Device
	if err := c.do(ctx, http.MethodGet, "/v1/devices/"+peerID+"/"+device, http.StatusOK, nil, &dev); err != nil {
		return nil, err
	}
	return &dev, nil
}

// EditDevice sets the state of a device to DeviceEnabled or DeviceDisabled.
func (c *Client) EditDevice(ctx context.Context, peerID, device, state string) (*Device, error) {
	if err := validatePeerID(peerID); err != nil {
		return nil, err
	}
	if device == "" {
		return nil, fmt.Errorf("%w: device cannot be empty", ErrInvalidInput)
	}
	if state != DeviceEnabled && state != DeviceDisabled {
		return nil, fmt.Errorf("%w: device state %q must be %q or %q",
			ErrInvalidInput, state, DeviceEnabled, DeviceDisabled)
	}
	req := struct {
		State string `json:"state"`
	}{State: state}
	var dev Device
	if err := c.do(ctx, http.MethodPost, "/v1/devices/"+peerID+"/"+device, http.StatusCreated, req, &dev); err != nil {
		return nil, err
	}
	return &dev, nil
}
