// Package gd2 provides a Go client for the GlusterD-2.0 management REST API.
//
// The client wraps the /v1 endpoints for peers, volumes, bricks, snapshots
// and devices, and signs every request with a short-lived JWT bearer token
// the way glustercli does.
package gd2
