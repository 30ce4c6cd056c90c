// Package commands implements the gd2ctl command tree: peer, volume,
// snapshot and device operations against the glusterd2 REST API, plus
// service control and volume mounts over SSH.
package commands
