// Package remote executes shell commands on cluster nodes over SSH.
//
// The REST API covers volume and peer management; everything touching the
// node itself (mounts, systemd units, brick processes, brick directories)
// goes through a Runner.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
)

const defaultSSHPort = 22

// Runner executes a command on a host and returns its stdout and stderr.
type Runner interface {
	Run(ctx context.Context, host, cmd string) (stdout, stderr string, err error)
}

// ExitError is returned when the remote command exits non-zero.
type ExitError struct {
	Host   string
	Cmd    string
	Status int
	Stderr string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("remote: %s: %q exited with status %d: %s",
		e.Host, e.Cmd, e.Status, strings.TrimSpace(e.Stderr))
}

// Result is the outcome of running a command on one host.
type Result struct {
	Host   string
	Stdout string
	Stderr string
	Err    error
}

// Config holds the SSH settings shared by all hosts.
type Config struct {
	User string
	Auth []ssh.AuthMethod
	// Port of the sshd on the nodes. Defaults to 22.
	Port int
	// Timeout for establishing connections.
	Timeout time.Duration
}

// SSHRunner runs commands over SSH, caching one client connection per host.
type SSHRunner struct {
	cfg     Config
	mu      sync.Mutex
	clients map[string]*ssh.Client
}

var _ Runner = (*SSHRunner)(nil)

// NewSSHRunner creates a runner from the given config.
func NewSSHRunner(cfg Config) *SSHRunner {
	if cfg.Port == 0 {
		cfg.Port = defaultSSHPort
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &SSHRunner{
		cfg:     cfg,
		clients: make(map[string]*ssh.Client),
	}
}

// Run executes cmd on host. A non-zero exit status is returned as
// *ExitError with stdout and stderr still filled in.
func (r *SSHRunner) Run(ctx context.Context, host, cmd string) (string, string, error) {
	client, err := r.client(host)
	if err != nil {
		return "", "", err
	}

	session, err := client.NewSession()
	if err != nil {
		// The cached connection may have gone stale; dial once more.
		r.drop(host)
		client, err = r.client(host)
		if err != nil {
			return "", "", err
		}
		session, err = client.NewSession()
		if err != nil {
			return "", "", fmt.Errorf("remote: session on %s: %w", host, err)
		}
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	slog.Debug("running remote command", "host", host, "cmd", cmd)

	done := make(chan error, 1)
	go func() {
		done <- session.Run(cmd)
	}()

	select {
	case <-ctx.Done():
		session.Signal(ssh.SIGKILL)
		return stdout.String(), stderr.String(), ctx.Err()
	case err = <-done:
	}

	if err != nil {
		if exitErr, ok := err.(*ssh.ExitError); ok {
			return stdout.String(), stderr.String(), &ExitError{
				Host:   host,
				Cmd:    cmd,
				Status: exitErr.ExitStatus(),
				Stderr: stderr.String(),
			}
		}
		return stdout.String(), stderr.String(), fmt.Errorf("remote: run on %s: %w", host, err)
	}
	return stdout.String(), stderr.String(), nil
}

// RunParallel executes cmd on every host concurrently and returns one
// Result per host, in host order.
func RunParallel(ctx context.Context, r Runner, hosts []string, cmd string) []Result {
	results := make([]Result, len(hosts))
	var wg sync.WaitGroup
	for i, host := range hosts {
		wg.Add(1)
		go func(i int, host string) {
			defer wg.Done()
			stdout, stderr, err := r.Run(ctx, host, cmd)
			results[i] = Result{Host: host, Stdout: stdout, Stderr: stderr, Err: err}
		}(i, host)
	}
	wg.Wait()
	return results
}

func (r *SSHRunner) client(host string) (*ssh.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if client, ok := r.clients[host]; ok {
		return client, nil
	}

	sshConfig := &ssh.ClientConfig{
		User: r.cfg.User,
		Auth: r.cfg.Auth,
		HostKeyCallback: func(hostname string, remote net.Addr, key ssh.PublicKey) error {
			return nil
		},
		Timeout: r.cfg.Timeout,
	}

	addr := fmt.Sprintf("%s:%d", host, r.cfg.Port)
	client, err := ssh.Dial("tcp", addr, sshConfig)
	if err != nil {
		return nil, fmt.Errorf("remote: dial %s: %w", addr, err)
	}
	r.clients[host] = client
	return client, nil
}

func (r *SSHRunner) drop(host string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if client, ok := r.clients[host]; ok {
		client.Close()
		delete(r.clients, host)
	}
}

// Close closes all cached connections.
func (r *SSHRunner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for host, client := range r.clients {
		client.Close()
		delete(r.clients, host)
	}
	return nil
}
