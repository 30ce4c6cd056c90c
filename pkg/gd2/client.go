package gd2

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const (
	// DefaultPort is the port glusterd2 serves its REST API on.
	DefaultPort = 24007
	// DefaultUser is the token issuer glusterd2 accepts by default.
	DefaultUser = "glustercli"

	defaultTokenTTL    = time.Second
	defaultHTTPTimeout = 30 * time.Second
)

// SecretProvider supplies the JWT signing secret for a node.
type SecretProvider func(ctx context.Context, host string) ([]byte, error)

// Option configures the client.
type Option func(*clientConfig)

type clientConfig struct {
	port           int
	user           string
	secret         []byte
	secretProvider SecretProvider
	httpClient     *http.Client
	timeout        time.Duration
	tokenTTL       time.Duration
	baseURL        string
}

// Client talks to the glusterd2 REST API on a single management node.
type Client struct {
	host           string
	baseURL        string
	user           string
	secretMu       sync.Mutex
	secret         []byte
	secretProvider SecretProvider
	http           *http.Client
	tokenTTL       time.Duration
}

// New creates a client for the glusterd2 daemon on host. The signing secret
// is taken from WithSecret, or fetched lazily through the configured
// SecretProvider on first use.
func New(host string, opts ...Option) *Client {
	cfg := clientConfig{
		port:     DefaultPort,
		user:     DefaultUser,
		tokenTTL: defaultTokenTTL,
		httpClient: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.timeout > 0 {
		// Copy so a caller-provided client is never mutated.
		hc := *cfg.httpClient
		hc.Timeout = cfg.timeout
		cfg.httpClient = &hc
	}

	baseURL := cfg.baseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://%s:%d", host, cfg.port)
	}

	return &Client{
		host:           host,
		baseURL:        baseURL,
		user:           cfg.user,
		secret:         cfg.secret,
		secretProvider: cfg.secretProvider,
		http:           cfg.httpClient,
		tokenTTL:       cfg.tokenTTL,
	}
}

// Host returns the management node this client talks to.
func (c *Client) Host() string {
	return c.host
}

// WithPort overrides the REST API port.
func WithPort(port int) Option {
	return func(cfg *clientConfig) {
		cfg.port = port
	}
}

// WithUser overrides the token issuer.
func WithUser(user string) Option {
	return func(cfg *clientConfig) {
		if user != "" {
			cfg.user = user
		}
	}
}

// WithSecret sets a static signing secret.
func WithSecret(secret []byte) Option {
	return func(cfg *clientConfig) {
		cfg.secret = secret
	}
}

// WithSecretProvider sets the provider used to fetch the signing secret
// when no static secret is given.
func WithSecretProvider(provider SecretProvider) Option {
	return func(cfg *clientConfig) {
		if provider != nil {
			cfg.secretProvider = provider
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(cfg *clientConfig) {
		if hc != nil {
			cfg.httpClient = hc
		}
	}
}

// WithTimeout overrides the HTTP request timeout, regardless of the
// order it appears in relative to WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) {
		if d > 0 {
			cfg.timeout = d
		}
	}
}

// WithTokenTTL overrides the lifetime of request tokens.
func WithTokenTTL(ttl time.Duration) Option {
	return func(cfg *clientConfig) {
		if ttl > 0 {
			cfg.tokenTTL = ttl
		}
	}
}

// WithBaseURL replaces the whole base URL, bypassing host and port.
// Intended for tests against a local fake daemon.
func WithBaseURL(url string) Option {
	return func(cfg *clientConfig) {
		cfg.baseURL = url
	}
}

// do issues a request against the REST API, expecting the given status code.
// When out is non-nil the response body is decoded into it.
func (c *Client) do(ctx context.Context, method, path string, expect int, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.signRequest(ctx, method, path)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != expect {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Expected:   expect,
			Method:     method,
			Path:       path,
			Body:       string(bytes.TrimSpace(raw)),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
