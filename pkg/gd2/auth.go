package gd2

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// requestClaims are the claims glusterd2 verifies on every API request.
// The qsh claim binds the token to a single method and path.
type requestClaims struct {
	QSH string `json:"qsh"`
	jwt.RegisteredClaims
}

// signRequest mints a bearer token for a single method+path pair.
func (c *Client) signRequest(ctx context.Context, method, path string) (string, error) {
	secret, err := c.signingSecret(ctx)
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := requestClaims{
		QSH: querySignatureHash(method, path),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.user,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign request token: %w", err)
	}
	return signed, nil
}

// signingSecret returns the static secret, or fetches it once through the
// provider and caches it for the lifetime of the client.
func (c *Client) signingSecret(ctx context.Context) ([]byte, error) {
	c.secretMu.Lock()
	defer c.secretMu.Unlock()

	if c.secret != nil {
		return c.secret, nil
	}
	if c.secretProvider == nil {
		return nil, ErrNoSecret
	}
	secret, err := c.secretProvider(ctx, c.host)
	if err != nil {
		return nil, fmt.Errorf("fetch signing secret for %s: %w", c.host, err)
	}
	c.secret = secret
	return secret, nil
}

// querySignatureHash computes the qsh claim: hex(sha256("METHOD&PATH")).
func querySignatureHash(method, path string) string {
	sum := sha256.Sum256([]byte(method + "&" + path))
	return hex.EncodeToString(sum[:])
}
