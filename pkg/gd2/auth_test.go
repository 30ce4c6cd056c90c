package gd2

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestQuerySignatureHash(t *testing.T) {
	// sha256("GET&/v1/peers") hex-encoded.
	const want = "36cbea2b6ef321559845e7d1cce23c62dffa0a973b05b09fcb43f6b0805ef8e7"
	if got := querySignatureHash("GET", "/v1/peers"); got != want {
		t.Fatalf("qsh mismatch:\n got %s\nwant %s", got, want)
	}
}

func TestSignRequestClaims(t *testing.T) {
	secret := []byte("topsecret")
	c := New("server1", WithSecret(secret))

	signed, err := c.signRequest(context.Background(), "POST", "/v1/volumes")
	if err != nil {
		t.Fatalf("sign request: %v", err)
	}

	var claims requestClaims
	token, err := jwt.ParseWithClaims(signed, &claims, func(tok *jwt.Token) (any, error) {
		if tok.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if !token.Valid {
		t.Fatal("token did not verify")
	}

	if claims.Issuer != DefaultUser {
		t.Errorf("issuer = %q, want %q", claims.Issuer, DefaultUser)
	}
	if claims.QSH != querySignatureHash("POST", "/v1/volumes") {
		t.Errorf("qsh does not match method and path")
	}
	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if ttl != time.Second {
		t.Errorf("token ttl = %s, want 1s", ttl)
	}
}

func TestSigningSecretProviderCachedOnce(t *testing.T) {
	calls := 0
	provider := func(ctx context.Context, host string) ([]byte, error) {
		calls++
		if host != "server1" {
			t.Errorf("provider called for %q, want server1", host)
		}
		return []byte("fetched"), nil
	}
	c := New("server1", WithSecretProvider(provider))

	for i := 0; i < 3; i++ {
		secret, err := c.signingSecret(context.Background())
		if err != nil {
			t.Fatalf("signing secret: %v", err)
		}
		if string(secret) != "fetched" {
			t.Fatalf("secret = %q, want fetched", secret)
		}
	}
	if calls != 1 {
		t.Fatalf("provider called %d times, want 1", calls)
	}
}

func TestSigningSecretMissing(t *testing.T) {
	c := New("server1")
	if _, err := c.signingSecret(context.Background()); !errors.Is(err, ErrNoSecret) {
		t.Fatalf("err = %v, want ErrNoSecret", err)
	}
}
