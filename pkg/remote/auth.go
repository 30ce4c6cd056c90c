package remote

import (
	"fmt"
	"os"

	"golang.org/x/crypto/ssh"
)

// AuthFromPrivateKeyFile builds an SSH auth method from a private key file.
func AuthFromPrivateKeyFile(path string) (ssh.AuthMethod, error) {
	buffer, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("remote: read key %s: %w", path, err)
	}
	key, err := ssh.ParsePrivateKey(buffer)
	if err != nil {
		return nil, fmt.Errorf("remote: parse key %s: %w", path, err)
	}
	return ssh.PublicKeys(key), nil
}

// AuthFromPassword builds an SSH auth method from a password.
func AuthFromPassword(password string) ssh.AuthMethod {
	return ssh.Password(password)
}
