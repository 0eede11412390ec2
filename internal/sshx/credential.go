package sshx

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/ssh"
)

// Credential holds exactly one way to authenticate against a host. When more
// than one field is set, priority is key material > key path > password.
// Raw key or password material must never appear in logs or result messages.
type Credential struct {
	Key      []byte
	KeyPath  string
	Password string
}

// ErrNoCredential is returned when a Credential carries no usable material.
var ErrNoCredential = errors.New("no credential material provided")

// AuthMethods resolves the credential into SSH auth methods, honoring the
// key-material > key-path > password priority.
func (c Credential) AuthMethods() ([]ssh.AuthMethod, error) {
	switch {
	case len(c.Key) > 0:
		signer, err := ssh.ParsePrivateKey(c.Key)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	case c.KeyPath != "":
		// #nosec G304
		data, err := os.ReadFile(c.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read private key file: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key file: %w", err)
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	case c.Password != "":
		return []ssh.AuthMethod{ssh.Password(c.Password)}, nil
	default:
		return nil, ErrNoCredential
	}
}

// Empty reports whether the credential carries no material at all.
func (c Credential) Empty() bool {
	return len(c.Key) == 0 && c.KeyPath == "" && c.Password == ""
}
