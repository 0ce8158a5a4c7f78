package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/ssh"
)

// ErrInvalidSSHKey is returned when a private key cannot be parsed.
var ErrInvalidSSHKey = errors.New("invalid SSH private key format")

// KeyPair is an SSH key pair for a deployment key.
type KeyPair struct {
	PrivateKeyPEM string // OpenSSH PEM
	PublicKey     string // authorized_keys line, no trailing newline
	Fingerprint   string // SHA256:...
}

// GenerateKeyPair creates an Ed25519 key pair. comment is embedded in the
// public key line, typically the key name.
func GenerateKeyPair(comment string) (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ed25519 key: %w", err)
	}

	block, err := ssh.MarshalPrivateKey(priv, comment)
	if err != nil {
		return nil, fmt.Errorf("marshal private key: %w", err)
	}

	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("create public key: %w", err)
	}

	return &KeyPair{
		PrivateKeyPEM: string(pem.EncodeToMemory(block)),
		PublicKey:     authorizedKey(sshPub, comment),
		Fingerprint:   ssh.FingerprintSHA256(sshPub),
	}, nil
}

// PublicKeyFromPrivate derives the authorized_keys line and fingerprint
// from a PEM private key.
func PublicKeyFromPrivate(privateKeyPEM, comment string) (publicKey, fingerprint string, err error) {
	signer, err := ssh.ParsePrivateKey([]byte(privateKeyPEM))
	if err != nil {
		return "", "", ErrInvalidSSHKey
	}
	pub := signer.PublicKey()
	return authorizedKey(pub, comment), ssh.FingerprintSHA256(pub), nil
}

func authorizedKey(pub ssh.PublicKey, comment string) string {
	line := strings.TrimSpace(string(ssh.MarshalAuthorizedKey(pub)))
	if comment != "" {
		line += " " + comment
	}
	return line
}
