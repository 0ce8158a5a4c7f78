// Package keys provisions deployment keys.
package keys

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/artpar/shipyard/internal/core/crypto"
	"github.com/artpar/shipyard/internal/core/domain"
	"github.com/artpar/shipyard/internal/shell/store"
)

// ErrNoEncryptionKey is returned when reading a sealed key without an encryption key.
var ErrNoEncryptionKey = errors.New("key is encrypted but no encryption key is configured")

// Service generates or imports SSH key pairs and stores them.
// With an encryption key configured, private keys are sealed before storage.
type Service struct {
	store         store.Store
	encryptionKey []byte
	logger        *slog.Logger
}

// NewService creates a key service. encryptionKey may be empty, in which
// case private keys are stored as-is; otherwise it must be crypto.KeySize bytes.
func NewService(s store.Store, encryptionKey []byte, logger *slog.Logger) (*Service, error) {
	if len(encryptionKey) != 0 && len(encryptionKey) != crypto.KeySize {
		return nil, crypto.ErrKeySize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:         s,
		encryptionKey: encryptionKey,
		logger:        logger.With("component", "keys"),
	}, nil
}

// Create stores a new key named name. A blank privateKeyPEM generates a fresh
// Ed25519 pair; otherwise the public half is derived from the supplied key.
func (s *Service) Create(ctx context.Context, name, privateKeyPEM string) (*domain.Key, error) {
	var pair *crypto.KeyPair
	if strings.TrimSpace(privateKeyPEM) == "" {
		generated, err := crypto.GenerateKeyPair(name)
		if err != nil {
			return nil, err
		}
		pair = generated
	} else {
		pub, fingerprint, err := crypto.PublicKeyFromPrivate(privateKeyPEM, name)
		if err != nil {
			return nil, err
		}
		pair = &crypto.KeyPair{PrivateKeyPEM: privateKeyPEM, PublicKey: pub, Fingerprint: fingerprint}
	}

	key := &domain.Key{
		Name:        name,
		PublicKey:   pair.PublicKey,
		Fingerprint: pair.Fingerprint,
		PrivateKey:  pair.PrivateKeyPEM,
		CreatedAt:   time.Now().UTC(),
	}

	if len(s.encryptionKey) > 0 {
		sealed, err := crypto.SealString(pair.PrivateKeyPEM, s.encryptionKey)
		if err != nil {
			return nil, fmt.Errorf("encrypt private key: %w", err)
		}
		key.PrivateKey = sealed
		key.Encrypted = true
	}

	if err := s.store.CreateKey(ctx, key); err != nil {
		return nil, fmt.Errorf("create key: %w", err)
	}

	s.logger.Info("key created", "key_id", key.ID, "name", name, "fingerprint", key.Fingerprint, "encrypted", key.Encrypted)
	return key, nil
}

// PrivateKey returns the PEM private key of a stored key, decrypting it
// when it was sealed.
func (s *Service) PrivateKey(key *domain.Key) (string, error) {
	if !key.Encrypted {
		return key.PrivateKey, nil
	}
	if len(s.encryptionKey) == 0 {
		return "", ErrNoEncryptionKey
	}
	return crypto.OpenString(key.PrivateKey, s.encryptionKey)
}
