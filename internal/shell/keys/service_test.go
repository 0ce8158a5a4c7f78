package keys

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/artpar/shipyard/internal/core/crypto"
	"github.com/artpar/shipyard/internal/shell/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewService_RejectsBadKeySize(t *testing.T) {
	_, err := NewService(testStore(t), []byte("short"), nil)
	assert.ErrorIs(t, err, crypto.ErrKeySize)
}

func TestCreate_GeneratesPlainKey(t *testing.T) {
	s := testStore(t)
	svc, err := NewService(s, nil, nil)
	require.NoError(t, err)

	key, err := svc.Create(context.Background(), "deploy", "")
	require.NoError(t, err)
	assert.NotZero(t, key.ID)
	assert.True(t, strings.HasPrefix(key.PublicKey, "ssh-ed25519 "))
	assert.True(t, strings.HasSuffix(key.PublicKey, " deploy"))
	assert.True(t, strings.HasPrefix(key.Fingerprint, "SHA256:"))
	assert.False(t, key.Encrypted)
	assert.Contains(t, key.PrivateKey, "OPENSSH PRIVATE KEY")

	stored, err := s.GetKeyByName(context.Background(), "deploy")
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey, stored.PublicKey)

	pem, err := svc.PrivateKey(stored)
	require.NoError(t, err)
	assert.Equal(t, key.PrivateKey, pem)
}

func TestCreate_EncryptsPrivateKey(t *testing.T) {
	s := testStore(t)
	secret := bytes.Repeat([]byte("k"), crypto.KeySize)
	svc, err := NewService(s, secret, nil)
	require.NoError(t, err)

	key, err := svc.Create(context.Background(), "deploy", "")
	require.NoError(t, err)
	assert.True(t, key.Encrypted)
	assert.NotContains(t, key.PrivateKey, "PRIVATE KEY")

	stored, err := s.GetKeyByName(context.Background(), "deploy")
	require.NoError(t, err)
	assert.True(t, stored.Encrypted)

	pem, err := svc.PrivateKey(stored)
	require.NoError(t, err)
	assert.Contains(t, pem, "OPENSSH PRIVATE KEY")

	pub, fingerprint, err := crypto.PublicKeyFromPrivate(pem, "deploy")
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey, pub)
	assert.Equal(t, key.Fingerprint, fingerprint)

	plain, err := NewService(s, nil, nil)
	require.NoError(t, err)
	_, err = plain.PrivateKey(stored)
	assert.ErrorIs(t, err, ErrNoEncryptionKey)
}

func TestCreate_ImportsPrivateKey(t *testing.T) {
	pair, err := crypto.GenerateKeyPair("imported")
	require.NoError(t, err)

	svc, err := NewService(testStore(t), nil, nil)
	require.NoError(t, err)

	key, err := svc.Create(context.Background(), "imported", pair.PrivateKeyPEM)
	require.NoError(t, err)
	assert.Equal(t, pair.PublicKey, key.PublicKey)
	assert.Equal(t, pair.Fingerprint, key.Fingerprint)
}

func TestCreate_InvalidPrivateKey(t *testing.T) {
	svc, err := NewService(testStore(t), nil, nil)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "bad", "not a key")
	assert.ErrorIs(t, err, crypto.ErrInvalidSSHKey)
}
