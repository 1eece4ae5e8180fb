package localKeyGenerator

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// TestGenerateSigningKey verifies key material consistency and storage
func TestGenerateSigningKey(t *testing.T) {
	gen := NewLocalKeyGenerator(zaptest.NewLogger(t))

	key, err := gen.GenerateSigningKey(context.Background(), "test-key")
	require.NoError(t, err)
	require.NotEmpty(t, key.KeyId)
	require.NotEmpty(t, key.PrivateKeyHex)

	// The address must match the one derived from the returned private key
	privateKey, err := crypto.HexToECDSA(key.PrivateKeyHex[2:])
	require.NoError(t, err)
	require.Equal(t, crypto.PubkeyToAddress(privateKey.PublicKey), key.Address)

	// Stored and retrievable by id
	got, err := gen.GetKeyById(context.Background(), key.KeyId)
	require.NoError(t, err)
	require.Equal(t, key, got)
	require.Equal(t, 1, gen.KeyCount())
}

// TestGenerateSigningKey_Unique verifies each call produces a distinct key
func TestGenerateSigningKey_Unique(t *testing.T) {
	gen := NewLocalKeyGenerator(zaptest.NewLogger(t))

	key1, err := gen.GenerateSigningKey(context.Background(), "a")
	require.NoError(t, err)
	key2, err := gen.GenerateSigningKey(context.Background(), "b")
	require.NoError(t, err)

	require.NotEqual(t, key1.KeyId, key2.KeyId)
	require.NotEqual(t, key1.Address, key2.Address)
	require.Equal(t, 2, gen.KeyCount())
}

// TestGetKeyById_Missing verifies unknown ids are rejected
func TestGetKeyById_Missing(t *testing.T) {
	gen := NewLocalKeyGenerator(zaptest.NewLogger(t))

	_, err := gen.GetKeyById(context.Background(), "local-key-missing")
	require.Error(t, err)
}

// TestGetPublicKeyBytesUnprefixed verifies the Web3Signer key format
func TestGetPublicKeyBytesUnprefixed(t *testing.T) {
	gen := NewLocalKeyGenerator(zaptest.NewLogger(t))

	key, err := gen.GenerateSigningKey(context.Background(), "test-key")
	require.NoError(t, err)

	unprefixed, err := key.GetPublicKeyBytesUnprefixed()
	require.NoError(t, err)
	require.Len(t, unprefixed, 64)
	require.Equal(t, key.PublicKey[1:], unprefixed)
}
