package awsKmsSigner

import (
	"crypto/rand"
	"encoding/asn1"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

// TestRecoverableSignature verifies DER-style (r,s) pairs are turned into
// 65-byte signatures that recover to the expected key
func TestRecoverableSignature(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	digest := make([]byte, 32)
	_, err = rand.Read(digest)
	require.NoError(t, err)

	refSig, err := crypto.Sign(digest, key)
	require.NoError(t, err)
	r := new(big.Int).SetBytes(refSig[0:32])
	s := new(big.Int).SetBytes(refSig[32:64])

	sig, err := recoverableSignature(digest, r, s, &key.PublicKey)
	require.NoError(t, err)
	require.Len(t, sig, 65)
	require.Contains(t, []byte{27, 28}, sig[64])

	recSig := make([]byte, 65)
	copy(recSig, sig)
	recSig[64] -= 27
	pubKey, err := crypto.SigToPub(digest, recSig)
	require.NoError(t, err)
	require.Equal(t, crypto.PubkeyToAddress(key.PublicKey), crypto.PubkeyToAddress(*pubKey))
}

// TestRecoverableSignature_HighS verifies high-S inputs are canonicalized
// the way KMS output requires
func TestRecoverableSignature_HighS(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	digest := make([]byte, 32)
	_, err = rand.Read(digest)
	require.NoError(t, err)

	refSig, err := crypto.Sign(digest, key)
	require.NoError(t, err)
	r := new(big.Int).SetBytes(refSig[0:32])
	s := new(big.Int).SetBytes(refSig[32:64])

	// Flip into the upper half of the curve order, as KMS may return
	highS := new(big.Int).Sub(curveOrder, s)

	sig, err := recoverableSignature(digest, r, highS, &key.PublicKey)
	require.NoError(t, err)

	lowS := new(big.Int).SetBytes(sig[32:64])
	halfOrder := new(big.Int).Rsh(curveOrder, 1)
	require.True(t, lowS.Cmp(halfOrder) <= 0, "S must be canonicalized to the lower half")

	recSig := make([]byte, 65)
	copy(recSig, sig)
	recSig[64] -= 27
	pubKey, err := crypto.SigToPub(digest, recSig)
	require.NoError(t, err)
	require.Equal(t, crypto.PubkeyToAddress(key.PublicKey), crypto.PubkeyToAddress(*pubKey))
}

// TestRecoverableSignature_WrongKey verifies recovery id search fails loudly
// when the signature does not belong to the expected key
func TestRecoverableSignature_WrongKey(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	otherKey, err := crypto.GenerateKey()
	require.NoError(t, err)

	digest := make([]byte, 32)
	_, err = rand.Read(digest)
	require.NoError(t, err)

	refSig, err := crypto.Sign(digest, key)
	require.NoError(t, err)
	r := new(big.Int).SetBytes(refSig[0:32])
	s := new(big.Int).SetBytes(refSig[32:64])

	_, err = recoverableSignature(digest, r, s, &otherKey.PublicKey)
	require.Error(t, err)
}

// TestParseECDSAPublicKey verifies the DER public key shape KMS returns
func TestParseECDSAPublicKey(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	// id-ecPublicKey with the secp256k1 named curve
	der, err := asn1.Marshal(asn1EcPublicKey{
		EcPublicKeyInfo: asn1EcPublicKeyInfo{
			Algorithm:  asn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1},
			Parameters: asn1.ObjectIdentifier{1, 3, 132, 0, 10},
		},
		PublicKey: asn1.BitString{
			Bytes:     crypto.FromECDSAPub(&key.PublicKey),
			BitLength: len(crypto.FromECDSAPub(&key.PublicKey)) * 8,
		},
	})
	require.NoError(t, err)

	parsed, err := parseECDSAPublicKey(der)
	require.NoError(t, err)
	require.Equal(t, crypto.PubkeyToAddress(key.PublicKey), crypto.PubkeyToAddress(*parsed))
}

// TestParseECDSAPublicKey_Malformed verifies garbage input is rejected
func TestParseECDSAPublicKey_Malformed(t *testing.T) {
	_, err := parseECDSAPublicKey([]byte{0x01, 0x02, 0x03})
	require.Error(t, err)
}
