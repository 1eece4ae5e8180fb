package keyGenerator

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// GeneratedKey describes a freshly provisioned secp256k1 signing key.
// PrivateKeyHex is only populated by generators that hold key material
// locally; remote backends keep the private key and expose a KeyId instead.
type GeneratedKey struct {
	Address       common.Address
	KeyId         string
	PublicKey     []byte
	PrivateKeyHex string
}

func (gk *GeneratedKey) GetPublicKeyHex() (string, error) {
	if len(gk.PublicKey) == 0 {
		return "", fmt.Errorf("public key is empty")
	}
	return hexutil.Encode(gk.PublicKey), nil
}

// GetPublicKeyBytesUnprefixed returns the public key without the 0x04 prefix
// (64 bytes). This format is used by Web3Signer.
func (gk *GeneratedKey) GetPublicKeyBytesUnprefixed() ([]byte, error) {
	if len(gk.PublicKey) == 65 && gk.PublicKey[0] == 0x04 {
		return gk.PublicKey[1:], nil
	}
	if len(gk.PublicKey) == 64 {
		return gk.PublicKey, nil
	}
	return nil, fmt.Errorf("unexpected public key length: %d", len(gk.PublicKey))
}

type IKeyGenerator interface {
	GenerateSigningKey(ctx context.Context, keyName string) (*GeneratedKey, error)
	GetKeyById(ctx context.Context, keyId string) (*GeneratedKey, error)
}
