package localSigner

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"go.uber.org/zap"

	"github.com/erc7739/signer-go/pkg/signer"
)

// LocalSigner signs typed data with an in-process secp256k1 key. The
// recovery id is offset to the 27/28 convention contract verifiers expect.
type LocalSigner struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
	logger     *zap.Logger
}

func NewLocalSigner(privateKeyHex string, logger *zap.Logger) (*LocalSigner, error) {
	if privateKeyHex == "" {
		return nil, fmt.Errorf("private key cannot be empty")
	}
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return &LocalSigner{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
		logger:     logger,
	}, nil
}

var _ signer.ITypedDataSigner = (*LocalSigner)(nil)

func (s *LocalSigner) Address() common.Address {
	return s.address
}

func (s *LocalSigner) SignTypedData(_ context.Context, typedData *apitypes.TypedData) ([]byte, error) {
	digest, _, err := apitypes.TypedDataAndHash(*typedData)
	if err != nil {
		return nil, fmt.Errorf("failed to hash typed data: %w", err)
	}

	sig, err := crypto.Sign(digest, s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign digest: %w", err)
	}
	sig[64] += 27
	return sig, nil
}
