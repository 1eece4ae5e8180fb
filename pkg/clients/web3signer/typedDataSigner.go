package web3signer

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"go.uber.org/zap"

	"github.com/erc7739/signer-go/pkg/signer"
)

// TypedDataSigner adapts a Web3Signer client to the pipeline's signing
// capability. The remote service hashes and signs the typed data; the
// signature comes back hex encoded.
type TypedDataSigner struct {
	client      IWeb3Signer
	fromAddress common.Address
	logger      *zap.Logger
}

func NewTypedDataSigner(client IWeb3Signer, fromAddress common.Address, logger *zap.Logger) *TypedDataSigner {
	return &TypedDataSigner{
		client:      client,
		fromAddress: fromAddress,
		logger:      logger,
	}
}

var _ signer.ITypedDataSigner = (*TypedDataSigner)(nil)

func (s *TypedDataSigner) Address() common.Address {
	return s.fromAddress
}

func (s *TypedDataSigner) SignTypedData(ctx context.Context, typedData *apitypes.TypedData) ([]byte, error) {
	sigHex, err := s.client.EthSignTypedData(ctx, s.fromAddress.Hex(), typedData)
	if err != nil {
		return nil, fmt.Errorf("web3signer signing failed: %w", err)
	}
	sig, err := hexutil.Decode(sigHex)
	if err != nil {
		return nil, fmt.Errorf("web3signer returned a non-hex signature %q: %w", sigHex, err)
	}
	return sig, nil
}
